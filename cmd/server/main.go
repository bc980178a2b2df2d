package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/config"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/database"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/repository"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Create repositories
	accountRepo := repository.NewAccountRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	ruleRepo := repository.NewRecurringRuleRepository(db)
	runLogRepo := repository.NewRunLogRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	accountService := service.NewAccountService(accountRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	ledgerService := service.NewLedgerService(transactionRepo, accountRepo, categoryRepo)
	recurringService := service.NewRecurringService(ruleRepo, runLogRepo, ledgerService)

	// Create router
	router := api.NewRouter(api.Services{
		System:    systemService,
		Account:   accountService,
		Category:  categoryService,
		Ledger:    ledgerService,
		Recurring: recurringService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// In-process trigger: run a due-processing pass on the configured cron
	// schedule. An external scheduler hitting the trigger endpoint at the same
	// time is harmless; the run log absorbs the overlap.
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Trigger.CronSchedule, func() {
		result, err := recurringService.ProcessDueRules(ctx, time.Now().UTC())
		if err != nil {
			log.Printf("Scheduled due-rule pass failed: %v (partial result: %+v)", err, result)
		}
	})
	if err != nil {
		log.Fatalf("Invalid trigger cron schedule %q: %v", cfg.Trigger.CronSchedule, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		scheduler.Start()
		<-ctx.Done()

		log.Println("Shutting down server...")
		<-scheduler.Stop().Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server exited")
}
