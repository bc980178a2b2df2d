package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/handlers"
	custommiddleware "github.com/pocketledger/Pocket-Ledger-Backend/internal/api/middleware"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/config"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/service"
)

// Services bundles the service layer dependencies the router wires into handlers.
type Services struct {
	System    *service.SystemService
	Account   *service.AccountService
	Category  *service.CategoryService
	Ledger    *service.LedgerService
	Recurring *service.RecurringService
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	triggerLimiter := custommiddleware.NewRateLimiter(cfg.Trigger.RatePerMinute, cfg.Trigger.RateBurst)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(services.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		recurringHandler := handlers.NewRecurringHandler(services.Recurring)

		// Internal trigger, authenticated by shared secret instead of owner
		// identity. Registered outside the owner-scoped group.
		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.APIKeyMiddleware)
			r.Use(triggerLimiter.Handler)
			r.Post("/recurring/process-due", recurringHandler.ProcessDue)
		})

		// Owner-scoped routes
		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireOwner)

			r.Route("/account", func(r chi.Router) {
				accountHandler := handlers.NewAccountHandler(services.Account)
				r.Get("/", accountHandler.ListAccounts)
				r.Post("/", accountHandler.CreateAccount)
				r.Get("/{uuid}", accountHandler.GetAccount)
				r.Delete("/{uuid}", accountHandler.DeleteAccount)
			})

			r.Route("/category", func(r chi.Router) {
				categoryHandler := handlers.NewCategoryHandler(services.Category)
				r.Get("/", categoryHandler.ListCategories)
				r.Post("/", categoryHandler.CreateCategory)
				r.Delete("/{uuid}", categoryHandler.DeleteCategory)
			})

			r.Route("/transaction", func(r chi.Router) {
				transactionHandler := handlers.NewTransactionHandler(services.Ledger)
				r.Get("/", transactionHandler.ListTransactions)
				r.Post("/", transactionHandler.CreateTransaction)
				r.Post("/transfer", transactionHandler.CreateTransfer)
				r.Get("/{uuid}", transactionHandler.GetTransaction)
				r.Delete("/{uuid}", transactionHandler.DeleteTransaction)
			})

			r.Route("/recurring", func(r chi.Router) {
				r.Get("/", recurringHandler.ListRules)
				r.Post("/", recurringHandler.CreateRule)
				r.Get("/{uuid}", recurringHandler.GetRule)
				r.Patch("/{uuid}", recurringHandler.UpdateRule)
				r.Delete("/{uuid}", recurringHandler.DeleteRule)
				r.Get("/{uuid}/runs", recurringHandler.ListRuns)
			})
		})
	})

	return r
}
