package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/apperrors"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/request"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/model"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/testutil"
)

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

// TestRecurringService_ProcessDueRules_CatchUp tests multi-occurrence catch-up.
//
// WHY: A rule left unprocessed for months must generate one transaction per
// missed occurrence, in order, and leave the cursor on the first future
// occurrence. This is the core contract of the due-rule processor.
func TestRecurringService_ProcessDueRules_CatchUp(t *testing.T) {
	t.Run("posts all missed monthly occurrences in order", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)

		// Monthly on the 1st, starting 2024-01-01, never processed.
		rule := testutil.NewRecurringRule(account.ID, category.ID).
			Monthly(1).
			WithStartAt(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, db)

		now := time.Date(2024, time.April, 5, 12, 0, 0, 0, time.UTC)

		// Execute
		result, err := svc.ProcessDueRules(context.Background(), now)

		// Assert
		if err != nil {
			t.Fatalf("ProcessDueRules() returned unexpected error: %v", err)
		}
		if result.ProcessedRules != 1 {
			t.Errorf("Expected 1 processed rule, got %d", result.ProcessedRules)
		}
		// Jan 1, Feb 1, Mar 1, Apr 1
		if result.ProcessedRuns != 4 {
			t.Errorf("Expected 4 processed runs, got %d", result.ProcessedRuns)
		}
		if result.GeneratedTransactions != 4 {
			t.Errorf("Expected 4 generated transactions, got %d", result.GeneratedTransactions)
		}

		testutil.AssertRowCount(t, db, "ledger_transaction", 4)
		testutil.AssertRowCount(t, db, "recurring_run_log", 4)

		// Cursor advanced to the first future occurrence.
		updated, err := svc.GetRule(context.Background(), rule.UserID, rule.ID)
		if err != nil {
			t.Fatalf("GetRule() returned unexpected error: %v", err)
		}
		wantNext := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
		if !updated.NextRunAt.Equal(wantNext) {
			t.Errorf("Expected nextRunAt %v, got %v", wantNext, updated.NextRunAt)
		}
		if updated.LastRunAt == nil || !updated.LastRunAt.Equal(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Expected lastRunAt 2024-04-01, got %v", updated.LastRunAt)
		}

		// Run log records the logical occurrence times in order.
		entries, err := svc.ListRuns(context.Background(), rule.UserID, rule.ID)
		if err != nil {
			t.Fatalf("ListRuns() returned unexpected error: %v", err)
		}
		if len(entries) != 4 {
			t.Fatalf("Expected 4 run log entries, got %d", len(entries))
		}
		for i, entry := range entries {
			want := time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
			if !entry.ScheduledAt.Equal(want) {
				t.Errorf("Entry %d: expected scheduledAt %v, got %v", i, want, entry.ScheduledAt)
			}
			if len(entry.TransactionIDs) != 1 {
				t.Errorf("Entry %d: expected 1 transaction id, got %d", i, len(entry.TransactionIDs))
			}
		}
	})

	t.Run("weekly rule posts one run per elapsed week", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)

		// Weekly on Monday; 2024-01-01 is a Monday.
		testutil.NewRecurringRule(account.ID, category.ID).
			Weekly(1).
			WithStartAt(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, db)

		// Three Mondays elapsed: Jan 1, 8, 15.
		now := time.Date(2024, time.January, 17, 0, 0, 0, 0, time.UTC)

		result, err := svc.ProcessDueRules(context.Background(), now)
		if err != nil {
			t.Fatalf("ProcessDueRules() returned unexpected error: %v", err)
		}
		if result.ProcessedRuns != 3 {
			t.Errorf("Expected 3 processed runs, got %d", result.ProcessedRuns)
		}
		testutil.AssertRowCount(t, db, "ledger_transaction", 3)
	})

	t.Run("skips paused and deleted rules", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)

		testutil.NewRecurringRule(account.ID, category.ID).Paused().Build(t, db)
		testutil.NewRecurringRule(account.ID, category.ID).SoftDeleted().Build(t, db)

		result, err := svc.ProcessDueRules(context.Background(), time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("ProcessDueRules() returned unexpected error: %v", err)
		}
		if result.ProcessedRules != 0 || result.ProcessedRuns != 0 {
			t.Errorf("Expected no work, got %+v", result)
		}
		testutil.AssertRowCount(t, db, "ledger_transaction", 0)
	})
}

// TestRecurringService_ProcessDueRules_Idempotence tests double processing.
//
// WHY: Overlapping trigger invocations (cron plus manual) must not double-post.
// The run log's uniqueness constraint is the only guard; a second pass over the
// same window must be a no-op.
func TestRecurringService_ProcessDueRules_Idempotence(t *testing.T) {
	t.Run("second pass over the same window posts nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)
		testutil.NewRecurringRule(account.ID, category.ID).Build(t, db)

		now := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

		first, err := svc.ProcessDueRules(context.Background(), now)
		if err != nil {
			t.Fatalf("First pass returned unexpected error: %v", err)
		}
		if first.ProcessedRuns != 3 {
			t.Fatalf("Expected 3 runs on first pass, got %d", first.ProcessedRuns)
		}

		second, err := svc.ProcessDueRules(context.Background(), now)
		if err != nil {
			t.Fatalf("Second pass returned unexpected error: %v", err)
		}
		if second.ProcessedRuns != 0 || second.GeneratedTransactions != 0 {
			t.Errorf("Expected second pass to be a no-op, got %+v", second)
		}

		testutil.AssertRowCount(t, db, "ledger_transaction", 3)
		testutil.AssertRowCount(t, db, "recurring_run_log", 3)
	})

	t.Run("pre-claimed occurrence is skipped without posting", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)
		rule := testutil.NewRecurringRule(account.ID, category.ID).Build(t, db)

		// Another invocation already claimed January's occurrence.
		_, err := db.Exec(
			`INSERT INTO recurring_run_log (id, rule_id, user_id, scheduled_at, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			testutil.MakeID(), rule.ID, rule.UserID,
			rule.NextRunAt.UTC().Format(time.RFC3339),
			time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			t.Fatalf("Failed to pre-claim occurrence: %v", err)
		}

		now := time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC)

		result, err := svc.ProcessDueRules(context.Background(), now)
		if err != nil {
			t.Fatalf("ProcessDueRules() returned unexpected error: %v", err)
		}
		// Only February posts; January was claimed elsewhere.
		if result.ProcessedRuns != 1 {
			t.Errorf("Expected 1 run, got %d", result.ProcessedRuns)
		}
		testutil.AssertRowCount(t, db, "ledger_transaction", 1)

		updated, err := svc.GetRule(context.Background(), rule.UserID, rule.ID)
		if err != nil {
			t.Fatalf("GetRule() returned unexpected error: %v", err)
		}
		wantNext := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		if !updated.NextRunAt.Equal(wantNext) {
			t.Errorf("Expected nextRunAt %v, got %v", wantNext, updated.NextRunAt)
		}
	})
}

// TestRecurringService_ProcessDueRules_TransferRules tests transfer posting.
//
// WHY: A due transfer rule must generate both legs with shared linkage; a
// one-legged transfer would corrupt account balances.
func TestRecurringService_ProcessDueRules_TransferRules(t *testing.T) {
	t.Run("each occurrence posts a linked pair", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		from := testutil.NewAccount().WithName("Checking").Build(t, db)
		to := testutil.NewAccount().WithName("Savings").Build(t, db)
		rule := testutil.NewTransferRule(from.ID, to.ID).Build(t, db)

		now := time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC)

		result, err := svc.ProcessDueRules(context.Background(), now)
		if err != nil {
			t.Fatalf("ProcessDueRules() returned unexpected error: %v", err)
		}
		if result.ProcessedRuns != 2 {
			t.Errorf("Expected 2 runs, got %d", result.ProcessedRuns)
		}
		if result.GeneratedTransactions != 4 {
			t.Errorf("Expected 4 generated transactions, got %d", result.GeneratedTransactions)
		}
		testutil.AssertRowCount(t, db, "ledger_transaction", 4)

		entries, err := svc.ListRuns(context.Background(), rule.UserID, rule.ID)
		if err != nil {
			t.Fatalf("ListRuns() returned unexpected error: %v", err)
		}
		for i, entry := range entries {
			if len(entry.TransactionIDs) != 2 {
				t.Errorf("Entry %d: expected 2 transaction ids, got %d", i, len(entry.TransactionIDs))
			}
		}

		// Both legs of each pair share a transfer group.
		var groups int
		err = db.QueryRow(`SELECT COUNT(DISTINCT transfer_group_id) FROM ledger_transaction`).Scan(&groups)
		if err != nil {
			t.Fatalf("Failed to count transfer groups: %v", err)
		}
		if groups != 2 {
			t.Errorf("Expected 2 transfer groups, got %d", groups)
		}
	})
}

// TestRecurringService_ProcessDueRules_EndBound tests the end-of-schedule pause.
//
// WHY: A rule must stop exactly at its end bound. The bound is exclusive: an
// occurrence falling on endAt is not posted, and the rule pauses instead of
// being rescanned forever.
func TestRecurringService_ProcessDueRules_EndBound(t *testing.T) {
	t.Run("pauses without posting once the cursor reaches endAt", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)

		// Ends on March 1: January and February post, March does not.
		rule := testutil.NewRecurringRule(account.ID, category.ID).
			WithEndAt(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, db)

		now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

		result, err := svc.ProcessDueRules(context.Background(), now)
		if err != nil {
			t.Fatalf("ProcessDueRules() returned unexpected error: %v", err)
		}
		if result.ProcessedRuns != 2 {
			t.Errorf("Expected 2 runs, got %d", result.ProcessedRuns)
		}
		testutil.AssertRowCount(t, db, "ledger_transaction", 2)

		updated, err := svc.GetRule(context.Background(), rule.UserID, rule.ID)
		if err != nil {
			t.Fatalf("GetRule() returned unexpected error: %v", err)
		}
		if !updated.IsPaused {
			t.Error("Expected rule to be paused after reaching its end bound")
		}
	})
}

// TestRecurringService_ProcessDueRules_PostingFailure tests the compensating path.
//
// WHY: When posting fails after an occurrence was claimed, the claim must be
// released so the next pass retries it. Leaving the claim in place would
// silently swallow the occurrence.
func TestRecurringService_ProcessDueRules_PostingFailure(t *testing.T) {
	t.Run("releases the claim and aborts the pass", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		account := testutil.NewAccount().Build(t, db)
		// Category is gone by the time the rule fires.
		category := testutil.NewCategory().SoftDeleted().Build(t, db)
		rule := testutil.NewRecurringRule(account.ID, category.ID).Build(t, db)

		now := time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC)

		result, err := svc.ProcessDueRules(context.Background(), now)
		if err == nil {
			t.Fatal("Expected error when posting fails, got nil")
		}
		if !errors.Is(err, apperrors.ErrCategoryNotFound) {
			t.Errorf("Expected ErrCategoryNotFound, got %v", err)
		}
		if result.ProcessedRuns != 0 {
			t.Errorf("Expected 0 runs, got %d", result.ProcessedRuns)
		}

		// Claim released, nothing posted, cursor untouched.
		testutil.AssertRowCount(t, db, "recurring_run_log", 0)
		testutil.AssertRowCount(t, db, "ledger_transaction", 0)

		updated, err := svc.GetRule(context.Background(), rule.UserID, rule.ID)
		if err != nil {
			t.Fatalf("GetRule() returned unexpected error: %v", err)
		}
		if !updated.NextRunAt.Equal(rule.NextRunAt) {
			t.Errorf("Expected cursor to stay at %v, got %v", rule.NextRunAt, updated.NextRunAt)
		}
	})
}

// TestRecurringService_CreateRule tests rule creation semantics.
func TestRecurringService_CreateRule(t *testing.T) {
	owner := testutil.DefaultOwnerID

	t.Run("computes the first occurrence from the schedule", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)

		rule, err := svc.CreateRule(context.Background(), owner, request.CreateRecurringRuleRequest{
			Kind:       model.RuleKindNormal,
			AccountID:  &account.ID,
			CategoryID: &category.ID,
			Type:       strPtr(model.TransactionTypeExpense),
			Amount:     decimal.NewFromInt(950),
			Cadence:    model.CadenceMonthly,
			DayOfMonth: intPtr(3),
			StartAt:    "2024-01-10",
		})
		if err != nil {
			t.Fatalf("CreateRule() returned unexpected error: %v", err)
		}

		// Jan 3 precedes the start, so the first occurrence is Feb 3.
		want := time.Date(2024, time.February, 3, 0, 0, 0, 0, time.UTC)
		if !rule.NextRunAt.Equal(want) {
			t.Errorf("Expected nextRunAt %v, got %v", want, rule.NextRunAt)
		}
		if rule.IsPaused {
			t.Error("Expected new rule to be active")
		}
	})

	t.Run("rejects a transfer rule between the same account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		account := testutil.NewAccount().Build(t, db)

		_, err := svc.CreateRule(context.Background(), owner, request.CreateRecurringRuleRequest{
			Kind:          model.RuleKindTransfer,
			FromAccountID: &account.ID,
			ToAccountID:   &account.ID,
			Amount:        decimal.NewFromInt(100),
			Cadence:       model.CadenceMonthly,
			DayOfMonth:    intPtr(1),
			StartAt:       "2024-01-01",
		})
		if !errors.Is(err, apperrors.ErrTransferAccountConflict) {
			t.Errorf("Expected ErrTransferAccountConflict, got %v", err)
		}
		testutil.AssertRowCount(t, db, "recurring_rule", 0)
	})

	t.Run("rejects a transfer rule across currencies", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		from := testutil.NewAccount().WithCurrency("EUR").Build(t, db)
		to := testutil.NewAccount().WithCurrency("USD").Build(t, db)

		_, err := svc.CreateRule(context.Background(), owner, request.CreateRecurringRuleRequest{
			Kind:          model.RuleKindTransfer,
			FromAccountID: &from.ID,
			ToAccountID:   &to.ID,
			Amount:        decimal.NewFromInt(100),
			Cadence:       model.CadenceMonthly,
			DayOfMonth:    intPtr(1),
			StartAt:       "2024-01-01",
		})
		if !errors.Is(err, apperrors.ErrCurrencyMismatch) {
			t.Errorf("Expected ErrCurrencyMismatch, got %v", err)
		}
	})

	t.Run("rejects a normal rule whose type contradicts the category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Income().Build(t, db)

		_, err := svc.CreateRule(context.Background(), owner, request.CreateRecurringRuleRequest{
			Kind:       model.RuleKindNormal,
			AccountID:  &account.ID,
			CategoryID: &category.ID,
			Type:       strPtr(model.TransactionTypeExpense),
			Amount:     decimal.NewFromInt(100),
			Cadence:    model.CadenceMonthly,
			DayOfMonth: intPtr(1),
			StartAt:    "2024-01-01",
		})
		if !errors.Is(err, apperrors.ErrInvalidCategoryType) {
			t.Errorf("Expected ErrInvalidCategoryType, got %v", err)
		}
	})

	t.Run("starts paused when the first occurrence falls past endAt", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)

		// First occurrence 2024-02-03; schedule ends 2024-01-20.
		rule, err := svc.CreateRule(context.Background(), owner, request.CreateRecurringRuleRequest{
			Kind:       model.RuleKindNormal,
			AccountID:  &account.ID,
			CategoryID: &category.ID,
			Type:       strPtr(model.TransactionTypeExpense),
			Amount:     decimal.NewFromInt(100),
			Cadence:    model.CadenceMonthly,
			DayOfMonth: intPtr(3),
			StartAt:    "2024-01-10",
			EndAt:      strPtr("2024-01-20"),
		})
		if err != nil {
			t.Fatalf("CreateRule() returned unexpected error: %v", err)
		}
		if !rule.IsPaused {
			t.Error("Expected rule to start paused when no occurrence fits the window")
		}
	})
}

// TestRecurringService_UpdateRule tests patch and reschedule semantics.
//
// WHY: Editing a schedule or resuming a long-paused rule must not replay the
// past. The reschedule-from-now policy forfeits missed occurrences; these tests
// pin that behavior down.
func TestRecurringService_UpdateRule(t *testing.T) {
	t.Run("unpausing with a stale cursor reschedules from now", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
		svc := testutil.NewTestRecurringService(t, db).WithClock(func() time.Time { return now })

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)

		// Paused since January with the cursor still on 2024-01-01.
		rule := testutil.NewRecurringRule(account.ID, category.ID).Paused().Build(t, db)

		updated, err := svc.UpdateRule(context.Background(), rule.UserID, rule.ID,
			request.UpdateRecurringRuleRequest{IsPaused: boolPtr(false)})
		if err != nil {
			t.Fatalf("UpdateRule() returned unexpected error: %v", err)
		}

		// Missed months are forfeited; next occurrence is July 1, carrying the
		// reschedule instant's time-of-day.
		want := time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)
		if !updated.NextRunAt.Equal(want) {
			t.Errorf("Expected nextRunAt %v, got %v", want, updated.NextRunAt)
		}
		if updated.IsPaused {
			t.Error("Expected rule to be unpaused")
		}

		// The forfeited window stays forfeited: a due pass posts nothing old.
		result, err := svc.ProcessDueRules(context.Background(), now)
		if err != nil {
			t.Fatalf("ProcessDueRules() returned unexpected error: %v", err)
		}
		if result.ProcessedRuns != 0 {
			t.Errorf("Expected no runs after reschedule, got %d", result.ProcessedRuns)
		}
	})

	t.Run("cadence change requires the matching day field", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)
		rule := testutil.NewRecurringRule(account.ID, category.ID).Build(t, db)

		// Switching to weekly without a dayOfWeek is incoherent.
		_, err := svc.UpdateRule(context.Background(), rule.UserID, rule.ID,
			request.UpdateRecurringRuleRequest{Cadence: strPtr(model.CadenceWeekly)})
		if !errors.Is(err, apperrors.ErrInvalidRuleConfiguration) {
			t.Errorf("Expected ErrInvalidRuleConfiguration, got %v", err)
		}
	})

	t.Run("cadence change with day field reschedules from now", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		// 2024-06-15 is a Saturday.
		now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
		svc := testutil.NewTestRecurringService(t, db).WithClock(func() time.Time { return now })

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)
		rule := testutil.NewRecurringRule(account.ID, category.ID).Build(t, db)

		updated, err := svc.UpdateRule(context.Background(), rule.UserID, rule.ID,
			request.UpdateRecurringRuleRequest{
				Cadence:   strPtr(model.CadenceWeekly),
				DayOfWeek: intPtr(1),
			})
		if err != nil {
			t.Fatalf("UpdateRule() returned unexpected error: %v", err)
		}

		// Next Monday after the Saturday edit.
		want := time.Date(2024, time.June, 17, 12, 0, 0, 0, time.UTC)
		if !updated.NextRunAt.Equal(want) {
			t.Errorf("Expected nextRunAt %v, got %v", want, updated.NextRunAt)
		}
		if updated.DayOfMonth != nil {
			t.Error("Expected dayOfMonth to be cleared after cadence change")
		}
	})

	t.Run("setting endAt before the cursor pauses the rule", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)
		rule := testutil.NewRecurringRule(account.ID, category.ID).
			WithNextRunAt(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, db)

		updated, err := svc.UpdateRule(context.Background(), rule.UserID, rule.ID,
			request.UpdateRecurringRuleRequest{EndAt: strPtr("2025-01-01")})
		if err != nil {
			t.Fatalf("UpdateRule() returned unexpected error: %v", err)
		}
		if !updated.IsPaused {
			t.Error("Expected rule to pause when endAt precedes the next occurrence")
		}
	})

	t.Run("clearing endAt with an empty string", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)
		rule := testutil.NewRecurringRule(account.ID, category.ID).
			WithEndAt(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, db)

		updated, err := svc.UpdateRule(context.Background(), rule.UserID, rule.ID,
			request.UpdateRecurringRuleRequest{EndAt: strPtr("")})
		if err != nil {
			t.Fatalf("UpdateRule() returned unexpected error: %v", err)
		}
		if updated.EndAt != nil {
			t.Errorf("Expected endAt to be cleared, got %v", updated.EndAt)
		}
	})

	t.Run("returns not found for another owner's rule", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)
		rule := testutil.NewRecurringRule(account.ID, category.ID).Build(t, db)

		otherOwner := testutil.MakeID()
		_, err := svc.UpdateRule(context.Background(), otherOwner, rule.ID,
			request.UpdateRecurringRuleRequest{Description: strPtr("hijack")})
		if !errors.Is(err, apperrors.ErrRuleNotFound) {
			t.Errorf("Expected ErrRuleNotFound, got %v", err)
		}
	})
}

// TestRecurringService_DeleteRule tests soft deletion.
func TestRecurringService_DeleteRule(t *testing.T) {
	t.Run("deleted rule keeps its run log history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)
		rule := testutil.NewRecurringRule(account.ID, category.ID).Build(t, db)

		// Generate some history first.
		if _, err := svc.ProcessDueRules(context.Background(), time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)); err != nil {
			t.Fatalf("ProcessDueRules() returned unexpected error: %v", err)
		}

		if err := svc.DeleteRule(context.Background(), rule.UserID, rule.ID); err != nil {
			t.Fatalf("DeleteRule() returned unexpected error: %v", err)
		}

		if _, err := svc.GetRule(context.Background(), rule.UserID, rule.ID); !errors.Is(err, apperrors.ErrRuleNotFound) {
			t.Errorf("Expected ErrRuleNotFound after delete, got %v", err)
		}

		// History survives the rule.
		testutil.AssertRowCount(t, db, "recurring_run_log", 3)

		// And the rule no longer fires.
		result, err := svc.ProcessDueRules(context.Background(), time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("ProcessDueRules() returned unexpected error: %v", err)
		}
		if result.ProcessedRuns != 0 {
			t.Errorf("Expected deleted rule to stay silent, got %d runs", result.ProcessedRuns)
		}
	})
}

func boolPtr(b bool) *bool { return &b }
