package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/handlers"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/middleware"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/model"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/testutil"
)

// serveAsOwner routes the request through the owner middleware before the
// handler, mirroring the production middleware chain.
func serveAsOwner(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	middleware.RequireOwner(handler).ServeHTTP(w, testutil.AsOwner(req, testutil.DefaultOwnerID))
	return w
}

// TestRecurringHandler_CreateRule tests the POST /api/recurring endpoint.
//
// WHY: Rule creation is the entry point of the whole recurring pipeline. The
// endpoint must reject malformed payloads before the service runs and report
// the computed first occurrence back to the caller.
func TestRecurringHandler_CreateRule(t *testing.T) {
	t.Run("POST /api/recurring returns 201 with the computed schedule", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)
		handler := handlers.NewRecurringHandler(svc)

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)

		payload := map[string]any{
			"kind":       model.RuleKindNormal,
			"accountId":  account.ID,
			"categoryId": category.ID,
			"type":       model.TransactionTypeExpense,
			"amount":     "950.00",
			"cadence":    model.CadenceMonthly,
			"dayOfMonth": 3,
			"startAt":    "2024-01-10",
		}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/recurring/", payload)

		// Execute
		w := serveAsOwner(handler.CreateRule, req)

		// Assert
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}

		var rule model.RecurringRule
		if err := json.NewDecoder(w.Body).Decode(&rule); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		want := time.Date(2024, time.February, 3, 0, 0, 0, 0, time.UTC)
		if !rule.NextRunAt.Equal(want) {
			t.Errorf("Expected nextRunAt %v, got %v", want, rule.NextRunAt)
		}
		if !rule.Amount.Equal(decimal.RequireFromString("950.00")) {
			t.Errorf("Expected amount 950.00, got %s", rule.Amount)
		}
		testutil.AssertRowCount(t, db, "recurring_rule", 1)
	})

	t.Run("POST /api/recurring returns 400 on incoherent schedule fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewRecurringHandler(testutil.NewTestRecurringService(t, db))

		payload := map[string]any{
			"kind":      model.RuleKindNormal,
			"accountId": testutil.MakeID(),
			"cadence":   model.CadenceWeekly,
			// dayOfWeek missing, categoryId missing
			"amount":  "10",
			"startAt": "2024-01-01",
		}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/recurring/", payload)

		w := serveAsOwner(handler.CreateRule, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
		testutil.AssertRowCount(t, db, "recurring_rule", 0)
	})

	t.Run("POST /api/recurring returns 400 on unknown payload fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewRecurringHandler(testutil.NewTestRecurringService(t, db))

		payload := map[string]any{
			"kind":        model.RuleKindNormal,
			"dayOfMoneth": 3, // typo must not be silently dropped
		}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/recurring/", payload)

		w := serveAsOwner(handler.CreateRule, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("POST /api/recurring returns 404 for a missing account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewRecurringHandler(testutil.NewTestRecurringService(t, db))

		category := testutil.NewCategory().Build(t, db)
		payload := map[string]any{
			"kind":       model.RuleKindNormal,
			"accountId":  testutil.MakeID(),
			"categoryId": category.ID,
			"type":       model.TransactionTypeExpense,
			"amount":     "10",
			"cadence":    model.CadenceMonthly,
			"dayOfMonth": 1,
			"startAt":    "2024-01-01",
		}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/recurring/", payload)

		w := serveAsOwner(handler.CreateRule, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 401 without an owner identity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewRecurringHandler(testutil.NewTestRecurringService(t, db))

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/recurring/", map[string]any{})
		w := httptest.NewRecorder()
		middleware.RequireOwner(http.HandlerFunc(handler.CreateRule)).ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})
}

// TestRecurringHandler_ListRules tests the GET /api/recurring endpoint.
func TestRecurringHandler_ListRules(t *testing.T) {
	t.Run("GET /api/recurring filters by month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewRecurringHandler(testutil.NewTestRecurringService(t, db))

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)

		april := testutil.NewRecurringRule(account.ID, category.ID).
			WithNextRunAt(time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)).
			Build(t, db)
		testutil.NewRecurringRule(account.ID, category.ID).
			WithNextRunAt(time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)).
			Build(t, db)

		req := httptest.NewRequest(http.MethodGet, "/api/recurring/?month=2024-04", nil)
		w := serveAsOwner(handler.ListRules, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var rules []model.RecurringRule
		if err := json.NewDecoder(w.Body).Decode(&rules); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(rules) != 1 || rules[0].ID != april.ID {
			t.Errorf("Expected only the April rule, got %d rules", len(rules))
		}
	})

	t.Run("GET /api/recurring returns 400 on a malformed month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewRecurringHandler(testutil.NewTestRecurringService(t, db))

		req := httptest.NewRequest(http.MethodGet, "/api/recurring/?month=April-2024", nil)
		w := serveAsOwner(handler.ListRules, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

// TestRecurringHandler_UpdateRule tests the PATCH /api/recurring/{uuid} endpoint.
func TestRecurringHandler_UpdateRule(t *testing.T) {
	t.Run("PATCH pauses a rule", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewRecurringHandler(testutil.NewTestRecurringService(t, db))

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)
		rule := testutil.NewRecurringRule(account.ID, category.ID).
			WithNextRunAt(time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, db)

		paused := true
		req := testutil.NewJSONRequest(t, http.MethodPatch, "/api/recurring/"+rule.ID,
			map[string]any{"isPaused": paused})
		req = testutil.WithURLParams(req, map[string]string{"uuid": rule.ID})

		w := serveAsOwner(handler.UpdateRule, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var updated model.RecurringRule
		if err := json.NewDecoder(w.Body).Decode(&updated); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if !updated.IsPaused {
			t.Error("Expected rule to be paused")
		}
	})

	t.Run("PATCH returns 404 for an unknown rule", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewRecurringHandler(testutil.NewTestRecurringService(t, db))

		ruleID := testutil.MakeID()
		req := testutil.NewJSONRequest(t, http.MethodPatch, "/api/recurring/"+ruleID,
			map[string]any{"description": "nothing here"})
		req = testutil.WithURLParams(req, map[string]string{"uuid": ruleID})

		w := serveAsOwner(handler.UpdateRule, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

// TestRecurringHandler_ProcessDue tests the POST /api/recurring/process-due endpoint.
//
// WHY: This is the trigger's contract with external schedulers: a pass over all
// owners' due rules, reporting counts. Repeating the call must not double-post.
func TestRecurringHandler_ProcessDue(t *testing.T) {
	t.Run("POST /api/recurring/process-due reports the pass result", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecurringService(t, db)
		handler := handlers.NewRecurringHandler(svc)

		account := testutil.NewAccount().Build(t, db)
		category := testutil.NewCategory().Build(t, db)
		start := time.Now().UTC().AddDate(0, 0, -15)
		testutil.NewRecurringRule(account.ID, category.ID).
			Weekly(int(start.Weekday())).
			WithStartAt(start).
			Build(t, db)

		req := httptest.NewRequest(http.MethodPost, "/api/recurring/process-due", nil)
		w := httptest.NewRecorder()
		handler.ProcessDue(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var result model.ProcessDueResult
		if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		// 15 days back, weekly: the start day plus two following weeks.
		if result.ProcessedRuns != 3 {
			t.Errorf("Expected 3 runs, got %d", result.ProcessedRuns)
		}

		// Second trigger invocation is a no-op.
		w = httptest.NewRecorder()
		handler.ProcessDue(w, httptest.NewRequest(http.MethodPost, "/api/recurring/process-due", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200 on repeat, got %d", w.Code)
		}
		if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if result.ProcessedRuns != 0 {
			t.Errorf("Expected repeat pass to be a no-op, got %d runs", result.ProcessedRuns)
		}
	})
}
