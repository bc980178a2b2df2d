package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/apperrors"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/request"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/model"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/repository"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/schedule"
)

// RecurringService owns the recurring rule lifecycle (create, patch,
// pause/resume, soft delete) and the due-rule processor that turns due rules
// into ledger postings.
//
// The processor's correctness rests on the run log, not on in-process state:
// inserting a run log entry claims an occurrence, and the table's uniqueness
// constraint makes overlapping invocations safe. The rule's scheduling cursor
// is only a resumption hint.
type RecurringService struct {
	ruleRepo   *repository.RecurringRuleRepository
	runLogRepo *repository.RunLogRepository
	ledger     *LedgerService

	now func() time.Time
}

// NewRecurringService creates a new RecurringService with the provided dependencies.
func NewRecurringService(
	ruleRepo *repository.RecurringRuleRepository,
	runLogRepo *repository.RunLogRepository,
	ledger *LedgerService,
) *RecurringService {
	return &RecurringService{
		ruleRepo:   ruleRepo,
		runLogRepo: runLogRepo,
		ledger:     ledger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the service's time source and returns the service.
// Intended for tests that need deterministic rescheduling decisions.
func (s *RecurringService) WithClock(now func() time.Time) *RecurringService {
	s.now = now
	return s
}

// CreateRule validates and stores a new recurring rule, computing its first
// occurrence from the declared schedule.
//
// For a normal rule the referenced account and category must exist, be active
// and agree on transaction type. For a transfer rule the two accounts must be
// distinct, active and share a currency; the conflict is rejected before
// anything is persisted.
func (s *RecurringService) CreateRule(ctx context.Context, userID string, req request.CreateRecurringRuleRequest) (*model.RecurringRule, error) {
	switch req.Kind {
	case model.RuleKindNormal:
		if req.AccountID == nil || req.CategoryID == nil || req.Type == nil {
			return nil, apperrors.ErrInvalidRuleConfiguration
		}
		category, err := s.ledger.ResolveActiveCategory(ctx, userID, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		if _, err := s.ledger.ResolveActiveAccount(ctx, userID, *req.AccountID); err != nil {
			return nil, err
		}
		if err := validateTransactionType(category.Type, *req.Type); err != nil {
			return nil, err
		}
	case model.RuleKindTransfer:
		if req.FromAccountID == nil || req.ToAccountID == nil {
			return nil, apperrors.ErrInvalidRuleConfiguration
		}
		if *req.FromAccountID == *req.ToAccountID {
			return nil, apperrors.ErrTransferAccountConflict
		}
		from, err := s.ledger.ResolveActiveAccount(ctx, userID, *req.FromAccountID)
		if err != nil {
			return nil, err
		}
		to, err := s.ledger.ResolveActiveAccount(ctx, userID, *req.ToAccountID)
		if err != nil {
			return nil, err
		}
		if err := validateCurrency(from.Currency, to.Currency); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.ErrInvalidRuleConfiguration
	}

	startAt, err := repository.ParseTime(req.StartAt)
	if err != nil {
		return nil, err
	}
	var endAt *time.Time
	if req.EndAt != nil {
		parsed, err := repository.ParseTime(*req.EndAt)
		if err != nil {
			return nil, err
		}
		endAt = &parsed
	}

	dayOfWeek, dayOfMonth := ruleDays(req.DayOfWeek, req.DayOfMonth)
	nextRunAt, err := schedule.InitialNextRun(req.Cadence, dayOfWeek, dayOfMonth, startAt)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rule := &model.RecurringRule{
		ID:            uuid.New().String(),
		UserID:        userID,
		Kind:          req.Kind,
		AccountID:     req.AccountID,
		CategoryID:    req.CategoryID,
		Type:          req.Type,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Description:   req.Description,
		Cadence:       req.Cadence,
		DayOfWeek:     req.DayOfWeek,
		DayOfMonth:    req.DayOfMonth,
		StartAt:       startAt,
		EndAt:         endAt,
		NextRunAt:     nextRunAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// A schedule whose very first occurrence already falls past the end bound
	// starts out paused.
	if rule.EndAt != nil && !rule.NextRunAt.Before(*rule.EndAt) {
		rule.IsPaused = true
	}

	if err := s.ruleRepo.Insert(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create recurring rule: %w", err)
	}

	return rule, nil
}

// GetRule retrieves a single rule, scoped to the owner.
func (s *RecurringService) GetRule(ctx context.Context, userID, ruleID string) (model.RecurringRule, error) {
	return s.ruleRepo.Get(ctx, userID, ruleID)
}

// ListRules retrieves the owner's rules. A non-zero monthStart narrows the
// result to rules due within that calendar month.
func (s *RecurringService) ListRules(ctx context.Context, userID string, monthStart time.Time) ([]model.RecurringRule, error) {
	return s.ruleRepo.List(ctx, userID, monthStart)
}

// DeleteRule soft-deletes a rule, excluding it from future due scans while
// retaining its run log history for audit.
func (s *RecurringService) DeleteRule(ctx context.Context, userID, ruleID string) error {
	return s.ruleRepo.SoftDelete(ctx, userID, ruleID, s.now())
}

// ListRuns retrieves a rule's run log history in occurrence order. The rule
// lookup scopes the request to the owner before reading the journal.
func (s *RecurringService) ListRuns(ctx context.Context, userID, ruleID string) ([]model.RunLogEntry, error) {
	if _, err := s.ruleRepo.Get(ctx, userID, ruleID); err != nil {
		return nil, err
	}
	return s.runLogRepo.ListByRule(ctx, ruleID)
}

// UpdateRule patches a rule. Amount, description, endAt and isPaused are
// freely mutable. Editing cadence or day fields, or un-pausing a rule whose
// cursor already lies in the past, reschedules the rule from the present:
// occurrences missed while paused or mis-scheduled are deliberately forfeited,
// unlike the due-processor's catch-up.
//
//nolint:gocyclo // patch-merge plus reschedule policy
func (s *RecurringService) UpdateRule(ctx context.Context, userID, ruleID string, req request.UpdateRecurringRuleRequest) (*model.RecurringRule, error) {
	rule, err := s.ruleRepo.Get(ctx, userID, ruleID)
	if err != nil {
		return nil, err
	}

	if req.Amount != nil {
		rule.Amount = *req.Amount
	}
	if req.Description != nil {
		rule.Description = *req.Description
	}
	if req.EndAt != nil {
		if *req.EndAt == "" {
			rule.EndAt = nil
		} else {
			parsed, err := repository.ParseTime(*req.EndAt)
			if err != nil {
				return nil, err
			}
			rule.EndAt = &parsed
		}
	}

	scheduleChanged := false
	if req.Cadence != nil && *req.Cadence != rule.Cadence {
		rule.Cadence = *req.Cadence
		// The old day field belongs to the old cadence; the caller must
		// provide the one matching the new cadence.
		rule.DayOfWeek = nil
		rule.DayOfMonth = nil
		scheduleChanged = true
	}
	if req.DayOfWeek != nil {
		rule.DayOfWeek = req.DayOfWeek
		scheduleChanged = true
	}
	if req.DayOfMonth != nil {
		rule.DayOfMonth = req.DayOfMonth
		scheduleChanged = true
	}

	switch rule.Cadence {
	case model.CadenceWeekly:
		if rule.DayOfWeek == nil || rule.DayOfMonth != nil {
			return nil, apperrors.ErrInvalidRuleConfiguration
		}
	case model.CadenceMonthly:
		if rule.DayOfMonth == nil || rule.DayOfWeek != nil {
			return nil, apperrors.ErrInvalidRuleConfiguration
		}
	}

	now := s.now()
	unpausing := req.IsPaused != nil && !*req.IsPaused && rule.IsPaused
	if req.IsPaused != nil {
		rule.IsPaused = *req.IsPaused
	}

	if scheduleChanged || (unpausing && rule.NextRunAt.Before(now)) {
		dayOfWeek, dayOfMonth := ruleDays(rule.DayOfWeek, rule.DayOfMonth)
		rule.NextRunAt, err = schedule.NextFromNow(rule.Cadence, dayOfWeek, dayOfMonth, now)
		if err != nil {
			return nil, err
		}
	}

	if rule.EndAt != nil && !rule.NextRunAt.Before(*rule.EndAt) {
		rule.IsPaused = true
	}

	rule.UpdatedAt = now
	if err := s.ruleRepo.Update(ctx, &rule); err != nil {
		return nil, err
	}

	return &rule, nil
}

// ProcessDueRules runs one due-processing pass at the given instant: for every
// active rule whose next occurrence is due, it posts all missed occurrences in
// order, claiming each through the run log first.
//
// A run log uniqueness conflict means another invocation already posted the
// occurrence; the pass advances past it without posting and without error. A
// posting failure triggers a compensating delete of the just-claimed entry and
// aborts the pass, leaving the failed occurrence unclaimed for the next pass.
func (s *RecurringService) ProcessDueRules(ctx context.Context, now time.Time) (model.ProcessDueResult, error) {
	now = now.UTC()
	result := model.ProcessDueResult{}

	rules, err := s.ruleRepo.ListDue(ctx, now)
	if err != nil {
		return result, err
	}

	for i := range rules {
		runs, generated, err := s.processRule(ctx, &rules[i], now)
		result.ProcessedRuns += runs
		result.GeneratedTransactions += generated
		if runs > 0 || err == nil {
			result.ProcessedRules++
		}
		if err != nil {
			// Fail fast: a ledger fault mid-pass is operator-visible. State is
			// safe either way; the next pass resumes from the run log.
			return result, fmt.Errorf("rule %s: %w", rules[i].ID, err)
		}
	}

	log.Printf("due-rule pass complete: %d rules, %d runs, %d transactions",
		result.ProcessedRules, result.ProcessedRuns, result.GeneratedTransactions)

	return result, nil
}

// processRule walks one rule's missed occurrences up to now. Returns the
// number of occurrences posted and ledger transactions generated.
func (s *RecurringService) processRule(ctx context.Context, rule *model.RecurringRule, now time.Time) (int, int, error) {
	runs := 0
	generated := 0
	changed := false

	defer func() {
		if changed {
			rule.UpdatedAt = s.now()
			if err := s.ruleRepo.UpdateSchedule(ctx, rule); err != nil {
				log.Printf("failed to persist schedule for rule %s: %v", rule.ID, err)
			}
		}
	}()

	next := rule.NextRunAt
	for !next.After(now) {
		// Past the end bound: pause without posting this occurrence.
		if rule.EndAt != nil && !next.Before(*rule.EndAt) {
			rule.IsPaused = true
			changed = true
			return runs, generated, nil
		}

		entry := model.RunLogEntry{
			ID:          uuid.New().String(),
			RuleID:      rule.ID,
			UserID:      rule.UserID,
			ScheduledAt: next,
			CreatedAt:   s.now(),
		}

		err := s.runLogRepo.Insert(ctx, &entry)
		if errors.Is(err, apperrors.ErrOccurrenceAlreadyLogged) {
			// Another invocation claimed this occurrence. Advance past it.
			next = schedule.AdvanceOnce(next, rule.Cadence)
			rule.NextRunAt = next
			changed = true
			continue
		}
		if err != nil {
			return runs, generated, err
		}

		transactionIDs, err := s.postOccurrence(ctx, rule, next)
		if err != nil {
			// Compensating delete: the occurrence goes back to unclaimed and
			// is retried on the next pass. The cursor stays put.
			if deleteErr := s.runLogRepo.Delete(ctx, entry.ID); deleteErr != nil {
				log.Printf("failed to release claim %s for rule %s: %v", entry.ID, rule.ID, deleteErr)
			}
			return runs, generated, err
		}

		if err := s.runLogRepo.AttachTransactions(ctx, entry.ID, transactionIDs); err != nil {
			return runs, generated, err
		}

		occurrence := next
		rule.LastRunAt = &occurrence
		next = schedule.AdvanceOnce(next, rule.Cadence)
		rule.NextRunAt = next
		changed = true

		runs++
		generated += len(transactionIDs)
	}

	return runs, generated, nil
}

// postOccurrence books the ledger transactions for one occurrence of a rule:
// a single posting for a normal rule, a transfer pair for a transfer rule.
func (s *RecurringService) postOccurrence(ctx context.Context, rule *model.RecurringRule, occurredAt time.Time) ([]string, error) {
	switch rule.Kind {
	case model.RuleKindNormal:
		if rule.AccountID == nil || rule.CategoryID == nil || rule.Type == nil {
			return nil, apperrors.ErrInvalidRuleConfiguration
		}
		transaction, err := s.ledger.CreateTransaction(ctx, NormalPosting{
			UserID:      rule.UserID,
			AccountID:   *rule.AccountID,
			CategoryID:  *rule.CategoryID,
			Type:        *rule.Type,
			Amount:      rule.Amount,
			Description: rule.Description,
			OccurredAt:  occurredAt,
		})
		if err != nil {
			return nil, err
		}
		return []string{transaction.ID}, nil

	case model.RuleKindTransfer:
		if rule.FromAccountID == nil || rule.ToAccountID == nil {
			return nil, apperrors.ErrInvalidRuleConfiguration
		}
		legs, err := s.ledger.CreateTransferPair(ctx, TransferPosting{
			UserID:        rule.UserID,
			FromAccountID: *rule.FromAccountID,
			ToAccountID:   *rule.ToAccountID,
			Amount:        rule.Amount,
			Description:   rule.Description,
			OccurredAt:    occurredAt,
		})
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(legs))
		for i, leg := range legs {
			ids[i] = leg.ID
		}
		return ids, nil

	default:
		return nil, apperrors.ErrInvalidRuleConfiguration
	}
}

// ruleDays unwraps the optional day fields with neutral defaults for the
// cadence that does not use them.
func ruleDays(dayOfWeek, dayOfMonth *int) (int, int) {
	dow, dom := 0, 1
	if dayOfWeek != nil {
		dow = *dayOfWeek
	}
	if dayOfMonth != nil {
		dom = *dayOfMonth
	}
	return dow, dom
}
