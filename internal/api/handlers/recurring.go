package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/middleware"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/request"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/response"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/apperrors"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/service"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/validation"
)

// RecurringHandler handles HTTP requests for recurring rule endpoints,
// including the internal trigger that runs a due-processing pass.
type RecurringHandler struct {
	recurringService *service.RecurringService
}

// NewRecurringHandler creates a new RecurringHandler with the provided service dependency.
func NewRecurringHandler(recurringService *service.RecurringService) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService}
}

// ListRules handles GET requests to retrieve the owner's recurring rules.
// An optional month query parameter (YYYY-MM) narrows the result to rules due
// within that calendar month.
//
// Endpoint: GET /api/recurring?month=2024-04
// Response: 200 OK with array of RecurringRule
// Error: 400 Bad Request if the month parameter is malformed
func (h *RecurringHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())

	var monthStart time.Time
	if month := r.URL.Query().Get("month"); month != "" {
		parsed, err := time.ParseInLocation("2006-01", month, time.UTC)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid month filter", "month must be formatted as YYYY-MM")
			return
		}
		monthStart = parsed
	}

	rules, err := h.recurringService.ListRules(r.Context(), ownerID, monthStart)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveRules.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, rules)
}

// CreateRule handles POST requests to declare a new recurring rule.
//
// Endpoint: POST /api/recurring
// Response: 201 Created with RecurringRule
// Error: 400 Bad Request if validation or a business rule fails
// Error: 404 Not Found if a referenced account or category does not exist
func (h *RecurringHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())

	req, err := parseJSON[request.CreateRecurringRuleRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateRecurringRule(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	rule, err := h.recurringService.CreateRule(r.Context(), ownerID, req)
	if err != nil {
		respondRuleError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, rule)
}

// GetRule handles GET requests to retrieve a single recurring rule by ID.
//
// Endpoint: GET /api/recurring/{uuid}
// Response: 200 OK with RecurringRule
// Error: 404 Not Found if the rule does not exist or is deleted
func (h *RecurringHandler) GetRule(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())
	ruleID := chi.URLParam(r, "uuid")

	rule, err := h.recurringService.GetRule(r.Context(), ownerID, ruleID)
	if err != nil {
		if errors.Is(err, apperrors.ErrRuleNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrRuleNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveRules.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, rule)
}

// UpdateRule handles PATCH requests to modify a recurring rule.
//
// Endpoint: PATCH /api/recurring/{uuid}
// Response: 200 OK with the updated RecurringRule
// Error: 400 Bad Request if validation fails or the merged schedule is incoherent
// Error: 404 Not Found if the rule does not exist or is deleted
func (h *RecurringHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())
	ruleID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.UpdateRecurringRuleRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateRecurringRule(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	rule, err := h.recurringService.UpdateRule(r.Context(), ownerID, ruleID, req)
	if err != nil {
		respondRuleError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, rule)
}

// DeleteRule handles DELETE requests to soft-delete a recurring rule. The
// rule's run log history is retained.
//
// Endpoint: DELETE /api/recurring/{uuid}
// Response: 204 No Content on success
// Error: 404 Not Found if the rule does not exist or is already deleted
func (h *RecurringHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())
	ruleID := chi.URLParam(r, "uuid")

	if err := h.recurringService.DeleteRule(r.Context(), ownerID, ruleID); err != nil {
		if errors.Is(err, apperrors.ErrRuleNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrRuleNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to delete recurring rule", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// ListRuns handles GET requests to retrieve a rule's run log history.
//
// Endpoint: GET /api/recurring/{uuid}/runs
// Response: 200 OK with array of RunLogEntry in occurrence order
// Error: 404 Not Found if the rule does not exist or is deleted
func (h *RecurringHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())
	ruleID := chi.URLParam(r, "uuid")

	entries, err := h.recurringService.ListRuns(r.Context(), ownerID, ruleID)
	if err != nil {
		if errors.Is(err, apperrors.ErrRuleNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrRuleNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveRules.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, entries)
}

// ProcessDue handles POST requests from the internal trigger to run one
// due-processing pass across all owners. Safe to invoke concurrently; the run
// log makes overlapping passes idempotent.
//
// Endpoint: POST /api/recurring/process-due
// Response: 200 OK with ProcessDueResult
// Error: 500 Internal Server Error if a pass aborts mid-way; counts reflect
// the work completed before the fault
func (h *RecurringHandler) ProcessDue(w http.ResponseWriter, r *http.Request) {
	result, err := h.recurringService.ProcessDueRules(r.Context(), time.Now().UTC())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToProcessDueRules.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// respondRuleError maps recurring rule errors onto HTTP statuses shared by the
// create and patch endpoints.
func respondRuleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrRuleNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrRuleNotFound.Error(), "")
	case errors.Is(err, apperrors.ErrAccountNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), "")
	case errors.Is(err, apperrors.ErrCategoryNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrCategoryNotFound.Error(), "")
	case errors.Is(err, apperrors.ErrInvalidRuleConfiguration),
		errors.Is(err, apperrors.ErrTransferAccountConflict),
		errors.Is(err, apperrors.ErrInvalidCategoryType),
		errors.Is(err, apperrors.ErrCurrencyMismatch),
		errors.Is(err, apperrors.ErrNonPositiveAmount):
		response.RespondError(w, http.StatusBadRequest, err.Error(), "")
	default:
		response.RespondError(w, http.StatusInternalServerError, "failed to save recurring rule", err.Error())
	}
}
