package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/middleware"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/request"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/response"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/apperrors"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/repository"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/service"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/validation"
)

// TransactionHandler handles HTTP requests for ledger transaction endpoints.
type TransactionHandler struct {
	ledgerService *service.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(ledgerService *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

// ListTransactions handles GET requests to retrieve the owner's transactions.
// An optional account query parameter narrows the result to one account.
//
// Endpoint: GET /api/transaction?account={uuid}
// Response: 200 OK with array of Transaction
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())
	accountID := r.URL.Query().Get("account")

	transactions, err := h.ledgerService.ListTransactions(r.Context(), ownerID, accountID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// CreateTransaction handles POST requests to book a single normal posting.
//
// Endpoint: POST /api/transaction
// Response: 201 Created with Transaction
// Error: 400 Bad Request if validation or a business rule fails
// Error: 404 Not Found if the account or category does not exist
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())

	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	occurredAt, err := repository.ParseTime(req.OccurredAt)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	transaction, err := h.ledgerService.CreateTransaction(r.Context(), service.NormalPosting{
		UserID:      ownerID,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		OccurredAt:  occurredAt,
	})
	if err != nil {
		respondPostingError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}

// CreateTransfer handles POST requests to book a transfer pair between two
// accounts.
//
// Endpoint: POST /api/transaction/transfer
// Response: 201 Created with the two Transaction legs
// Error: 400 Bad Request if validation or a business rule fails
// Error: 404 Not Found if either account does not exist
func (h *TransactionHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())

	req, err := parseJSON[request.CreateTransferRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransfer(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	occurredAt, err := repository.ParseTime(req.OccurredAt)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	legs, err := h.ledgerService.CreateTransferPair(r.Context(), service.TransferPosting{
		UserID:        ownerID,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Description:   req.Description,
		OccurredAt:    occurredAt,
	})
	if err != nil {
		respondPostingError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, legs)
}

// GetTransaction handles GET requests to retrieve a single transaction by ID.
//
// Endpoint: GET /api/transaction/{uuid}
// Response: 200 OK with Transaction
// Error: 404 Not Found if the transaction does not exist or is deleted
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())
	transactionID := chi.URLParam(r, "uuid")

	transaction, err := h.ledgerService.GetTransaction(r.Context(), ownerID, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// DeleteTransaction handles DELETE requests to soft-delete a transaction.
//
// Endpoint: DELETE /api/transaction/{uuid}
// Response: 204 No Content on success
// Error: 404 Not Found if the transaction does not exist or is already deleted
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())
	transactionID := chi.URLParam(r, "uuid")

	if err := h.ledgerService.DeleteTransaction(r.Context(), ownerID, transactionID); err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to delete transaction", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// respondPostingError maps posting engine errors onto HTTP statuses shared by
// the transaction and transfer endpoints.
func respondPostingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrAccountNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), "")
	case errors.Is(err, apperrors.ErrCategoryNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrCategoryNotFound.Error(), "")
	case errors.Is(err, apperrors.ErrNonPositiveAmount),
		errors.Is(err, apperrors.ErrInvalidCategoryType),
		errors.Is(err, apperrors.ErrCurrencyMismatch),
		errors.Is(err, apperrors.ErrTransferAccountConflict):
		response.RespondError(w, http.StatusBadRequest, err.Error(), "")
	default:
		response.RespondError(w, http.StatusInternalServerError, "failed to create transaction", err.Error())
	}
}
