package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/middleware"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/request"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/response"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/apperrors"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/service"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/validation"
)

// AccountHandler handles HTTP requests for account endpoints.
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler with the provided service dependency.
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// ListAccounts handles GET requests to retrieve the owner's active accounts.
//
// Endpoint: GET /api/account
// Response: 200 OK with array of Account
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())

	accounts, err := h.accountService.ListAccounts(r.Context(), ownerID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAccounts.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, accounts)
}

// CreateAccount handles POST requests to create a new account.
//
// Endpoint: POST /api/account
// Response: 201 Created with Account
// Error: 400 Bad Request if validation fails
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())

	req, err := parseJSON[request.CreateAccountRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateAccount(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	account, err := h.accountService.CreateAccount(r.Context(), ownerID, req)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create account", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, account)
}

// GetAccount handles GET requests to retrieve a single account by ID.
//
// Endpoint: GET /api/account/{uuid}
// Response: 200 OK with Account
// Error: 404 Not Found if the account does not exist or is deleted
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())
	accountID := chi.URLParam(r, "uuid")

	account, err := h.accountService.GetAccount(r.Context(), ownerID, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAccounts.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// DeleteAccount handles DELETE requests to soft-delete an account.
//
// Endpoint: DELETE /api/account/{uuid}
// Response: 204 No Content on success
// Error: 404 Not Found if the account does not exist or is already deleted
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())
	accountID := chi.URLParam(r, "uuid")

	if err := h.accountService.DeleteAccount(r.Context(), ownerID, accountID); err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to delete account", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
