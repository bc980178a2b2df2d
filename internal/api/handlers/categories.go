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

// CategoryHandler handles HTTP requests for category endpoints.
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler with the provided service dependency.
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// ListCategories handles GET requests to retrieve the owner's active categories.
//
// Endpoint: GET /api/category
// Response: 200 OK with array of Category
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())

	categories, err := h.categoryService.ListCategories(r.Context(), ownerID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveCategories.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, categories)
}

// CreateCategory handles POST requests to create a new category.
//
// Endpoint: POST /api/category
// Response: 201 Created with Category
// Error: 400 Bad Request if validation fails
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())

	req, err := parseJSON[request.CreateCategoryRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateCategory(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	category, err := h.categoryService.CreateCategory(r.Context(), ownerID, req)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create category", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, category)
}

// DeleteCategory handles DELETE requests to soft-delete a category.
//
// Endpoint: DELETE /api/category/{uuid}
// Response: 204 No Content on success
// Error: 404 Not Found if the category does not exist or is already deleted
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())
	categoryID := chi.URLParam(r, "uuid")

	if err := h.categoryService.DeleteCategory(r.Context(), ownerID, categoryID); err != nil {
		if errors.Is(err, apperrors.ErrCategoryNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrCategoryNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to delete category", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
