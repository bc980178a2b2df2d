package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/request"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/model"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/repository"
)

// CategoryService handles category-related business logic operations.
type CategoryService struct {
	categoryRepo *repository.CategoryRepository
}

// NewCategoryService creates a new CategoryService with the provided repository dependency.
func NewCategoryService(categoryRepo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CreateCategory creates a new category for the owner.
func (s *CategoryService) CreateCategory(ctx context.Context, userID string, req request.CreateCategoryRequest) (*model.Category, error) {
	category := &model.Category{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      strings.TrimSpace(req.Name),
		Type:      req.Type,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.categoryRepo.Insert(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// ListCategories retrieves the owner's active categories.
func (s *CategoryService) ListCategories(ctx context.Context, userID string) ([]model.Category, error) {
	return s.categoryRepo.List(ctx, userID)
}

// DeleteCategory soft-deletes a category.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	return s.categoryRepo.SoftDelete(ctx, userID, categoryID, time.Now().UTC())
}
