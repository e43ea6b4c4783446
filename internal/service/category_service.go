package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"memestash/api/internal/apperr"
	"memestash/api/internal/ids"
	"memestash/api/internal/models"
	"memestash/api/internal/repository"
)

const defaultCategoryColor = "#6366f1"

type CategoryService struct {
	categories CategoryCatalog
}

func NewCategoryService(categories CategoryCatalog) *CategoryService {
	return &CategoryService{categories: categories}
}

type CategoryInput struct {
	Name        string
	Description *string
	Color       string
	Icon        *string
}

func (s *CategoryService) Create(ctx context.Context, userID string, input CategoryInput) (models.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return models.Category{}, apperr.Validation("Name is required")
	}

	// Fast-path duplicate check; the (user_id, name) unique index is the
	// actual guarantee under concurrency.
	taken, err := s.categories.NameExists(ctx, userID, input.Name, "")
	if err != nil {
		return models.Category{}, fmt.Errorf("check category name: %w", err)
	}
	if taken {
		return models.Category{}, apperr.Validation("Category with this name already exists")
	}

	category := models.Category{
		ID:          ids.New(),
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		Icon:        input.Icon,
	}
	if category.Color == "" {
		category.Color = defaultCategoryColor
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return models.Category{}, categoryError(err)
	}
	return category, nil
}

func (s *CategoryService) Get(ctx context.Context, id string, userID string) (models.Category, error) {
	category, err := s.categories.GetByOwner(ctx, id, userID)
	if err != nil {
		return models.Category{}, categoryError(err)
	}
	return category, nil
}

type CategoryUpdateInput struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
}

func (s *CategoryService) Update(ctx context.Context, id string, userID string, input CategoryUpdateInput) (models.Category, error) {
	category, err := s.categories.GetByOwner(ctx, id, userID)
	if err != nil {
		return models.Category{}, categoryError(err)
	}

	if input.Name != nil && *input.Name != "" && *input.Name != category.Name {
		taken, err := s.categories.NameExists(ctx, userID, *input.Name, id)
		if err != nil {
			return models.Category{}, fmt.Errorf("check category name: %w", err)
		}
		if taken {
			return models.Category{}, apperr.Validation("Category with this name already exists")
		}
		category.Name = *input.Name
	}
	if input.Description != nil {
		if *input.Description == "" {
			category.Description = nil
		} else {
			category.Description = input.Description
		}
	}
	if input.Color != nil && *input.Color != "" {
		category.Color = *input.Color
	}
	if input.Icon != nil {
		if *input.Icon == "" {
			category.Icon = nil
		} else {
			category.Icon = input.Icon
		}
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return models.Category{}, categoryError(err)
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string, userID string) error {
	if err := s.categories.Delete(ctx, id, userID); err != nil {
		return categoryError(err)
	}
	return nil
}

func (s *CategoryService) List(ctx context.Context, userID string, search string) ([]models.Category, error) {
	return s.categories.List(ctx, userID, search)
}

func categoryError(err error) error {
	switch {
	case errors.Is(err, repository.ErrCategoryNotFound):
		return apperr.NotFound("Category not found")
	case errors.Is(err, repository.ErrCategoryNameTaken):
		return apperr.Validation("Category with this name already exists")
	}
	return err
}
