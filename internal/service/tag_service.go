package service

import (
	"context"
	"errors"
	"strings"

	"memestash/api/internal/apperr"
	"memestash/api/internal/ids"
	"memestash/api/internal/models"
	"memestash/api/internal/repository"
)

const defaultTagColor = "#a3a3a3"

type TagService struct {
	tags TagCatalog
}

func NewTagService(tags TagCatalog) *TagService {
	return &TagService{tags: tags}
}

type TagInput struct {
	Name  string
	Color string
}

func (s *TagService) Create(ctx context.Context, userID string, input TagInput) (models.Tag, error) {
	if strings.TrimSpace(input.Name) == "" {
		return models.Tag{}, apperr.Validation("Name is required")
	}

	tag := models.Tag{
		ID:     ids.New(),
		UserID: userID,
		Name:   input.Name,
		Color:  input.Color,
	}
	if tag.Color == "" {
		tag.Color = defaultTagColor
	}

	if err := s.tags.Create(ctx, tag); err != nil {
		return models.Tag{}, tagError(err)
	}
	return tag, nil
}

func (s *TagService) Get(ctx context.Context, id string, userID string) (models.Tag, error) {
	tag, err := s.tags.GetByOwner(ctx, id, userID)
	if err != nil {
		return models.Tag{}, tagError(err)
	}
	return tag, nil
}

type TagUpdateInput struct {
	Name  *string
	Color *string
}

func (s *TagService) Update(ctx context.Context, id string, userID string, input TagUpdateInput) (models.Tag, error) {
	tag, err := s.tags.GetByOwner(ctx, id, userID)
	if err != nil {
		return models.Tag{}, tagError(err)
	}

	if input.Name != nil && *input.Name != "" {
		tag.Name = *input.Name
	}
	if input.Color != nil && *input.Color != "" {
		tag.Color = *input.Color
	}

	if err := s.tags.Update(ctx, tag); err != nil {
		return models.Tag{}, tagError(err)
	}
	return tag, nil
}

func (s *TagService) Delete(ctx context.Context, id string, userID string) error {
	if err := s.tags.Delete(ctx, id, userID); err != nil {
		return tagError(err)
	}
	return nil
}

func (s *TagService) List(ctx context.Context, userID string, search string) ([]models.Tag, error) {
	return s.tags.List(ctx, userID, search)
}

func tagError(err error) error {
	switch {
	case errors.Is(err, repository.ErrTagNotFound):
		return apperr.NotFound("Tag not found")
	case errors.Is(err, repository.ErrTagNameTaken):
		return apperr.Validation("Tag with this name already exists")
	}
	return err
}
