package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"memestash/api/internal/apperr"
	"memestash/api/internal/models"
	"memestash/api/internal/service"
)

// respondError maps domain errors onto the HTTP status table. Anything
// unclassified is logged and surfaced as a generic 500 so internals never
// leak to the caller.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	if code, ok := apperr.CodeOf(err); ok {
		var status int
		switch code {
		case apperr.CodeValidation, apperr.CodeUnsupportedMediaType, apperr.CodePayloadTooLarge:
			status = http.StatusBadRequest
		case apperr.CodeNotFound, apperr.CodeFileMissing:
			status = http.StatusNotFound
		case apperr.CodeGone:
			status = http.StatusGone
		case apperr.CodeForbidden:
			status = http.StatusForbidden
		default:
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"message": err.Error()})
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	case errors.Is(err, service.ErrAccountDeactivated):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Account is deactivated"})
	default:
		h.log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

type categoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Color       string    `json:"color"`
	Icon        *string   `json:"icon"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type tagResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type memeResponse struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Description      *string            `json:"description"`
	FileType         string             `json:"fileType"`
	FileSize         int64              `json:"fileSize"`
	OriginalFilename string             `json:"originalFilename"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
	Categories       []categoryResponse `json:"categories,omitempty"`
	Tags             []tagResponse      `json:"tags,omitempty"`
}

type paginationResponse struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type shareLinkResponse struct {
	ID        string     `json:"id"`
	Token     string     `json:"token"`
	ShareURL  string     `json:"shareUrl"`
	ExpiresAt *time.Time `json:"expiresAt"`
	IsPublic  bool       `json:"isPublic"`
	CreatedAt time.Time  `json:"createdAt"`
}

func toCategoryResponse(c models.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toTagResponse(t models.Tag) tagResponse {
	return tagResponse{
		ID:        t.ID,
		Name:      t.Name,
		Color:     t.Color,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func toMemeResponse(m models.Meme) memeResponse {
	resp := memeResponse{
		ID:               m.ID,
		Title:            m.Title,
		Description:      m.Description,
		FileType:         m.ContentType,
		FileSize:         m.SizeBytes,
		OriginalFilename: m.OriginalFilename,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	for _, c := range m.Categories {
		resp.Categories = append(resp.Categories, toCategoryResponse(c))
	}
	for _, t := range m.Tags {
		resp.Tags = append(resp.Tags, toTagResponse(t))
	}
	return resp
}

func toMemeResponses(memes []models.Meme) []memeResponse {
	out := make([]memeResponse, len(memes))
	for i, m := range memes {
		out[i] = toMemeResponse(m)
	}
	return out
}

func (h HandlerSet) toShareLinkResponse(l models.ShareableLink) shareLinkResponse {
	return shareLinkResponse{
		ID:        l.ID,
		Token:     l.Token,
		ShareURL:  h.shares.ShareURL(l.Token),
		ExpiresAt: l.ExpiresAt,
		IsPublic:  l.IsPublic,
		CreatedAt: l.CreatedAt,
	}
}
