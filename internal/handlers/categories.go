package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"memestash/api/internal/middleware"
	"memestash/api/internal/service"
)

type categoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
	Icon        *string `json:"icon"`
}

func (h HandlerSet) CreateCategory(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	category, err := h.categories.Create(c.Request.Context(), user.ID, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Category created successfully",
		"category": toCategoryResponse(category),
	})
}

func (h HandlerSet) ListCategories(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	categories, err := h.categories.List(c.Request.Context(), user.ID, c.Query("search"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]categoryResponse, len(categories))
	for i, category := range categories {
		out[i] = toCategoryResponse(category)
	}
	c.JSON(http.StatusOK, out)
}

func (h HandlerSet) GetCategory(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	category, err := h.categories.Get(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryResponse(category))
}

type updateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
}

func (h HandlerSet) UpdateCategory(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	category, err := h.categories.Update(c.Request.Context(), c.Param("id"), user.ID, service.CategoryUpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Category updated successfully",
		"category": toCategoryResponse(category),
	})
}

func (h HandlerSet) DeleteCategory(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if err := h.categories.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// ListMemesByCategory checks ownership of the category, then reuses the
// filtered meme listing.
func (h HandlerSet) ListMemesByCategory(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	categoryID := c.Param("id")

	if _, err := h.categories.Get(c.Request.Context(), categoryID, user.ID); err != nil {
		h.respondError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	memes, pagination, err := h.memes.List(c.Request.Context(), user.ID, service.ListInput{
		CategoryID: categoryID,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"memes": toMemeResponses(memes),
		"pagination": paginationResponse{
			Total:      pagination.Total,
			Page:       pagination.Page,
			Limit:      pagination.Limit,
			TotalPages: pagination.TotalPages,
		},
	})
}
