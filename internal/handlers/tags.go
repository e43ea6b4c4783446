package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"memestash/api/internal/middleware"
	"memestash/api/internal/service"
)

type tagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h HandlerSet) CreateTag(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	tag, err := h.tags.Create(c.Request.Context(), user.ID, service.TagInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Tag created successfully",
		"tag":     toTagResponse(tag),
	})
}

func (h HandlerSet) ListTags(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	tags, err := h.tags.List(c.Request.Context(), user.ID, c.Query("search"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]tagResponse, len(tags))
	for i, tag := range tags {
		out[i] = toTagResponse(tag)
	}
	c.JSON(http.StatusOK, out)
}

func (h HandlerSet) GetTag(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	tag, err := h.tags.Get(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTagResponse(tag))
}

type updateTagRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (h HandlerSet) UpdateTag(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req updateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	tag, err := h.tags.Update(c.Request.Context(), c.Param("id"), user.ID, service.TagUpdateInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tag updated successfully",
		"tag":     toTagResponse(tag),
	})
}

func (h HandlerSet) DeleteTag(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if err := h.tags.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted successfully"})
}

func (h HandlerSet) ListMemesByTag(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	tagID := c.Param("id")

	if _, err := h.tags.Get(c.Request.Context(), tagID, user.ID); err != nil {
		h.respondError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	memes, pagination, err := h.memes.List(c.Request.Context(), user.ID, service.ListInput{
		TagID: tagID,
		Page:  page,
		Limit: limit,
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
