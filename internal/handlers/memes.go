package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"memestash/api/internal/media"
	"memestash/api/internal/middleware"
	"memestash/api/internal/service"
)

func (h HandlerSet) UploadMeme(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}
	defer file.Close()

	if header.Size > h.cfg.Upload.MaxBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": fmt.Sprintf("File too large. Maximum size is %dMB", h.cfg.Upload.MaxBytes/(1024*1024)),
		})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.Upload.MaxBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read uploaded file"})
		return
	}

	var description *string
	if d, ok := c.GetPostForm("description"); ok && d != "" {
		description = &d
	}

	meme, err := h.memes.Upload(c.Request.Context(), service.UploadInput{
		UserID:           user.ID,
		Title:            c.PostForm("title"),
		Description:      description,
		Data:             data,
		DeclaredType:     media.MimeTypeFromHTTP(http.Header(header.Header)),
		OriginalFilename: header.Filename,
		CategoryIDs:      splitList(c.PostForm("categoryIds")),
		TagNames:         splitList(c.PostForm("tags")),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Meme uploaded successfully",
		"meme":    toMemeResponse(meme),
	})
}

func (h HandlerSet) ListMemes(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	memes, pagination, err := h.memes.List(c.Request.Context(), user.ID, service.ListInput{
		Search:     c.Query("search"),
		CategoryID: c.Query("categoryId"),
		TagID:      c.Query("tagId"),
		SortBy:     c.DefaultQuery("sortBy", "createdAt"),
		SortOrder:  c.DefaultQuery("sortOrder", "desc"),
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

func (h HandlerSet) GetMeme(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	meme, err := h.memes.Get(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMemeResponse(meme))
}

type updateMemeRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	CategoryIDs *[]string `json:"categoryIds"`
	Tags        *[]string `json:"tags"`
}

func (h HandlerSet) UpdateMeme(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req updateMemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	meme, err := h.memes.Update(c.Request.Context(), c.Param("id"), user.ID, service.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryIDs: req.CategoryIDs,
		TagNames:    req.Tags,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Meme updated successfully",
		"meme":    toMemeResponse(meme),
	})
}

func (h HandlerSet) DeleteMeme(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if err := h.memes.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meme deleted successfully"})
}

func (h HandlerSet) GetMemeFile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	data, meme, err := h.memes.GetFile(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", meme.OriginalFilename))
	c.Data(http.StatusOK, meme.ContentType, data)
}

// splitList parses a comma-separated form value into trimmed entries.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
