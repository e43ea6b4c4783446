package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"memestash/api/internal/middleware"
	"memestash/api/internal/service"
)

type createShareLinkRequest struct {
	IsTemporary bool   `json:"isTemporary"`
	ExpiresIn   *int64 `json:"expiresIn"`
	IsPublic    *bool  `json:"isPublic"`
}

func (h HandlerSet) CreateShareLink(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req createShareLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	link, err := h.shares.CreateLink(c.Request.Context(), c.Param("id"), user.ID, service.CreateLinkInput{
		IsTemporary: req.IsTemporary,
		ExpiresIn:   req.ExpiresIn,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Shareable link generated successfully",
		"shareUrl":  h.shares.ShareURL(link.Token),
		"token":     link.Token,
		"expiresAt": link.ExpiresAt,
		"isPublic":  link.IsPublic,
	})
}

func (h HandlerSet) ListShareLinks(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	links, err := h.shares.ListLinks(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]shareLinkResponse, len(links))
	for i, link := range links {
		out[i] = h.toShareLinkResponse(link)
	}
	c.JSON(http.StatusOK, out)
}

func (h HandlerSet) ResolveShareLink(c *gin.Context) {
	requesterID := ""
	if user, ok := middleware.CurrentUser(c); ok {
		requesterID = user.ID
	}

	meme, link, err := h.shares.ResolveLink(c.Request.Context(), c.Param("token"), requesterID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"meme": toMemeResponse(meme),
		"shareInfo": gin.H{
			"createdAt": link.CreatedAt,
			"expiresAt": link.ExpiresAt,
			"isPublic":  link.IsPublic,
		},
	})
}

func (h HandlerSet) ResolveShareLinkFile(c *gin.Context) {
	requesterID := ""
	if user, ok := middleware.CurrentUser(c); ok {
		requesterID = user.ID
	}

	data, meme, err := h.shares.ResolveLinkFile(c.Request.Context(), c.Param("token"), requesterID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", meme.OriginalFilename))
	c.Data(http.StatusOK, meme.ContentType, data)
}

func (h HandlerSet) RevokeShareLink(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if err := h.shares.RevokeLink(c.Request.Context(), c.Param("token"), user.ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shareable link deleted successfully"})
}

// MemeMetadata serves the public, ownerless metadata view used for social
// share previews.
func (h HandlerSet) MemeMetadata(c *gin.Context) {
	meta, err := h.shares.Metadata(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}
