package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/danielkmetz/ActivityPal-sub002/storage"
)

type uploadURLRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// UploadURL mints a storage key for a new media object and a presigned PUT
// URL the client uploads to directly. The returned key is what comment and
// photo payloads reference.
// POST /api/media/upload-url
func (h *Handlers) UploadURL(c *gin.Context) {
	actor, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	if h.media == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Media storage is not configured"})
		return
	}
	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fileName and contentType are required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	key := storage.NewMediaKey(actor.Hex(), req.FileName)
	url, err := h.media.PresignPut(ctx, key, req.ContentType)
	if err != nil {
		h.requestLog(c).Error("presign upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload URL"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photoKey": key, "uploadUrl": url})
}
