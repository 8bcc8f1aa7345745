package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/danielkmetz/ActivityPal-sub002/hidden"
)

// HidePost records that the caller no longer wants to see the post.
// Re-hiding an already hidden post is a no-op.
// POST /api/hidden/:postType/:postId
func (h *Handlers) HidePost(c *gin.Context) {
	actor, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	kind, postID, ok := parsePostRef(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.hidden.Hide(ctx, actor, kind, postID); err != nil {
		h.requestLog(c).Error("hide post failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hide post"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post hidden"})
}

// UnhidePost restores a previously hidden post to the caller's feed.
// DELETE /api/hidden/:postType/:postId
func (h *Handlers) UnhidePost(c *gin.Context) {
	actor, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	kind, postID, ok := parsePostRef(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.hidden.Unhide(ctx, actor, kind, postID); err != nil {
		h.requestLog(c).Error("unhide post failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unhide post"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post restored"})
}

// ListHidden returns the caller's hidden-post rows, newest first.
// GET /api/hidden
func (h *Handlers) ListHidden(c *gin.Context) {
	actor, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	rows, err := h.hidden.List(ctx, actor)
	if err != nil {
		h.requestLog(c).Error("list hidden failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch hidden posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hiddenPosts": rows})
}

// ListHiddenKeys returns just the (postType, postId) pairs for clients that
// filter locally.
// GET /api/hidden/keys
func (h *Handlers) ListHiddenKeys(c *gin.Context) {
	actor, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	keys, err := h.hidden.Keys(ctx, actor)
	if err != nil {
		h.requestLog(c).Error("list hidden keys failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch hidden posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// HideTag removes the caller's tag association with a post they appear in.
// The caller must actually be tagged, either on the post or in a photo.
// POST /api/hidden-tags/:postType/:postId
func (h *Handlers) HideTag(c *gin.Context) {
	actor, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	kind, postID, ok := parsePostRef(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	err := h.hidden.HideTag(ctx, actor, kind, postID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Tag hidden"})
	case errors.Is(err, hidden.ErrNotTagged):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You are not tagged in this post"})
	case hidden.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
	default:
		h.requestLog(c).Error("hide tag failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hide tag"})
	}
}

// UnhideTag restores the caller's tag association.
// DELETE /api/hidden-tags/:postType/:postId
func (h *Handlers) UnhideTag(c *gin.Context) {
	actor, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	kind, postID, ok := parsePostRef(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.hidden.UnhideTag(ctx, actor, kind, postID); err != nil {
		h.requestLog(c).Error("unhide tag failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unhide tag"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tag restored"})
}

// ListHiddenTagIDs returns just the post ids whose tags the caller hid, for
// clients that strip tag badges locally.
// GET /api/hidden-tags/ids
func (h *Handlers) ListHiddenTagIDs(c *gin.Context) {
	actor, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	set, err := h.hidden.TagIDs(ctx, actor)
	if err != nil {
		h.requestLog(c).Error("list hidden tag ids failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch hidden tags"})
		return
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id.Hex())
	}
	c.JSON(http.StatusOK, gin.H{"ids": ids})
}

// ListHiddenTags returns the caller's hidden-tag rows.
// GET /api/hidden-tags
func (h *Handlers) ListHiddenTags(c *gin.Context) {
	actor, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	rows, err := h.hidden.ListTags(ctx, actor)
	if err != nil {
		h.requestLog(c).Error("list hidden tags failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch hidden tags"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hiddenTags": rows})
}
