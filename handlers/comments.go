package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/danielkmetz/ActivityPal-sub002/comments"
	"github.com/danielkmetz/ActivityPal-sub002/models"
	"github.com/danielkmetz/ActivityPal-sub002/notifications"
)

type commentRequest struct {
	CommentText string           `json:"commentText"`
	Media       *models.MediaRef `json:"media"`
}

// AddComment appends a top-level comment to the post's thread.
// POST /api/posts/:postType/:postId/comments
func (h *Handlers) AddComment(c *gin.Context) {
	actor, actorName, ok := h.currentUser(c)
	if !ok {
		return
	}
	kind, postID, ok := parsePostRef(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := comments.Validate(req.CommentText, req.Media); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	post, err := h.loadPost(ctx, kind, postID)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		h.requestLog(c).Error("load post failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}

	node := comments.New(actor, actorName, req.CommentText, req.Media)
	post.Comments = append(post.Comments, node)

	if err := h.saveArrays(ctx, kind, postID, bson.M{"comments": post.Comments}); err != nil {
		h.requestLog(c).Error("save comments failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}

	if err := h.notifs.CommentAdded(ctx, ownerRecipient(post), models.NotificationComment,
		actor, actorName, kind, postID, node.ID, primitive.NilObjectID); err != nil {
		h.requestLog(c).Warn("comment notification failed", zap.Error(err))
	}

	h.presignComment(ctx, &node)
	c.JSON(http.StatusCreated, gin.H{"message": "Comment added", "comment": node})
}

// AddReply nests a reply under any comment or reply in the thread. The
// immediate parent's author is notified, not the post owner.
// POST /api/posts/:postType/:postId/comments/:commentId/replies
func (h *Handlers) AddReply(c *gin.Context) {
	actor, actorName, ok := h.currentUser(c)
	if !ok {
		return
	}
	kind, postID, ok := parsePostRef(c)
	if !ok {
		return
	}
	parentID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := comments.Validate(req.CommentText, req.Media); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	post, err := h.loadPost(ctx, kind, postID)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		h.requestLog(c).Error("load post failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add reply"})
		return
	}

	node := comments.New(actor, actorName, req.CommentText, req.Media)
	parent := comments.InsertReply(&post.Comments, parentID, node)
	if parent == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if err := h.saveArrays(ctx, kind, postID, bson.M{"comments": post.Comments}); err != nil {
		h.requestLog(c).Error("save comments failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add reply"})
		return
	}

	recipient := notifications.Recipient{ID: parent.Node.UserID}
	if err := h.notifs.CommentAdded(ctx, recipient, models.NotificationReply,
		actor, actorName, kind, postID, parent.TopLevelID, node.ID); err != nil {
		h.requestLog(c).Warn("reply notification failed", zap.Error(err))
	}

	h.presignComment(ctx, &node)
	c.JSON(http.StatusCreated, gin.H{"message": "Reply added", "reply": node})
}

// ToggleCommentLike flips the caller's like on a comment or reply and keeps
// the author's like notification in sync with the new state.
// PUT /api/posts/:postType/:postId/comments/:commentId/like
func (h *Handlers) ToggleCommentLike(c *gin.Context) {
	actor, actorName, ok := h.currentUser(c)
	if !ok {
		return
	}
	kind, postID, ok := parsePostRef(c)
	if !ok {
		return
	}
	commentID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	post, err := h.loadPost(ctx, kind, postID)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		h.requestLog(c).Error("load post failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
		return
	}

	found := comments.Find(&post.Comments, commentID)
	if found == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	liked := comments.ToggleLike(&found.Node.Likes, actor, actorName)

	if err := h.saveArrays(ctx, kind, postID, bson.M{"comments": post.Comments}); err != nil {
		h.requestLog(c).Error("save comments failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
		return
	}

	key := notifications.Key{
		RelatedID: actor,
		TargetID:  postID,
		CommentID: found.TopLevelID,
		ReplyID:   commentID,
		PostType:  kind,
	}
	recipient := notifications.Recipient{ID: found.Node.UserID}
	if err := h.notifs.LikeToggled(ctx, recipient, liked, key, actorName); err != nil {
		h.requestLog(c).Warn("like notification failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked, "likes": found.Node.Likes})
}

// EditComment replaces a node's text and optionally swaps or detaches its
// media. Only the author or the post owner may edit.
// PATCH /api/posts/:postType/:postId/comments/:commentId
func (h *Handlers) EditComment(c *gin.Context) {
	actor, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	kind, postID, ok := parsePostRef(c)
	if !ok {
		return
	}
	commentID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	post, err := h.loadPost(ctx, kind, postID)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		h.requestLog(c).Error("load post failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to edit comment"})
		return
	}

	found := comments.Find(&post.Comments, commentID)
	if found == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if actor != found.Node.UserID && actor != post.OwnerID() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to edit this comment"})
		return
	}

	edit, edited := comments.Edit(&post.Comments, commentID, req.CommentText, req.Media)
	if !edited {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if err := comments.Validate(edit.Node.CommentText, edit.Node.Media); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.saveArrays(ctx, kind, postID, bson.M{"comments": post.Comments}); err != nil {
		h.requestLog(c).Error("save comments failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to edit comment"})
		return
	}

	if edit.OldMediaKey != "" {
		h.media.DeleteMedia(ctx, []string{edit.OldMediaKey})
	}

	h.presignComment(ctx, edit.Node)
	c.JSON(http.StatusOK, gin.H{"message": "Comment updated", "comment": edit.Node})
}

// DeleteComment removes a node and its entire reply subtree, then cleans up
// the stranded notifications and media. Only the author or the post owner may
// delete.
// DELETE /api/posts/:postType/:postId/comments/:commentId
func (h *Handlers) DeleteComment(c *gin.Context) {
	actor, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	kind, postID, ok := parsePostRef(c)
	if !ok {
		return
	}
	commentID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	post, err := h.loadPost(ctx, kind, postID)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		h.requestLog(c).Error("load post failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	found := comments.Find(&post.Comments, commentID)
	if found == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if actor != found.Node.UserID && actor != post.OwnerID() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this comment"})
		return
	}

	result, removed := comments.Delete(&post.Comments, commentID)
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if err := h.saveArrays(ctx, kind, postID, bson.M{"comments": post.Comments}); err != nil {
		h.requestLog(c).Error("save comments failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	h.notifs.CleanupAfterDelete(ctx, kind, postID, result.RemovedIDs, result.TopLevelID, result.WasTopLevel)
	h.media.DeleteMedia(ctx, result.RemovedMediaKeys)

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted", "deletedIds": result.RemovedIDs})
}
