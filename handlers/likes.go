package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/danielkmetz/ActivityPal-sub002/comments"
	"github.com/danielkmetz/ActivityPal-sub002/notifications"
)

// TogglePostLike flips the caller's like on the post itself. The owner's
// like notification tracks the toggle with zero comment and reply ids so it
// never collides with comment-level likes by the same user.
// POST /api/posts/:postType/:postId/like
func (h *Handlers) TogglePostLike(c *gin.Context) {
	actor, actorName, ok := h.currentUser(c)
	if !ok {
		return
	}
	kind, postID, ok := parsePostRef(c)
	if !ok {
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

	liked := comments.ToggleLike(&post.Likes, actor, actorName)

	if err := h.saveArrays(ctx, kind, postID, bson.M{"likes": post.Likes}); err != nil {
		h.requestLog(c).Error("save likes failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
		return
	}

	key := notifications.Key{RelatedID: actor, TargetID: postID, PostType: kind}
	if err := h.notifs.LikeToggled(ctx, ownerRecipient(post), liked, key, actorName); err != nil {
		h.requestLog(c).Warn("like notification failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked, "likes": post.Likes})
}
