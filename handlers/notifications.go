package handlers

import (
	"context"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/danielkmetz/ActivityPal-sub002/notifications"
)

// recipient resolves which notification store the request targets. Business
// accounts pass ?account=business; everyone else reads their user document.
func (h *Handlers) recipient(c *gin.Context) (notifications.Recipient, bool) {
	actor, _, ok := h.currentUser(c)
	if !ok {
		return notifications.Recipient{}, false
	}
	return notifications.Recipient{
		ID:         actor,
		IsBusiness: c.Query("account") == "business",
	}, true
}

// ListNotifications returns the caller's notifications, newest first.
// GET /api/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	r, ok := h.recipient(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	items, err := h.notifs.List(ctx, r)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		h.requestLog(c).Error("list notifications failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// MarkNotificationRead flags a single notification as read.
// POST /api/notifications/:notificationId/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	r, ok := h.recipient(c)
	if !ok {
		return
	}
	notifID, err := primitive.ObjectIDFromHex(c.Param("notificationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.notifs.MarkRead(ctx, r, notifID); err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		h.requestLog(c).Error("mark notification read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// Subscribe stores the caller's web-push subscription, replacing any
// previous one for the same user.
// POST /api/subscribe
func (h *Handlers) Subscribe(c *gin.Context) {
	actor, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	if h.push == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Push notifications are not configured"})
		return
	}
	var sub webpush.Subscription
	if err := c.ShouldBindJSON(&sub); err != nil || sub.Endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.push.Subscribe(ctx, actor, sub); err != nil {
		h.requestLog(c).Error("store push subscription failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save subscription"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed"})
}

// VapidPublicKey hands clients the key they need to subscribe. Public route.
// GET /vapid-public-key
func (h *Handlers) VapidPublicKey(c *gin.Context) {
	if h.push == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Push notifications are not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": h.push.PublicKey()})
}
