package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/danielkmetz/ActivityPal-sub002/feed"
)

// GetFeed returns one page of the merged activity feed, filtered by the
// caller's hidden posts. Pagination is cursor-driven: pass the sortDate and
// id of the last real item from the previous page.
// GET /api/feed?limit=15&afterDate=<RFC3339>&afterId=<hex>
func (h *Handlers) GetFeed(c *gin.Context) {
	actor, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	limit := h.pageSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	var after *feed.Cursor
	if rawDate := c.Query("afterDate"); rawDate != "" {
		date, err := time.Parse(time.RFC3339, rawDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid afterDate"})
			return
		}
		id, err := primitive.ObjectIDFromHex(c.Query("afterId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid afterId"})
			return
		}
		after = &feed.Cursor{SortDate: date, ID: id}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	items, err := h.feed.Page(ctx, actor, limit, after)
	if err != nil {
		h.requestLog(c).Error("feed page failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":   items,
		"hasMore": len(items) >= limit,
	})
}
