package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielkmetz/ActivityPal-sub002/config"
	"github.com/danielkmetz/ActivityPal-sub002/handlers"
	"github.com/danielkmetz/ActivityPal-sub002/middleware"
)

func SetupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.PrometheusMiddleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:8081", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes (no auth required)
	router.GET("/api/vapid-public-key", h.VapidPublicKey)

	// Protected routes group
	protected := router.Group("/api")
	protected.Use(middleware.RateLimitMiddleware(120, time.Minute))
	protected.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	// Comment threads
	protected.POST("/posts/:postType/:postId/comments", h.AddComment)
	protected.POST("/posts/:postType/:postId/comments/:commentId/replies", h.AddReply)
	protected.PUT("/posts/:postType/:postId/comments/:commentId/like", h.ToggleCommentLike)
	protected.PATCH("/posts/:postType/:postId/comments/:commentId", h.EditComment)
	protected.DELETE("/posts/:postType/:postId/comments/:commentId", h.DeleteComment)

	// Post likes
	protected.POST("/posts/:postType/:postId/like", h.TogglePostLike)

	// Hidden posts
	protected.GET("/hidden", h.ListHidden)
	protected.GET("/hidden/keys", h.ListHiddenKeys)
	protected.POST("/hidden/:postType/:postId", h.HidePost)
	protected.DELETE("/hidden/:postType/:postId", h.UnhidePost)

	// Hidden tags
	protected.GET("/hidden-tags", h.ListHiddenTags)
	protected.GET("/hidden-tags/ids", h.ListHiddenTagIDs)
	protected.POST("/hidden-tags/:postType/:postId", h.HideTag)
	protected.DELETE("/hidden-tags/:postType/:postId", h.UnhideTag)

	// Feed
	protected.GET("/feed", h.GetFeed)

	// Notifications
	protected.GET("/notifications", h.ListNotifications)
	protected.POST("/notifications/:notificationId/read", h.MarkNotificationRead)
	protected.POST("/subscribe", h.Subscribe)

	// Media upload
	protected.POST("/media/upload-url", h.UploadURL)

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
