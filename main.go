package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/danielkmetz/ActivityPal-sub002/config"
	"github.com/danielkmetz/ActivityPal-sub002/database"
	"github.com/danielkmetz/ActivityPal-sub002/feed"
	"github.com/danielkmetz/ActivityPal-sub002/handlers"
	"github.com/danielkmetz/ActivityPal-sub002/hidden"
	"github.com/danielkmetz/ActivityPal-sub002/logger"
	"github.com/danielkmetz/ActivityPal-sub002/notifications"
	"github.com/danielkmetz/ActivityPal-sub002/routes"
	"github.com/danielkmetz/ActivityPal-sub002/storage"
)

func main() {
	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Close()
	log := logger.Log

	if cfg.JWTSecret == "" || cfg.MongoURI == "" {
		log.Fatal("JWT_SECRET and MONGODB_URI must be set")
	}

	// Connect with retry; cold-started Mongo containers need a moment.
	var store *database.Store
	var dbErr error
	for i := 1; i <= 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, dbErr = database.Connect(ctx, cfg.MongoURI, cfg.DBName)
		cancel()
		if dbErr == nil {
			break
		}
		log.Warn("mongodb connection attempt failed", zap.Int("attempt", i), zap.Error(dbErr))
		time.Sleep(2 * time.Second)
	}
	if dbErr != nil {
		log.Fatal("failed to connect to mongodb", zap.Error(dbErr))
	}
	log.Info("mongodb connected", zap.String("database", cfg.DBName))

	s3, err := storage.New(context.Background(), cfg.S3Region, cfg.S3Bucket, log)
	if err != nil {
		log.Fatal("failed to initialize s3", zap.Error(err))
	}
	if s3 == nil {
		log.Warn("s3 bucket not configured, media features disabled")
	}

	push := notifications.NewPush(store, cfg.VapidPublicKey, cfg.VapidPrivateKey, cfg.VapidSubscriber, log)
	if push == nil {
		log.Warn("vapid keys not configured, web push disabled")
	}
	notifs := notifications.NewManager(store, push, log)
	hiddenSvc := hidden.NewService(store)
	feedSvc := feed.NewService(store, hiddenSvc, s3, log)

	h := handlers.New(store, notifs, push, hiddenSvc, feedSvc, s3, log, cfg.FeedPageSize)
	router := routes.SetupRouter(h, &cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Error("mongodb disconnect failed", zap.Error(err))
	}
	log.Info("server stopped")
}
