package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/config"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/cryptoutil"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/database"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/handlers"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/logger"
	authmw "github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/middleware"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/models"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		zlog.Fatal("Failed to run migrations", zap.Error(err))
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry)
	keyring := cryptoutil.NewKeyring(cfg.EncryptionKey, cfg.EncryptionSalt)
	credentialService := services.NewCredentialService(db, cfg, zlog)
	referenceService := services.NewReferenceService(zlog, 0, nil)
	bookingService := services.NewBookingService(db, referenceService, keyring)

	credentialHandler := handlers.NewCredentialHandler(credentialService)
	bookingHandler := handlers.NewBookingHandler(bookingService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	admin := api.Group("/admin")
	admin.Use(authmw.AdminAuth(jwtService))
	admin.Post("/keys", credentialHandler.Create)
	admin.Get("/keys", credentialHandler.List)
	admin.Post("/keys/:id/rotate", credentialHandler.Rotate)
	admin.Delete("/keys/:id", credentialHandler.Deactivate)
	admin.Post("/keys/cleanup", credentialHandler.Cleanup)

	bookings := api.Group("/bookings")
	bookings.Use(authmw.APIKeyAuth(credentialService, models.EndpointBookings))
	bookings.Post("", bookingHandler.Create)
	bookings.Get("/:reference", bookingHandler.GetByReference)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			deleted, err := credentialService.CleanupExpired(context.Background())
			if err != nil {
				zlog.Error("credential cleanup failed", zap.Error(err))
				continue
			}
			if deleted > 0 {
				zlog.Info("purged retired credentials", zap.Int64("deleted", deleted))
			}
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		zlog.Info("Server starting", zap.String("addr", addr))
		if err := app.Run(addr); err != nil {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server...")
}
