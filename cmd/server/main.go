package main

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"

	"eventboard/config"
	_ "eventboard/docs"
	"eventboard/internal/adapters/auth"
	"eventboard/internal/adapters/storage"
	deliveryhttp "eventboard/internal/delivery/http"
	"eventboard/internal/delivery/http/controllers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/delivery/ws"
	"eventboard/internal/repository/postgres"
	"eventboard/internal/services"
)

const serviceTimeout = 10 * time.Second

// @title eventboard API
// @version 1.0
// @description Events management backend with real-time notifications.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	uploader, err := storage.NewImageUploader(storage.UploaderConfig{
		Provider: cfg.Uploader.Provider,
		S3: storage.S3Config{
			Bucket:          cfg.Uploader.Bucket,
			Region:          cfg.Uploader.Region,
			AccessKeyID:     cfg.Uploader.AccessKeyID,
			SecretAccessKey: cfg.Uploader.SecretAccessKey,
			PublicBaseURL:   cfg.Uploader.PublicBaseURL,
		},
	})
	if err != nil {
		logger.Error("failed to create image uploader", "err", err)
		os.Exit(1)
	}

	eventRepo := postgres.NewEventRepository(db)
	userRepo := postgres.NewUserRepository(db)

	jwtCodec := auth.NewJWTCodec(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(10)
	hub := ws.NewHub(logger)

	eventService := services.NewEventService(eventRepo, uploader, hub, serviceTimeout)
	authService := services.NewAuthService(userRepo, hasher, jwtCodec, cfg.JWTExpiry)

	eventController := controllers.NewEventController(logger, eventService)
	authController := controllers.NewAuthController(logger, authService)

	mux := deliveryhttp.NewRouter(eventController, authController, hub, jwtCodec)
	handler := middleware.CORS(cfg.AllowedOrigins,
		middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
	if err := server.ListenAndServe(); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
