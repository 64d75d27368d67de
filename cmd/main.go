package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pitstop/pitstop-backend/internal/clients/gcp"
	redisclient "github.com/pitstop/pitstop-backend/internal/clients/redis"
	"github.com/pitstop/pitstop-backend/internal/db"
	"github.com/pitstop/pitstop-backend/internal/handlers"
	"github.com/pitstop/pitstop-backend/internal/logger"
	"github.com/pitstop/pitstop-backend/internal/middleware"
	"github.com/pitstop/pitstop-backend/internal/observability"
	"github.com/pitstop/pitstop-backend/internal/repos"
	"github.com/pitstop/pitstop-backend/internal/server"
	"github.com/pitstop/pitstop-backend/internal/services"
	"github.com/pitstop/pitstop-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Tracing
	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "pitstop-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "", log),
	})
	if shutdownOtel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOtel(shutdownCtx)
		}()
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Database
	dbService, err := db.NewService(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Warn("Database auto migration failed", "error", err)
	}
	gdb := dbService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(gdb, log)
	userTokenRepo := repos.NewUserTokenRepo(gdb, log)
	courseRepo := repos.NewCourseRepo(gdb, log)
	topicRatingRepo := repos.NewTopicRatingRepo(gdb, log)
	studySessionRepo := repos.NewStudySessionRepo(gdb, log)
	syncRunRepo := repos.NewSyncRunRepo(gdb, log)

	// Clients
	log.Info("Setting up clients from main...")
	document, err := gcp.NewDocument(ctx, log)
	if err != nil {
		log.Error("Could not init Document AI client", "error", err)
		os.Exit(1)
	}
	defer document.Close()

	locker, err := redisclient.NewSyncLock(log)
	if err != nil {
		log.Warn("Redis unavailable, concurrent syncs will not be serialized", "error", err)
		locker = nil
	}

	// Services
	log.Info("Setting up services from main...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService, syllabus files will not be archived", "error", err)
		bucketService = nil
	}
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	authService := services.NewAuthService(gdb, log, userRepo, userTokenRepo, jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	googleAuthService, err := services.NewGoogleAuthService(log, userRepo)
	if err != nil {
		log.Error("Could not init GoogleAuthService", "error", err)
		os.Exit(1)
	}
	syllabusService := services.NewSyllabusService(gdb, log, document, bucketService, openaiClient, courseRepo)
	ratingService := services.NewRatingService(gdb, log, topicRatingRepo)
	scheduleService := services.NewScheduleService(gdb, log, courseRepo, ratingService, studySessionRepo)
	reconciler := services.NewReconciler(log, locker)
	syncService, err := services.NewCalendarSyncService(gdb, log, reconciler, googleAuthService,
		courseRepo, studySessionRepo, syncRunRepo)
	if err != nil {
		log.Error("Could not init CalendarSyncService", "error", err)
		os.Exit(1)
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	googleAuthHandler := handlers.NewGoogleAuthHandler(googleAuthService)
	syllabusHandler := handlers.NewSyllabusHandler(log, syllabusService)
	ratingHandler := handlers.NewRatingHandler(ratingService, syllabusService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	syncHandler := handlers.NewSyncHandler(syncService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:       authHandler,
		AuthMiddleware:    authMiddleware,
		GoogleAuthHandler: googleAuthHandler,
		SyllabusHandler:   syllabusHandler,
		RatingHandler:     ratingHandler,
		ScheduleHandler:   scheduleHandler,
		SyncHandler:       syncHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
