// File: convosched/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"convosched/config"
	"convosched/cron"
	"convosched/database"
	auditRepo "convosched/database/repository/audit"
	bookingRepo "convosched/database/repository/booking"
	calendarRepo "convosched/database/repository/calendar"
	"convosched/handlers"
	"convosched/middleware"
	"convosched/models"
	"convosched/routes"
	"convosched/services/dialogue"
	ai "convosched/services/intelligence"
	"convosched/services/scheduling"
	"convosched/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	transcriptRepo := auditRepo.NewMongoTranscriptRepo()
	calRepo := calendarRepo.NewMongoCalendarRepo()
	bkRepo := bookingRepo.NewMongoBookingRepo()

	// The oracle is optional refinement; without an API key the engine keeps
	// its rule-based ordering.
	var oracle scheduling.RankingOracle
	if key := config.AppConfig.GeminiAPIKey; key != "" {
		oracle = ai.NewGeminiRankingOracle(ai.NewGeminiClient(key))
	} else {
		logger.Sugar().Warn("main: GEMINI_API_KEY not set, ranking oracle disabled")
	}

	schedulingEngineInstance := &scheduling.DefaultSchedulingEngine{
		Calendar:        calRepo,
		Oracle:          oracle,
		CalendarTimeout: time.Duration(config.AppConfig.CalendarTimeoutSeconds) * time.Second,
		OracleTimeout:   time.Duration(config.AppConfig.OracleTimeoutSeconds) * time.Second,
		StepMinutes:     config.AppConfig.CandidateStepMinutes,
		TopN:            config.AppConfig.TopCandidates,
	}

	sessionTTL := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
	sessionStore := dialogue.NewRedisSessionStore(utils.GetSessionCacheClient(), sessionTTL)
	expiryScheduler := cron.NewAsynqExpiryScheduler()

	dialogueService := &dialogue.DefaultDialogueService{
		Store:       sessionStore,
		Extractor:   dialogue.NewPatternExtractor(),
		Corrections: dialogue.NewKeywordCorrectionDetector(),
		Engine:      schedulingEngineInstance,
		Sink:        bkRepo,
		Audit:       transcriptRepo,
		Expiry:      expiryScheduler,
		DefaultPrefs: models.Preferences{
			EarliestMinute: config.AppConfig.WorkDayStartMinute,
			LatestMinute:   config.AppConfig.WorkDayEndMinute,
		},
		SessionTTL: sessionTTL,
	}

	cron.InitExpiryWorker(sessionStore, transcriptRepo)

	dialogueHandler := handlers.NewDialogueHandler(dialogueService, logger)
	routes.RegisterRoutes(router, dialogueHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
