// File: chairtime/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chairtime/config"
	"chairtime/cron"
	"chairtime/database"
	bookingRepo "chairtime/database/repository/booking"
	"chairtime/handlers"
	"chairtime/middleware"
	"chairtime/routes"
	"chairtime/services/booking"
	"chairtime/services/calendar"
	"chairtime/services/conversation"
	"chairtime/services/intent"
	"chairtime/services/messenger"
	"chairtime/services/response"
	"chairtime/services/router"
	"chairtime/services/tasks"
	"chairtime/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	location, err := time.LoadLocation(config.AppConfig.BusinessTimezone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid business timezone %q: %v", config.AppConfig.BusinessTimezone, err)
	}

	hours, err := booking.ParseBusinessHours(config.AppConfig.BusinessHoursStart, config.AppConfig.BusinessHoursEnd)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid business hours: %v", err)
	}

	calendarSvc, err := calendar.NewGoogleCalendarService(
		context.Background(),
		config.AppConfig.GoogleCredentialsPath,
		config.AppConfig.GoogleCalendarID,
		config.AppConfig.BusinessTimezone,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize calendar service: %v", err)
	}

	// Repositories.
	bookings := bookingRepo.NewMongoBookingRepo()

	// Reminder queue.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	defer asynqClient.Close()

	reminderScheduler := &tasks.AsynqReminderScheduler{
		Client:      asynqClient,
		LeadMinutes: config.AppConfig.ReminderLeadMinutes,
	}

	// Services.
	engine := &booking.DefaultEngine{
		Calendar:       calendarSvc,
		Repo:           bookings,
		Reminders:      reminderScheduler,
		Hours:          hours,
		MaxSuggestions: config.AppConfig.MaxSuggestedSlots,
		Location:       location,
	}

	var classifier intent.Classifier
	if config.AppConfig.OpenAIAPIKey != "" {
		classifier = intent.NewOpenAIClassifier(
			config.AppConfig.OpenAIAPIKey,
			config.AppConfig.OpenAIBaseURL,
			config.AppConfig.OpenAIModel,
			config.AppConfig.BusinessName,
			location,
		)
	} else {
		logger.Sugar().Warn("main: no language model API key configured, using keyword classifier")
		classifier = intent.NewKeywordClassifier()
	}

	responses := response.NewGenerator(config.AppConfig.BusinessName, hours.Describe())
	convoStore := conversation.NewRedisStore(utils.GetContextCacheClient(), 30*time.Minute)

	msgRouter := &router.DefaultRouter{
		Classifier:         classifier,
		Engine:             engine,
		Responses:          responses,
		Store:              convoStore,
		DefaultServiceType: config.AppConfig.DefaultServiceType,
		DurationMinutes:    config.AppConfig.AppointmentDuration,
		Location:           location,
	}

	messengerSvc := messenger.NewInstagramService(
		config.AppConfig.GraphAPIBaseURL,
		config.AppConfig.GraphAPIVersion,
		config.AppConfig.PageAccessToken,
	)

	// Background reminder worker.
	cron.InitReminderWorker(messengerSvc)

	utils.StartHealthMonitor(
		map[string]*redis.Client{
			"cache":   utils.GetCacheClient(),
			"context": utils.GetContextCacheClient(),
		},
		database.MongoClient,
	)

	// Handlers.
	webhookHandler := handlers.NewWebhookHandler(msgRouter, messengerSvc, responses, config.AppConfig.VerifyToken)
	handlerBundle := &handlers.HandlerBundle{
		VerifyWebhookHandler:  webhookHandler.VerifyWebhookHandler,
		ReceiveWebhookHandler: webhookHandler.ReceiveWebhookHandler,
		HealthHandler:         handlers.HealthHandler,
	}

	// Create the Gin router.
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(utils.ErrorHandler())
	ginRouter.Use(gin.Logger())
	ginRouter.Use(middleware.RateLimitMiddleware())

	routes.RegisterRoutes(ginRouter, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: ginRouter,
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
