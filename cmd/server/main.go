package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paystack-sync/internal/api"
	"paystack-sync/internal/config"
	"paystack-sync/internal/core"
	"paystack-sync/internal/db"
	"paystack-sync/internal/middleware"
	"paystack-sync/internal/paystack"
	"paystack-sync/pkg/cache"
	"paystack-sync/pkg/mailer"
	"paystack-sync/pkg/messagequeue"
)

func newLogger() (*zap.Logger, error) {
	if strings.EqualFold(os.Getenv("GIN_MODE"), "release") {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	// --- 1. Logger ---
	zapLogger, err := newLogger()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// --- 2. Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.")
	if appConfig.PaystackSecretKey == "" {
		zapLogger.Warn("PAYSTACK_SECRET_KEY is not set: webhooks will be answered with 500 and admin Paystack lists will fail")
	}

	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()

	// --- 3. Airtable repositories ---
	base, err := db.GetAirtableBase(appConfig)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to set up Airtable base", zap.Error(err))
	}

	// --- 4. Optional integrations ---
	var (
		eventRepo db.WebhookEventRepository
		verifier  middleware.TokenVerifier
	)
	if appConfig.FirebaseEnabled() {
		if err := db.InitFirestore(initCtx, appConfig, zapLogger); err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore and Firebase Admin SDK", zap.Error(err))
		}
		defer db.CloseFirestore()
		eventRepo = db.NewFirestoreWebhookEventRepository(db.GetFirestoreClient(), zapLogger)
		verifier = db.GetFirebaseAuthClient()
	} else {
		zapLogger.Warn("Firebase SKIPPED: FIREBASE_PROJECT_ID is not set; admin API and webhook event log are disabled")
	}

	var emailSender core.EmailSender
	if appConfig.MailEnabled() {
		m, err := mailer.New(mailer.Config{
			Host:     appConfig.SMTPHost,
			Port:     appConfig.SMTPPort,
			Username: appConfig.SMTPUsername,
			Password: appConfig.SMTPPassword,
			From:     appConfig.MailFrom,
		})
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Invalid SMTP configuration", zap.Error(err))
		}
		emailSender = m
	} else {
		zapLogger.Warn("Mailer SKIPPED: SMTP_HOST or MAIL_FROM is not set; donation confirmations will not be sent")
	}

	var listCache cache.Cache
	if appConfig.RedisAddress != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cache.NewRedisCacheConfig{
			Address:   appConfig.RedisAddress,
			Password:  appConfig.RedisPassword,
			DB:        appConfig.RedisDB,
			KeyPrefix: "paystack-sync:",
		})
		if err != nil {
			zapLogger.Warn("Redis unavailable; Paystack lists will not be cached", zap.Error(err))
		} else {
			defer redisCache.Close()
			listCache = redisCache
		}
	} else {
		zapLogger.Warn("Redis SKIPPED: REDIS_ADDRESS is not set; Paystack lists will not be cached")
	}

	webhookOpts := []core.WebhookOption{}
	if eventRepo != nil {
		webhookOpts = append(webhookOpts, core.WithEventLog(eventRepo))
	}
	if appConfig.RabbitMQURL != "" {
		queue, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL})
		if err != nil {
			zapLogger.Warn("RabbitMQ unavailable; webhook outcomes will not be published", zap.Error(err))
		} else {
			defer queue.Close()
			webhookOpts = append(webhookOpts, core.WithOutcomePublisher(queue, appConfig.RabbitMQQueue))
		}
	} else {
		zapLogger.Warn("RabbitMQ SKIPPED: RABBITMQ_URL is not set; webhook outcomes will not be published")
	}

	// --- 5. Services ---
	subscriberService := core.NewSubscriberService(base.Subscribers, zapLogger)
	subscriptionService := core.NewSubscriptionService(base.Subscriptions, base.Subscribers, zapLogger)
	donationService := core.NewDonationService(base.Donations, emailSender, zapLogger)
	webhookService := core.NewWebhookService(
		appConfig.PaystackSecretKey,
		subscriberService,
		subscriptionService,
		donationService,
		zapLogger,
		webhookOpts...,
	)

	var adminService core.AdminService
	if verifier != nil {
		adminService = core.NewAdminService(
			paystack.NewClient(appConfig.PaystackBaseURL, appConfig.PaystackSecretKey),
			listCache,
			appConfig.PaystackCacheTTL,
			donationService,
			subscriberService,
			eventRepo,
			zapLogger,
		)
	}
	zapLogger.Info("Core services initialized successfully.")

	// --- 6. Gin engine and global middleware ---
	if strings.EqualFold(appConfig.GinMode, "release") {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
		zapLogger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	} else {
		zapLogger.Warn("CORS Middleware SKIPPED: CLIENT_URL is not configured. The admin API will not be reachable from the dashboard.")
	}

	api.SetupRoutes(router, zapLogger, webhookService, adminService, verifier)

	// --- 7. HTTP server with graceful shutdown ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
		return
	}
	zapLogger.Info("Server exiting gracefully.")
}
