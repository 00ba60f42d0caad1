package app

import (
	"fmt"
	"time"

	"ged_backend/internal/auth"
	"ged_backend/internal/config"
	"ged_backend/internal/email"
	"ged_backend/internal/handlers"
	"ged_backend/internal/logger"
	"ged_backend/internal/middleware"
	"ged_backend/internal/models"
	"ged_backend/internal/repositories"
	"ged_backend/internal/routes"
	"ged_backend/internal/services"
	"ged_backend/internal/validator"
	"ged_backend/internal/workers"
	"ged_backend/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := gormDB.AutoMigrate(
		&models.User{},
		&models.Notification{},
		&models.UserNotificationPreference{},
		&models.DigestEntry{},
	); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	ginRouter, digestWorker := SetupRouter(cfg, gormDB)

	if err := digestWorker.Start(); err != nil {
		logger.Fatal("Failed to start digest worker", "error", err)
	}
	defer digestWorker.Stop()

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter wires repositories, services, the websocket hub and the HTTP
// surface. The digest worker is returned unstarted.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, *workers.DigestWorker) {
	wsManager := ws.NewManager()
	go wsManager.Run()
	wsHandler := ws.NewHandler(wsManager)

	mailer := buildEmailProvider(cfg)

	notificationRepo := repositories.NewNotificationRepository(gormDB)
	preferenceRepo := repositories.NewPreferenceRepository(gormDB)
	digestRepo := repositories.NewDigestRepository(gormDB)
	userRepo := repositories.NewUserRepository(gormDB)

	preferenceService := services.NewPreferenceService(preferenceRepo)
	notificationService := services.NewNotificationService(notificationRepo, wsManager)
	deliveryService := services.NewDeliveryService(
		preferenceService,
		notificationRepo,
		digestRepo,
		userRepo,
		wsManager,
		mailer,
		cfg.Server.BaseURL,
	)

	serviceContainer := &services.ServiceContainer{
		PreferenceService:   preferenceService,
		DeliveryService:     deliveryService,
		NotificationService: notificationService,
		EmailService:        mailer,
	}

	appHandlers := initializeHandlers(serviceContainer)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute)

	ginRouter := initializeGinRouter()
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler, tokens)

	digestWorker := workers.NewDigestWorker(
		digestRepo,
		userRepo,
		mailer,
		cfg.Digest.DailySpec,
		cfg.Digest.WeeklySpec,
	)

	return ginRouter, digestWorker
}

func buildEmailProvider(cfg *config.Config) email.Provider {
	if cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP is not configured, outbound mail is disabled")
		return &NopEmailProvider{}
	}
	return email.NewSMTPProvider(&email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
		UseTLS:    cfg.Email.UseTLS,
		Timeout:   30 * time.Second,
	}, email.NewTemplateManager())
}

func initializeHandlers(services *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, services.NotificationService, services.DeliveryService),
		PreferenceHandler:   handlers.NewPreferenceHandler(baseHandler, services.PreferenceService),
	}
}

func initializeGinRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	return router
}
