package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/axialy/axialy-server/src/config"
	"github.com/axialy/axialy-server/src/database"
	"github.com/axialy/axialy-server/src/handlers"
	"github.com/axialy/axialy-server/src/logging"
	"github.com/axialy/axialy-server/src/middleware"
	"github.com/axialy/axialy-server/src/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logging
	logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	log.Info().
		Int("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Msg("starting server")

	// Initialize database pools. Connecting to the admin database runs
	// its idempotent schema bootstrap; the UI schema is applied as an
	// explicit startup step.
	provider := database.NewProvider(database.Settings{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		AdminDB:  cfg.AdminDB,
		UIDB:     cfg.UIDB,
	})
	defer provider.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	adminPool, err := provider.Admin(ctx)
	if err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to connect to admin database")
	}
	uiPool, err := provider.UI(ctx)
	if err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to connect to UI database")
	}
	if err := database.EnsureUISchema(ctx, uiPool); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to ensure UI schema")
	}
	cancel()

	log.Info().Msg("databases connected")

	// Initialize services
	mailer := services.NewMailer(services.SMTPConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		User:        cfg.SMTPUser,
		Password:    cfg.SMTPPassword,
		FromAddress: cfg.SMTPFromAddress,
		FromName:    cfg.SMTPFromName,
		Secure:      cfg.SMTPSecure,
	}, cfg.MailgunDomain, cfg.MailgunAPIKey)
	if cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" {
		log.Info().Str("domain", cfg.MailgunDomain).Msg("Mailgun fallback transport enabled")
	}

	adminService := services.NewAdminService(adminPool)
	accountService := services.NewAccountService(uiPool, mailer, cfg.AppBaseURL)
	documentService := services.NewDocumentService(uiPool)

	advisoryService := services.NewAdvisoryService(cfg.APIBaseURL, cfg.InternalAPIKey)
	if advisoryService == nil {
		log.Warn().Msg("API_BASE_URL not configured - advisory proxy disabled")
	}

	// Auto-seed default admin on first run
	if cfg.AdminDefaultUser != "" && cfg.AdminDefaultPassword != "" {
		hasAdmins, err := adminService.HasAdmins(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("failed to check for existing admin users")
		} else if !hasAdmins {
			if _, err := adminService.CreateAdminUser(context.Background(), cfg.AdminDefaultUser, cfg.AdminDefaultPassword, cfg.AdminDefaultEmail, true); err != nil {
				log.Error().Err(err).Msg("failed to create initial admin user")
			} else {
				log.Info().Str("username", cfg.AdminDefaultUser).Msg("initial admin user created")
			}
		}
	}

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.Recovery())

	allowedOrigins := make(map[string]bool)
	for _, origin := range strings.Split(cfg.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowedOrigins[origin] = true
		}
	}
	corsConfig := cors.Config{
		AllowOriginFunc: func(origin string) bool {
			// Allow localhost for development
			if origin == "http://localhost" || origin == "http://localhost:8080" || origin == "http://localhost:3000" {
				return true
			}
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	setupRoutes(router, provider, adminService, accountService, documentService, advisoryService, cfg)

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server shut down successfully")
}

func setupRoutes(
	router *gin.Engine,
	provider *database.Provider,
	adminService *services.AdminService,
	accountService *services.AccountService,
	documentService *services.DocumentService,
	advisoryService *services.AdvisoryService,
	cfg *config.Config,
) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(provider)
	adminHandler := handlers.NewAdminHandler(adminService, cfg.AdminDefaultUser, cfg.AdminDefaultEmail, cfg.AdminDefaultPassword)
	accountHandler := handlers.NewAccountHandler(accountService, cfg.UISessionSecret)
	documentHandler := handlers.NewDocumentHandler(documentService)
	advisoryHandler := handlers.NewAdvisoryHandler(advisoryService)

	// Health check endpoints
	router.GET("/health", healthHandler.HandleHealth)
	router.GET("/ready", healthHandler.HandleReady)
	router.GET("/info", healthHandler.HandleInfo)

	// Admin console endpoints
	adminGate := middleware.AdminSessionRequired(adminService)
	router.POST("/admin/login", middleware.AuthRateLimitMiddleware(), adminHandler.HandleLogin)
	router.POST("/admin/logout", adminGate, adminHandler.HandleLogout)
	router.GET("/admin/status", adminGate, adminHandler.HandleStatus)
	router.POST("/admin/init", adminHandler.HandleInit)

	// Account creation and login, rate limited per IP
	authGroup := router.Group("/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	{
		authGroup.POST("/start-verification", accountHandler.HandleStartVerification)
		authGroup.GET("/verify-email", accountHandler.HandleVerifyEmail)
		authGroup.POST("/complete-account", accountHandler.HandleCompleteAccount)
		authGroup.POST("/login", accountHandler.HandleLogin)
	}

	// Document management (authenticated users)
	userGate := middleware.UserAuthRequired(cfg.UISessionSecret)
	docGroup := router.Group("/documents")
	docGroup.Use(userGate)
	{
		docGroup.GET("", documentHandler.HandleList)
		docGroup.POST("", documentHandler.HandleCreate)
		docGroup.GET("/:id", documentHandler.HandleGet)
		docGroup.PUT("/:id", documentHandler.HandleUpdate)
		docGroup.DELETE("/:id", documentHandler.HandleDelete)
		docGroup.POST("/:id/versions", documentHandler.HandleCreateVersion)
		docGroup.GET("/:id/versions", documentHandler.HandleListVersions)
		docGroup.POST("/:id/active", documentHandler.HandleSetActive)
	}
	router.PUT("/versions/:version_id/rendered", userGate, documentHandler.HandleStoreRendered)

	// Public document view
	router.GET("/view/:doc_key", documentHandler.HandleView)

	// Content review emails
	router.POST("/reviews/send", userGate, accountHandler.HandleSendReviews)

	// Advisory API proxy
	router.POST("/api/advisory/*path", userGate, advisoryHandler.HandleForward)
}
