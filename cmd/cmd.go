package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"remindly-backend/internal/config"
	"remindly-backend/internal/handlers"
	"remindly-backend/internal/metrics"
	"remindly-backend/internal/notify"
	"remindly-backend/internal/repository"
	"remindly-backend/internal/services"
	"remindly-backend/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx := context.Background()

	// Connect to database
	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	if cfg.Database.Migrate {
		if err := repository.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		log.Info().Msg("Database migrations applied")
	}

	// Object store
	store, err := storage.NewS3Store(ctx, cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create object store")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	favouriteRepo := repository.NewFavouriteRepository(db)
	txManager := repository.NewTxManager(db)

	// Outbound notifications; either channel may be left unconfigured
	var mailer services.Mailer
	smtpMailer, err := notify.NewSMTPMailer(cfg.SMTP)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create mailer")
	}
	if smtpMailer != nil {
		mailer = smtpMailer
	} else {
		log.Warn().Msg("SMTP not configured, email notifications disabled")
	}
	var sms services.SMSSender
	if sender := notify.NewTwilioSender(cfg.Twilio); sender != nil {
		sms = sender
	} else {
		log.Warn().Msg("Twilio not configured, SMS notifications disabled")
	}

	// Initialize services
	userService, err := services.NewUserService(userRepo, cfg.JWT.Secret, cfg.Webhook.Secret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create user service")
	}
	if cfg.Webhook.Secret == "" {
		log.Warn().Msg("Webhook secret not set, identity events will be rejected")
	}

	router := handlers.NewRouter(handlers.Services{
		Users:         userService,
		Profiles:      services.NewProfileService(profileRepo, reminderRepo, favouriteRepo, txManager, store, m),
		Images:        services.NewImageService(profileRepo, store, m),
		Reminders:     services.NewReminderService(reminderRepo, profileRepo),
		Favourites:    services.NewFavouriteService(favouriteRepo, profileRepo),
		Notifications: services.NewNotificationService(userRepo, mailer, sms, m),
		Hub:           services.NewWSHub(),
		DB:            db,
	}, handlers.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        m,
		MetricsHandler: promhttp.Handler(),
		AccessLog:      true,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
