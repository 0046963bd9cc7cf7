package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"studio-booking-service/internal/appointment"
	"studio-booking-service/internal/auth"
	"studio-booking-service/internal/booking"
	"studio-booking-service/internal/calendarsync"
	"studio-booking-service/internal/catalog"
	"studio-booking-service/internal/config"
	"studio-booking-service/internal/handlers"
	"studio-booking-service/internal/observability/metrics"
	"studio-booking-service/internal/schedule"
	"studio-booking-service/internal/server"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := newLogger(cfg)

	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL required")
	}
	if cfg.JWTSecret == "" {
		logger.Fatal().Msg("JWT_HMAC_SECRET required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer pool.Close()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer func() { _ = rdb.Close() }()
	}

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	catalogStore := catalog.NewStore(pool)
	templateStore := schedule.NewTemplateStore(pool)
	apptStore := appointment.NewStore(pool)
	engine := schedule.NewEngine(templateStore, apptStore)

	oauthCfg := calendarsync.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	var inserter calendarsync.Inserter
	if oauthCfg != nil && cfg.GoogleTokenJSON != "" {
		gi, err := calendarsync.NewGoogleInserter(ctx, oauthCfg, cfg.GoogleTokenJSON, cfg.GoogleCalendarID)
		if err != nil {
			logger.Warn().Err(err).Msg("google calendar disabled")
		} else {
			inserter = gi
		}
	}
	syncQueue := calendarsync.NewQueue(inserter, logger, bookingMetrics, calendarsync.Options{
		QueueSize: cfg.SyncQueueSize,
		Retries:   cfg.SyncRetryMax,
		Backoff:   cfg.SyncRetryDelay,
		Timeout:   cfg.SyncTimeout,
	})
	defer syncQueue.Close()

	holds := booking.NewSlotHolds(rdb, cfg.HoldTTL)
	bookingSvc := booking.NewService(catalogStore, engine, apptStore, syncQueue, holds, bookingMetrics, logger)

	api := &handlers.API{
		Catalog:   catalogStore,
		Slots:     engine,
		Booking:   bookingSvc,
		Templates: templateStore,
		Completer: apptStore,
		OAuth:     oauthCfg,
		Logger:    logger,
	}

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// OAuth2 callback (must be before auth middleware)
	router.GET("/oauth2callback", api.CalendarOAuthCallback)

	authorized := router.Group("/api", auth.Middleware(cfg.JWTSecret))
	{
		authorized.GET("/types", api.ListTypes)
		authorized.GET("/types/:id", api.GetType)
		authorized.GET("/types/:id/tariffs", api.ListTariffs)
		authorized.GET("/types/:id/staff", api.ListStaff)
		authorized.GET("/types/:id/slots", api.GetSlots)

		authorized.POST("/bookings", api.CreateBooking)
		authorized.GET("/appointments", api.ListAppointments)
		authorized.PUT("/appointments/:id", api.EditAppointment)
		authorized.DELETE("/appointments/:id", api.CancelAppointment)

		staff := authorized.Group("", auth.RequireStaff())
		{
			staff.POST("/types/:id/templates", api.CreateTemplate)
			staff.GET("/types/:id/templates", api.ListTemplates)
			staff.PUT("/templates/:id", api.UpdateTemplate)
			staff.POST("/appointments/:id/complete", api.CompleteAppointment)
			staff.GET("/calendar/auth", api.CalendarAuth)
		}
	}

	logger.Info().Str("port", cfg.Port).Msg("starting booking service")
	if err := server.Run(router, ":"+cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Str("service", "booking").Logger()
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", "booking").Logger()
}
