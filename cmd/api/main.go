package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/reservly/booking-api/config"
	"github.com/reservly/booking-api/internal/email"
	bookingHandler "github.com/reservly/booking-api/internal/handler/booking"
	clinicHandler "github.com/reservly/booking-api/internal/handler/clinic"
	healthHandler "github.com/reservly/booking-api/internal/handler/health"
	shiftHandler "github.com/reservly/booking-api/internal/handler/shift"
	"github.com/reservly/booking-api/internal/middleware"
	"github.com/reservly/booking-api/internal/repository/postgres"
	"github.com/reservly/booking-api/internal/router"
	availabilityService "github.com/reservly/booking-api/internal/service/availability"
	bookingService "github.com/reservly/booking-api/internal/service/booking"
	clinicService "github.com/reservly/booking-api/internal/service/clinic"
	shiftService "github.com/reservly/booking-api/internal/service/shift"
	"github.com/reservly/booking-api/pkg/auth"
	"github.com/reservly/booking-api/pkg/locker"
	"github.com/reservly/booking-api/pkg/logger"
	"github.com/reservly/booking-api/pkg/metrics"
	"github.com/reservly/booking-api/pkg/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := logger.New(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Pretty:     cfg.Logging.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal(err, "invalid redis url")
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(ctx).Err(); err != nil {
		cancel()
		log.Fatal(err, "failed to connect to redis")
	}
	cancel()

	clinicRepo := postgres.NewClinicRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	shiftRepo := postgres.NewShiftRepository(db)
	shiftRequestRepo := postgres.NewShiftRequestRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)

	m := metrics.New("booking_api", "core")

	var mailer email.Sender = email.NoopSender{}
	if cfg.SMTP.Enabled {
		mailer = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	slotLocker := locker.NewRedisLocker(rdb, "lock")

	availabilitySvc := availabilityService.NewService(clinicRepo, staffRepo, shiftRepo, bookingRepo, log, m)
	bookingSvc := bookingService.NewService(bookingRepo, clinicRepo, availabilitySvc, slotLocker, mailer, log, m)
	clinicSvc := clinicService.NewService(clinicRepo, staffRepo, log)
	shiftSvc := shiftService.NewService(shiftRepo, shiftRequestRepo, staffRepo, log, m)

	validate := validator.New()
	verifier := auth.NewTokenVerifier(cfg.JWT.Secret)

	r := router.New(
		log,
		verifier,
		healthHandler.NewHandler(db, rdb),
		clinicHandler.NewHandler(clinicSvc, validate),
		bookingHandler.NewHandler(bookingSvc, availabilitySvc, validate),
		shiftHandler.NewHandler(shiftSvc, validate),
		router.Config{
			RateLimitEnabled:  cfg.RateLimit.Enabled,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			RequestTimeout:    cfg.Server.RequestTimeout,
			CORS:              corsConfig(cfg),
			MetricsEnabled:    cfg.Monitoring.PrometheusEnabled,
			MetricsPath:       cfg.Monitoring.MetricsPath,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "forced shutdown")
	}
	log.Info("server stopped")
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.Security.AllowedOrigins
	}
	if len(cfg.Security.AllowedMethods) > 0 {
		cors.AllowMethods = cfg.Security.AllowedMethods
	}
	if len(cfg.Security.AllowedHeaders) > 0 {
		cors.AllowHeaders = cfg.Security.AllowedHeaders
	}
	return cors
}
