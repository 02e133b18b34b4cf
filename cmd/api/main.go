package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/frontdesk/gatepass/internal/http/handlers"
	"github.com/frontdesk/gatepass/internal/platform/dedup"
	"github.com/frontdesk/gatepass/internal/platform/mailer"
	"github.com/frontdesk/gatepass/internal/platform/qr"
	"github.com/frontdesk/gatepass/internal/platform/webhook"
	"github.com/frontdesk/gatepass/internal/service"
	"github.com/frontdesk/gatepass/pkg/config"
	"github.com/frontdesk/gatepass/pkg/events"
	"github.com/frontdesk/gatepass/pkg/logger"
	mw "github.com/frontdesk/gatepass/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Duplicate-suppression cache: shared store when Redis is configured,
	// per-process memory otherwise.
	var cache dedup.Cache
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("Invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		if cfg.Redis.Password != "" {
			opts.Password = cfg.Redis.Password
		}
		opts.DB = cfg.Redis.DB
		cache = dedup.NewRedis(redis.NewClient(opts), cfg.Dedup.TTL)
		logger.Info("Using Redis duplicate-suppression cache")
	} else {
		cache = dedup.NewMemory(cfg.Dedup.TTL)
	}

	// Lifecycle event bus, best-effort and optional.
	var bus events.Publisher = events.Noop{}
	if cfg.NATS.URL != "" {
		natsBus, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsBus.Close()
		bus = natsBus
	}

	var mail mailer.Service
	if cfg.Email.DevMode {
		mail = mailer.NewDevMailer()
		logger.Warn("Email dev mode enabled: emails are logged, not sent")
	} else {
		mail = mailer.NewMailer(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}

	hooks := webhook.NewClient(cfg.Webhook.Timeout)
	encoder := qr.NewEncoder(cfg.QR.Size, cfg.QR.RecoveryLevel)
	decoder := qr.NewDecoder()

	invitations := service.NewInvitationService(encoder, mail, hooks, cache, bus, cfg)
	checkins := service.NewCheckInService(mail, hooks, bus, cfg)

	h := handlers.New(invitations, checkins, decoder)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("gatepass"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Mount("/", h.Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down gatepass service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Gatepass service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting gatepass service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Gatepass service error", "error", err)
		os.Exit(1)
	}
}
