package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  ServerConfig
	Redis   RedisConfig
	NATS    NATSConfig
	Email   EmailConfig
	Webhook WebhookConfig
	QR      QRConfig
	Dedup   DedupConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type NATSConfig struct {
	URL string
}

type EmailConfig struct {
	MailerSendKey string
	FromEmail     string
	FromName      string
	DevMode       bool // print emails to logs instead of sending
}

type WebhookConfig struct {
	CheckInURL string
	QRIssueURL string
	Timeout    time.Duration
}

type QRConfig struct {
	Size          int
	RecoveryLevel string // L, M, Q or H
}

type DedupConfig struct {
	TTL time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", ""),
		},
		Email: EmailConfig{
			MailerSendKey: getEnv("MAILERSEND_API_KEY", ""),
			FromEmail:     getEnv("FROM_EMAIL", ""),
			FromName:      getEnv("FROM_NAME", "Visitor System"),
			DevMode:       getBool("EMAIL_DEV_MODE", true),
		},
		Webhook: WebhookConfig{
			CheckInURL: getEnv("CHECKIN_WEBHOOK_URL", ""),
			QRIssueURL: getEnv("QR_ISSUE_WEBHOOK_URL", ""),
			Timeout:    getDuration("WEBHOOK_TIMEOUT", 10*time.Second),
		},
		QR: QRConfig{
			Size:          getInt("QR_SIZE", 300),
			RecoveryLevel: getEnv("QR_RECOVERY_LEVEL", "H"),
		},
		Dedup: DedupConfig{
			TTL: getDuration("DEDUP_TTL", 60*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
