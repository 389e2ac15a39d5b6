// Package config loads application configuration from the environment.
// A .env file in the working directory is read first when present; real
// environment variables always win over it.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable of the same name in upper snake case.
type Config struct {
	Env     string // application environment (dev, prod, test)
	Port    string // HTTP port to listen on
	BaseURL string // public URL used to build foto_url links

	DBUser string
	DBPass string // may be empty
	DBHost string
	DBPort string
	DBName string

	JWTSecret  string        // signs staff invite tokens
	InviteTTL  time.Duration // lifetime of an invite token
	BcryptCost int

	SessionTTL        time.Duration // inactivity window before a session expires
	SessionCookie     string
	CookieSecure      bool
	MaxLoginAttempts  int           // failed staff logins before the account is locked
	LoginLockDuration time.Duration // how long a locked account refuses logins
	LoginFailureDelay time.Duration // pause applied to every failed login

	UploadDir      string
	UploadMaxBytes int64

	ListDefaultLimit int
	ListMaxLimit     int

	ContactMaxPerHour int

	CORSOrigins []string

	RabbitMQURL       string // empty disables event publishing
	NotificationQueue string

	SMTPHost   string // empty makes the worker log emails instead of sending
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	SMTPFrom   string
	StaffEmail string // receives contact form notifications

	HousekeepingSchedule string // cron spec for the invite cleanup job

	Log       LogConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string
	Format string // text or json
	File   string // empty logs to stdout only
}

// New returns a viper instance bound to the environment with every default
// registered. Callers that need a single sub-config use it directly.
func New() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("BASE_URL", "http://localhost:8080")

	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_NAME", "cidade_aberta")

	v.SetDefault("INVITE_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 10)

	v.SetDefault("SESSION_TIMEOUT", "1h")
	v.SetDefault("SESSION_COOKIE", "ca_session")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("MAX_LOGIN_ATTEMPTS", 5)
	v.SetDefault("LOGIN_LOCK_DURATION", "15m")
	v.SetDefault("LOGIN_FAILURE_DELAY", "1s")

	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_MAX_SIZE", 5*1024*1024)

	v.SetDefault("LIST_DEFAULT_LIMIT", 20)
	v.SetDefault("LIST_MAX_LIMIT", 100)
	v.SetDefault("CONTACT_MAX_PER_HOUR", 5)
	v.SetDefault("CORS_ORIGINS", "*")

	v.SetDefault("NOTIFICATION_QUEUE", "cidade_aberta.notificacoes")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM", "nao-responda@cidadeaberta.local")

	v.SetDefault("HOUSEKEEPING_SCHEDULE", "@every 1h")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	setRedisDefaults(v)
	setRateLimitDefaults(v)
	setCacheDefaults(v)
}

// Load reads the full configuration. Missing required values are reported
// together in one error.
func Load() (Config, error) {
	return FromViper(New())
}

// FromViper builds a Config from an already prepared viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Env:     v.GetString("APP_ENV"),
		Port:    v.GetString("APP_PORT"),
		BaseURL: strings.TrimRight(v.GetString("BASE_URL"), "/"),

		DBUser: v.GetString("DB_USER"),
		DBPass: v.GetString("DB_PASS"),
		DBHost: v.GetString("DB_HOST"),
		DBPort: v.GetString("DB_PORT"),
		DBName: v.GetString("DB_NAME"),

		JWTSecret:  v.GetString("JWT_SECRET"),
		InviteTTL:  v.GetDuration("INVITE_TTL"),
		BcryptCost: v.GetInt("BCRYPT_COST"),

		SessionTTL:        v.GetDuration("SESSION_TIMEOUT"),
		SessionCookie:     v.GetString("SESSION_COOKIE"),
		CookieSecure:      v.GetBool("COOKIE_SECURE"),
		MaxLoginAttempts:  v.GetInt("MAX_LOGIN_ATTEMPTS"),
		LoginLockDuration: v.GetDuration("LOGIN_LOCK_DURATION"),
		LoginFailureDelay: v.GetDuration("LOGIN_FAILURE_DELAY"),

		UploadDir:      v.GetString("UPLOAD_DIR"),
		UploadMaxBytes: v.GetInt64("UPLOAD_MAX_SIZE"),

		ListDefaultLimit:  v.GetInt("LIST_DEFAULT_LIMIT"),
		ListMaxLimit:      v.GetInt("LIST_MAX_LIMIT"),
		ContactMaxPerHour: v.GetInt("CONTACT_MAX_PER_HOUR"),
		CORSOrigins:       splitList(v.GetString("CORS_ORIGINS")),

		RabbitMQURL:       firstNonEmpty(v.GetString("RABBITMQ_URL"), v.GetString("AMQP_URL")),
		NotificationQueue: v.GetString("NOTIFICATION_QUEUE"),

		SMTPHost:   v.GetString("SMTP_HOST"),
		SMTPPort:   v.GetInt("SMTP_PORT"),
		SMTPUser:   v.GetString("SMTP_USER"),
		SMTPPass:   v.GetString("SMTP_PASS"),
		SMTPFrom:   v.GetString("SMTP_FROM"),
		StaffEmail: v.GetString("STAFF_EMAIL"),

		HousekeepingSchedule: v.GetString("HOUSEKEEPING_SCHEDULE"),

		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			File:   v.GetString("LOG_FILE"),
		},
		Redis:     LoadRedisConfig(v),
		RateLimit: LoadRateLimitConfig(v),
		Cache:     LoadCacheConfig(v),
	}

	var missing []string
	if cfg.DBUser == "" {
		missing = append(missing, "DB_USER")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return cfg, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if cfg.SessionTTL <= 0 {
		return cfg, errors.New("SESSION_TIMEOUT must be positive")
	}
	if cfg.ListDefaultLimit < 1 {
		cfg.ListDefaultLimit = 20
	}
	if cfg.ListMaxLimit < cfg.ListDefaultLimit {
		cfg.ListMaxLimit = cfg.ListDefaultLimit
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
