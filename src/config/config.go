package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// const dsn = "host=localhost user=postgres password=password dbname=ticketeira port=5432 sslmode=disable TimeZone=America/Sao_Paulo"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

type Config struct {
	APIEnv string
	Port   string

	JWTSecret string

	StripeSecretKey string
	AppHost         string
	Currency        string

	// Fee defaults apply when no active fee configuration row exists.
	DefaultPlatformFeePercentage decimal.Decimal
	DefaultGatewayFeePercentage  decimal.Decimal
	MinChargeAmount              decimal.Decimal
	MaxTicketsPerOrder           int

	UpstreamTimeout time.Duration

	RedisHost          string
	RateLimitPerMinute int64

	Notifier     string
	MailFrom     string
	MailFromName string
	EmailQueue   string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	AssetsBucket string
	TempDir      string

	LogFile string
}

func Load() *Config {
	return &Config{
		APIEnv: getEnv("API_ENV", "local"),
		Port:   getEnv("PORT", "9090"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		AppHost:         getEnv("APP_HOST", "http://localhost:3000"),
		Currency:        getEnv("CURRENCY", "brl"),

		DefaultPlatformFeePercentage: getEnvAsDecimal("DEFAULT_PLATFORM_FEE_PERCENTAGE", "10"),
		DefaultGatewayFeePercentage:  getEnvAsDecimal("DEFAULT_GATEWAY_FEE_PERCENTAGE", "3"),
		MinChargeAmount:              getEnvAsDecimal("MIN_CHARGE_AMOUNT", "0.50"),
		MaxTicketsPerOrder:           getEnvAsInt("MAX_TICKETS_PER_ORDER", 10),

		UpstreamTimeout: getEnvAsDuration("UPSTREAM_TIMEOUT", "10s"),

		RedisHost:          os.Getenv("REDIS_HOST"),
		RateLimitPerMinute: int64(getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30)),

		Notifier:     getEnv("NOTIFIER", "log"),
		MailFrom:     getEnv("MAIL_FROM", "noreply@ticketeira.app"),
		MailFromName: getEnv("MAIL_FROM_NAME", "Ticketeira"),
		EmailQueue:   getEnv("EMAIL_QUEUE", "TransactionalEmails"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		AssetsBucket: os.Getenv("S3_ASSETS_BUCKET"),
		TempDir:      getEnv("TEMP_DIR", os.TempDir()),

		LogFile: os.Getenv("LOG_FILE"),
	}
}

func (c *Config) IsProd() bool {
	return c.APIEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, defaultValue)); err == nil {
		return d
	}
	d, _ := time.ParseDuration(defaultValue)
	return d
}

func getEnvAsDecimal(key, defaultValue string) decimal.Decimal {
	if d, err := decimal.NewFromString(getEnv(key, defaultValue)); err == nil {
		return d
	}
	return decimal.RequireFromString(defaultValue)
}
