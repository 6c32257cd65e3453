package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Stripe   StripeConfig
	AMQP     AMQPConfig
	Booking  BookingConfig
}

type ServerConfig struct {
	Address      string
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	MaxPoolConns int
}

type StripeConfig struct {
	SecretKey  string
	Currency   string
	SuccessURL string
	CancelURL  string
	Timeout    time.Duration
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

// BookingConfig holds the pricing policy that used to live in a global
// settings object.
type BookingConfig struct {
	DepositPercent      int
	DefaultSkipperPrice int64
	MaxCharterDays      int
}

func (dc *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s pool_max_conns=%d",
		dc.Host,
		dc.Port,
		dc.Name,
		dc.User,
		dc.Password,
		dc.MaxPoolConns,
	)
}

func NewConfig() (*Config, error) {
	serverCfg, err := newServerConfig()
	if err != nil {
		return nil, fmt.Errorf("server config error: %w", err)
	}

	dbCfg, err := newDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("database config error: %w", err)
	}

	stripeCfg, err := newStripeConfig()
	if err != nil {
		return nil, fmt.Errorf("stripe config error: %w", err)
	}

	bookingCfg, err := newBookingConfig()
	if err != nil {
		return nil, fmt.Errorf("booking config error: %w", err)
	}

	return &Config{
		Server:   serverCfg,
		Database: dbCfg,
		Stripe:   stripeCfg,
		AMQP:     newAMQPConfig(),
		Booking:  bookingCfg,
	}, nil
}

func newServerConfig() (ServerConfig, error) {
	writeTimeout, err := getDurationFromEnv("SERVER_WRITE_TIMEOUT", "15s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("write timeout parse error: %w", err)
	}

	readTimeout, err := getDurationFromEnv("SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("read timeout parse error: %w", err)
	}

	idleTimeout, err := getDurationFromEnv("SERVER_IDLE_TIMEOUT", "30s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("idle timeout parse error: %w", err)
	}

	return ServerConfig{
		Address:      getEnvOrDefault("SERVER_ADDRESS", ":5000"),
		WriteTimeout: writeTimeout,
		ReadTimeout:  readTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func newDatabaseConfig() (DatabaseConfig, error) {
	maxConns, err := strconv.Atoi(getEnvOrDefault("MAX_CONNS", "99"))
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("max connections parse error: %w", err)
	}

	return DatabaseConfig{
		Host:         getEnvOrDefault("POSTGRES_HOST", "localhost"),
		Port:         getEnvOrDefault("POSTGRES_PORT", "5432"),
		Name:         getEnvOrDefault("POSTGRES_DB", "charterdesk"),
		User:         getEnvOrDefault("POSTGRES_USER", "postgres"),
		Password:     getEnvOrDefault("POSTGRES_PASSWORD", ""),
		MaxPoolConns: maxConns,
	}, nil
}

func newStripeConfig() (StripeConfig, error) {
	timeout, err := getDurationFromEnv("STRIPE_TIMEOUT", "15s")
	if err != nil {
		return StripeConfig{}, fmt.Errorf("timeout parse error: %w", err)
	}

	return StripeConfig{
		SecretKey:  getEnvOrDefault("STRIPE_SECRET_KEY", ""),
		Currency:   getEnvOrDefault("STRIPE_CURRENCY", "eur"),
		SuccessURL: getEnvOrDefault("STRIPE_SUCCESS_URL", "http://localhost:3000/booking/success"),
		CancelURL:  getEnvOrDefault("STRIPE_CANCEL_URL", "http://localhost:3000/booking/cancelled"),
		Timeout:    timeout,
	}, nil
}

func newAMQPConfig() AMQPConfig {
	return AMQPConfig{
		URL:      getEnvOrDefault("AMQP_URL", ""),
		Exchange: getEnvOrDefault("AMQP_EXCHANGE", "charterdesk.events"),
	}
}

func newBookingConfig() (BookingConfig, error) {
	depositPercent, err := strconv.Atoi(getEnvOrDefault("DEPOSIT_PERCENT", "20"))
	if err != nil {
		return BookingConfig{}, fmt.Errorf("deposit percent parse error: %w", err)
	}
	if depositPercent < 1 || depositPercent > 100 {
		return BookingConfig{}, fmt.Errorf("deposit percent out of range: %d", depositPercent)
	}

	skipperPrice, err := strconv.ParseInt(getEnvOrDefault("DEFAULT_SKIPPER_PRICE", "15000"), 10, 64)
	if err != nil {
		return BookingConfig{}, fmt.Errorf("default skipper price parse error: %w", err)
	}

	maxDays, err := strconv.Atoi(getEnvOrDefault("MAX_CHARTER_DAYS", "6"))
	if err != nil {
		return BookingConfig{}, fmt.Errorf("max charter days parse error: %w", err)
	}

	return BookingConfig{
		DepositPercent:      depositPercent,
		DefaultSkipperPrice: skipperPrice,
		MaxCharterDays:      maxDays,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationFromEnv(key, defaultValue string) (time.Duration, error) {
	return time.ParseDuration(getEnvOrDefault(key, defaultValue))
}
