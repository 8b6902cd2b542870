package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Fixed connection parameters of the measurement store.
const (
	DefaultDBName          = "ambient_sensors_flexible"
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultListenAddr      = "0.0.0.0:8080"
	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 30 * time.Minute
)

// Config holds the application's configuration.
type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     int
	DBSSLMode  string

	// TLSKeyFile and TLSCertFile switch the listener to HTTPS when both are set.
	TLSKeyFile  string
	TLSCertFile string

	ListenAddr string
	LogLevel   string
	LogFile    string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LoadConfig loads the configuration from a .env file, if any, and the
// process environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, relying on system environment variables")
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (Config, error) {
	cfg := Config{
		DBHost:      os.Getenv("DB_HOST"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      DefaultDBName,
		DBPort:      DefaultDBPort,
		DBSSLMode:   envOr("DB_SSLMODE", DefaultDBSSLMode),
		TLSKeyFile:  os.Getenv("SSL_KEYFILE"),
		TLSCertFile: os.Getenv("SSL_CERTFILE"),
		ListenAddr:  DefaultListenAddr,
		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogFile:     os.Getenv("LOG_FILE"),
	}

	var err error
	if cfg.MaxOpenConns, err = envInt("DB_MAX_OPEN_CONNS", DefaultMaxOpenConns); err != nil {
		return Config{}, err
	}
	if cfg.MaxIdleConns, err = envInt("DB_MAX_IDLE_CONNS", DefaultMaxIdleConns); err != nil {
		return Config{}, err
	}
	cfg.ConnMaxLifetime = DefaultConnMaxLifetime
	if s := os.Getenv("DB_CONN_MAX_LIFETIME"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", s, err)
		}
		cfg.ConnMaxLifetime = d
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports missing or inconsistent settings.
func (c Config) Validate() error {
	var errs []error
	if c.DBHost == "" {
		errs = append(errs, errors.New("DB_HOST is not set"))
	}
	if c.DBUser == "" {
		errs = append(errs, errors.New("DB_USER is not set"))
	}
	if (c.TLSKeyFile == "") != (c.TLSCertFile == "") {
		errs = append(errs, errors.New("SSL_KEYFILE and SSL_CERTFILE must be set together"))
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		errs = append(errs, errors.New("connection pool sizes must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration is incomplete: %w", errors.Join(errs...))
	}
	return nil
}

// TLSEnabled reports whether the server should terminate TLS itself.
func (c Config) TLSEnabled() bool {
	return c.TLSKeyFile != "" && c.TLSCertFile != ""
}

// DSN returns the PostgreSQL connection URL of the measurement store.
func (c Config) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:   "/" + c.DBName,
	}
	q := url.Values{}
	q.Set("sslmode", c.DBSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}
