package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Drivers soportados por DB_DRIVER
const (
	DriverPostgres = "postgres" // pgxpool
	DriverPQ       = "pq"       // database/sql + lib/pq
	DriverMySQL    = "mysql"    // MariaDB / MySQL
	DriverSQLite   = "sqlite3"
)

// Ambientes
const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
	EnvironmentTesting     = "testing"
)

// Config agrupa toda la configuración del servicio
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	Database DatabaseConfig

	BodyLimit           int
	RateLimitMax        int
	RateLimitWindow     time.Duration
	HealthCheckSchedule string
}

// DatabaseConfig configuración del almacén de citas
type DatabaseConfig struct {
	Driver string
	URL    string

	// Usados cuando URL está vacío
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	MaxConns           int
	MinConns           int
	MaxConnLifetime    time.Duration
	MaxConnIdleTime    time.Duration
	ConnectTimeout     time.Duration
	StoreTimeout       time.Duration
	SlowQueryThreshold time.Duration
	AutoMigrate        bool
}

// Load carga el archivo .env (si existe) y lee las variables de entorno
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No se pudo cargar el archivo .env, usando variables del entorno")
	}
	return FromEnv()
}

// FromEnv construye la configuración sólo a partir del entorno
func FromEnv() (*Config, error) {
	p := parser{}

	cfg := &Config{
		Port:                envOr("PORT", "3000"),
		Environment:         envOr("ENVIRONMENT", EnvironmentDevelopment),
		LogLevel:            p.level("LOG_LEVEL", slog.LevelInfo),
		BodyLimit:           p.int("BODY_LIMIT", 1<<20),
		RateLimitMax:        p.int("RATE_LIMIT_MAX", 100),
		RateLimitWindow:     p.duration("RATE_LIMIT_WINDOW", 15*time.Minute),
		HealthCheckSchedule: envOr("HEALTH_CHECK_SCHEDULE", "@every 30s"),
		Database: DatabaseConfig{
			Driver:             strings.ToLower(envOr("DB_DRIVER", DriverPostgres)),
			URL:                os.Getenv("DATABASE_URL"),
			Host:               envOr("DB_HOST", "localhost"),
			Port:               p.int("DB_PORT", 0),
			User:               os.Getenv("DB_USER"),
			Password:           os.Getenv("DB_PASSWORD"),
			Name:               os.Getenv("DB_NAME"),
			MaxConns:           p.int("DB_MAX_CONNS", 30),
			MinConns:           p.int("DB_MIN_CONNS", 5),
			MaxConnLifetime:    p.duration("DB_MAX_CONN_LIFETIME", time.Hour),
			MaxConnIdleTime:    p.duration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
			ConnectTimeout:     p.duration("DB_CONNECT_TIMEOUT", 10*time.Second),
			StoreTimeout:       p.duration("STORE_TIMEOUT", 5*time.Second),
			SlowQueryThreshold: p.duration("SLOW_QUERY_THRESHOLD", 500*time.Millisecond),
			AutoMigrate:        p.bool("AUTO_MIGRATE", false),
		},
	}

	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate verifica combinaciones inválidas
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverPQ, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("config: DB_DRIVER %q no soportado", c.Database.Driver)
	}
	if c.Database.URL == "" && c.Database.Name == "" {
		return fmt.Errorf("config: se requiere DATABASE_URL o DB_NAME")
	}
	if c.Database.StoreTimeout <= 0 {
		return fmt.Errorf("config: STORE_TIMEOUT debe ser mayor a cero")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("config: DB_MIN_CONNS (%d) mayor que DB_MAX_CONNS (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}
	return nil
}

// IsProduction indica si el servicio corre en producción
func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// parser guarda el primer error encontrado para reportarlo una sola vez
type parser struct {
	err error
}

func (p *parser) int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return n
}

func (p *parser) bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// Se aceptan milisegundos sin unidad, como DB_CONNECT_TIMEOUT=10000
		if ms, convErr := strconv.Atoi(v); convErr == nil {
			return time.Duration(ms) * time.Millisecond
		}
		p.fail(key, v, err)
		return def
	}
	return d
}

func (p *parser) level(key string, def slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		p.fail(key, v, err)
		return def
	}
	return l
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("config: valor inválido para %s=%q: %w", key, value, err)
	}
}
