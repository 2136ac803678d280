package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lizet96/citas-backend/config"

	// Drivers de database/sql
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Conn es el manejador del almacén abierto al iniciar el proceso. Exactamente
// uno de Pool o SQL es distinto de nil según el driver.
type Conn struct {
	Driver string
	Pool   *pgxpool.Pool
	SQL    *sql.DB

	logger *slog.Logger
}

// Connect abre el almacén configurado y verifica que responda. logger nil
// usa slog.Default().
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Conn, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn := &Conn{Driver: cfg.Driver, logger: logger.With("component", "database")}
	if cfg.Driver == config.DriverPostgres {
		conn.Pool, err = openPool(ctx, dsn, cfg)
	} else {
		conn.SQL, err = openSQL(dsn, cfg)
	}
	if err != nil {
		return nil, err
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := conn.Ping(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database: error al probar la conexión: %w", err)
	}

	conn.logger.Info("Conectado a la base de datos", "driver", cfg.Driver, "version", conn.version(ctx))
	return conn, nil
}

func openPool(ctx context.Context, dsn string, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("database: error al parsear la URL de la base de datos: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		pc.MinConns = int32(cfg.MinConns)
	}
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	// Protocolo simple: DATE llega como literal y el servidor lo convierte
	pc.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("database: error al crear el pool de conexiones: %w", err)
	}
	return pool, nil
}

// OpenStd abre un *sql.DB independiente para el driver configurado; con
// DB_DRIVER=postgres usa el adaptador database/sql de pgx. Lo usa el migrador,
// que cierra su propio manejador al terminar.
func OpenStd(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	return openSQL(dsn, cfg)
}

// SQLDriverName nombre registrado en database/sql para cada DB_DRIVER
func SQLDriverName(driver string) string {
	switch driver {
	case config.DriverPostgres:
		return "pgx"
	case config.DriverPQ:
		return "postgres"
	}
	return driver
}

func openSQL(dsn string, cfg config.DatabaseConfig) (*sql.DB, error) {
	name := SQLDriverName(cfg.Driver)
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", name, err)
	}

	if cfg.Driver == config.DriverSQLite {
		// Un solo escritor evita "database is locked"
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxConns)
		db.SetMaxIdleConns(cfg.MinConns)
	}
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
	return db, nil
}

// Ping verifica que el almacén esté vivo
func (c *Conn) Ping(ctx context.Context) error {
	var err error
	if c.Pool != nil {
		err = c.Pool.Ping(ctx)
	} else {
		err = c.SQL.PingContext(ctx)
	}
	return MapError(err)
}

// Close cierra el pool de conexiones
func (c *Conn) Close() {
	if c == nil {
		return
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.SQL != nil {
		_ = c.SQL.Close()
	}
	if c.logger != nil {
		c.logger.Info("Pool de conexiones cerrado", "driver", c.Driver)
	}
}

func (c *Conn) version(ctx context.Context) string {
	query := "SELECT version()"
	switch c.Driver {
	case config.DriverSQLite:
		query = "SELECT sqlite_version()"
	case config.DriverMySQL:
		query = "SELECT VERSION()"
	}

	var v string
	var err error
	if c.Pool != nil {
		err = c.Pool.QueryRow(ctx, query).Scan(&v)
	} else {
		err = c.SQL.QueryRowContext(ctx, query).Scan(&v)
	}
	if err != nil {
		return "desconocida"
	}
	return v
}
