// Package migrations contiene el esquema de la tabla citas para cada motor
// soportado y aplica las migraciones con golang-migrate sobre archivos
// embebidos en el binario.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lizet96/citas-backend/config"
	"github.com/lizet96/citas-backend/database"
)

//go:embed postgres/*.sql mysql/*.sql sqlite3/*.sql
var files embed.FS

// Open prepara un migrador con su propia conexión. El llamador debe invocar
// Close sobre el *migrate.Migrate devuelto.
func Open(cfg config.DatabaseConfig) (*migrate.Migrate, error) {
	src, err := iofs.New(files, dirFor(cfg.Driver))
	if err != nil {
		return nil, fmt.Errorf("migrations: source: %w", err)
	}

	db, err := database.OpenStd(cfg)
	if err != nil {
		return nil, err
	}

	var drv migratedb.Driver
	switch cfg.Driver {
	case config.DriverPostgres:
		drv, err = pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	case config.DriverPQ:
		drv, err = postgres.WithInstance(db, &postgres.Config{})
	case config.DriverMySQL:
		drv, err = mysql.WithInstance(db, &mysql.Config{})
	case config.DriverSQLite:
		drv, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	default:
		err = fmt.Errorf("driver %q no soportado", cfg.Driver)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: database: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, cfg.Driver, drv)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

// Up aplica todas las migraciones pendientes
func Up(cfg config.DatabaseConfig) error {
	m, err := Open(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}

	v, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migrations: version: %w", err)
	}
	slog.Info("Migraciones aplicadas", "driver", cfg.Driver, "version", v, "dirty", dirty)
	return nil
}

// pgx y lib/pq comparten el mismo esquema
func dirFor(driver string) string {
	if driver == config.DriverPQ {
		return config.DriverPostgres
	}
	return driver
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) {
	slog.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrate")
}

func (migrateLogger) Verbose() bool { return false }
