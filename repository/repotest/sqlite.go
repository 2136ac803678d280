// Package repotest arma un almacén SQLite temporal con el esquema migrado
// para las pruebas de repository y handlers.
package repotest

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/lizet96/citas-backend/config"
	"github.com/lizet96/citas-backend/database"
	"github.com/lizet96/citas-backend/migrations"
	"github.com/lizet96/citas-backend/repository"
)

// NewSQLite devuelve un repositorio sobre un archivo SQLite nuevo dentro de
// t.TempDir(). La conexión se cierra al terminar la prueba.
func NewSQLite(t testing.TB) (repository.CitaRepository, *database.Conn) {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:         config.DriverSQLite,
		Name:           filepath.Join(t.TempDir(), "citas.db"),
		ConnectTimeout: 5 * time.Second,
	}
	if err := migrations.Up(cfg); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	conn, err := database.Connect(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(conn.Close)

	repo, err := repository.New(conn, database.NewQueryLogger(slog.Default(), 0))
	if err != nil {
		t.Fatalf("repository: %v", err)
	}
	return repo, conn
}
