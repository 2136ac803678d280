package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/lizet96/citas-backend/config"
	"github.com/lizet96/citas-backend/migrations"
)

var errUsage = errors.New("uso")

func main() {
	flag.Parse()
	if err := run(flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			usage()
		} else {
			slog.Error(err.Error())
		}
		os.Exit(1)
	}
}

// run ejecuta un comando; el migrador se cierra siempre antes de volver
func run(args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	m, err := migrations.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("migración: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			slog.Warn("error al cerrar el migrador", "source", srcErr, "database", dbErr)
		}
	}()

	return execute(m, args)
}

func execute(m *migrate.Migrate, args []string) error {
	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("up falló: %w", err)
		}
		slog.Info("migraciones aplicadas")

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("down: número de pasos inválido %q", args[1])
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("down falló: %w", err)
		}
		slog.Info("migraciones revertidas", "steps", steps)

	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("version falló: %w", err)
		}
		fmt.Printf("version: %d  dirty: %v\n", v, dirty)

	case "force":
		if len(args) < 2 {
			return errors.New("force: se requiere la versión")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("force: versión inválida %q", args[1])
		}
		if err := m.Force(v); err != nil {
			return fmt.Errorf("force falló: %w", err)
		}
		slog.Info("versión forzada", "version", v)

	default:
		return errUsage
	}
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `Uso: migrate <comando> [args]

Comandos:
  up           Aplica las migraciones pendientes
  down [N]     Revierte N migraciones (por defecto 1)
  version      Muestra la versión actual
  force <V>    Fija la versión (limpia el estado dirty)

Usa la misma configuración que el servidor (DB_DRIVER, DATABASE_URL, DB_*).`)
}
