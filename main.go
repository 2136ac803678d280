package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lizet96/citas-backend/config"
	"github.com/lizet96/citas-backend/database"
	"github.com/lizet96/citas-backend/health"
	"github.com/lizet96/citas-backend/middleware"
	"github.com/lizet96/citas-backend/migrations"
	"github.com/lizet96/citas-backend/repository"
	"github.com/lizet96/citas-backend/routes"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("El servidor terminó con error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Cargar variables de entorno
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(cfg.Database); err != nil {
			return err
		}
	}

	// Conectar a la base de datos
	ctx := context.Background()
	conn, err := database.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	repo, err := repository.New(conn, database.NewQueryLogger(logger, cfg.Database.SlowQueryThreshold))
	if err != nil {
		return err
	}

	monitor := health.NewMonitor(repo, cfg.Database.StoreTimeout, logger)
	if err := monitor.Start(cfg.HealthCheckSchedule); err != nil {
		return err
	}
	defer monitor.Stop()

	app := routes.NewApp(routes.Options{
		Repo:         repo,
		Monitor:      monitor,
		Logger:       logger,
		StoreTimeout: cfg.Database.StoreTimeout,
		BodyLimit:    cfg.BodyLimit,
		RateLimit: middleware.RateLimitConfig{
			Max:        cfg.RateLimitMax,
			Expiration: cfg.RateLimitWindow,
		},
	})

	// Iniciar servidor
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Servidor de citas médicas iniciado",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"driver", cfg.Database.Driver,
		)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case err := <-errCh:
		return err
	case s := <-sig:
		logger.Info("Señal recibida, deteniendo servidor", "signal", s.String())
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("Cierre del servidor incompleto", "error", err)
	}
	logger.Info("Servidor detenido")
	return nil
}

// newLogger usa JSON en producción y texto en desarrollo
func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
