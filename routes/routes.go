package routes

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lizet96/citas-backend/handlers"
	"github.com/lizet96/citas-backend/health"
	"github.com/lizet96/citas-backend/middleware"
	"github.com/lizet96/citas-backend/repository"
)

// Options dependencias y ajustes de la aplicación HTTP
type Options struct {
	Repo         repository.CitaRepository
	Monitor      *health.Monitor
	Logger       *slog.Logger
	StoreTimeout time.Duration
	BodyLimit    int
	RateLimit    middleware.RateLimitConfig
}

// NewApp crea la instancia de Fiber con middleware y rutas
func NewApp(opts Options) *fiber.App {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(opts.Logger),
		AppName:      "Citas Médicas API v" + handlers.Version,
		BodyLimit:    opts.BodyLimit,
	})

	SetupRoutes(app, opts)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":  "Ruta no encontrada",
			"path":   c.Path(),
			"method": c.Method(),
		})
	})
	return app
}

// SetupRoutes configura todas las rutas de la aplicación
func SetupRoutes(app *fiber.App, opts Options) {
	// Middleware global
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.LoggingMiddleware(opts.Logger))
	app.Use(middleware.SecurityHeaders())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Ruta de salud del sistema
	if opts.Monitor != nil {
		app.Get("/health", handlers.HealthCheck(opts.Monitor))
	}

	// Grupo de API
	api := app.Group("/api", middleware.CreateRateLimiter(opts.RateLimit))

	// --- RUTAS DE CITAS ---
	h := handlers.NewCitasHandler(opts.Repo, opts.StoreTimeout, opts.Logger)
	citas := api.Group("/citas")
	citas.Get("/", h.ObtenerCitas)
	citas.Post("/", h.CrearCita)
	citas.Get("/:id", h.ObtenerCitaPorID)
	citas.Put("/:id", h.ActualizarCita)
	citas.Delete("/:id", h.EliminarCita)
}

// errorHandler convierte cualquier error no manejado en {"error": mensaje}
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "Error interno del servidor"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else {
			logger.ErrorContext(c.UserContext(), "error no manejado",
				"error", err, "method", c.Method(), "path", c.Path())
		}
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
}
