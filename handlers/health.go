package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/citas-backend/health"
)

// Version del servicio reportada en /health
const Version = "1.0.0"

// HealthCheck responde el estado del servicio y del último sondeo al almacén
func HealthCheck(m *health.Monitor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st := m.Status(c.UserContext())
		body := fiber.Map{
			"status":     "ok",
			"message":    "API de citas médicas",
			"version":    Version,
			"database":   st.Database,
			"checked_at": st.CheckedAt.Format(time.RFC3339),
		}
		if !st.Up() {
			body["status"] = "degraded"
			body["error"] = "Base de datos no disponible"
			return c.Status(fiber.StatusServiceUnavailable).JSON(body)
		}
		return c.JSON(body)
	}
}
