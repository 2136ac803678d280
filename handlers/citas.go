package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/citas-backend/database"
	"github.com/lizet96/citas-backend/models"
	"github.com/lizet96/citas-backend/repository"
)

// Mensajes de error devueltos al cliente
const (
	msgNoEncontrada = "Cita no encontrada"
	msgIDInvalido   = "ID inválido"
	msgDatos        = "Datos inválidos"
	msgFecha        = "La fecha debe tener el formato AAAA-MM-DD"
	msgListar       = "Error al obtener las citas"
	msgObtener      = "Error al obtener la cita"
	msgCrear        = "Error al crear la cita"
	msgEditar       = "Error al editar la cita"
	msgEliminar     = "Error al eliminar la cita"
)

var msgFechaRango = fmt.Sprintf("La fecha debe estar entre los años %d y %d", models.AnioMinimo, models.AnioMaximo)

// CitasHandler atiende el CRUD de /api/citas. Cada petición hace una sola
// llamada al almacén acotada por timeout.
type CitasHandler struct {
	repo     repository.CitaRepository
	timeout  time.Duration
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCitasHandler crea el handler con el repositorio inyectado
func NewCitasHandler(repo repository.CitaRepository, timeout time.Duration, logger *slog.Logger) *CitasHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CitasHandler{
		repo:     repo,
		timeout:  timeout,
		validate: newValidator(),
		logger:   logger.With("component", "citas"),
	}
}

// ObtenerCitas obtiene todas las citas
func (h *CitasHandler) ObtenerCitas(c *fiber.Ctx) error {
	ctx, cancel := h.storeContext(c)
	defer cancel()

	citas, err := h.repo.List(ctx)
	if err != nil {
		return h.storeError(c, err, msgListar)
	}
	return c.JSON(citas)
}

// ObtenerCitaPorID obtiene una cita específica por ID
func (h *CitasHandler) ObtenerCitaPorID(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgIDInvalido})
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	cita, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return h.storeError(c, err, msgObtener)
	}
	return c.JSON(cita)
}

// CrearCita crea una nueva cita
func (h *CitasHandler) CrearCita(c *fiber.Ctx) error {
	in, msg := h.bindCita(c)
	if msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	cita, err := h.repo.Create(ctx, in)
	if err != nil {
		return h.storeError(c, err, msgCrear)
	}
	return c.Status(fiber.StatusCreated).JSON(cita)
}

// ActualizarCita reemplaza los cuatro campos de una cita existente. La
// respuesta repite el id de la ruta y los campos enviados sin releer la fila.
func (h *CitasHandler) ActualizarCita(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgIDInvalido})
	}

	in, msg := h.bindCita(c)
	if msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	if err := h.repo.Update(ctx, id, in); err != nil {
		return h.storeError(c, err, msgEditar)
	}
	return c.JSON(in.WithID(id))
}

// EliminarCita elimina una cita
func (h *CitasHandler) EliminarCita(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgIDInvalido})
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	if err := h.repo.Delete(ctx, id); err != nil {
		return h.storeError(c, err, msgEliminar)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CitasHandler) storeContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), h.timeout)
}

// storeError responde 404 si no hubo filas y 500 para cualquier otra falla
// del almacén; la causa sólo se registra en el log.
func (h *CitasHandler) storeError(c *fiber.Ctx, err error, msg string) error {
	if database.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgNoEncontrada})
	}
	h.logger.ErrorContext(c.UserContext(), msg,
		"error", err,
		"timeout", database.IsTimeout(err),
		"method", c.Method(),
		"path", c.Path(),
		"request_id", c.Locals("requestid"),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
}

// bindCita decodifica y valida el cuerpo; devuelve un mensaje no vacío si
// la solicitud debe rechazarse.
func (h *CitasHandler) bindCita(c *fiber.Ctx) (models.CitaInput, string) {
	var req models.CitaRequest
	if err := c.BodyParser(&req); err != nil {
		return models.CitaInput{}, msgDatos
	}
	if err := h.validate.Struct(req); err != nil {
		return models.CitaInput{}, validationMessage(err)
	}

	in, err := req.ToInput()
	if errors.Is(err, models.ErrFechaFueraDeRango) {
		return models.CitaInput{}, msgFechaRango
	}
	if err != nil {
		return models.CitaInput{}, msgFecha
	}
	return in, ""
}

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Reportar los campos con su nombre JSON
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// notblank no forma parte de las etiquetas estándar
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return msgDatos
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("El campo %s es obligatorio", fe.Field())
	case "datetime":
		return msgFecha
	case "max":
		return fmt.Sprintf("El campo %s no puede exceder %s caracteres", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("El campo %s es inválido", fe.Field())
}
