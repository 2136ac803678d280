package routes_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/citas-backend/health"
	"github.com/lizet96/citas-backend/middleware"
	"github.com/lizet96/citas-backend/models"
	"github.com/lizet96/citas-backend/repository/repotest"
	"github.com/lizet96/citas-backend/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	app     *fiber.App
	monitor *health.Monitor
	close   func()
}

func newServer(t *testing.T, rl middleware.RateLimitConfig) testServer {
	t.Helper()
	repo, conn := repotest.NewSQLite(t)
	monitor := health.NewMonitor(conn, time.Second, nil)
	app := routes.NewApp(routes.Options{
		Repo:         repo,
		Monitor:      monitor,
		StoreTimeout: 2 * time.Second,
		BodyLimit:    1 << 20,
		RateLimit:    rl,
	})
	return testServer{app: app, monitor: monitor, close: conn.Close}
}

func request(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func jsonRequest(method, path, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// Recorrido completo del CRUD contra SQLite
func TestCitasCRUD(t *testing.T) {
	srv := newServer(t, middleware.RateLimitConfig{})
	app := srv.app

	body := `{"fecha":"2024-05-01","nombre_paciente":"Ana Gómez","especialidad":"cardiología","medico":"Dr. Pérez"}`
	resp, data := request(t, app, jsonRequest(http.MethodPost, "/api/citas", body))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var creada models.Cita
	require.NoError(t, json.Unmarshal(data, &creada))
	require.NotZero(t, creada.ID)
	assert.Equal(t, "2024-05-01", creada.Fecha.String())
	assert.Equal(t, "Ana Gómez", creada.NombrePaciente)
	assert.Equal(t, "cardiología", creada.Especialidad)
	assert.Equal(t, "Dr. Pérez", creada.Medico)

	path := "/api/citas/" + strconv.FormatInt(creada.ID, 10)

	resp, data = request(t, app, jsonRequest(http.MethodGet, path, ""))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var leida models.Cita
	require.NoError(t, json.Unmarshal(data, &leida))
	assert.Equal(t, creada, leida)

	update := `{"fecha":"2024-05-20","nombre_paciente":"Ana Gómez","especialidad":"neurología","medico":"Dr. Ríos"}`
	resp, _ = request(t, app, jsonRequest(http.MethodPut, path, update))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, data = request(t, app, jsonRequest(http.MethodGet, path, ""))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &leida))
	assert.Equal(t, creada.ID, leida.ID)
	assert.Equal(t, "2024-05-20", leida.Fecha.String())
	assert.Equal(t, "neurología", leida.Especialidad)
	assert.Equal(t, "Dr. Ríos", leida.Medico)

	resp, data = request(t, app, jsonRequest(http.MethodGet, "/api/citas", ""))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var todas []models.Cita
	require.NoError(t, json.Unmarshal(data, &todas))
	assert.Len(t, todas, 1)

	resp, _ = request(t, app, jsonRequest(http.MethodDelete, path, ""))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp, _ = request(t, app, jsonRequest(http.MethodDelete, path, ""))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp, _ = request(t, app, jsonRequest(http.MethodGet, path, ""))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCitas_TextosSinRecortarSQLite(t *testing.T) {
	srv := newServer(t, middleware.RateLimitConfig{})

	body := `{"fecha":"2024-05-01","nombre_paciente":"  Ana Gómez ","especialidad":"cardiología\n","medico":" Dr. Pérez"}`
	resp, data := request(t, srv.app, jsonRequest(http.MethodPost, "/api/citas", body))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var creada models.Cita
	require.NoError(t, json.Unmarshal(data, &creada))
	assert.Equal(t, "  Ana Gómez ", creada.NombrePaciente)

	resp, data = request(t, srv.app, jsonRequest(http.MethodGet, "/api/citas/"+strconv.FormatInt(creada.ID, 10), ""))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var leida models.Cita
	require.NoError(t, json.Unmarshal(data, &leida))
	assert.Equal(t, "  Ana Gómez ", leida.NombrePaciente)
	assert.Equal(t, "cardiología\n", leida.Especialidad)
	assert.Equal(t, " Dr. Pérez", leida.Medico)

	resp, _ = request(t, srv.app, jsonRequest(http.MethodPost, "/api/citas",
		`{"fecha":"0000-01-01","nombre_paciente":"Ana","especialidad":"x","medico":"y"}`))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCitas_InexistenteSQLite(t *testing.T) {
	srv := newServer(t, middleware.RateLimitConfig{})

	resp, data := request(t, srv.app, jsonRequest(http.MethodGet, "/api/citas/999999", ""))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Cita no encontrada"}`, string(data))

	body := `{"fecha":"2024-05-01","nombre_paciente":"Ana","especialidad":"x","medico":"y"}`
	resp, _ = request(t, srv.app, jsonRequest(http.MethodPut, "/api/citas/999999", body))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRutaNoEncontrada(t *testing.T) {
	srv := newServer(t, middleware.RateLimitConfig{})

	resp, data := request(t, srv.app, jsonRequest(http.MethodGet, "/api/pacientes", ""))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "Ruta no encontrada", body["error"])
}

func TestCORS(t *testing.T) {
	srv := newServer(t, middleware.RateLimitConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/api/citas", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, _ := request(t, srv.app, req)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodDelete)

	req = jsonRequest(http.MethodGet, "/api/citas", "")
	req.Header.Set("Origin", "http://otro-origen.example")
	resp, _ = request(t, srv.app, req)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHeadersComunes(t *testing.T) {
	srv := newServer(t, middleware.RateLimitConfig{})

	resp, _ := request(t, srv.app, jsonRequest(http.MethodGet, "/api/citas", ""))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	req := jsonRequest(http.MethodGet, "/api/citas", "")
	req.Header.Set(fiber.HeaderXRequestID, "abc-123")
	resp, _ = request(t, srv.app, req)
	assert.Equal(t, "abc-123", resp.Header.Get(fiber.HeaderXRequestID))
}

func TestRateLimit(t *testing.T) {
	srv := newServer(t, middleware.RateLimitConfig{Max: 2, Expiration: time.Minute})

	for i := 0; i < 2; i++ {
		resp, _ := request(t, srv.app, jsonRequest(http.MethodGet, "/api/citas", ""))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, data := request(t, srv.app, jsonRequest(http.MethodGet, "/api/citas", ""))
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, middleware.DefaultRateLimit.Message, body["error"])
	assert.EqualValues(t, 60, body["retry_after"])

	// /health queda fuera del grupo limitado
	resp, _ = request(t, srv.app, jsonRequest(http.MethodGet, "/health", ""))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv := newServer(t, middleware.RateLimitConfig{})

	resp, data := request(t, srv.app, jsonRequest(http.MethodGet, "/health", ""))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, health.StateUp, body["database"])

	srv.close()
	srv.monitor.Check(context.Background())

	resp, data = request(t, srv.app, jsonRequest(http.MethodGet, "/health", ""))
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, health.StateDown, body["database"])
	assert.Equal(t, "Base de datos no disponible", body["error"])
}
