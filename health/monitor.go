// Package health sondea periódicamente el almacén de citas y guarda el último
// resultado para el endpoint /health.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	StateUp   = "up"
	StateDown = "down"
)

// Pinger es satisfecho por repository.CitaRepository y database.Conn
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status último resultado del sondeo
type Status struct {
	Database  string    `json:"database"`
	CheckedAt time.Time `json:"checked_at"`
}

// Up indica si el último sondeo tuvo éxito
func (s Status) Up() bool { return s.Database == StateUp }

type Monitor struct {
	pinger  Pinger
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.RWMutex
	status  Status
	checked bool

	cron *cron.Cron
}

// NewMonitor crea un monitor; timeout acota cada sondeo
func NewMonitor(p Pinger, timeout time.Duration, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		pinger:  p,
		timeout: timeout,
		logger:  logger.With("component", "health"),
	}
}

// Check sondea el almacén ahora y guarda el resultado
func (m *Monitor) Check(ctx context.Context) Status {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	st := Status{Database: StateUp, CheckedAt: time.Now().UTC()}
	err := m.pinger.Ping(ctx)
	if err != nil {
		st.Database = StateDown
	}

	m.mu.Lock()
	prev, checked := m.status, m.checked
	m.status, m.checked = st, true
	m.mu.Unlock()

	switch {
	case err != nil && (!checked || prev.Up()):
		m.logger.Warn("Base de datos no disponible", "error", err)
	case err == nil && checked && !prev.Up():
		m.logger.Info("Base de datos recuperada")
	}
	return st
}

// Status devuelve el último resultado; si nunca se sondeó, sondea ahora
func (m *Monitor) Status(ctx context.Context) Status {
	m.mu.RLock()
	st, checked := m.status, m.checked
	m.mu.RUnlock()
	if !checked {
		return m.Check(ctx)
	}
	return st
}

// Start sondea una vez y agenda los siguientes sondeos con una expresión de
// cron ("@every 30s", "*/5 * * * *").
func (m *Monitor) Start(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { m.Check(context.Background()) }); err != nil {
		return fmt.Errorf("health: expresión %q inválida: %w", schedule, err)
	}
	m.Check(context.Background())
	c.Start()
	m.cron = c
	m.logger.Info("Monitor de salud iniciado", "schedule", schedule)
	return nil
}

// Stop detiene el agendador y espera a que termine el sondeo en curso
func (m *Monitor) Stop() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
}
