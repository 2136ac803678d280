package database

import (
	"context"
	"log/slog"
	"time"
)

// QueryLogger registra cada sentencia enviada al almacén con su duración.
// Las sentencias sin filas (ErrNotFound) no se consideran fallas.
type QueryLogger struct {
	logger *slog.Logger
	slow   time.Duration
}

// NewQueryLogger crea un QueryLogger; slow igual a cero desactiva el aviso de
// sentencias lentas.
func NewQueryLogger(logger *slog.Logger, slow time.Duration) *QueryLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryLogger{logger: logger.With("component", "store"), slow: slow}
}

// Observe se invoca al terminar cada sentencia, con el error ya mapeado.
func (q *QueryLogger) Observe(ctx context.Context, op, query string, start time.Time, err error) {
	if q == nil {
		return
	}
	d := time.Since(start)
	attrs := []any{
		slog.String("op", op),
		slog.String("query", trimQuery(query)),
		slog.Duration("duration", d),
	}

	switch {
	case err != nil && !IsNotFound(err):
		q.logger.ErrorContext(ctx, "error en sentencia", append(attrs, slog.Any("error", err))...)
	case q.slow > 0 && d > q.slow:
		q.logger.WarnContext(ctx, "sentencia lenta", attrs...)
	default:
		q.logger.DebugContext(ctx, "sentencia", attrs...)
	}
}

func trimQuery(s string) string {
	if len(s) > 300 {
		return s[:300] + "…"
	}
	return s
}
