package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// LayoutFecha formato de fecha de calendario usado en JSON y SQL
const LayoutFecha = "2006-01-02"

// Fecha es una fecha de calendario sin componente horario
type Fecha struct {
	time.Time
}

// NuevaFecha normaliza t a medianoche UTC del mismo día
func NuevaFecha(t time.Time) Fecha {
	y, m, d := t.Date()
	return Fecha{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseFecha interpreta "2006-01-02"
func ParseFecha(s string) (Fecha, error) {
	t, err := time.Parse(LayoutFecha, strings.TrimSpace(s))
	if err != nil {
		return Fecha{}, err
	}
	return Fecha{t}, nil
}

func (f Fecha) String() string {
	return f.Format(LayoutFecha)
}

func (f Fecha) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}

func (f *Fecha) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseFecha(s)
	if err != nil {
		return fmt.Errorf("fecha inválida %q: %w", s, err)
	}
	*f = parsed
	return nil
}

// Value se envía como texto para que cada motor lo convierta a DATE
func (f Fecha) Value() (driver.Value, error) {
	return f.String(), nil
}

// Scan acepta time.Time (pgx, MySQL con parseTime, SQLite) o texto
func (f *Fecha) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*f = NuevaFecha(v)
		return nil
	case string:
		return f.scanText(v)
	case []byte:
		return f.scanText(string(v))
	case nil:
		return fmt.Errorf("fecha: valor NULL")
	}
	return fmt.Errorf("fecha: tipo no soportado %T", src)
}

func (f *Fecha) scanText(s string) error {
	// SQLite puede devolver "2024-05-01 00:00:00+00:00"
	if len(s) > len(LayoutFecha) {
		s = s[:len(LayoutFecha)]
	}
	parsed, err := ParseFecha(s)
	if err != nil {
		return fmt.Errorf("fecha: %w", err)
	}
	*f = parsed
	return nil
}
