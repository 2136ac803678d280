// Package repository implementa el almacén de citas sobre PostgreSQL (pgx) y
// sobre database/sql (MariaDB/MySQL, SQLite y PostgreSQL con lib/pq). Todo el
// SQL es explícito y los valores del usuario siempre se envían como
// parámetros.
package repository

import (
	"context"

	"github.com/lizet96/citas-backend/database"
	"github.com/lizet96/citas-backend/models"
)

// CitaRepository contrato de persistencia de citas
type CitaRepository interface {
	// List devuelve todas las citas en orden de id
	List(ctx context.Context) ([]models.Cita, error)

	// GetByID devuelve database.ErrNotFound si no existe
	GetByID(ctx context.Context, id int64) (*models.Cita, error)

	// Create inserta la cita y devuelve el registro con el id asignado
	Create(ctx context.Context, in models.CitaInput) (*models.Cita, error)

	// Update reemplaza los cuatro campos; database.ErrNotFound si ninguna
	// fila coincidió
	Update(ctx context.Context, id int64, in models.CitaInput) error

	// Delete elimina la fila; database.ErrNotFound si ninguna fila coincidió
	Delete(ctx context.Context, id int64) error

	Ping(ctx context.Context) error
}

const (
	sqlListCitas = `
		SELECT id, fecha, nombre_paciente, especialidad, medico
		FROM   citas
		ORDER  BY id`

	sqlGetCita = `
		SELECT id, fecha, nombre_paciente, especialidad, medico
		FROM   citas
		WHERE  id = ?`

	sqlInsertCita = `
		INSERT INTO citas (fecha, nombre_paciente, especialidad, medico)
		VALUES (?, ?, ?, ?)`

	sqlUpdateCita = `
		UPDATE citas
		SET    fecha = ?, nombre_paciente = ?, especialidad = ?, medico = ?
		WHERE  id = ?`

	sqlDeleteCita = `
		DELETE FROM citas WHERE id = ?`
)

// scanner es satisfecho por pgx.Row, pgx.Rows, *sql.Row y *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanCita(row scanner) (*models.Cita, error) {
	c := &models.Cita{}
	if err := row.Scan(&c.ID, &c.Fecha, &c.NombrePaciente, &c.Especialidad, &c.Medico); err != nil {
		return nil, err
	}
	return c, nil
}

// New elige la implementación según el manejador abierto
func New(conn *database.Conn, log *database.QueryLogger) (CitaRepository, error) {
	if conn.Pool != nil {
		return NewPgRepository(conn.Pool, log), nil
	}
	dialect, err := DialectFor(conn.Driver)
	if err != nil {
		return nil, err
	}
	return NewSQLRepository(conn.SQL, dialect, log), nil
}
