package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lizet96/citas-backend/database"
	"github.com/lizet96/citas-backend/models"
)

// sqlRepo implementación sobre database/sql
type sqlRepo struct {
	db      *sql.DB
	dialect Dialect
	log     *database.QueryLogger

	qList, qGet, qInsert, qUpdate, qDelete string
}

// NewSQLRepository devuelve un CitaRepository sobre db con el dialecto dado
func NewSQLRepository(db *sql.DB, dialect Dialect, log *database.QueryLogger) CitaRepository {
	return &sqlRepo{
		db:      db,
		dialect: dialect,
		log:     log,
		qList:   dialect.Rebind(sqlListCitas),
		qGet:    dialect.Rebind(sqlGetCita),
		qInsert: dialect.insertQuery(),
		qUpdate: dialect.Rebind(sqlUpdateCita),
		qDelete: dialect.Rebind(sqlDeleteCita),
	}
}

func (r *sqlRepo) List(ctx context.Context) (citas []models.Cita, err error) {
	start := time.Now()
	defer func() { r.log.Observe(ctx, "list", r.qList, start, err) }()

	rows, err := r.db.QueryContext(ctx, r.qList)
	if err != nil {
		return nil, fmt.Errorf("repository: listar citas: %w", database.MapError(err))
	}
	defer rows.Close()

	citas = make([]models.Cita, 0)
	for rows.Next() {
		c, err := scanCita(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: scan: %w", database.MapError(err))
		}
		citas = append(citas, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: listar citas: %w", database.MapError(err))
	}
	return citas, nil
}

func (r *sqlRepo) GetByID(ctx context.Context, id int64) (c *models.Cita, err error) {
	start := time.Now()
	defer func() { r.log.Observe(ctx, "get", r.qGet, start, err) }()

	c, err = scanCita(r.db.QueryRowContext(ctx, r.qGet, id))
	if err != nil {
		return nil, fmt.Errorf("repository: obtener cita %d: %w", id, database.MapError(err))
	}
	return c, nil
}

func (r *sqlRepo) Create(ctx context.Context, in models.CitaInput) (c *models.Cita, err error) {
	start := time.Now()
	defer func() { r.log.Observe(ctx, "create", r.qInsert, start, err) }()

	args := []any{in.Fecha, in.NombrePaciente, in.Especialidad, in.Medico}

	var id int64
	if r.dialect.Returning {
		err = r.db.QueryRowContext(ctx, r.qInsert, args...).Scan(&id)
	} else {
		var res sql.Result
		res, err = r.db.ExecContext(ctx, r.qInsert, args...)
		if err == nil {
			id, err = res.LastInsertId()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("repository: crear cita: %w", database.MapError(err))
	}

	cita := in.WithID(id)
	return &cita, nil
}

func (r *sqlRepo) Update(ctx context.Context, id int64, in models.CitaInput) (err error) {
	start := time.Now()
	defer func() { r.log.Observe(ctx, "update", r.qUpdate, start, err) }()

	res, err := r.db.ExecContext(ctx, r.qUpdate, in.Fecha, in.NombrePaciente, in.Especialidad, in.Medico, id)
	if err != nil {
		return fmt.Errorf("repository: editar cita %d: %w", id, database.MapError(err))
	}
	return affected(res, id)
}

func (r *sqlRepo) Delete(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { r.log.Observe(ctx, "delete", r.qDelete, start, err) }()

	res, err := r.db.ExecContext(ctx, r.qDelete, id)
	if err != nil {
		return fmt.Errorf("repository: eliminar cita %d: %w", id, database.MapError(err))
	}
	return affected(res, id)
}

func (r *sqlRepo) Ping(ctx context.Context) error {
	return database.MapError(r.db.PingContext(ctx))
}

func affected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: filas afectadas: %w", database.MapError(err))
	}
	if n == 0 {
		return fmt.Errorf("repository: cita %d: %w", id, database.ErrNotFound)
	}
	return nil
}

var _ CitaRepository = (*sqlRepo)(nil)
