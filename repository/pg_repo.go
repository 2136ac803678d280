package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lizet96/citas-backend/database"
	"github.com/lizet96/citas-backend/models"
)

var (
	pgList   = DialectPostgres.Rebind(sqlListCitas)
	pgGet    = DialectPostgres.Rebind(sqlGetCita)
	pgInsert = DialectPostgres.insertQuery()
	pgUpdate = DialectPostgres.Rebind(sqlUpdateCita)
	pgDelete = DialectPostgres.Rebind(sqlDeleteCita)
)

// pgRepo implementación sobre el pool de pgx
type pgRepo struct {
	pool *pgxpool.Pool
	log  *database.QueryLogger
}

// NewPgRepository devuelve un CitaRepository sobre pool
func NewPgRepository(pool *pgxpool.Pool, log *database.QueryLogger) CitaRepository {
	return &pgRepo{pool: pool, log: log}
}

func (r *pgRepo) List(ctx context.Context) (citas []models.Cita, err error) {
	start := time.Now()
	defer func() { r.log.Observe(ctx, "list", pgList, start, err) }()

	rows, err := r.pool.Query(ctx, pgList)
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

func (r *pgRepo) GetByID(ctx context.Context, id int64) (c *models.Cita, err error) {
	start := time.Now()
	defer func() { r.log.Observe(ctx, "get", pgGet, start, err) }()

	c, err = scanCita(r.pool.QueryRow(ctx, pgGet, id))
	if err != nil {
		return nil, fmt.Errorf("repository: obtener cita %d: %w", id, database.MapError(err))
	}
	return c, nil
}

func (r *pgRepo) Create(ctx context.Context, in models.CitaInput) (c *models.Cita, err error) {
	start := time.Now()
	defer func() { r.log.Observe(ctx, "create", pgInsert, start, err) }()

	var id int64
	err = r.pool.QueryRow(ctx, pgInsert, in.Fecha, in.NombrePaciente, in.Especialidad, in.Medico).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("repository: crear cita: %w", database.MapError(err))
	}
	cita := in.WithID(id)
	return &cita, nil
}

func (r *pgRepo) Update(ctx context.Context, id int64, in models.CitaInput) (err error) {
	start := time.Now()
	defer func() { r.log.Observe(ctx, "update", pgUpdate, start, err) }()

	tag, err := r.pool.Exec(ctx, pgUpdate, in.Fecha, in.NombrePaciente, in.Especialidad, in.Medico, id)
	return pgAffected(tag.RowsAffected(), id, err, "editar")
}

func (r *pgRepo) Delete(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { r.log.Observe(ctx, "delete", pgDelete, start, err) }()

	tag, err := r.pool.Exec(ctx, pgDelete, id)
	return pgAffected(tag.RowsAffected(), id, err, "eliminar")
}

func (r *pgRepo) Ping(ctx context.Context) error {
	return database.MapError(r.pool.Ping(ctx))
}

func pgAffected(n int64, id int64, err error, op string) error {
	if err != nil {
		return fmt.Errorf("repository: %s cita %d: %w", op, id, database.MapError(err))
	}
	if n == 0 {
		return fmt.Errorf("repository: cita %d: %w", id, database.ErrNotFound)
	}
	return nil
}

var (
	_ CitaRepository = (*pgRepo)(nil)
	_ scanner        = (pgx.Row)(nil)
)
