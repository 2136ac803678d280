package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound ninguna fila coincide con el identificador
	ErrNotFound = errors.New("database: registro no encontrado")

	// ErrTimeout la sentencia excedió su tiempo límite o fue cancelada
	ErrTimeout = errors.New("database: tiempo de espera agotado")

	// ErrConnectionFailed el servidor no es alcanzable
	ErrConnectionFailed = errors.New("database: conexión fallida")

	// ErrDuplicateKey violación de unicidad
	ErrDuplicateKey = errors.New("database: clave duplicada")

	// ErrConstraint violación de NOT NULL, CHECK o llave foránea
	ErrConstraint = errors.New("database: restricción violada")

	// ErrDeadlock bloqueo detectado por el motor
	ErrDeadlock = errors.New("database: bloqueo detectado")
)

// DBError conserva el error original del driver junto al centinela
type DBError struct {
	Sentinel error
	Cause    error
}

func (e *DBError) Error() string {
	return fmt.Sprintf("%s (causa: %v)", e.Sentinel, e.Cause)
}

func (e *DBError) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *DBError) Unwrap() error        { return e.Cause }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func IsTimeout(err error) bool  { return errors.Is(err, ErrTimeout) }

// MapError traduce errores de pgx, lib/pq, MySQL y SQLite a los centinelas
// del paquete. Los errores desconocidos se devuelven sin cambios.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var dbe *DBError
	if errors.As(err, &dbe) {
		return err
	}

	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, pgx.ErrNoRows):
		return &DBError{Sentinel: ErrNotFound, Cause: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &DBError{Sentinel: ErrTimeout, Cause: err}
	case errors.Is(err, driver.ErrBadConn):
		return &DBError{Sentinel: ErrConnectionFailed, Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPGCode(pgErr.Code, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return mapPGCode(string(pqErr.Code), err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return &DBError{Sentinel: ErrConnectionFailed, Cause: err}
	}
	if pgconn.Timeout(err) {
		return &DBError{Sentinel: ErrTimeout, Cause: err}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return mapMySQLNumber(myErr.Number, err)
	}
	if errors.Is(err, mysql.ErrInvalidConn) {
		return &DBError{Sentinel: ErrConnectionFailed, Cause: err}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return mapSQLiteError(liteErr, err)
	}

	return err
}

// Códigos SQLSTATE: https://www.postgresql.org/docs/current/errcodes-appendix.html
func mapPGCode(code string, cause error) error {
	switch code {
	case "23505":
		return &DBError{Sentinel: ErrDuplicateKey, Cause: cause}
	case "23502", "23503", "23514":
		return &DBError{Sentinel: ErrConstraint, Cause: cause}
	case "40P01":
		return &DBError{Sentinel: ErrDeadlock, Cause: cause}
	case "57014":
		return &DBError{Sentinel: ErrTimeout, Cause: cause}
	case "08000", "08001", "08003", "08004", "08006", "08007", "08P01", "57P01":
		return &DBError{Sentinel: ErrConnectionFailed, Cause: cause}
	}
	return cause
}

func mapMySQLNumber(n uint16, cause error) error {
	switch n {
	case 1062:
		return &DBError{Sentinel: ErrDuplicateKey, Cause: cause}
	case 1048, 1364, 1452, 1216, 1217, 3819:
		return &DBError{Sentinel: ErrConstraint, Cause: cause}
	case 1213:
		return &DBError{Sentinel: ErrDeadlock, Cause: cause}
	case 1205, 3024:
		return &DBError{Sentinel: ErrTimeout, Cause: cause}
	case 1040, 1045, 1049, 2002, 2003, 2006, 2013:
		return &DBError{Sentinel: ErrConnectionFailed, Cause: cause}
	}
	return cause
}

func mapSQLiteError(e sqlite3.Error, cause error) error {
	switch e.Code {
	case sqlite3.ErrConstraint:
		if e.ExtendedCode == sqlite3.ErrConstraintUnique || e.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return &DBError{Sentinel: ErrDuplicateKey, Cause: cause}
		}
		return &DBError{Sentinel: ErrConstraint, Cause: cause}
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return &DBError{Sentinel: ErrDeadlock, Cause: cause}
	case sqlite3.ErrCantOpen:
		return &DBError{Sentinel: ErrConnectionFailed, Cause: cause}
	}
	return cause
}
