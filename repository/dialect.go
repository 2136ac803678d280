package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lizet96/citas-backend/config"
)

// Dialect describe las diferencias de SQL entre motores
type Dialect struct {
	Name string
	// DollarParams usa $1, $2… en lugar de ?
	DollarParams bool
	// Returning obtiene el id con INSERT … RETURNING id en lugar de LastInsertId
	Returning bool
}

var (
	DialectMySQL    = Dialect{Name: "mysql"}
	DialectSQLite   = Dialect{Name: "sqlite3"}
	DialectPostgres = Dialect{Name: "postgres", DollarParams: true, Returning: true}
)

// DialectFor devuelve el dialecto de un DB_DRIVER
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverMySQL:
		return DialectMySQL, nil
	case config.DriverSQLite:
		return DialectSQLite, nil
	case config.DriverPostgres, config.DriverPQ:
		return DialectPostgres, nil
	}
	return Dialect{}, fmt.Errorf("repository: driver %q no soportado", driver)
}

// Rebind reescribe los marcadores ? al estilo del dialecto. Las consultas del
// paquete no contienen ? dentro de literales.
func (d Dialect) Rebind(query string) string {
	if !d.DollarParams {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) insertQuery() string {
	q := d.Rebind(sqlInsertCita)
	if d.Returning {
		q += "\n\t\tRETURNING id"
	}
	return q
}
