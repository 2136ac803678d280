package database

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/lizet96/citas-backend/config"
)

// DSN devuelve la cadena de conexión para el driver configurado. Si
// DATABASE_URL está definido se usa tal cual (ajustado para MySQL); si no, se
// arma con DB_HOST, DB_PORT, DB_USER, DB_PASSWORD y DB_NAME.
func DSN(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case config.DriverPostgres, config.DriverPQ:
		if cfg.URL != "" {
			return cfg.URL, nil
		}
		return postgresDSN(cfg), nil
	case config.DriverMySQL:
		return mysqlDSN(cfg)
	case config.DriverSQLite:
		if cfg.URL != "" {
			return cfg.URL, nil
		}
		if cfg.Name == "" {
			return "", fmt.Errorf("database: sqlite3 requiere DB_NAME (ruta del archivo)")
		}
		return cfg.Name + "?_busy_timeout=5000", nil
	}
	return "", fmt.Errorf("database: driver %q no soportado", cfg.Driver)
}

func postgresDSN(cfg config.DatabaseConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:   "/" + cfg.Name,
	}
	q := url.Values{}
	q.Set("sslmode", "disable")
	if cfg.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(cfg.ConnectTimeout.Seconds())))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// mysqlDSN fuerza parseTime para leer DATE como time.Time y clientFoundRows
// para que un UPDATE sin cambios cuente la fila encontrada.
func mysqlDSN(cfg config.DatabaseConfig) (string, error) {
	var mc *mysql.Config
	if cfg.URL != "" {
		parsed, err := mysql.ParseDSN(cfg.URL)
		if err != nil {
			return "", fmt.Errorf("database: DATABASE_URL inválido para mysql: %w", err)
		}
		mc = parsed
	} else {
		port := cfg.Port
		if port == 0 {
			port = 3306
		}
		mc = mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
		mc.DBName = cfg.Name
	}
	mc.ParseTime = true
	mc.ClientFoundRows = true
	if mc.Timeout == 0 {
		mc.Timeout = cfg.ConnectTimeout
	}
	return mc.FormatDSN(), nil
}
