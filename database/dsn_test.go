package database

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lizet96/citas-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN_Postgres(t *testing.T) {
	dsn, err := DSN(config.DatabaseConfig{
		Driver:         config.DriverPostgres,
		Host:           "db",
		User:           "citas",
		Password:       "secreto",
		Name:           "citas",
		ConnectTimeout: 10 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres://citas:secreto@db:5432/citas?connect_timeout=10&sslmode=disable", dsn)

	dsn, err = DSN(config.DatabaseConfig{Driver: config.DriverPQ, URL: "postgres://x@y/z"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://x@y/z", dsn)
}

func TestDSN_MySQL(t *testing.T) {
	dsn, err := DSN(config.DatabaseConfig{
		Driver:         config.DriverMySQL,
		Host:           "mariadb",
		User:           "root",
		Password:       "pw",
		Name:           "citas",
		ConnectTimeout: 10 * time.Second,
	})
	require.NoError(t, err)

	mc, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "mariadb:3306", mc.Addr)
	assert.Equal(t, "citas", mc.DBName)
	assert.True(t, mc.ParseTime)
	assert.True(t, mc.ClientFoundRows)
	assert.Equal(t, 10*time.Second, mc.Timeout)
}

func TestDSN_MySQLFromURL(t *testing.T) {
	dsn, err := DSN(config.DatabaseConfig{
		Driver: config.DriverMySQL,
		URL:    "app:pw@tcp(10.0.0.5:3307)/agenda",
	})
	require.NoError(t, err)

	mc, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:3307", mc.Addr)
	assert.True(t, mc.ClientFoundRows)

	_, err = DSN(config.DatabaseConfig{Driver: config.DriverMySQL, URL: "no es un dsn"})
	assert.Error(t, err)
}

func TestDSN_SQLite(t *testing.T) {
	dsn, err := DSN(config.DatabaseConfig{Driver: config.DriverSQLite, Name: "/tmp/citas.db"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/citas.db?_busy_timeout=5000", dsn)

	_, err = DSN(config.DatabaseConfig{Driver: config.DriverSQLite})
	assert.Error(t, err)
}
