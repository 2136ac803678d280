package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_NAME", filepath.Join(t.TempDir(), "citas.db"))
}

func TestRun_Commands(t *testing.T) {
	sqliteEnv(t)

	require.NoError(t, run([]string{"up"}))
	require.NoError(t, run([]string{"version"}))
	require.NoError(t, run([]string{"down", "1"}))
	require.NoError(t, run([]string{"up"}))
	require.NoError(t, run([]string{"force", "1"}))
}

// Un comando fallido devuelve error y libera el migrador para el siguiente
func TestRun_ErrorsReleaseMigrator(t *testing.T) {
	sqliteEnv(t)

	assert.ErrorContains(t, run([]string{"down", "cero"}), "número de pasos inválido")
	assert.ErrorContains(t, run([]string{"force"}), "se requiere la versión")
	assert.ErrorContains(t, run([]string{"force", "x"}), "versión inválida")

	require.NoError(t, run([]string{"up"}))
	require.NoError(t, run([]string{"down"}))
}

func TestRun_Usage(t *testing.T) {
	assert.ErrorIs(t, run(nil), errUsage)

	sqliteEnv(t)
	assert.ErrorIs(t, run([]string{"drop"}), errUsage)
}
