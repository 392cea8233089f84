package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite(t *testing.T) {
	conn, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, DriverSQLite, conn.Driver)
	var one int
	require.NoError(t, conn.DB.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "x")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestPostgresDSNFromEnv(t *testing.T) {
	t.Setenv("PGHOST", "db.internal")
	t.Setenv("PGDATABASE", "talent")
	t.Setenv("PGPORT", "")

	dsn := PostgresDSNFromEnv()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "dbname=talent")
	assert.Contains(t, dsn, "port=5432")
}
