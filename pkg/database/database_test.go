package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/event-dashboard-api/pkg/config"
)

func TestOpenSQLiteCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "calendar.db")
	db, err := Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: path})
	require.NoError(t, err)
	defer db.Close()

	require.Equal(t, config.DriverSQLite, db.DriverName())
	require.FileExists(t, path)
}
