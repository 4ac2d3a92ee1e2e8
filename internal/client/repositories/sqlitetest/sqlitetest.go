// Package sqlitetest opens a migrated throwaway SQLite database for
// repository and service tests.
package sqlitetest

import (
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/anchor/internal/client/migrations"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// Open returns a database in t's temp dir with every migration applied.
// It is closed when the test ends.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db, "."))

	return db
}
