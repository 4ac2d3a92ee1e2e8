// Package repomanager wires the client's SQLite repositories together with
// the embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/anchor/internal/client/migrations"
	"github.com/dmitrijs2005/anchor/internal/client/repositories/actions"
	"github.com/dmitrijs2005/anchor/internal/client/repositories/anchors"
	"github.com/dmitrijs2005/anchor/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/anchor/internal/client/repositories/sessions"
	"github.com/dmitrijs2005/anchor/internal/dbx"
	"github.com/pressly/goose/v3"
)

// RepositoryManager vends repositories bound to a *sql.DB or *sql.Tx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Metadata(db dbx.DBTX) metadata.Repository
	Anchors(db dbx.DBTX) anchors.Repository
	Actions(db dbx.DBTX) actions.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}

type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() RepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Anchors(db dbx.DBTX) anchors.Repository {
	return anchors.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Actions(db dbx.DBTX) actions.Repository {
	return actions.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewSQLiteRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
