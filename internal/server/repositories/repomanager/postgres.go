// Package repomanager wires the PostgreSQL repositories together with the
// embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/anchor/internal/dbx"
	"github.com/dmitrijs2005/anchor/internal/server/migrations"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/anchors"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/orders"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/rituals"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/syncactions"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Anchors(db dbx.DBTX) anchors.Repository {
	return anchors.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Rituals(db dbx.DBTX) rituals.Repository {
	return rituals.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Orders(db dbx.DBTX) orders.Repository {
	return orders.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) SyncActions(db dbx.DBTX) syncactions.Repository {
	return syncactions.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
