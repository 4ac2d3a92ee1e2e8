package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/anchor/internal/dbx"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/anchors"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/orders"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/rituals"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/syncactions"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a *sql.DB or *sql.Tx, so a
// service can run several of them inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Anchors(db dbx.DBTX) anchors.Repository
	Rituals(db dbx.DBTX) rituals.Repository
	Orders(db dbx.DBTX) orders.Repository
	SyncActions(db dbx.DBTX) syncactions.Repository
}
