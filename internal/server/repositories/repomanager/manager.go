// Package repomanager wires repository implementations to database handles
// and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"authkeeper/internal/dbx"
	"authkeeper/internal/server/repositories/refreshtokens"
	"authkeeper/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX, which lets a
// service use the same repository code on a plain connection or inside a
// transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
