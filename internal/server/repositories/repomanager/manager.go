package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/writerlab/internal/dbx"
	"github.com/dmitrijs2005/writerlab/internal/server/repositories/books"
	"github.com/dmitrijs2005/writerlab/internal/server/repositories/outlines"
	"github.com/dmitrijs2005/writerlab/internal/server/repositories/passwords"
	"github.com/dmitrijs2005/writerlab/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a handle, so services can
// pass either the pool or an open transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Passwords(db dbx.DBTX) passwords.Repository
	Books(db dbx.DBTX) books.Repository
	Outlines(db dbx.DBTX) outlines.Repository
}
