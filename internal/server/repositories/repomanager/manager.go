package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkovalenko/fileharbor/internal/dbx"
	"github.com/dkovalenko/fileharbor/internal/server/repositories/files"
	"github.com/dkovalenko/fileharbor/internal/server/repositories/folders"
	"github.com/dkovalenko/fileharbor/internal/server/repositories/sessions"
	"github.com/dkovalenko/fileharbor/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Folders(db dbx.DBTX) folders.Repository
	Files(db dbx.DBTX) files.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
