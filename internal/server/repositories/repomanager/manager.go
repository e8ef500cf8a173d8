package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/savethatagain/internal/dbx"
	"github.com/dmitrijs2005/savethatagain/internal/server/repositories/blobdeletions"
	"github.com/dmitrijs2005/savethatagain/internal/server/repositories/clips"
	"github.com/dmitrijs2005/savethatagain/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX, so the same
// constructors serve both plain connections and transactions.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Clips(db dbx.DBTX) clips.Repository
	BlobDeletions(db dbx.DBTX) blobdeletions.Repository
}
