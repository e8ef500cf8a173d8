package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/savethatagain/internal/client/migrations"
	"github.com/dmitrijs2005/savethatagain/internal/filex"

	_ "modernc.org/sqlite"
)

// RunMigrations applies the embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrations.Up(ctx, db)
}

// InitDatabase opens the SQLite database at path and migrates it. A new file
// is created readable by the owner only.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	if err := filex.EnsurePrivateFile(path); err != nil {
		return nil, fmt.Errorf("prepare database file: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
