package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophupload/internal/client/migrations"
	"github.com/dmitrijs2005/gophupload/internal/client/repositories/attachments"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories groups the local stores.
type Repositories struct {
	Attachments attachments.Repository
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Attachments: attachments.NewSQLiteRepository(db),
	}
}

// RunMigrations applies the embedded migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite database at dsn and migrates it.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dsn, err)
	}
	return db, nil
}
