package attachments

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/dmitrijs2005/gophupload/internal/common"
	"github.com/dmitrijs2005/gophupload/internal/dbx"
)

// SQLiteRepository implements Repository on the local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Merge upserts all items in one transaction.
func (r *SQLiteRepository) Merge(ctx context.Context, kind models.ResourceKind, parentID string, items []models.RemoteAttachment) error {
	if len(items) == 0 {
		return nil
	}
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, a := range items {
			if err := upsert(ctx, tx, kind, parentID, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsert(ctx context.Context, db dbx.DBTX, kind models.ResourceKind, parentID string, a models.RemoteAttachment) error {
	query := `INSERT INTO attachments (id, kind, parent_id, url, original_filename, file_size, file_type, created_at)
			values (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET kind = excluded.kind,
				parent_id = excluded.parent_id,
				url = excluded.url,
				original_filename = excluded.original_filename,
				file_size = excluded.file_size,
				file_type = excluded.file_type,
				created_at = excluded.created_at
	`
	_, err := db.ExecContext(ctx, query,
		a.ID, string(kind), parentID, a.URL, a.OriginalFilename, a.FileSizeBytes, a.FileType,
		a.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to upsert attachment %s: %w", a.ID, err)
	}
	return nil
}

// ListByParent returns the records of one parent ordered by creation time.
func (r *SQLiteRepository) ListByParent(ctx context.Context, kind models.ResourceKind, parentID string) ([]models.RemoteAttachment, error) {
	query := `select id, url, original_filename, file_size, file_type, created_at
			from attachments where kind=? and parent_id=? order by created_at, id`
	rows, err := r.db.QueryContext(ctx, query, string(kind), parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attachments: %w", err)
	}
	defer rows.Close()

	var result []models.RemoteAttachment
	for rows.Next() {
		var (
			a       models.RemoteAttachment
			created string
		)
		if err := rows.Scan(&a.ID, &a.URL, &a.OriginalFilename, &a.FileSizeBytes, &a.FileType, &created); err != nil {
			return nil, err
		}
		if a.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("attachment %s: bad created_at %q: %w", a.ID, created, err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteByID removes one record.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `delete from attachments where id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("attachment %s: %w", id, common.ErrorNotFound)
	}
	return nil
}
