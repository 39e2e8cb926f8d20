package attachments

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/dmitrijs2005/gophupload/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE attachments (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  parent_id TEXT NOT NULL,
  url TEXT NOT NULL,
  original_filename TEXT NOT NULL,
  file_size INTEGER NOT NULL DEFAULT 0,
  file_type TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func attachment(id, name string, created time.Time) models.RemoteAttachment {
	return models.RemoteAttachment{
		ID:               id,
		URL:              "https://files.example.com/" + name,
		OriginalFilename: name,
		FileSizeBytes:    int64(len(name)),
		FileType:         "application/pdf",
		CreatedAt:        created,
	}
}

func TestMerge_InsertListAndReplace(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	a := attachment("a", "plan.pdf", t0)
	b := attachment("b", "spec.pdf", t0.Add(time.Minute))
	other := attachment("c", "other.pdf", t0)

	require.NoError(t, r.Merge(ctx, models.KindProjectAttachment, "42", []models.RemoteAttachment{b, a}))
	require.NoError(t, r.Merge(ctx, models.KindProjectAttachment, "43", []models.RemoteAttachment{other}))

	got, err := r.ListByParent(ctx, models.KindProjectAttachment, "42")
	require.NoError(t, err)
	if diff := cmp.Diff([]models.RemoteAttachment{a, b}, got); diff != "" {
		t.Fatalf("ListByParent mismatch (-want +got):\n%s", diff)
	}

	a.URL = "https://files.example.com/v2/plan.pdf"
	require.NoError(t, r.Merge(ctx, models.KindProjectAttachment, "42", []models.RemoteAttachment{a}))

	got, err = r.ListByParent(ctx, models.KindProjectAttachment, "42")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.URL, got[0].URL)
}

func TestMerge_KindsAreSeparate(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Merge(ctx, models.KindCertificationDocument, "1",
		[]models.RemoteAttachment{attachment("d", "cert.pdf", time.Now().UTC())}))

	got, err := r.ListByParent(ctx, models.KindProjectAttachment, "1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMerge_RollsBackOnFailure(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	bad := attachment("x", "bad.pdf", time.Now().UTC())
	_, err := db.Exec(`CREATE TRIGGER reject_bad BEFORE INSERT ON attachments
		WHEN NEW.original_filename = 'bad.pdf' BEGIN SELECT RAISE(ABORT, 'rejected'); END;`)
	require.NoError(t, err)

	err = r.Merge(ctx, models.KindProjectAttachment, "42", []models.RemoteAttachment{
		attachment("ok", "ok.pdf", time.Now().UTC()),
		bad,
	})
	require.Error(t, err)

	got, err := r.ListByParent(ctx, models.KindProjectAttachment, "42")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMerge_Empty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	assert.NoError(t, r.Merge(context.Background(), models.KindProjectAttachment, "42", nil))
}

func TestDeleteByID(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Merge(ctx, models.KindPortfolioImage, "9",
		[]models.RemoteAttachment{attachment("img", "shot.png", time.Now().UTC())}))

	require.NoError(t, r.DeleteByID(ctx, "img"))
	assert.ErrorIs(t, r.DeleteByID(ctx, "img"), common.ErrorNotFound)

	got, err := r.ListByParent(ctx, models.KindPortfolioImage, "9")
	require.NoError(t, err)
	assert.Empty(t, got)
}
