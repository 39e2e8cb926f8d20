package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophupload/internal/client/client"
	"github.com/dmitrijs2005/gophupload/internal/client/config"
	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/dmitrijs2005/gophupload/internal/client/remote"
	"github.com/dmitrijs2005/gophupload/internal/client/session"
	"github.com/dmitrijs2005/gophupload/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, store remote.Store) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()

	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sess := session.New(store, nil, session.WithAutoClearDelay(0))
	var out bytes.Buffer
	a := newApp(cfg, sess, client.NewRepositories(db).Attachments, logging.Nop(), &out)
	t.Cleanup(a.Close)
	return a, &out
}

func writeFiles(t *testing.T, files map[string]string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for name, body := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		paths = append(paths, p)
	}
	return paths
}

func okStore() remote.Store {
	return remote.StoreFunc(func(ctx context.Context, kind models.ResourceKind, parentID string, f models.FileHandle, md models.Metadata) (*models.RemoteAttachment, error) {
		return &models.RemoteAttachment{
			ID:               "att-" + f.Name,
			URL:              "https://files.example.com/" + f.Name,
			OriginalFilename: f.Name,
			FileSizeBytes:    f.Size,
			CreatedAt:        time.Now().UTC(),
		}, nil
	})
}

func waitBatch(t *testing.T, a *App) session.Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := a.wait(ctx)
	require.NoError(t, err)
	return res
}

func TestApp_AddUploadAndListAttachments(t *testing.T) {
	a, out := newTestApp(t, okStore())
	ctx := context.Background()

	require.NoError(t, a.Add(ctx, writeFiles(t, map[string]string{"plan.pdf": "pdf body", "notes.txt": "text"})))
	assert.Len(t, a.session.Selected(), 2)

	require.NoError(t, a.List(ctx))
	assert.Contains(t, out.String(), "2 file(s)")

	require.NoError(t, a.Upload(ctx, "42", []string{"title=Plan"}))
	res := waitBatch(t, a)
	require.Len(t, res.Attachments, 2)
	assert.Contains(t, out.String(), "Uploaded 2 of 2 file(s) to 42.")

	out.Reset()
	require.NoError(t, a.Attachments(ctx, "42"))
	assert.Contains(t, out.String(), "plan.pdf")
	assert.Contains(t, out.String(), "notes.txt")
}

func TestApp_AddRejectedLeavesSelectionEmpty(t *testing.T) {
	a, out := newTestApp(t, okStore())

	paths := writeFiles(t, map[string]string{"plan.pdf": "pdf", "virus.exe": "MZ"})
	require.NoError(t, a.Add(context.Background(), paths))

	assert.Empty(t, a.session.Selected())
	assert.Contains(t, out.String(), "Rejected: ")
}

func TestApp_AddMissingFile(t *testing.T) {
	a, _ := newTestApp(t, okStore())

	err := a.Add(context.Background(), []string{filepath.Join(t.TempDir(), "missing.pdf")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApp_FailedItemCanBeRetried(t *testing.T) {
	fail := true
	store := remote.StoreFunc(func(ctx context.Context, kind models.ResourceKind, parentID string, f models.FileHandle, md models.Metadata) (*models.RemoteAttachment, error) {
		if fail {
			return nil, remote.NewError("quota exceeded")
		}
		return &models.RemoteAttachment{ID: "att-1", OriginalFilename: f.Name, CreatedAt: time.Now().UTC()}, nil
	})
	a, out := newTestApp(t, store)
	ctx := context.Background()

	require.NoError(t, a.Add(ctx, writeFiles(t, map[string]string{"plan.pdf": "pdf"})))
	require.NoError(t, a.Upload(ctx, "7", nil))
	res := waitBatch(t, a)
	require.Len(t, res.Items, 1)
	assert.Equal(t, models.StatusError, res.Items[0].Status)
	assert.Contains(t, out.String(), "quota exceeded")
	assert.Contains(t, out.String(), "retry <id>")

	out.Reset()
	require.NoError(t, a.Status(ctx))
	assert.True(t, strings.Contains(out.String(), "0 succeeded, 1 failed"), out.String())

	fail = false
	require.NoError(t, a.Retry(ctx, res.Items[0].ID))
	res = waitBatch(t, a)
	require.Len(t, res.Attachments, 1)

	list, err := a.attachments.ListByParent(ctx, models.KindProjectAttachment, "7")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestApp_UploadWithoutSelection(t *testing.T) {
	a, _ := newTestApp(t, okStore())
	assert.Error(t, a.Upload(context.Background(), "1", nil))
	assert.Error(t, a.Upload(context.Background(), "1", []string{"broken"}))
}

func TestApp_ListEmptyShowsLimits(t *testing.T) {
	a, out := newTestApp(t, okStore())

	require.NoError(t, a.List(context.Background()))
	assert.Contains(t, out.String(), "No files selected. Up to 10 file(s), 10 MB each, 50 MB in total.")
}

func TestApp_StatusPromptShowsQueuedFiles(t *testing.T) {
	release := make(chan struct{})
	store := remote.StoreFunc(func(ctx context.Context, kind models.ResourceKind, parentID string, f models.FileHandle, md models.Metadata) (*models.RemoteAttachment, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &models.RemoteAttachment{ID: "att-" + f.Name, OriginalFilename: f.Name, CreatedAt: time.Now().UTC()}, nil
	})
	a, _ := newTestApp(t, store)
	ctx := context.Background()

	require.NoError(t, a.Add(ctx, writeFiles(t, map[string]string{"a.pdf": "a", "b.pdf": "b", "c.pdf": "c"})))
	require.NoError(t, a.Upload(ctx, "3", nil))
	assert.Eventually(t, func() bool {
		return strings.Contains(a.getStatus(), "uploading 0/3, 2 queued")
	}, time.Second, time.Millisecond)

	close(release)
	waitBatch(t, a)
	assert.NotContains(t, a.getStatus(), "queued")
}
