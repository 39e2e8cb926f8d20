package cli

import (
	"context"
)

// Upload starts uploading the selection to parentID. It returns as soon as
// the pass is queued; progress is printed as it changes.
func (a *App) Upload(ctx context.Context, parentID string, fields []string) error {
	md, err := parseMetadata(fields)
	if err != nil {
		return err
	}
	b, err := a.session.Upload(ctx, parentID, md)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.batch = b
	a.mu.Unlock()
	return nil
}

// Retry re-submits one failed item.
func (a *App) Retry(ctx context.Context, id string) error {
	b, err := a.session.Retry(ctx, id)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.batch = b
	a.mu.Unlock()
	return nil
}

// Cancel stops one queued or running item.
func (a *App) Cancel(ctx context.Context, id string) error {
	return a.session.Cancel(id)
}
