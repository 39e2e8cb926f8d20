package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/dmitrijs2005/gophupload/internal/filex"
)

// Add selects local files. Either every file is added or none is.
func (a *App) Add(ctx context.Context, paths []string) error {
	files := make([]models.FileHandle, 0, len(paths))
	for _, p := range paths {
		h, err := filex.Open(p)
		if err != nil {
			return fmt.Errorf("open %s: %w", p, err)
		}
		files = append(files, h)
	}

	added, res, err := a.session.Add(files)
	if err != nil {
		return err
	}
	if !res.Valid {
		a.printf("Rejected: %s\n", res.Message)
		return nil
	}
	for _, f := range added {
		a.printf("Added %s  %s (%s)\n", f.ID, f.File.Name, a.printer.Size(f.File.Size))
	}
	return nil
}

// Remove drops one selected file.
func (a *App) Remove(ctx context.Context, id string) error {
	if err := a.session.Remove(id); err != nil {
		return err
	}
	a.printf("Removed %s\n", id)
	return nil
}
