package cli

import (
	"context"
	"time"
)

// List prints the current selection.
func (a *App) List(ctx context.Context) error {
	files := a.session.Selected()
	if len(files) == 0 {
		lim := a.session.Limits()
		a.printf("No files selected. Up to %d file(s), %s each, %s in total.\n",
			lim.MaxFiles, a.printer.Size(lim.MaxSizeBytes), a.printer.Size(lim.MaxTotalSizeBytes))
		return nil
	}
	var total int64
	for _, f := range files {
		total += f.File.Size
		a.printf("%s  %-30s %10s", f.ID, f.File.Name, a.printer.Size(f.File.Size))
		if f.HasPreview() {
			a.printf("  %s", a.previewLink(f.PreviewURL))
		}
		a.printf("\n")
	}
	a.printf("%d file(s), %s\n", len(files), a.printer.Size(total))
	return nil
}

// Status prints every item of the current or last pass.
func (a *App) Status(ctx context.Context) error {
	items := a.session.Items()
	if len(items) == 0 {
		a.printf("Nothing uploading.\n")
		return nil
	}
	for _, it := range items {
		a.printf("%s\n", itemLine(it))
	}
	sum := a.session.Summary()
	a.printf("%d succeeded, %d failed, %d pending, %d uploading\n", sum.Succeeded, sum.Failed, sum.Pending, sum.Uploading)
	return nil
}

// Attachments prints the stored attachments of one parent.
func (a *App) Attachments(ctx context.Context, parentID string) error {
	list, err := a.attachments.ListByParent(ctx, a.config.Kind, parentID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No attachments for %s.\n", parentID)
		return nil
	}
	for _, at := range list {
		a.printf("%s  %-30s %10s  %s  %s\n", at.ID, at.OriginalFilename, a.printer.Size(at.FileSizeBytes),
			at.CreatedAt.Local().Format(time.DateTime), at.URL)
	}
	return nil
}

func (a *App) previewLink(url string) string {
	if a.config.MetricsAddr == "" {
		return url
	}
	return "http://" + a.config.MetricsAddr + previewPath + url
}
