package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
)

// progressView prints registry changes. On a terminal it redraws one summary
// line in place; otherwise it prints one line per status change.
type progressView struct {
	mu   sync.Mutex
	w    io.Writer
	tty  bool
	last map[string]models.UploadStatus
}

func newProgressView(w io.Writer, tty bool) *progressView {
	return &progressView{w: w, tty: tty, last: make(map[string]models.UploadStatus)}
}

// Update is a progress.Listener.
func (v *progressView) Update(items []models.UploadItem) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(items) == 0 {
		v.last = make(map[string]models.UploadStatus)
		return
	}
	if v.tty {
		v.redraw(items)
		return
	}
	for _, it := range items {
		if v.last[it.ID] == it.Status {
			continue
		}
		v.last[it.ID] = it.Status
		fmt.Fprintln(v.w, itemLine(it))
	}
}

func (v *progressView) redraw(items []models.UploadItem) {
	var done, failed int
	var current string
	for _, it := range items {
		switch it.Status {
		case models.StatusSuccess:
			done++
		case models.StatusError:
			done++
			failed++
		case models.StatusUploading:
			current = fmt.Sprintf(" %s %d%%", it.FileName, it.ProgressPercent)
		}
	}
	line := fmt.Sprintf("\r\x1b[K[%d/%d]%s", done, len(items), current)
	if failed > 0 {
		line += fmt.Sprintf(" (%d failed)", failed)
	}
	fmt.Fprint(v.w, line)

	if done == len(items) {
		fmt.Fprintln(v.w)
		for _, it := range items {
			if it.Status == models.StatusError {
				fmt.Fprintln(v.w, itemLine(it))
			}
		}
	}
}

func itemLine(it models.UploadItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %3d%%  %s  %s", it.Status, it.ProgressPercent, it.ID, it.FileName)
	if it.ErrorMessage != "" {
		b.WriteString(": ")
		b.WriteString(it.ErrorMessage)
	}
	return b.String()
}
