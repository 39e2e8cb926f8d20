package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"golang.org/x/term"
)

// isTerminal reports whether w is an interactive terminal. It is a test seam.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// parseMetadata turns "name=value" arguments into upload form fields. Later
// duplicates replace earlier ones.
func parseMetadata(args []string) (models.Metadata, error) {
	var md models.Metadata
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("bad metadata %q, want name=value", arg)
		}
		md.Set(name, value)
	}
	return md, nil
}
