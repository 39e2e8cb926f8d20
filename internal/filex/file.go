// Package filex turns local files into upload handles.
package filex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/gabriel-vasile/mimetype"
)

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// Open describes the regular file at path. Content is read lazily through
// the handle's Open.
func Open(path string) (models.FileHandle, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return models.FileHandle{}, err
	}
	if !fi.Mode().IsRegular() {
		return models.FileHandle{}, fmt.Errorf("%s: not a regular file", path)
	}

	return models.FileHandle{
		Name:     fi.Name(),
		MIMEType: DetectMIME(path),
		Size:     fi.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// DetectMIME sniffs the content type of the file at path. It returns "" when
// sniffing fails or when the sniffed type belongs to a different extension,
// so the file name stays authoritative for the type check.
func DetectMIME(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil || mt == nil {
		return ""
	}
	if !strings.EqualFold(mt.Extension(), filepath.Ext(path)) {
		return ""
	}
	return mt.String()
}
