// Package remote uploads files to the server that owns attachment records.
//
// # Overview
//
// Store is the whole contract the upload pipeline relies on: one call per
// file, returning the created RemoteAttachment or an error carrying a
// human-readable message. Two implementations are provided:
//
//   - HTTPStore posts multipart/form-data to one endpoint per resource kind.
//   - S3Store puts the object into an S3-compatible bucket and synthesizes
//     the record locally.
//
// # Error Handling
//
// Server refusals are returned as *Error. MessageOf extracts the text to
// show for any error returned by a Store.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
)

// Store uploads one file and returns the created record.
type Store interface {
	Upload(ctx context.Context, kind models.ResourceKind, parentID string, file models.FileHandle, md models.Metadata) (*models.RemoteAttachment, error)
}

// StoreFunc adapts a function to Store.
type StoreFunc func(ctx context.Context, kind models.ResourceKind, parentID string, file models.FileHandle, md models.Metadata) (*models.RemoteAttachment, error)

func (f StoreFunc) Upload(ctx context.Context, kind models.ResourceKind, parentID string, file models.FileHandle, md models.Metadata) (*models.RemoteAttachment, error) {
	return f(ctx, kind, parentID, file, md)
}

// Error is a refusal reported by the server.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("upload rejected (%d): %s", e.StatusCode, e.Message)
}

// NewError builds a server refusal without an HTTP status.
func NewError(msg string) *Error {
	return &Error{Message: msg}
}

// MessageOf returns the text to show for err: the server message for *Error,
// otherwise err.Error(). It returns "" for nil or empty errors so the caller
// can substitute a generic text.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Message
	}
	return err.Error()
}
