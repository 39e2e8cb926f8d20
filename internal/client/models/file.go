// Package models defines the client-side data types shared by the upload
// pipeline: file handles, selections, progress items and remote records.
package models

import (
	"io"
	"time"
)

// FileHandle describes one piece of binary content chosen by the user,
// independent of where it came from (disk, memory, network).
type FileHandle struct {
	// Name is the original file name including extension.
	Name string

	// MIMEType is the declared content type. It may be empty or generic.
	MIMEType string

	// Size is the content length in bytes.
	Size int64

	// Open returns a fresh reader over the content. Each call starts at
	// the beginning.
	Open func() (io.ReadCloser, error)
}

// SelectedFile is a file that passed validation and waits for upload.
type SelectedFile struct {
	ID   string
	File FileHandle

	// PreviewURL is set only for images. Empty means no preview.
	PreviewURL string
}

// HasPreview reports whether a preview URL was created for the file.
func (s SelectedFile) HasPreview() bool {
	return s.PreviewURL != ""
}

// RemoteAttachment is the record created by the server for an uploaded file.
type RemoteAttachment struct {
	ID               string    `json:"id"`
	URL              string    `json:"url"`
	OriginalFilename string    `json:"original_filename"`
	FileSizeBytes    int64     `json:"file_size"`
	FileType         string    `json:"file_type"`
	CreatedAt        time.Time `json:"created_at"`
}
