package models

// UploadStatus is the lifecycle state of one upload item.
type UploadStatus string

const (
	StatusPending   UploadStatus = "pending"
	StatusUploading UploadStatus = "uploading"
	StatusSuccess   UploadStatus = "success"
	StatusError     UploadStatus = "error"
)

// IsTerminal reports whether the status is final for the current attempt.
func (s UploadStatus) IsTerminal() bool {
	return s == StatusSuccess || s == StatusError
}

// CanTransition reports whether moving from s to next is allowed.
//
// Items only move forward: pending -> uploading -> success|error. A terminal
// item may go back to pending, which is how an explicit retry re-enters the
// machine. Pending may also go straight to error when the item is cancelled
// before it started.
func (s UploadStatus) CanTransition(next UploadStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusUploading || next == StatusError
	case StatusUploading:
		return next == StatusSuccess || next == StatusError
	case StatusSuccess, StatusError:
		return next == StatusPending
	default:
		return false
	}
}

// UploadItem is the observable progress of one file in a batch.
type UploadItem struct {
	ID              string       `json:"id"`
	FileName        string       `json:"file_name"`
	FileSizeBytes   int64        `json:"file_size"`
	ProgressPercent int          `json:"progress"`
	Status          UploadStatus `json:"status"`
	ErrorMessage    string       `json:"error,omitempty"`
}

// NewUploadItem projects a selected file into a pending item.
func NewUploadItem(f SelectedFile) UploadItem {
	return UploadItem{
		ID:            f.ID,
		FileName:      f.File.Name,
		FileSizeBytes: f.File.Size,
		Status:        StatusPending,
	}
}
