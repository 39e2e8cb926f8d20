// Package common defines shared constants and sentinel errors used across
// the upload client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Session errors.
	ErrSessionBusy    = errors.New("upload in progress")
	ErrEmptySelection = errors.New("no files selected")
	ErrClosed         = errors.New("session closed")
	ErrNotRetryable   = errors.New("item cannot be retried")

	// Progress registry errors.
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrBatchActive       = errors.New("batch already active")
)
