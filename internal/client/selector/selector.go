// Package selector holds files picked by the user (by drag and drop or a
// file browser) until they are uploaded.
//
// Every drop is all-or-nothing: if any incoming file is refused, by the input
// widget or by validation, none of the incoming files are added.
package selector

import (
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophupload/internal/client/messages"
	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/dmitrijs2005/gophupload/internal/client/validation"
	"github.com/dmitrijs2005/gophupload/internal/common"
	"github.com/google/uuid"
)

// Previewer creates and revokes preview URLs.
type Previewer interface {
	Create(f models.FileHandle) (string, error)
	Revoke(url string)
}

// Rejection is a file refused by the input widget before it reached the
// selector, with the widget's reason.
type Rejection struct {
	File    models.FileHandle
	Code    validation.ErrorCode
	Message string
}

// Selector is the accepted-but-not-yet-uploaded set. It is safe for
// concurrent use.
type Selector struct {
	mu        sync.Mutex
	validator *validation.Validator
	previews  Previewer
	opts      validation.BatchOptions
	files     []models.SelectedFile
	locked    bool

	newID func() string
}

func New(v *validation.Validator, previews Previewer, opts validation.BatchOptions) *Selector {
	return &Selector{
		validator: v,
		previews:  previews,
		opts:      opts,
		newID:     uuid.NewString,
	}
}

// Options returns the limits applied to drops.
func (s *Selector) Options() validation.BatchOptions {
	return s.opts
}

// Partition splits picked files into the sets a file input widget would
// produce, checking each file on its own against the per-file limits.
func (s *Selector) Partition(files []models.FileHandle) ([]models.FileHandle, []Rejection) {
	accepted := make([]models.FileHandle, 0, len(files))
	var rejected []Rejection
	for _, f := range files {
		if r := s.validator.ValidateFile(f, s.opts.FileOptions); !r.Valid {
			rejected = append(rejected, Rejection{File: f, Code: r.Code, Message: r.Message})
			continue
		}
		accepted = append(accepted, f)
	}
	return accepted, rejected
}

// Drop admits accepted files. It returns the newly added files and a failing
// result if the drop was refused; in that case nothing was added.
//
// Checks, in order: the first widget rejection; the selection would exceed
// MaxFiles; batch validation of the resulting selection.
func (s *Selector) Drop(accepted []models.FileHandle, rejected []Rejection) ([]models.SelectedFile, validation.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return nil, validation.Result{}, common.ErrSessionBusy
	}

	if len(rejected) > 0 {
		first := rejected[0]
		return nil, validation.Result{Code: first.Code, Message: first.Message}, nil
	}

	if len(accepted) == 0 {
		return nil, validation.Valid(), nil
	}

	p := s.validator.Printer()
	if len(s.files)+len(accepted) > s.opts.MaxFiles {
		return nil, validation.Result{
			Code:    validation.CodeMaxFilesExceeded,
			Message: p.Sprintf(messages.MaxFilesExceeded, s.opts.MaxFiles),
		}, nil
	}

	combined := make([]models.FileHandle, 0, len(s.files)+len(accepted))
	for _, f := range s.files {
		combined = append(combined, f.File)
	}
	combined = append(combined, accepted...)
	if r := s.validator.ValidateBatch(combined, s.opts); !r.Valid {
		return nil, r, nil
	}

	added := make([]models.SelectedFile, 0, len(accepted))
	for _, f := range accepted {
		url, err := s.previews.Create(f)
		if err != nil {
			for _, a := range added {
				if a.HasPreview() {
					s.previews.Revoke(a.PreviewURL)
				}
			}
			return nil, validation.Result{}, fmt.Errorf("create preview: %w", err)
		}
		added = append(added, models.SelectedFile{ID: s.newID(), File: f, PreviewURL: url})
	}

	s.files = append(s.files, added...)
	return added, validation.Valid(), nil
}

// Remove discards one file and revokes its preview.
func (s *Selector) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return common.ErrSessionBusy
	}

	for i, f := range s.files {
		if f.ID != id {
			continue
		}
		if f.HasPreview() {
			s.previews.Revoke(f.PreviewURL)
		}
		s.files = append(s.files[:i:i], s.files[i+1:]...)
		return nil
	}
	return common.ErrorNotFound
}

// Files returns a copy of the current selection in drop order.
func (s *Selector) Files() []models.SelectedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SelectedFile, len(s.files))
	copy(out, s.files)
	return out
}

// Len returns the number of selected files.
func (s *Selector) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// Lock freezes the selection for an upload pass and returns it. Drop and
// Remove fail with common.ErrSessionBusy until Unlock.
func (s *Selector) Lock() ([]models.SelectedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return nil, common.ErrSessionBusy
	}
	if len(s.files) == 0 {
		return nil, common.ErrEmptySelection
	}
	s.locked = true
	out := make([]models.SelectedFile, len(s.files))
	copy(out, s.files)
	return out, nil
}

// Unlock makes the selection editable again.
func (s *Selector) Unlock() {
	s.mu.Lock()
	s.locked = false
	s.mu.Unlock()
}

// Clear empties the selection and revokes every preview. It works while
// locked; the upload pass uses it to release its files.
func (s *Selector) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.files {
		if f.HasPreview() {
			s.previews.Revoke(f.PreviewURL)
		}
	}
	s.files = nil
}
