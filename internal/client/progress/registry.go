// Package progress keeps the observable state of upload items for a status
// display.
//
// The registry only accepts status changes allowed by
// models.UploadStatus.CanTransition. Listeners are notified synchronously, in
// the order the changes were made, with a copy of all items.
package progress

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/dmitrijs2005/gophupload/internal/common"
)

// Listener receives a snapshot after every change.
type Listener func(items []models.UploadItem)

// Summary counts items per status.
type Summary struct {
	Total     int
	Pending   int
	Uploading int
	Succeeded int
	Failed    int
	FailedIDs []string
}

// Done reports whether every item reached a terminal status.
func (s Summary) Done() bool {
	return s.Pending == 0 && s.Uploading == 0
}

type Registry struct {
	// notifyMu serializes change+notify so listeners see changes in order.
	notifyMu sync.Mutex

	mu        sync.Mutex
	items     []models.UploadItem
	index     map[string]int
	listeners []subscriber
	nextSub   int
}

type subscriber struct {
	id int
	fn Listener
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Begin replaces the items with a pending projection of files. It fails with
// common.ErrBatchActive while any current item is not terminal.
func (r *Registry) Begin(files []models.SelectedFile) error {
	return r.change(func() error {
		for _, it := range r.items {
			if !it.Status.IsTerminal() {
				return common.ErrBatchActive
			}
		}
		r.items = make([]models.UploadItem, len(files))
		r.index = make(map[string]int, len(files))
		for i, f := range files {
			r.items[i] = models.NewUploadItem(f)
			r.index[f.ID] = i
		}
		return nil
	})
}

// MarkUploading moves a pending item to uploading with the given progress.
func (r *Registry) MarkUploading(id string, percent int) error {
	return r.transition(id, models.StatusUploading, func(it *models.UploadItem) {
		it.ProgressPercent = clamp(percent)
	})
}

// MarkSuccess completes an uploading item at 100%.
func (r *Registry) MarkSuccess(id string) error {
	return r.transition(id, models.StatusSuccess, func(it *models.UploadItem) {
		it.ProgressPercent = 100
		it.ErrorMessage = ""
	})
}

// MarkError fails a pending or uploading item with msg.
func (r *Registry) MarkError(id, msg string) error {
	return r.transition(id, models.StatusError, func(it *models.UploadItem) {
		it.ErrorMessage = msg
	})
}

// Reset puts a terminal item back to pending for a retry.
func (r *Registry) Reset(id string) error {
	return r.transition(id, models.StatusPending, func(it *models.UploadItem) {
		it.ProgressPercent = 0
		it.ErrorMessage = ""
	})
}

// Clear drops every item.
func (r *Registry) Clear() {
	_ = r.change(func() error {
		r.items = nil
		r.index = make(map[string]int)
		return nil
	})
}

// Get returns one item.
func (r *Registry) Get(id string) (models.UploadItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return models.UploadItem{}, false
	}
	return r.items[i], true
}

// Snapshot returns a copy of all items in batch order.
func (r *Registry) Snapshot() []models.UploadItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Summary counts the current items.
func (r *Registry) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{Total: len(r.items)}
	for _, it := range r.items {
		switch it.Status {
		case models.StatusPending:
			s.Pending++
		case models.StatusUploading:
			s.Uploading++
		case models.StatusSuccess:
			s.Succeeded++
		case models.StatusError:
			s.Failed++
			s.FailedIDs = append(s.FailedIDs, it.ID)
		}
	}
	return s
}

// Subscribe registers fn and returns a function that removes it. Listeners
// are called in subscription order and must not change the registry; reading it with Snapshot or Get is fine.
func (r *Registry) Subscribe(fn Listener) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.listeners = append(r.listeners, subscriber{id: id, fn: fn})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			r.listeners = slices.DeleteFunc(r.listeners, func(s subscriber) bool { return s.id == id })
			r.mu.Unlock()
		})
	}
}

func (r *Registry) transition(id string, next models.UploadStatus, apply func(*models.UploadItem)) error {
	return r.change(func() error {
		i, ok := r.index[id]
		if !ok {
			return fmt.Errorf("item %s: %w", id, common.ErrorNotFound)
		}
		it := &r.items[i]
		if !it.Status.CanTransition(next) {
			return fmt.Errorf("item %s %s -> %s: %w", id, it.Status, next, common.ErrInvalidTransition)
		}
		it.Status = next
		apply(it)
		return nil
	})
}

func (r *Registry) change(fn func() error) error {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	if err := fn(); err != nil {
		r.mu.Unlock()
		return err
	}
	snap := r.snapshotLocked()
	listeners := make([]Listener, 0, len(r.listeners))
	for _, s := range r.listeners {
		listeners = append(listeners, s.fn)
	}
	r.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
	return nil
}

func (r *Registry) snapshotLocked() []models.UploadItem {
	out := make([]models.UploadItem, len(r.items))
	copy(out, r.items)
	return out
}

func clamp(p int) int {
	return max(0, min(100, p))
}
