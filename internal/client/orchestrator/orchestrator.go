// Package orchestrator uploads selected files one at a time.
//
// Tasks wait in an ordered queue consumed by a single worker goroutine. The
// worker takes the next task only after the previous store call returned, so
// at most one upload is in flight and outcomes are recorded in queue order.
// A failed task never stops the ones behind it.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophupload/internal/client/messages"
	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/dmitrijs2005/gophupload/internal/client/progress"
	"github.com/dmitrijs2005/gophupload/internal/client/remote"
	"github.com/dmitrijs2005/gophupload/internal/common"
	"github.com/dmitrijs2005/gophupload/internal/logging"
)

// DefaultUploadTimeout bounds one store call.
const DefaultUploadTimeout = 2 * time.Minute

// Observer records upload telemetry.
type Observer interface {
	RecordUpload(kind models.ResourceKind, duration time.Duration, sizeBytes int64, err error)
}

type nopObserver struct{}

func (nopObserver) RecordUpload(models.ResourceKind, time.Duration, int64, error) {}

// Task is one file to upload.
type Task struct {
	File     models.SelectedFile
	Kind     models.ResourceKind
	ParentID string
	Metadata models.Metadata

	// Done, if set, is called on the worker goroutine once the item settled.
	Done func(Outcome)
}

// Outcome is the settled result of a task.
type Outcome struct {
	ID         string
	Attachment *models.RemoteAttachment
	Err        error
	Cancelled  bool
}

type queued struct {
	ctx  context.Context
	task Task
}

type active struct {
	queued
	ctx    context.Context
	cancel context.CancelFunc
}

// Orchestrator runs upload tasks sequentially and writes their status into a
// progress.Registry.
type Orchestrator struct {
	store    remote.Store
	registry *progress.Registry
	printer  *messages.Printer
	log      logging.Logger
	observer Observer
	timeout  time.Duration

	mu       sync.Mutex
	queue    []queued
	inflight map[string]context.CancelFunc
	closed   bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithObserver sets the telemetry observer.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithPrinter sets the printer used for fallback and cancellation messages.
func WithPrinter(p *messages.Printer) Option {
	return func(o *Orchestrator) { o.printer = p }
}

// WithUploadTimeout bounds each store call. Zero disables the bound.
func WithUploadTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// New starts the worker. Call Close to stop it.
func New(store remote.Store, registry *progress.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		registry: registry,
		printer:  messages.NewPrinter(""),
		log:      logging.Nop(),
		observer: nopObserver{},
		timeout:  DefaultUploadTimeout,
		inflight: make(map[string]context.CancelFunc),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	go o.loop()
	return o
}

// Enqueue appends tasks in order. ctx bounds the uploads of these tasks;
// cancelling it cancels every one of them that has not settled.
func (o *Orchestrator) Enqueue(ctx context.Context, tasks ...Task) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return common.ErrClosed
	}
	for _, t := range tasks {
		o.queue = append(o.queue, queued{ctx: ctx, task: t})
	}
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
	return nil
}

// Cancel stops one item. A queued item is dropped before it starts; an
// in-flight item has its request context cancelled. Both end in the error
// status with the "cancelled" message. It returns common.ErrorNotFound when
// the item is neither queued nor in flight.
func (o *Orchestrator) Cancel(id string) error {
	o.mu.Lock()
	if cancel, ok := o.inflight[id]; ok {
		o.mu.Unlock()
		cancel()
		return nil
	}
	for i, q := range o.queue {
		if q.task.File.ID != id {
			continue
		}
		o.queue = append(o.queue[:i:i], o.queue[i+1:]...)
		o.mu.Unlock()
		o.settleCancelled(q)
		return nil
	}
	o.mu.Unlock()
	return common.ErrorNotFound
}

// Pending returns the number of queued tasks, not counting the one in flight.
func (o *Orchestrator) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

// Close cancels the in-flight upload, settles every queued task as cancelled
// and waits for the worker to exit.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		<-o.done
		return
	}
	o.closed = true
	rest := o.queue
	o.queue = nil
	for _, cancel := range o.inflight {
		cancel()
	}
	o.mu.Unlock()

	close(o.stop)
	<-o.done

	for _, q := range rest {
		o.settleCancelled(q)
	}
}

func (o *Orchestrator) loop() {
	defer close(o.done)
	for {
		a, ok := o.next()
		if !ok {
			select {
			case <-o.wake:
				continue
			case <-o.stop:
				return
			}
		}
		o.run(a)
	}
}

// next pops the head of the queue and registers it as in flight under the
// same lock, so Cancel always finds the item in one of the two places.
func (o *Orchestrator) next() (active, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || len(o.queue) == 0 {
		return active{}, false
	}
	q := o.queue[0]
	o.queue = o.queue[1:]

	ctx, cancel := context.WithCancel(q.ctx)
	if o.timeout > 0 {
		ctx, cancel = withTimeout(ctx, cancel, o.timeout)
	}
	o.inflight[q.task.File.ID] = cancel
	return active{queued: q, ctx: ctx, cancel: cancel}, true
}

func (o *Orchestrator) run(a active) {
	t := a.task
	id := t.File.ID
	ctx := a.ctx
	log := o.log.With("item_id", id, "file", t.File.File.Name, "kind", t.Kind)

	defer func() {
		o.mu.Lock()
		delete(o.inflight, id)
		o.mu.Unlock()
		a.cancel()
	}()

	if ctx.Err() != nil {
		o.settleCancelled(a.queued)
		return
	}

	if err := o.registry.MarkUploading(id, common.InitialUploadProgress); err != nil {
		log.Error(ctx, "cannot start upload", "error", err)
		t.finish(Outcome{ID: id, Err: err})
		return
	}
	log.Debug(ctx, "upload started", "size", t.File.File.Size)

	start := time.Now()
	att, err := o.store.Upload(ctx, t.Kind, t.ParentID, t.File.File, t.Metadata)
	o.observer.RecordUpload(t.Kind, time.Since(start), t.File.File.Size, err)

	if err == nil {
		if err := o.registry.MarkSuccess(id); err != nil {
			log.Error(ctx, "cannot record success", "error", err)
		}
		log.Info(ctx, "upload finished", "attachment_id", att.ID)
		t.finish(Outcome{ID: id, Attachment: att})
		return
	}

	cancelled := errors.Is(ctx.Err(), context.Canceled)
	msg := o.errorMessage(err, cancelled)
	if rerr := o.registry.MarkError(id, msg); rerr != nil {
		log.Error(ctx, "cannot record failure", "error", rerr)
	}
	log.Warn(ctx, "upload failed", "error", err, "cancelled", cancelled)
	t.finish(Outcome{ID: id, Err: err, Cancelled: cancelled})
}

func (o *Orchestrator) settleCancelled(q queued) {
	id := q.task.File.ID
	if err := o.registry.MarkError(id, o.printer.Sprintf(messages.UploadCancelled)); err != nil {
		o.log.Error(q.ctx, "cannot record cancellation", "item_id", id, "error", err)
	}
	q.task.finish(Outcome{ID: id, Err: context.Canceled, Cancelled: true})
}

func (o *Orchestrator) errorMessage(err error, cancelled bool) string {
	switch {
	case cancelled:
		return o.printer.Sprintf(messages.UploadCancelled)
	case errors.Is(err, context.DeadlineExceeded):
		return o.printer.Sprintf(messages.UploadFailed)
	}
	if msg := remote.MessageOf(err); msg != "" {
		return msg
	}
	return o.printer.Sprintf(messages.UploadFailed)
}

func (t Task) finish(out Outcome) {
	if t.Done != nil {
		t.Done(out)
	}
}

func withTimeout(parent context.Context, cancelParent context.CancelFunc, d time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, d)
	return ctx, func() {
		cancel()
		cancelParent()
	}
}
