// Package session ties the upload pipeline together for one view: the
// selection, its previews, the progress registry and the sequential uploader.
//
// A typical flow:
//
//	s := session.New(store, previews, session.WithKind(models.KindProjectAttachment))
//	defer s.Close()
//	s.Add(files)
//	b, _ := s.Upload(ctx, "42", nil)
//	res, _ := b.Wait(ctx)
package session

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophupload/internal/client/messages"
	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/dmitrijs2005/gophupload/internal/client/orchestrator"
	"github.com/dmitrijs2005/gophupload/internal/client/progress"
	"github.com/dmitrijs2005/gophupload/internal/client/remote"
	"github.com/dmitrijs2005/gophupload/internal/client/selector"
	"github.com/dmitrijs2005/gophupload/internal/client/validation"
	"github.com/dmitrijs2005/gophupload/internal/common"
	"github.com/dmitrijs2005/gophupload/internal/logging"
)

// RejectionObserver is told about every refused drop.
type RejectionObserver interface {
	RecordRejection(code validation.ErrorCode)
}

// Result is what one pass produced.
type Result struct {
	Kind        models.ResourceKind
	ParentID    string
	Items       []models.UploadItem
	Attachments []models.RemoteAttachment
}

// Batch is one running pass: a full upload or a single retry.
type Batch struct {
	ParentID string

	ids         []string
	attachments []*models.RemoteAttachment
	remaining   int
	done        chan struct{}
	result      Result
}

// Done is closed once every item of the batch settled.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until the batch settled or ctx is done.
func (b *Batch) Wait(ctx context.Context) (Result, error) {
	select {
	case <-b.done:
		return b.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

type settings struct {
	kind       models.ResourceKind
	batch      validation.BatchOptions
	autoClear  time.Duration
	timeout    time.Duration
	printer    *messages.Printer
	types      *validation.TypeTable
	log        logging.Logger
	observer   orchestrator.Observer
	rejections RejectionObserver
}

// Option configures a Session.
type Option func(*settings)

// WithKind sets the resource kind uploads go to.
func WithKind(k models.ResourceKind) Option {
	return func(s *settings) { s.kind = k }
}

// WithBatchOptions sets the selection limits.
func WithBatchOptions(o validation.BatchOptions) Option {
	return func(s *settings) { s.batch = o }
}

// WithAutoClearDelay sets how long finished items stay visible. Zero or less
// keeps them until the next pass.
func WithAutoClearDelay(d time.Duration) Option {
	return func(s *settings) { s.autoClear = d }
}

// WithUploadTimeout bounds each store call.
func WithUploadTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithPrinter sets the language of user-facing messages.
func WithPrinter(p *messages.Printer) Option {
	return func(s *settings) { s.printer = p }
}

// WithTypeTable replaces the allowed file types.
func WithTypeTable(t *validation.TypeTable) Option {
	return func(s *settings) { s.types = t }
}

func WithLogger(l logging.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithObserver receives upload telemetry.
func WithObserver(o orchestrator.Observer) Option {
	return func(s *settings) { s.observer = o }
}

// WithRejectionObserver receives refused drops.
func WithRejectionObserver(o RejectionObserver) Option {
	return func(s *settings) { s.rejections = o }
}

// Session is safe for concurrent use.
type Session struct {
	kind       models.ResourceKind
	autoClear  time.Duration
	printer    *messages.Printer
	log        logging.Logger
	rejections RejectionObserver

	selector *selector.Selector
	registry *progress.Registry
	orch     *orchestrator.Orchestrator

	mu         sync.Mutex
	closed     bool
	active     *Batch
	parentID   string
	metadata   models.Metadata
	failed     map[string]models.SelectedFile
	onComplete []func(Result)
	timer      *time.Timer
	timerGen   uint64
}

// New builds a session uploading to store. previews may be nil when no
// previews are wanted.
func New(store remote.Store, previews selector.Previewer, opts ...Option) *Session {
	cfg := settings{
		kind:      models.KindProjectAttachment,
		batch:     validation.DefaultBatchOptions(),
		autoClear: common.DefaultAutoClearDelay,
		timeout:   orchestrator.DefaultUploadTimeout,
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.printer == nil {
		cfg.printer = messages.NewPrinter("")
	}
	if previews == nil {
		previews = noPreviews{}
	}

	registry := progress.NewRegistry()
	orchOpts := []orchestrator.Option{
		orchestrator.WithLogger(cfg.log),
		orchestrator.WithPrinter(cfg.printer),
		orchestrator.WithUploadTimeout(cfg.timeout),
	}
	if cfg.observer != nil {
		orchOpts = append(orchOpts, orchestrator.WithObserver(cfg.observer))
	}

	return &Session{
		kind:       cfg.kind,
		autoClear:  cfg.autoClear,
		printer:    cfg.printer,
		log:        cfg.log.With("kind", cfg.kind),
		rejections: cfg.rejections,
		selector:   selector.New(validation.NewValidator(cfg.types, cfg.printer), previews, cfg.batch),
		registry:   registry,
		orch:       orchestrator.New(store, registry, orchOpts...),
		failed:     make(map[string]models.SelectedFile),
	}
}

// Kind returns the resource kind of this session.
func (s *Session) Kind() models.ResourceKind {
	return s.kind
}

// Printer returns the printer used for user-facing messages.
func (s *Session) Printer() *messages.Printer {
	return s.printer
}

// Add runs files through the per-file widget checks and then Drop.
func (s *Session) Add(files []models.FileHandle) ([]models.SelectedFile, validation.Result, error) {
	accepted, rejected := s.selector.Partition(files)
	return s.Drop(accepted, rejected)
}

// Drop admits files into the selection; see selector.Selector.Drop.
func (s *Session) Drop(accepted []models.FileHandle, rejected []selector.Rejection) ([]models.SelectedFile, validation.Result, error) {
	if s.isClosed() {
		return nil, validation.Result{}, common.ErrClosed
	}
	added, res, err := s.selector.Drop(accepted, rejected)
	if err != nil {
		return nil, res, err
	}
	if !res.Valid {
		s.log.Info(context.Background(), "drop refused", "code", res.Code, "files", len(accepted)+len(rejected))
		if s.rejections != nil {
			s.rejections.RecordRejection(res.Code)
		}
	}
	return added, res, nil
}

// Remove discards one selected file before upload.
func (s *Session) Remove(id string) error {
	return s.selector.Remove(id)
}

// Selected returns the current selection.
func (s *Session) Selected() []models.SelectedFile {
	return s.selector.Files()
}

// Items returns the progress of the current or last pass.
func (s *Session) Items() []models.UploadItem {
	return s.registry.Snapshot()
}

// Limits returns the limits applied to drops.
func (s *Session) Limits() validation.BatchOptions {
	return s.selector.Options()
}

// Queued returns the number of files waiting behind the one being uploaded.
func (s *Session) Queued() int {
	return s.orch.Pending()
}

// Summary counts the items of the current or last pass.
func (s *Session) Summary() progress.Summary {
	return s.registry.Summary()
}

// Subscribe registers a progress listener; see progress.Registry.Subscribe.
func (s *Session) Subscribe(fn progress.Listener) (unsubscribe func()) {
	return s.registry.Subscribe(fn)
}

// OnComplete registers fn to run after every pass, on the upload worker.
func (s *Session) OnComplete(fn func(Result)) {
	s.mu.Lock()
	s.onComplete = append(s.onComplete, fn)
	s.mu.Unlock()
}

// Upload starts a pass over the whole selection. The selection is frozen
// until the pass ends; then it is cleared and every preview revoked. ctx
// bounds the uploads of this pass.
func (s *Session) Upload(ctx context.Context, parentID string, md models.Metadata) (*Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, common.ErrClosed
	}
	if s.active != nil {
		return nil, common.ErrSessionBusy
	}

	files, err := s.selector.Lock()
	if err != nil {
		return nil, err
	}

	s.stopTimerLocked()
	if err := s.registry.Begin(files); err != nil {
		s.selector.Unlock()
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	s.failed = make(map[string]models.SelectedFile)
	s.parentID = parentID
	s.metadata = md

	b := newBatch(parentID, files)
	if err := s.enqueueLocked(ctx, b, files, true); err != nil {
		s.selector.Unlock()
		return nil, err
	}
	s.log.Info(ctx, "upload pass started", "parent_id", parentID, "files", len(files))
	return b, nil
}

// Retry re-submits one failed file of the last pass. Failed files are kept
// until the auto-clear runs or the next pass starts.
func (s *Session) Retry(ctx context.Context, id string) (*Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, common.ErrClosed
	}
	if s.active != nil {
		return nil, common.ErrSessionBusy
	}
	f, ok := s.failed[id]
	if !ok {
		if _, known := s.registry.Get(id); known {
			return nil, fmt.Errorf("item %s: %w", id, common.ErrNotRetryable)
		}
		return nil, fmt.Errorf("item %s: %w", id, common.ErrorNotFound)
	}

	s.stopTimerLocked()
	if err := s.registry.Reset(id); err != nil {
		return nil, err
	}
	delete(s.failed, id)

	files := []models.SelectedFile{f}
	b := newBatch(s.parentID, files)
	if err := s.enqueueLocked(ctx, b, files, false); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "retry started", "item_id", id, "file", f.File.Name)
	return b, nil
}

// Cancel stops one queued or in-flight item.
func (s *Session) Cancel(id string) error {
	return s.orch.Cancel(id)
}

// Close stops the auto-clear timer, cancels outstanding uploads and revokes
// the previews of files still selected.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTimerLocked()
	s.mu.Unlock()

	s.orch.Close()
	s.selector.Clear()
	s.selector.Unlock()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) enqueueLocked(ctx context.Context, b *Batch, files []models.SelectedFile, fullPass bool) error {
	tasks := make([]orchestrator.Task, len(files))
	for i, f := range files {
		tasks[i] = orchestrator.Task{
			File:     f,
			Kind:     s.kind,
			ParentID: b.ParentID,
			Metadata: s.metadata,
			Done:     func(out orchestrator.Outcome) { s.settle(b, i, f, out, fullPass) },
		}
	}
	s.active = b
	if err := s.orch.Enqueue(ctx, tasks...); err != nil {
		s.active = nil
		return err
	}
	return nil
}

// settle runs on the upload worker once per item.
func (s *Session) settle(b *Batch, i int, f models.SelectedFile, out orchestrator.Outcome, fullPass bool) {
	s.mu.Lock()
	if out.Err != nil {
		// The preview is revoked when the pass ends; a retry does not need it.
		f.PreviewURL = ""
		s.failed[f.ID] = f
	} else {
		b.attachments[i] = out.Attachment
	}
	b.remaining--
	last := b.remaining == 0
	s.mu.Unlock()

	if last {
		s.finish(b, fullPass)
	}
}

func (s *Session) finish(b *Batch, fullPass bool) {
	if fullPass {
		s.selector.Clear()
		s.selector.Unlock()
	}

	res := Result{Kind: s.kind, ParentID: b.ParentID, Items: s.itemsOf(b)}
	for _, a := range b.attachments {
		if a != nil {
			res.Attachments = append(res.Attachments, *a)
		}
	}
	b.result = res

	s.mu.Lock()
	s.active = nil
	if !s.closed {
		s.scheduleClearLocked()
	}
	listeners := slices.Clone(s.onComplete)
	s.mu.Unlock()

	sum := s.registry.Summary()
	s.log.Info(context.Background(), "upload pass finished",
		"parent_id", b.ParentID,
		"uploaded", len(res.Attachments),
		"failed", len(b.ids)-len(res.Attachments),
		"failed_ids", sum.FailedIDs,
	)
	for _, fn := range listeners {
		fn(res)
	}
	close(b.done)
}

func (s *Session) itemsOf(b *Batch) []models.UploadItem {
	out := make([]models.UploadItem, 0, len(b.ids))
	for _, id := range b.ids {
		if it, ok := s.registry.Get(id); ok {
			out = append(out, it)
		}
	}
	return out
}

func (s *Session) scheduleClearLocked() {
	s.stopTimerLocked()
	if s.autoClear <= 0 {
		return
	}
	gen := s.timerGen
	s.timer = time.AfterFunc(s.autoClear, func() { s.autoClearFired(gen) })
}

// stopTimerLocked cancels a pending auto-clear. Bumping the generation also
// disarms a callback that already fired and is waiting for the lock.
func (s *Session) stopTimerLocked() {
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) autoClearFired(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.timerGen || s.closed || s.active != nil {
		return
	}
	s.timer = nil
	s.failed = make(map[string]models.SelectedFile)
	s.registry.Clear()
	s.log.Debug(context.Background(), "progress cleared")
}

func newBatch(parentID string, files []models.SelectedFile) *Batch {
	b := &Batch{
		ParentID:    parentID,
		ids:         make([]string, len(files)),
		attachments: make([]*models.RemoteAttachment, len(files)),
		remaining:   len(files),
		done:        make(chan struct{}),
	}
	for i, f := range files {
		b.ids[i] = f.ID
	}
	return b
}

type noPreviews struct{}

func (noPreviews) Create(models.FileHandle) (string, error) { return "", nil }
func (noPreviews) Revoke(string)                            {}
