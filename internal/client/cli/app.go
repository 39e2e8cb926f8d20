package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/gophupload/internal/client/client"
	"github.com/dmitrijs2005/gophupload/internal/client/config"
	"github.com/dmitrijs2005/gophupload/internal/client/messages"
	"github.com/dmitrijs2005/gophupload/internal/client/metrics"
	"github.com/dmitrijs2005/gophupload/internal/client/preview"
	"github.com/dmitrijs2005/gophupload/internal/client/repositories/attachments"
	"github.com/dmitrijs2005/gophupload/internal/client/session"
	"github.com/dmitrijs2005/gophupload/internal/filex"
	"github.com/dmitrijs2005/gophupload/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

type App struct {
	config      *config.Config
	session     *session.Session
	attachments attachments.Repository
	printer     *messages.Printer
	log         logging.Logger
	out         io.Writer
	view        *progressView

	mu    sync.Mutex
	batch *session.Batch

	closers []func()
}

// NewApp builds the application from cfg: logger, local database, remote
// store, metrics, previews and the upload session. Output goes to out.
func NewApp(ctx context.Context, cfg *config.Config, out io.Writer) (*App, error) {
	log := logging.NewTextLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	if err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		return nil, err
	}
	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}
	repos := client.NewRepositories(db)

	store, err := client.NewStore(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	observer, err := metrics.NewPrometheusObserver(metrics.DefaultNamespace, reg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	previews := preview.NewManager()
	printer := messages.NewPrinter(cfg.Locale)
	sess := session.New(store, previews,
		session.WithKind(cfg.Kind),
		session.WithBatchOptions(cfg.BatchOptions()),
		session.WithAutoClearDelay(cfg.AutoClearDelay),
		session.WithUploadTimeout(cfg.UploadTimeout),
		session.WithPrinter(printer),
		session.WithLogger(log),
		session.WithObserver(observer),
		session.WithRejectionObserver(observer),
	)

	a := newApp(cfg, sess, repos.Attachments, log, out)
	a.closers = append(a.closers, func() { _ = db.Close() })

	if cfg.MetricsAddr != "" {
		srv := newMetricsServer(cfg.MetricsAddr, reg, previews, log)
		srv.Start()
		a.closers = append(a.closers, func() { srv.Shutdown(context.Background()) })
	}
	return a, nil
}

func newApp(cfg *config.Config, sess *session.Session, repo attachments.Repository, log logging.Logger, out io.Writer) *App {
	tty := isTerminal(out)
	out = &syncWriter{w: out}
	a := &App{
		config:      cfg,
		session:     sess,
		attachments: repo,
		printer:     sess.Printer(),
		log:         log,
		out:         out,
		view:        newProgressView(out, tty),
	}
	unsubscribe := sess.Subscribe(a.view.Update)
	sess.OnComplete(a.onComplete)
	a.closers = append(a.closers, sess.Close, unsubscribe)
	return a
}

// Close settles the session first, so the last results still reach the
// database, then releases the database and the metrics server.
func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
	a.closers = nil
}

// onComplete stores the created attachments and prints a summary line.
func (a *App) onComplete(res session.Result) {
	ctx := context.Background()
	if err := a.attachments.Merge(ctx, res.Kind, res.ParentID, res.Attachments); err != nil {
		a.log.Error(ctx, "cannot save attachments", "parent_id", res.ParentID, "error", err)
	}
	failed := len(res.Items) - len(res.Attachments)
	a.printf("Uploaded %d of %d file(s) to %s.\n", len(res.Attachments), len(res.Items), res.ParentID)
	if failed > 0 {
		a.printf("%d failed; use 'retry <id>' to try again.\n", failed)
	}
}

// wait blocks until the last started batch settles.
func (a *App) wait(ctx context.Context) (session.Result, error) {
	a.mu.Lock()
	b := a.batch
	a.mu.Unlock()
	if b == nil {
		return session.Result{}, nil
	}
	return b.Wait(ctx)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
