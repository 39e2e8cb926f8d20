package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophupload/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const previewPath = "/preview/"

// metricsServer exposes /metrics and live previews under /preview/.
type metricsServer struct {
	srv *http.Server
	log logging.Logger
}

func newMetricsServer(addr string, reg *prometheus.Registry, previews http.Handler, log logging.Logger) *metricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.Handle(previewPath, http.StripPrefix(previewPath[:len(previewPath)-1], previews))
	return &metricsServer{
		srv: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		log: log,
	}
}

// Start serves in the background.
func (m *metricsServer) Start() {
	go func() {
		m.log.Info(context.Background(), "metrics server listening", "addr", m.srv.Addr)
		if err := m.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error(context.Background(), "metrics server failed", "error", err)
		}
	}()
}

func (m *metricsServer) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := m.srv.Shutdown(ctx); err != nil {
		m.log.Warn(ctx, "metrics server shutdown", "error", err)
	}
}
