// Package metrics exposes editor activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/muurk/meshcfg/internal/editor"
	"github.com/muurk/meshcfg/internal/logging"
	"github.com/muurk/meshcfg/internal/moduleconfig"
)

const namespace = "meshcfg"

// Recorder counts page transitions, overlay writes, discards and remote
// snapshots. It implements editor.Observer. A nil *Recorder records nothing.
type Recorder struct {
	transitions *prometheus.CounterVec
	flushes     *prometheus.CounterVec
	discards    *prometheus.CounterVec
	snapshots   *prometheus.CounterVec
	pending     *prometheus.GaugeVec

	registry *prometheus.Registry
}

var _ editor.Observer = (*Recorder)(nil)

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,

		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "page_transitions_total",
				Help:      "Editor page lifecycle transitions",
			},
			[]string{"module", "from", "to"},
		),
		flushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "overlay_writes_total",
				Help:      "Coalesced form snapshots written to the edit overlay",
			},
			[]string{"module", "result"},
		),
		discards: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "discards_total",
				Help:      "Pending edits discarded by the user",
			},
			[]string{"module"},
		),
		snapshots: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_snapshots_total",
				Help:      "Remote configuration snapshots received",
			},
			[]string{"source", "result"},
		),
		pending: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "overlay_pending",
				Help:      "Whether a module has pending edits (1) or not (0)",
			},
			[]string{"module"},
		),
	}

	registry.MustRegister(
		r.transitions,
		r.flushes,
		r.discards,
		r.snapshots,
		r.pending,
	)

	return r
}

// Transition implements editor.Observer.
func (r *Recorder) Transition(module moduleconfig.Name, from, to editor.State) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(string(module), from.String(), to.String()).Inc()
}

// Flushed implements editor.Observer.
func (r *Recorder) Flushed(module moduleconfig.Name, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.flushes.WithLabelValues(string(module), result).Inc()
}

// Discarded implements editor.Observer.
func (r *Recorder) Discarded(module moduleconfig.Name) {
	if r == nil {
		return
	}
	r.discards.WithLabelValues(string(module)).Inc()
}

// RecordSnapshot counts a remote snapshot from source.
func (r *Recorder) RecordSnapshot(source string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.snapshots.WithLabelValues(source, result).Inc()
}

// OverlayChanged tracks whether module has pending edits. Its signature
// matches an overlay listener.
func (r *Recorder) OverlayChanged(module moduleconfig.Name, patch moduleconfig.Patch) {
	if r == nil {
		return
	}
	value := 0.0
	if patch != nil && !patch.IsEmpty() {
		value = 1.0
	}
	r.pending.WithLabelValues(string(module)).Set(value)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Serve exposes /metrics on addr until ctx is cancelled. The listener is
// bound before Serve returns so address errors surface immediately.
func (r *Recorder) Serve(ctx context.Context, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn("Metrics server stopped", zap.Error(err))
		}
	}()

	logging.Info("Serving metrics", zap.String("addr", ln.Addr().String()))
	return ln.Addr(), nil
}
