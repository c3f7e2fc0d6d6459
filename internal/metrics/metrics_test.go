package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/muurk/meshcfg/internal/editor"
	"github.com/muurk/meshcfg/internal/moduleconfig"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()
	rh := moduleconfig.RemoteHardware

	r.Transition(rh, editor.Bound, editor.Editing)
	r.Transition(rh, editor.Bound, editor.Editing)
	r.Flushed(rh, nil)
	r.Flushed(rh, errors.New("boom"))
	r.Discarded(rh)
	r.RecordSnapshot("file", nil)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"transitions", testutil.ToFloat64(r.transitions.WithLabelValues("remoteHardware", "Bound", "Editing")), 2},
		{"flush ok", testutil.ToFloat64(r.flushes.WithLabelValues("remoteHardware", "ok")), 1},
		{"flush error", testutil.ToFloat64(r.flushes.WithLabelValues("remoteHardware", "error")), 1},
		{"discards", testutil.ToFloat64(r.discards.WithLabelValues("remoteHardware")), 1},
		{"snapshots", testutil.ToFloat64(r.snapshots.WithLabelValues("file", "ok")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestRecorderOverlayChanged(t *testing.T) {
	r := NewRecorder()
	enabled := true

	r.OverlayChanged(moduleconfig.RemoteHardware, &moduleconfig.RemoteHardwarePatch{Enabled: &enabled})
	if got := testutil.ToFloat64(r.pending.WithLabelValues("remoteHardware")); got != 1 {
		t.Errorf("pending = %v, want 1", got)
	}

	r.OverlayChanged(moduleconfig.RemoteHardware, nil)
	if got := testutil.ToFloat64(r.pending.WithLabelValues("remoteHardware")); got != 0 {
		t.Errorf("pending after clear = %v, want 0", got)
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.Transition(moduleconfig.RemoteHardware, editor.Bound, editor.Editing)
	r.Flushed(moduleconfig.RemoteHardware, nil)
	r.Discarded(moduleconfig.RemoteHardware)
	r.RecordSnapshot("file", nil)
	r.OverlayChanged(moduleconfig.RemoteHardware, nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("nil recorder handler status = %d, want 404", rec.Code)
	}
}

func TestRecorderServe(t *testing.T) {
	r := NewRecorder()
	r.Discarded(moduleconfig.RemoteHardware)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, err := r.Serve(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Serve() error = %v", err)
	}

	resp, err := http.Get("http://" + addr.String() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "meshcfg_discards_total") {
		t.Errorf("metrics output missing discards counter:\n%s", body)
	}
}
