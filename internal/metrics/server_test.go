package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestServer_ServesMetrics(t *testing.T) {
	SetBuildInfo("test", "abc123", "now")
	AuthAttemptsTotal.WithLabelValues("login", "success").Inc()

	s := NewServer("127.0.0.1:0")
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"curlhub_build_info", "curlhub_auth_attempts_total"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

func TestAuthzDecisionsCounter(t *testing.T) {
	before := testutil.ToFloat64(AuthzDecisionsTotal.WithLabelValues("admin"))
	AuthzDecisionsTotal.WithLabelValues("admin").Inc()
	if got := testutil.ToFloat64(AuthzDecisionsTotal.WithLabelValues("admin")); got != before+1 {
		t.Errorf("counter = %v, want %v", got, before+1)
	}
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	s := NewServer("127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
