package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_RegistersCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.LinkVerified("reset", true)
	m.LinkVerified("reset", false)
	m.LinkVerified("signup", false)
	m.AccessDecided("forbidden")
	m.MailFailed("recovery_link")

	if got := testutil.ToFloat64(m.LinkVerificationsTotal.WithLabelValues("reset", "valid")); got != 1 {
		t.Errorf("reset/valid = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LinkVerificationsTotal.WithLabelValues("signup", "invalid")); got != 1 {
		t.Errorf("signup/invalid = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.AccessDecisionsTotal.WithLabelValues("forbidden")); got != 1 {
		t.Errorf("forbidden = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.MailFailuresTotal.WithLabelValues("recovery_link")); got != 1 {
		t.Errorf("mail failures = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.LinkVerificationsTotal); n != 3 {
		t.Errorf("link verification series = %d, want 3", n)
	}
}

func TestNilMetrics_NoOp(t *testing.T) {
	var m *Metrics
	m.LinkVerified("reset", true)
	m.AccessDecided("allow")
	m.MailFailed("x")

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMiddleware_UsesRouteTemplate(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/user/{uid}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/"+id, nil))
	}

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/user/{uid}", "403")); got != 2 {
		t.Fatalf("requests = %v, want 2", got)
	}
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.AccessDecided("redirect")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), `gatekeeper_access_decisions_total{outcome="redirect"} 1`) {
		t.Fatalf("metrics output missing counter:\n%s", body)
	}
}
