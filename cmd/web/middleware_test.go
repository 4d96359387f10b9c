package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/synctest"

	"github.com/myrjola/repcoach/internal/metrics"
	"github.com/myrjola/repcoach/internal/testhelpers"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestApplication(t *testing.T) *application {
	t.Helper()
	return &application{ //nolint:exhaustruct // only logging and metrics are exercised.
		logger:  testhelpers.NewLogger(testhelpers.NewWriter(t)),
		metrics: metrics.NewManager(false),
	}
}

func Test_application_recoverPanic(t *testing.T) {
	app := newTestApplication(t)
	handler := app.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if got := testutil.ToFloat64(app.metrics.Panics); got != 1 {
		t.Errorf("panics = %v, want 1", got)
	}
}

func Test_application_timeout(t *testing.T) {
	tests := []struct {
		name     string
		sleep    bool
		timesOut bool
	}{
		{name: "completes within timeout", sleep: false, timesOut: false},
		{name: "times out", sleep: true, timesOut: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				app := newTestApplication(t)
				handler := app.timeout(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if tt.sleep {
						<-r.Context().Done()
						return
					}
					app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
				}))

				w := httptest.NewRecorder()
				handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

				if tt.timesOut {
					if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "timed out") {
						t.Errorf("got %d %q, want 503 timed out", w.Code, w.Body.String())
					}
				} else if w.Code != http.StatusOK {
					t.Errorf("status = %d, want 200", w.Code)
				}
			})
		})
	}
}

func Test_application_authenticate(t *testing.T) {
	server := startServer(t)
	httpClient := &http.Client{}
	t.Cleanup(httpClient.CloseIdleConnections)
	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer not-a-jwt"} {
		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL()+"/api/progress", nil)
		if err != nil {
			t.Fatal(err)
		}
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			t.Fatalf("Do: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Authorization %q status = %d, want 401", header, resp.StatusCode)
		}
		if resp.Header.Get("WWW-Authenticate") == "" {
			t.Errorf("Authorization %q missing WWW-Authenticate", header)
		}
	}
}
