package metrics

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestObserveRequestAndNormalizePath(t *testing.T) {
	recorder := New()

	cases := []struct {
		name     string
		method   string
		path     string
		status   int
		expected string
	}{
		{
			name:     "root path",
			method:   "get",
			path:     "/",
			status:   200,
			expected: `vidtube_http_requests_total{method="GET",path="/",status="200"} 1`,
		},
		{
			name:     "uuid segment collapses",
			method:   "post",
			path:     "/api/videos/0b7b6a70-41bb-4f38-9ef6-ec56c2a0c3a1/view",
			status:   201,
			expected: `vidtube_http_requests_total{method="POST",path="/api/videos/:id/view",status="201"} 1`,
		},
		{
			name:     "numeric segment collapses",
			method:   "PATCH",
			path:     "/api/comments/123456",
			status:   404,
			expected: `vidtube_http_requests_total{method="PATCH",path="/api/comments/:id",status="404"} 1`,
		},
		{
			name:     "plain collection path survives",
			method:   "GET",
			path:     "/api/subscriptions",
			status:   200,
			expected: `vidtube_http_requests_total{method="GET",path="/api/subscriptions",status="200"} 1`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder.Reset()
			recorder.ObserveRequest(tc.method, tc.path, tc.status, 50*time.Millisecond)

			var buf bytes.Buffer
			recorder.Write(&buf)
			if !strings.Contains(buf.String(), tc.expected) {
				t.Fatalf("expected output to contain %q, got %q", tc.expected, buf.String())
			}
		})
	}
}

func TestObserveAuthEvent(t *testing.T) {
	recorder := New()
	recorder.ObserveAuthEvent("login")
	recorder.ObserveAuthEvent("login")
	recorder.ObserveAuthEvent("  Renew_Conflict  ")
	recorder.ObserveAuthEvent("")

	counts := recorder.AuthEventCounts()
	if counts["login"] != 2 {
		t.Fatalf("expected 2 logins, got %d", counts["login"])
	}
	if counts["renew_conflict"] != 1 {
		t.Fatalf("expected normalized renew_conflict count, got %+v", counts)
	}
	if counts["unknown"] != 1 {
		t.Fatalf("expected empty event to count as unknown, got %+v", counts)
	}

	var buf bytes.Buffer
	recorder.Write(&buf)
	expected := `vidtube_auth_events_total{event="login"} 2`
	if !strings.Contains(buf.String(), expected) {
		t.Fatalf("expected output to contain %q, got %q", expected, buf.String())
	}
}

func TestRecorderConcurrentWriters(t *testing.T) {
	recorder := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			recorder.ObserveRequest("GET", fmt.Sprintf("/api/videos/%d", i), 200, time.Millisecond)
			recorder.ObserveAuthEvent("renew")
		}(i)
	}
	wg.Wait()

	if counts := recorder.AuthEventCounts(); counts["renew"] != 16 {
		t.Fatalf("expected 16 renew events, got %d", counts["renew"])
	}
}

func TestHandlerServesExposition(t *testing.T) {
	recorder := New()
	recorder.ObserveRequest("GET", "/healthz", 200, time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("unexpected content type %q", got)
	}
	if !strings.Contains(rec.Body.String(), "vidtube_http_requests_total") {
		t.Fatalf("expected exposition body, got %q", rec.Body.String())
	}
}
