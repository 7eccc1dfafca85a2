package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AdityaBhosale22/vidtube/internal/auth"
	"github.com/AdityaBhosale22/vidtube/internal/observability/logging"
	"github.com/AdityaBhosale22/vidtube/internal/observability/metrics"
	"github.com/AdityaBhosale22/vidtube/internal/storage"
)

// Handler bundles the dependencies shared by every endpoint.
type Handler struct {
	Store               storage.Repository
	Tokens              *auth.Service
	Metrics             *metrics.Recorder
	Logger              *slog.Logger
	SessionCookiePolicy SessionCookiePolicy
}

func NewHandler(store storage.Repository, tokens *auth.Service) *Handler {
	return &Handler{Store: store, Tokens: tokens}
}

func (h *Handler) observeAuth(event string) {
	if h.Metrics != nil {
		h.Metrics.ObserveAuthEvent(event)
	}
}

func (h *Handler) observeContent(event string) {
	if h.Metrics != nil {
		h.Metrics.ObserveContentEvent(event)
	}
}

func (h *Handler) debugLog(ctx context.Context, msg string, args ...any) {
	if h.Logger == nil {
		return
	}
	logging.WithContext(ctx, h.Logger).Debug(msg, args...)
}

const healthCheckTimeout = 2 * time.Second

// Health reports readiness of the datastore and the refresh token store. The
// checks run concurrently and share a deadline so a stalled backend cannot
// hold the probe open.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	type check struct {
		name string
		ping func(context.Context) error
	}
	checks := []check{}
	if h.Store != nil {
		checks = append(checks, check{name: "storage", ping: h.Store.Ping})
	}
	if h.Tokens != nil {
		checks = append(checks, check{name: "token_store", ping: h.Tokens.Ping})
	}

	results := make([]string, len(checks))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, c := range checks {
		i, c := i, c
		group.Go(func() error {
			if err := c.ping(groupCtx); err != nil {
				results[i] = err.Error()
			}
			return nil
		})
	}
	_ = group.Wait()

	status := "ok"
	components := make(map[string]string, len(checks))
	for i, c := range checks {
		if results[i] == "" {
			components[c.name] = "ok"
			continue
		}
		components[c.name] = results[i]
		status = "degraded"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"components": components,
		"time":       time.Now().UTC().Format(time.RFC3339),
	})
}
