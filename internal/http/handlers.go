package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// pinger is implemented by stores that can check their connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)
	fail := func(name string, detail string) {
		checks[name] = detail
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	if s.templates == nil {
		fail("templates", "failed: templates not loaded")
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.store == nil:
		fail("store", "not_configured")
	default:
		if p, ok := s.store.(pinger); ok {
			if err := p.Ping(ctx); err != nil {
				fail("store", fmt.Sprintf("failed: %v", err))
			} else {
				checks["store"] = "ok"
			}
		} else {
			checks["store"] = "ok"
		}
	}

	last := s.dashboard.Last()
	checks["dashboard"] = map[string]any{
		"snapshot_version": last.Version,
		"fetched_at":       last.FetchedAt,
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
	}
	checks["security"] = map[string]any{
		"suspicious_requests": s.detector.SuspiciousCount(),
	}

	writeJSON(w, r, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}
