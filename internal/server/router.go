package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blockhistory/chronicle/internal/handlers"
)

// NewRouter constructs a ServeMux with resolution API routes registered.
func NewRouter(h *handlers.Handler) http.Handler {
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("/healthz", h.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())

	// Bulk control routes are registered before the catch-all date route;
	// exact patterns take precedence on the ServeMux.
	mux.HandleFunc("/api/v1/resolve/bulk", h.ResolveBulk)
	mux.HandleFunc("/api/v1/resolve/stop", h.ResolveStop)
	mux.HandleFunc("/api/v1/resolve/progress", h.ResolveProgress)

	// POST /api/v1/resolve/:date
	mux.HandleFunc("/api/v1/resolve/", h.ResolveDate)

	// Oracle request monitoring
	mux.HandleFunc("/api/v1/monitor/requests", h.MonitorRequests)
	mux.HandleFunc("/api/v1/monitor/stats", h.MonitorStats)

	return mux
}
