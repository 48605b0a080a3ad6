// Package handlers exposes the resolution pipeline over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/blockhistory/chronicle/internal/logging"
	"github.com/blockhistory/chronicle/internal/models"
	"github.com/blockhistory/chronicle/internal/monitor"
	"github.com/blockhistory/chronicle/internal/repository"
	"github.com/blockhistory/chronicle/internal/resolver"
)

// ResolutionService defines the resolution operations the handlers drive
type ResolutionService interface {
	ResolveDate(ctx context.Context, date string) (*resolver.Resolution, error)
	ResolveAll(ctx context.Context, delay time.Duration, onProgress func(processed, total int)) (*resolver.BulkReport, error)
}

// MonitorStore defines read access to the oracle request history
type MonitorStore interface {
	Recent(limit int) []monitor.Record
	Stats() monitor.Stats
}

// bulkState tracks the single background bulk run.
type bulkState struct {
	mu         sync.Mutex
	running    bool
	cancel     context.CancelFunc
	processed  int
	total      int
	startedAt  time.Time
	lastReport *resolver.BulkReport
	lastError  string
}

type Handler struct {
	service   ResolutionService
	monitor   MonitorStore
	bulkDelay time.Duration
	logger    *logging.Logger
	bulk      bulkState
}

func NewHandler(service ResolutionService, monitorStore MonitorStore, bulkDelay time.Duration, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if bulkDelay <= 0 {
		bulkDelay = resolver.DefaultBulkDelay
	}
	return &Handler{
		service:   service,
		monitor:   monitorStore,
		bulkDelay: bulkDelay,
		logger:    logger,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ResolveDate handles POST /api/v1/resolve/:date
func (h *Handler) ResolveDate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date := r.URL.Path[len("/api/v1/resolve/"):]
	if !models.IsValidDate(date) {
		http.Error(w, "Date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	res, err := h.service.ResolveDate(r.Context(), date)
	if err != nil {
		h.writeResolveError(w, date, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) writeResolveError(w http.ResponseWriter, date string, err error) {
	var pe *resolver.ProtectedEntryError
	switch {
	case errors.Is(err, repository.ErrEventNotFound):
		http.Error(w, "Event not found", http.StatusNotFound)
	case errors.As(err, &pe):
		http.Error(w, pe.Error(), http.StatusForbidden)
	case errors.Is(err, resolver.ErrAlreadyResolved):
		http.Error(w, "Event already re-verified", http.StatusConflict)
	case errors.Is(err, resolver.ErrResolutionInProgress):
		http.Error(w, "Resolution already in progress for this date", http.StatusConflict)
	case errors.Is(err, resolver.ErrNotContradicted):
		http.Error(w, "Event verdict is not contradicted", http.StatusBadRequest)
	default:
		h.logger.Error("resolution failed", "date", date, "error", err)
		http.Error(w, "Failed to resolve event", http.StatusInternalServerError)
	}
}

// ResolveBulk handles POST /api/v1/resolve/bulk. The run continues in the
// background; progress is polled via /api/v1/resolve/progress.
func (h *Handler) ResolveBulk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.bulk.mu.Lock()
	if h.bulk.running {
		h.bulk.mu.Unlock()
		http.Error(w, "Bulk re-verification already running", http.StatusConflict)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.bulk.running = true
	h.bulk.cancel = cancel
	h.bulk.processed = 0
	h.bulk.total = 0
	h.bulk.startedAt = time.Now()
	h.bulk.lastReport = nil
	h.bulk.lastError = ""
	h.bulk.mu.Unlock()

	go func() {
		defer cancel()

		report, err := h.service.ResolveAll(ctx, h.bulkDelay, func(processed, total int) {
			h.bulk.mu.Lock()
			h.bulk.processed = processed
			h.bulk.total = total
			h.bulk.mu.Unlock()
		})

		h.bulk.mu.Lock()
		h.bulk.running = false
		h.bulk.lastReport = report
		if err != nil {
			h.bulk.lastError = err.Error()
			h.logger.Error("bulk re-verification failed", "error", err)
		}
		h.bulk.mu.Unlock()
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// ResolveStop handles POST /api/v1/resolve/stop
func (h *Handler) ResolveStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.bulk.mu.Lock()
	defer h.bulk.mu.Unlock()

	if !h.bulk.running || h.bulk.cancel == nil {
		http.Error(w, "No bulk re-verification running", http.StatusConflict)
		return
	}

	h.bulk.cancel()
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopping"})
}

type progressResponse struct {
	Running    bool                 `json:"running"`
	Processed  int                  `json:"processed"`
	Total      int                  `json:"total"`
	StartedAt  *time.Time           `json:"started_at,omitempty"`
	LastReport *resolver.BulkReport `json:"last_report,omitempty"`
	LastError  string               `json:"last_error,omitempty"`
}

// ResolveProgress handles GET /api/v1/resolve/progress
func (h *Handler) ResolveProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.bulk.mu.Lock()
	resp := progressResponse{
		Running:    h.bulk.running,
		Processed:  h.bulk.processed,
		Total:      h.bulk.total,
		LastReport: h.bulk.lastReport,
		LastError:  h.bulk.lastError,
	}
	if !h.bulk.startedAt.IsZero() {
		startedAt := h.bulk.startedAt
		resp.StartedAt = &startedAt
	}
	h.bulk.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// MonitorRequests handles GET /api/v1/monitor/requests
func (h *Handler) MonitorRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), 50)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"requests": h.monitor.Recent(limit),
	})
}

// MonitorStats handles GET /api/v1/monitor/stats
func (h *Handler) MonitorStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, h.monitor.Stats())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Helper function to parse integer query parameters
func parseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return defaultVal
}
