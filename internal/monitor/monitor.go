// Package monitor records external API traffic for the observability
// dashboard. It is a side channel: recording failures must never influence
// pipeline control flow, so the Sink interface returns no errors.
package monitor

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status of a recorded request.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Record is one monitored API request.
type Record struct {
	ID           string         `json:"id"`
	Service      string         `json:"service"`
	Endpoint     string         `json:"endpoint"`
	Purpose      string         `json:"purpose,omitempty"`
	Date         string         `json:"date,omitempty"`
	Status       Status         `json:"status"`
	Duration     time.Duration  `json:"duration,omitempty"`
	Error        string         `json:"error,omitempty"`
	ResponseSize int            `json:"response_size,omitempty"`
	RequestData  map[string]any `json:"request_data,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// Update carries the terminal fields for a previously logged request.
type Update struct {
	Status       Status
	Duration     time.Duration
	Error        string
	ResponseSize int
}

// Sink accepts monitoring records. Implementations must be safe for
// concurrent use and must never fail the caller.
type Sink interface {
	LogRequest(rec Record) string
	UpdateRequest(id string, upd Update)
}

// Stats summarizes recent request history.
type Stats struct {
	TotalRequests  int            `json:"total_requests"`
	PendingCount   int            `json:"pending_count"`
	ErrorCount     int            `json:"error_count"`
	ErrorRate      float64        `json:"error_rate"`
	ByService      map[string]int `json:"by_service"`
	RequestsLastHr int            `json:"requests_last_hour"`
}

const defaultMaxHistory = 100

// MemorySink keeps a bounded in-memory history of requests, newest first.
type MemorySink struct {
	mu         sync.Mutex
	records    []*Record
	maxHistory int
}

// NewMemorySink creates a sink holding at most maxHistory records.
// A non-positive maxHistory selects the default of 100.
func NewMemorySink(maxHistory int) *MemorySink {
	if maxHistory <= 0 {
		maxHistory = defaultMaxHistory
	}
	return &MemorySink{maxHistory: maxHistory}
}

// LogRequest stores a new record and returns its id for later updates.
func (s *MemorySink) LogRequest(rec Record) string {
	id, err := uuid.NewV7()
	if err != nil {
		// uuid.NewV7 only fails when the entropy source does; fall back to v4.
		rec.ID = uuid.NewString()
	} else {
		rec.ID = id.String()
	}
	rec.Timestamp = time.Now()
	if rec.Status == "" {
		rec.Status = StatusPending
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]*Record{&rec}, s.records...)
	if len(s.records) > s.maxHistory {
		s.records = s.records[:s.maxHistory]
	}
	return rec.ID
}

// UpdateRequest applies terminal fields to a logged request. Unknown ids are
// ignored; the record may have rotated out of the bounded history.
func (s *MemorySink) UpdateRequest(id string, upd Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.ID == id {
			if upd.Status != "" {
				rec.Status = upd.Status
			}
			if upd.Duration > 0 {
				rec.Duration = upd.Duration
			}
			if upd.Error != "" {
				rec.Error = upd.Error
			}
			if upd.ResponseSize > 0 {
				rec.ResponseSize = upd.ResponseSize
			}
			return
		}
	}
}

// Recent returns up to limit records, newest first.
func (s *MemorySink) Recent(limit int) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]Record, 0, limit)
	for _, rec := range s.records[:limit] {
		out = append(out, *rec)
	}
	return out
}

// Stats aggregates the current history.
func (s *MemorySink) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		TotalRequests: len(s.records),
		ByService:     make(map[string]int),
	}
	hourAgo := time.Now().Add(-time.Hour)
	for _, rec := range s.records {
		stats.ByService[rec.Service]++
		switch rec.Status {
		case StatusError:
			stats.ErrorCount++
		case StatusPending:
			stats.PendingCount++
		}
		if rec.Timestamp.After(hourAgo) {
			stats.RequestsLastHr++
		}
	}
	if stats.TotalRequests > 0 {
		stats.ErrorRate = float64(stats.ErrorCount) / float64(stats.TotalRequests)
	}
	return stats
}

// NopSink discards all records. Useful in tests and when monitoring is
// disabled.
type NopSink struct{}

func (NopSink) LogRequest(Record) string     { return "" }
func (NopSink) UpdateRequest(string, Update) {}
