package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/blockhistory/chronicle/internal/metrics"
)

// DefaultBulkDelay spaces successive oracle-bound resolutions to respect
// external rate limits.
const DefaultBulkDelay = 500 * time.Millisecond

// BulkItem is the per-event outcome of a bulk run.
type BulkItem struct {
	Date   string `json:"date"`
	State  State  `json:"state,omitempty"`
	Winner string `json:"winner,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BulkReport aggregates a bulk resolution run. Processed counts events that
// reached any terminal outcome; already-committed work is never rolled back
// on cancellation.
type BulkReport struct {
	Total     int        `json:"total"`
	Processed int        `json:"processed"`
	Committed int        `json:"committed"`
	Rejected  int        `json:"rejected"`
	Failed    int        `json:"failed"`
	Cancelled bool       `json:"cancelled"`
	Items     []BulkItem `json:"items"`
}

// ResolveAll runs one resolution attempt for every contradicted,
// not-yet-re-verified event, sequentially and in date order. Cancellation is
// checked before each event's start; per-event failures are recorded and do
// not stop the batch. onProgress, when non-nil, is called after each event
// with the running processed/total counts.
func (r *Resolver) ResolveAll(ctx context.Context, delay time.Duration, onProgress func(processed, total int)) (*BulkReport, error) {
	if delay <= 0 {
		delay = DefaultBulkDelay
	}

	events, err := r.store.ListContradicted(ctx)
	if err != nil {
		return nil, err
	}

	report := &BulkReport{
		Total: len(events),
		Items: make([]BulkItem, 0, len(events)),
	}

	for i, event := range events {
		select {
		case <-ctx.Done():
			report.Cancelled = true
			r.logger.Info("bulk resolution cancelled",
				"processed", report.Processed, "total", report.Total)
			return report, nil
		default:
		}

		item := BulkItem{Date: event.Date}
		res, err := r.ResolveDate(ctx, event.Date)
		switch {
		case err == nil:
			item.State = res.State
			item.Winner = string(res.Winner)
			if res.State == StateCommitted {
				report.Committed++
			} else {
				report.Rejected++
			}
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			report.Cancelled = true
			r.logger.Info("bulk resolution cancelled mid-event",
				"date", event.Date, "processed", report.Processed, "total", report.Total)
			return report, nil
		default:
			item.Error = err.Error()
			report.Failed++
			r.logger.Warn("bulk resolution item failed", "date", event.Date, "error", err)
		}

		report.Processed++
		report.Items = append(report.Items, item)
		metrics.BulkEventsProcessed.Inc()
		if onProgress != nil {
			onProgress(report.Processed, report.Total)
		}

		if i < len(events)-1 {
			select {
			case <-ctx.Done():
				report.Cancelled = true
				return report, nil
			case <-time.After(delay):
			}
		}
	}

	return report, nil
}
