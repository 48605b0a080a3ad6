// Package resolver implements the contradiction resolution state machine.
// A resolution attempt moves an event through
// pending -> verifying -> comparing -> selecting -> committed | rejected,
// and is the only place in the pipeline that writes to storage.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blockhistory/chronicle/internal/factcheck"
	"github.com/blockhistory/chronicle/internal/logging"
	"github.com/blockhistory/chronicle/internal/metrics"
	"github.com/blockhistory/chronicle/internal/models"
	"github.com/blockhistory/chronicle/internal/repository"
)

var (
	// ErrAlreadyResolved means the event already carries a terminal
	// resolution and a second attempt needs an explicit caller decision.
	ErrAlreadyResolved = errors.New("event already re-verified")

	// ErrNotContradicted means the event's verdict does not gate it into
	// the pipeline.
	ErrNotContradicted = errors.New("event verdict is not contradicted")

	// ErrResolutionInProgress means another resolution for the same date
	// holds the per-date lock.
	ErrResolutionInProgress = errors.New("resolution already in progress for date")
)

// State is the position of a resolution attempt in the pipeline.
type State string

const (
	StatePending   State = "pending"
	StateVerifying State = "verifying"
	StateComparing State = "comparing"
	StateSelecting State = "selecting"
	StateCommitted State = "committed"
	StateRejected  State = "rejected"
)

// Storage is the persistence contract the resolver needs. The postgres
// repository satisfies it.
type Storage interface {
	GetEvent(ctx context.Context, date string) (*models.Event, error)
	UpdateEvent(ctx context.Context, date string, update *models.EventUpdate) error
	GetTieredArticles(ctx context.Context, date string) (models.TieredArticleSet, error)
	ListContradicted(ctx context.Context) ([]*models.Event, error)
}

// Stages is the fact-checking contract the resolver sequences. Stages never
// write to storage; the resolver converts their errors into terminal states.
type Stages interface {
	VerifyDate(ctx context.Context, date string, set models.TieredArticleSet) (*factcheck.DateVerification, error)
	CompareSummaries(ctx context.Context, original, corrected factcheck.DatedSummary, set models.TieredArticleSet) (*factcheck.SummaryComparison, error)
	SelectReplacement(ctx context.Context, date, excludeArticleID string, set models.TieredArticleSet) (*factcheck.Selection, error)
	ValidateArticleDate(ctx context.Context, article models.CachedArticle, targetDate string) factcheck.Validation
}

// Locker serializes resolution attempts per date.
type Locker interface {
	Acquire(ctx context.Context, date string) (bool, error)
	Release(ctx context.Context, date string) error
}

// Notifier publishes completed resolutions. Publish failures never affect
// the resolution outcome.
type Notifier interface {
	ResolutionCompleted(ctx context.Context, res *Resolution) error
}

// Resolution is the terminal outcome of one resolution attempt.
type Resolution struct {
	Date              string                      `json:"date"`
	State             State                       `json:"state"`
	Status            models.ReVerificationStatus `json:"status"`
	Winner            models.Winner               `json:"winner,omitempty"`
	CorrectedDate     string                      `json:"corrected_date,omitempty"`
	SelectedArticleID string                      `json:"selected_article_id,omitempty"`
	SelectedTier      models.Tier                 `json:"selected_tier,omitempty"`
	SummaryChanged    bool                        `json:"summary_changed"`
	Reasoning         string                      `json:"reasoning"`
}

// Resolver sequences the fact-checking stages and commits the decision.
type Resolver struct {
	store    Storage
	stages   Stages
	lock     Locker
	notifier Notifier
	logger   *logging.Logger
}

// NewResolver creates a resolution orchestrator. lock and notifier may be
// nil, which disables per-date serialization and notifications respectively.
func NewResolver(store Storage, stages Stages, lock Locker, notifier Notifier, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{
		store:    store,
		stages:   stages,
		lock:     lock,
		notifier: notifier,
		logger:   logger,
	}
}

// ResolveDate runs one resolution attempt for a contradicted event. Entry
// gates: verdict must be contradicted, the event must not be protected and
// must not already be re-verified. Stage failures terminate as Rejected
// with audit fields persisted; only storage and gate failures return errors.
func (r *Resolver) ResolveDate(ctx context.Context, date string) (*Resolution, error) {
	start := time.Now()

	if r.lock != nil {
		acquired, err := r.lock.Acquire(ctx, date)
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, ErrResolutionInProgress
		}
		defer func() {
			if err := r.lock.Release(context.WithoutCancel(ctx), date); err != nil {
				r.logger.Warn("failed to release resolution lock", "date", date, "error", err)
			}
		}()
	}

	event, err := r.store.GetEvent(ctx, date)
	if err != nil {
		return nil, err
	}

	if !CanMutate(event) {
		return nil, &ProtectedEntryError{Date: date}
	}
	if event.ReVerified {
		return nil, ErrAlreadyResolved
	}
	if event.Verdict != models.VerdictContradicted {
		return nil, ErrNotContradicted
	}

	res, err := r.resolve(ctx, event)
	if err != nil {
		return nil, err
	}

	metrics.ResolutionsTotal.WithLabelValues(string(res.State)).Inc()
	metrics.ResolutionDuration.Observe(time.Since(start).Seconds())

	r.logger.Info("resolution completed",
		"date", date,
		"state", res.State,
		"winner", res.Winner,
		"duration", time.Since(start))

	if r.notifier != nil {
		if err := r.notifier.ResolutionCompleted(ctx, res); err != nil {
			r.logger.Warn("failed to publish resolution notification", "date", date, "error", err)
		}
	}

	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, event *models.Event) (*Resolution, error) {
	date := event.Date

	set, err := r.store.GetTieredArticles(ctx, date)
	if err != nil {
		return nil, err
	}

	// Verifying
	verification, err := r.stages.VerifyDate(ctx, date, set)
	if err != nil {
		return r.reject(ctx, event, "", "", fmt.Sprintf("date verification failed: %v", err))
	}

	corrected := verification.VerifiedDate
	if corrected == "" {
		if parsed, ok := models.ParseCorrectDate(event.CorrectDateText); ok {
			corrected = parsed
		}
	}

	if corrected == "" || corrected == date {
		reasoning := "no corrected date found; original date stands. " + verification.Reasoning
		return r.commitKeep(ctx, event, models.WinnerOriginal, "", reasoning)
	}

	// Comparing
	correctedEvent, err := r.store.GetEvent(ctx, corrected)
	if errors.Is(err, repository.ErrEventNotFound) {
		return r.reject(ctx, event, models.WinnerOriginal, corrected,
			fmt.Sprintf("no summary available for corrected date %s", corrected))
	}
	if err != nil {
		return nil, err
	}
	if correctedEvent.Summary == "" {
		return r.reject(ctx, event, models.WinnerOriginal, corrected,
			fmt.Sprintf("no summary available for corrected date %s", corrected))
	}
	if !CanMutate(correctedEvent) {
		return r.reject(ctx, event, models.WinnerOriginal, corrected,
			fmt.Sprintf("corrected date %s is manual-entry protected", corrected))
	}

	comparison, err := r.stages.CompareSummaries(ctx,
		factcheck.DatedSummary{Date: date, Summary: event.Summary},
		factcheck.DatedSummary{Date: corrected, Summary: correctedEvent.Summary},
		set)
	if err != nil {
		return r.reject(ctx, event, "", corrected, fmt.Sprintf("summary comparison failed: %v", err))
	}

	if comparison.Winner != models.WinnerCorrected {
		return r.commitKeep(ctx, event, comparison.Winner, corrected, comparison.Reasoning)
	}

	// Selecting: the corrected date needs its own grounded evidence, and it
	// must not reuse the article already backing the original date.
	correctedSet, err := r.store.GetTieredArticles(ctx, corrected)
	if err != nil {
		return nil, err
	}

	selection, err := r.stages.SelectReplacement(ctx, corrected, event.TopArticleID, correctedSet)
	if err != nil {
		return r.reject(ctx, event, "", corrected, fmt.Sprintf("replacement selection failed: %v", err))
	}

	validation := r.stages.ValidateArticleDate(ctx, selection.Article, corrected)
	if !validation.IsValid {
		return r.reject(ctx, event, "", corrected,
			fmt.Sprintf("selected article %s is not date-specific: %s", selection.ArticleID, validation.Reasoning))
	}

	return r.commitReplacement(ctx, event, correctedEvent, comparison, selection)
}

// commitKeep terminates a resolution that leaves both summaries untouched.
// Only the original event's audit fields are written.
func (r *Resolver) commitKeep(ctx context.Context, event *models.Event, winner models.Winner, correctedDate, reasoning string) (*Resolution, error) {
	if !CanMutate(event) {
		return nil, &ProtectedEntryError{Date: event.Date}
	}
	if err := r.writeAudit(ctx, event.Date, models.StatusSuccess, winner, reasoning); err != nil {
		return nil, err
	}
	return &Resolution{
		Date:          event.Date,
		State:         StateCommitted,
		Status:        models.StatusSuccess,
		Winner:        winner,
		CorrectedDate: correctedDate,
		Reasoning:     reasoning,
	}, nil
}

// commitReplacement writes the selected article into the corrected date's
// record, then records the audit trail on the original event.
func (r *Resolver) commitReplacement(ctx context.Context, event, correctedEvent *models.Event, comparison *factcheck.SummaryComparison, selection *factcheck.Selection) (*Resolution, error) {
	if !CanMutate(event) {
		return nil, &ProtectedEntryError{Date: event.Date}
	}
	if !CanMutate(correctedEvent) {
		return r.reject(ctx, event, "", correctedEvent.Date,
			fmt.Sprintf("corrected date %s is manual-entry protected", correctedEvent.Date))
	}

	summary := selection.Article.Summary
	if summary == "" {
		summary = selection.Article.Title
	}

	update := &models.EventUpdate{
		Summary:      &summary,
		TopArticleID: &selection.ArticleID,
		WinningTier:  &selection.Tier,
	}
	if err := r.store.UpdateEvent(ctx, correctedEvent.Date, update); err != nil {
		if errors.Is(err, repository.ErrProtectedEntry) {
			return r.reject(ctx, event, "", correctedEvent.Date,
				fmt.Sprintf("corrected date %s is manual-entry protected", correctedEvent.Date))
		}
		return nil, err
	}

	reasoning := fmt.Sprintf("corrected date %s wins: %s | replacement article: %s",
		correctedEvent.Date, comparison.Reasoning, selection.Reasoning)
	if err := r.writeAudit(ctx, event.Date, models.StatusSuccess, models.WinnerCorrected, reasoning); err != nil {
		return nil, err
	}

	return &Resolution{
		Date:              event.Date,
		State:             StateCommitted,
		Status:            models.StatusSuccess,
		Winner:            models.WinnerCorrected,
		CorrectedDate:     correctedEvent.Date,
		SelectedArticleID: selection.ArticleID,
		SelectedTier:      selection.Tier,
		SummaryChanged:    true,
		Reasoning:         reasoning,
	}, nil
}

// reject terminates a resolution with only audit fields persisted. The
// event's date and summary are left untouched for manual review.
func (r *Resolver) reject(ctx context.Context, event *models.Event, winner models.Winner, correctedDate, reasoning string) (*Resolution, error) {
	if !CanMutate(event) {
		return nil, &ProtectedEntryError{Date: event.Date}
	}
	if err := r.writeAudit(ctx, event.Date, models.StatusProblem, winner, reasoning); err != nil {
		return nil, err
	}
	return &Resolution{
		Date:          event.Date,
		State:         StateRejected,
		Status:        models.StatusProblem,
		Winner:        winner,
		CorrectedDate: correctedDate,
		Reasoning:     reasoning,
	}, nil
}

func (r *Resolver) writeAudit(ctx context.Context, date string, status models.ReVerificationStatus, winner models.Winner, reasoning string) error {
	now := time.Now()
	reVerified := true
	update := &models.EventUpdate{
		ReVerified:              &reVerified,
		ReVerifiedAt:            &now,
		ReVerificationStatus:    &status,
		ReVerificationReasoning: &reasoning,
	}
	if winner != "" {
		update.ReVerificationWinner = &winner
	}
	if err := r.store.UpdateEvent(ctx, date, update); err != nil {
		return fmt.Errorf("failed to persist resolution for %s: %w", date, err)
	}
	return nil
}
