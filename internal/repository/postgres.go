package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blockhistory/chronicle/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

const eventColumns = `
	date, summary, verdict, confidence, correct_date_text, citations,
	manual_entry_protected, top_article_id, winning_tier, tiered_articles,
	re_verified, re_verified_at, re_verification_status,
	re_verification_winner, re_verification_reasoning,
	created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	e := &models.Event{}
	err := row.Scan(
		&e.Date, &e.Summary, &e.Verdict, &e.Confidence, &e.CorrectDateText, &e.Citations,
		&e.ManualEntryProtected, &e.TopArticleID, &e.WinningTier, &e.TieredArticles,
		&e.ReVerified, &e.ReVerifiedAt, &e.ReVerificationStatus,
		&e.ReVerificationWinner, &e.ReVerificationReasoning,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// GetEvent retrieves the event for a calendar date
func (r *PostgresRepository) GetEvent(ctx context.Context, date string) (*models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE date = $1`, eventColumns)

	e, err := scanEvent(r.pool.QueryRow(ctx, query, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return e, nil
}

// ListContradicted retrieves all events awaiting resolution: contradicted
// verdict, not yet re-verified, oldest dates first.
func (r *PostgresRepository) ListContradicted(ctx context.Context) ([]*models.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE verdict = $1 AND re_verified = FALSE
		ORDER BY date ASC
	`, eventColumns)

	rows, err := r.pool.Query(ctx, query, models.VerdictContradicted)
	if err != nil {
		return nil, fmt.Errorf("failed to list contradicted events: %w", err)
	}
	defer rows.Close()

	events := []*models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

// GetTieredArticles retrieves the cached article set for a date. A missing
// row yields ErrEventNotFound; a present row with no articles yields an
// empty set.
func (r *PostgresRepository) GetTieredArticles(ctx context.Context, date string) (models.TieredArticleSet, error) {
	var set models.TieredArticleSet
	err := r.pool.QueryRow(ctx, `SELECT tiered_articles FROM events WHERE date = $1`, date).Scan(&set)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TieredArticleSet{}, ErrEventNotFound
		}
		return models.TieredArticleSet{}, fmt.Errorf("failed to get tiered articles: %w", err)
	}
	return set, nil
}

// UpdateEvent applies a partial update to an event. Rows flagged
// manual_entry_protected are never written; the attempt returns
// ErrProtectedEntry.
func (r *PostgresRepository) UpdateEvent(ctx context.Context, date string, update *models.EventUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	setClauses, args := buildUpdateClauses(update)
	args = append(args, date)

	query := fmt.Sprintf(`
		UPDATE events
		SET %s
		WHERE date = $%d AND manual_entry_protected = FALSE
	`, strings.Join(setClauses, ", "), len(args))

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	if result.RowsAffected() == 0 {
		var protected bool
		err := r.pool.QueryRow(ctx,
			`SELECT manual_entry_protected FROM events WHERE date = $1`, date,
		).Scan(&protected)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEventNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check event protection: %w", err)
		}
		if protected {
			return ErrProtectedEntry
		}
		return ErrEventNotFound
	}

	return nil
}

// buildUpdateClauses renders the SET clauses for the non-nil fields of a
// partial update. updated_at is always written.
func buildUpdateClauses(update *models.EventUpdate) ([]string, []interface{}) {
	setClauses := []string{"updated_at = $1"}
	args := []interface{}{time.Now()}

	add := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}

	if update.Summary != nil {
		add("summary", *update.Summary)
	}
	if update.Verdict != nil {
		add("verdict", *update.Verdict)
	}
	if update.CorrectDateText != nil {
		add("correct_date_text", *update.CorrectDateText)
	}
	if update.TopArticleID != nil {
		add("top_article_id", *update.TopArticleID)
	}
	if update.WinningTier != nil {
		add("winning_tier", *update.WinningTier)
	}
	if update.ReVerified != nil {
		add("re_verified", *update.ReVerified)
	}
	if update.ReVerifiedAt != nil {
		add("re_verified_at", *update.ReVerifiedAt)
	}
	if update.ReVerificationStatus != nil {
		add("re_verification_status", *update.ReVerificationStatus)
	}
	if update.ReVerificationWinner != nil {
		add("re_verification_winner", *update.ReVerificationWinner)
	}
	if update.ReVerificationReasoning != nil {
		add("re_verification_reasoning", *update.ReVerificationReasoning)
	}

	return setClauses, args
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
