package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockhistory/chronicle/internal/models"
)

func TestNewPostgresRepository(t *testing.T) {
	tests := []struct {
		name        string
		connString  string
		expectError bool
	}{
		{
			name:        "invalid connection string",
			connString:  "invalid://connection",
			expectError: true,
		},
		{
			name:        "empty connection string",
			connString:  "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			_, err := NewPostgresRepository(ctx, tt.connString)

			if tt.expectError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestBuildUpdateClauses(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	reVerified := true
	status := models.StatusSuccess
	winner := models.WinnerCorrected
	tier := models.TierBitcoin

	tests := []struct {
		name        string
		update      *models.EventUpdate
		wantClauses []string
		wantArgs    int
	}{
		{
			name: "single field",
			update: &models.EventUpdate{
				Summary: stringPtr("corrected summary"),
			},
			wantClauses: []string{"updated_at = $1", "summary = $2"},
			wantArgs:    2,
		},
		{
			name: "audit fields",
			update: &models.EventUpdate{
				ReVerified:              &reVerified,
				ReVerifiedAt:            &now,
				ReVerificationStatus:    &status,
				ReVerificationWinner:    &winner,
				ReVerificationReasoning: stringPtr("corrected date confirmed"),
			},
			wantClauses: []string{
				"updated_at = $1",
				"re_verified = $2",
				"re_verified_at = $3",
				"re_verification_status = $4",
				"re_verification_winner = $5",
				"re_verification_reasoning = $6",
			},
			wantArgs: 6,
		},
		{
			name: "replacement commit",
			update: &models.EventUpdate{
				Summary:      stringPtr("new summary"),
				TopArticleID: stringPtr("art-42"),
				WinningTier:  &tier,
			},
			wantClauses: []string{
				"updated_at = $1",
				"summary = $2",
				"top_article_id = $3",
				"winning_tier = $4",
			},
			wantArgs: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clauses, args := buildUpdateClauses(tt.update)
			assert.Equal(t, tt.wantClauses, clauses)
			assert.Len(t, args, tt.wantArgs)
		})
	}
}

func TestBuildUpdateClausesArgValues(t *testing.T) {
	winner := models.WinnerNeither
	update := &models.EventUpdate{
		ReVerificationWinner:    &winner,
		ReVerificationReasoning: stringPtr("both summaries equally supported"),
	}

	clauses, args := buildUpdateClauses(update)
	require.Len(t, clauses, 3)
	require.Len(t, args, 3)
	assert.IsType(t, time.Time{}, args[0])
	assert.Equal(t, models.WinnerNeither, args[1])
	assert.Equal(t, "both summaries equally supported", args[2])
}

// Helper function
func stringPtr(s string) *string {
	return &s
}
