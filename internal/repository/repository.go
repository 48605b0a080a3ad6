package repository

import (
	"context"
	"errors"

	"github.com/blockhistory/chronicle/internal/models"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrProtectedEntry = errors.New("event is manual-entry protected")
)

// Repository defines the interface for timeline event persistence
type Repository interface {
	// Event operations
	GetEvent(ctx context.Context, date string) (*models.Event, error)
	UpdateEvent(ctx context.Context, date string, update *models.EventUpdate) error
	ListContradicted(ctx context.Context) ([]*models.Event, error)
	GetTieredArticles(ctx context.Context, date string) (models.TieredArticleSet, error)

	// Utility
	Close() error
}
