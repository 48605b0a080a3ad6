package resolver

import (
	"fmt"

	"github.com/blockhistory/chronicle/internal/models"
)

// ProtectedEntryError means automated resolution attempted to touch a
// manually curated record. Raised before any oracle call is made.
type ProtectedEntryError struct {
	Date string
}

func (e *ProtectedEntryError) Error() string {
	return fmt.Sprintf("event %s is manual-entry protected", e.Date)
}

// CanMutate reports whether automated resolution may write to the event.
// Consulted at pipeline entry and again immediately before every commit.
func CanMutate(event *models.Event) bool {
	return event != nil && !event.ManualEntryProtected
}
