// Package factcheck implements the oracle-backed pipeline stages: date
// verification, summary comparison, replacement selection, and article
// date-specificity validation. Stages never write to storage; they return
// typed results the orchestrator acts on.
package factcheck

import (
	"errors"

	"github.com/blockhistory/chronicle/internal/oracle"
)

// ErrNoCandidates means the selector had no articles left after excluding
// the already-used one. Raised before any oracle call is made.
var ErrNoCandidates = errors.New("no candidate articles available after exclusion")

// InvalidSelectionError means the oracle named an article id that is not in
// the filtered candidate set. This is a contract violation, never silently
// repaired by substituting a candidate.
type InvalidSelectionError struct {
	ArticleID string
}

func (e *InvalidSelectionError) Error() string {
	return "selected article id " + e.ArticleID + " not found in candidate set"
}

// Checker runs the pipeline stages against an oracle.
type Checker struct {
	oracle oracle.Caller
}

// NewChecker creates a stage runner backed by the given oracle client.
func NewChecker(caller oracle.Caller) *Checker {
	return &Checker{oracle: caller}
}

const defaultConfidence = 50

// clampConfidence normalizes an oracle-reported confidence into [0,100].
// A nil (absent) value takes the default of 50.
func clampConfidence(v *int) int {
	if v == nil {
		return defaultConfidence
	}
	if *v < 0 {
		return 0
	}
	if *v > 100 {
		return 100
	}
	return *v
}

// fallbackReasoning guarantees the non-empty reasoning invariant for every
// stage result.
func fallbackReasoning(s string) string {
	if s == "" {
		return "reasoning not provided by oracle"
	}
	return s
}
