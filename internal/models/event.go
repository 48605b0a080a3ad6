package models

import (
	"regexp"
	"time"
)

// Verdict is the upstream fact-check classification that gates entry into
// the resolution pipeline.
type Verdict string

const (
	VerdictVerified     Verdict = "verified"
	VerdictContradicted Verdict = "contradicted"
	VerdictUncertain    Verdict = "uncertain"
)

// ReVerificationStatus records how a resolution attempt terminated.
type ReVerificationStatus string

const (
	StatusSuccess ReVerificationStatus = "success"
	StatusProblem ReVerificationStatus = "problem"
)

// Winner identifies which summary a comparison favored.
type Winner string

const (
	WinnerOriginal  Winner = "original"
	WinnerCorrected Winner = "corrected"
	WinnerNeither   Winner = "neither"
)

// Event is one calendar date's curated record. Date is the primary key.
type Event struct {
	Date                    string               `json:"date"`
	Summary                 string               `json:"summary"`
	Verdict                 Verdict              `json:"verdict"`
	Confidence              int                  `json:"confidence"`
	CorrectDateText         string               `json:"correct_date_text,omitempty"`
	Citations               []string             `json:"citations,omitempty"`
	ManualEntryProtected    bool                 `json:"manual_entry_protected"`
	TopArticleID            string               `json:"top_article_id,omitempty"`
	WinningTier             Tier                 `json:"winning_tier,omitempty"`
	TieredArticles          TieredArticleSet     `json:"tiered_articles"`
	ReVerified              bool                 `json:"re_verified"`
	ReVerifiedAt            *time.Time           `json:"re_verified_at,omitempty"`
	ReVerificationStatus    ReVerificationStatus `json:"re_verification_status,omitempty"`
	ReVerificationWinner    Winner               `json:"re_verification_winner,omitempty"`
	ReVerificationReasoning string               `json:"re_verification_reasoning,omitempty"`
	CreatedAt               time.Time            `json:"created_at"`
	UpdatedAt               time.Time            `json:"updated_at"`
}

// EventUpdate carries a partial update for an event. Nil fields are left
// untouched by the storage layer.
type EventUpdate struct {
	Summary                 *string               `json:"summary,omitempty"`
	Verdict                 *Verdict              `json:"verdict,omitempty"`
	CorrectDateText         *string               `json:"correct_date_text,omitempty"`
	TopArticleID            *string               `json:"top_article_id,omitempty"`
	WinningTier             *Tier                 `json:"winning_tier,omitempty"`
	ReVerified              *bool                 `json:"re_verified,omitempty"`
	ReVerifiedAt            *time.Time            `json:"re_verified_at,omitempty"`
	ReVerificationStatus    *ReVerificationStatus `json:"re_verification_status,omitempty"`
	ReVerificationWinner    *Winner               `json:"re_verification_winner,omitempty"`
	ReVerificationReasoning *string               `json:"re_verification_reasoning,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (u *EventUpdate) IsEmpty() bool {
	return u == nil || (u.Summary == nil && u.Verdict == nil && u.CorrectDateText == nil &&
		u.TopArticleID == nil && u.WinningTier == nil && u.ReVerified == nil &&
		u.ReVerifiedAt == nil && u.ReVerificationStatus == nil &&
		u.ReVerificationWinner == nil && u.ReVerificationReasoning == nil)
}

var isoDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// ParseCorrectDate extracts a YYYY-MM-DD date from the free-text corrected
// date suggestion produced by fact-checking. The text often arrives as prose
// ("the event occurred on 2016-03-03"), so the first ISO date span wins.
func ParseCorrectDate(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	match := isoDatePattern.FindString(text)
	if match == "" {
		return "", false
	}
	if _, err := time.Parse("2006-01-02", match); err != nil {
		return "", false
	}
	return match, true
}

// IsValidDate reports whether s is a calendar date in YYYY-MM-DD form.
func IsValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
