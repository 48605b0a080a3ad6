package factcheck

import (
	"context"
	"fmt"

	"github.com/blockhistory/chronicle/internal/models"
	"github.com/blockhistory/chronicle/internal/oracle"
)

// Validation is the advisory judgment of whether an article describes a
// discrete event on a target date rather than a generic roundup.
type Validation struct {
	IsValid    bool
	Reasoning  string
	Confidence int
}

const validateSystemPrompt = `You are a precise historical fact-checker. Your task is to determine if an article describes a SPECIFIC EVENT that actually happened on a given date, or if it's just a general overview/analysis article that happens to be published on that date.

CRITICAL DISTINCTION:
- VALID: Article describes a specific event that occurred on the target date (e.g., "Bitcoin price surged 10% today", "Company X announced Y today", "Regulation Z was passed today")
- INVALID: Article is a general overview, analysis, or listicle published on that date but not about a specific event (e.g., "Here are six projects looking to...", "Overview of trends in...", "Analysis of the market...")

Return JSON:
{
  "isValid": true | false,
  "reasoning": "detailed explanation",
  "confidence": 0-100
}`

const validatorTextExcerpt = 500

// ValidateArticleDate checks whether an article is evidence of a discrete
// event on targetDate. Validation is advisory and fails closed: any oracle
// or parse failure yields IsValid false with a diagnostic reasoning rather
// than an error, so unverifiable articles are never trusted by default.
func (c *Checker) ValidateArticleDate(ctx context.Context, article models.CachedArticle, targetDate string) Validation {
	summary := article.Summary
	if summary == "" {
		summary = "N/A"
	}
	excerpt := ""
	if article.Text != "" {
		text := article.Text
		if len(text) > validatorTextExcerpt {
			text = text[:validatorTextExcerpt]
		}
		excerpt = fmt.Sprintf("\nText excerpt: %s...", text)
	}

	userPrompt := fmt.Sprintf(`Target Date: %s

Article to validate:
Title: %s
URL: %s
Published: %s
Summary: %s%s

QUESTION: Does this article describe a SPECIFIC EVENT that actually happened on %s, or is it just a general overview/analysis article published on that date?

Use your web search to verify:
1. Does the article describe something that happened on %s?
2. Or is it just published on %s but discusses general topics/trends?

Respond ONLY with valid JSON.`, targetDate, article.Title, article.URL, article.PublishedDate, summary, excerpt, targetDate, targetDate, targetDate)

	reply, err := c.oracle.Call(ctx, validateSystemPrompt, userPrompt, oracle.RequestContext{
		Date:    targetDate,
		Purpose: "validate-article-date-specificity",
	})
	if err != nil {
		return Validation{
			IsValid:   false,
			Reasoning: fmt.Sprintf("validation error: %v", err),
		}
	}

	var raw struct {
		IsValid    *bool  `json:"isValid"`
		Reasoning  string `json:"reasoning"`
		Confidence *int   `json:"confidence"`
	}
	if err := oracle.Decode(reply.Content, &raw); err != nil {
		return Validation{
			IsValid:   false,
			Reasoning: fmt.Sprintf("validation error: %v", err),
		}
	}

	return Validation{
		IsValid:    raw.IsValid != nil && *raw.IsValid,
		Reasoning:  fallbackReasoning(raw.Reasoning),
		Confidence: clampConfidence(raw.Confidence),
	}
}
