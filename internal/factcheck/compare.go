package factcheck

import (
	"context"
	"fmt"

	"github.com/blockhistory/chronicle/internal/models"
	"github.com/blockhistory/chronicle/internal/oracle"
)

// DatedSummary pairs a calendar date with the summary currently describing it.
type DatedSummary struct {
	Date    string
	Summary string
}

// SummaryComparison is the oracle's judgment of which summary better matches
// the verifiable record. WinnerNeither is a valid, non-error outcome meaning
// no corrective action should be taken.
type SummaryComparison struct {
	Winner     models.Winner
	Confidence int
	Reasoning  string
	Citations  []string
}

const compareSystemPrompt = `You are a Bitcoin historian comparing two event summaries to determine which is more accurate.

PRIORITY HIERARCHY:
1. Bitcoin news (most important)
2. Crypto/Web3 news (medium importance)
3. Macroeconomic news (least important)

Your task: Compare these two summaries and determine which is MORE ACCURATE for describing what actually happened.

Respond ONLY with valid JSON:
{
  "winner": "original" | "corrected" | "neither",
  "confidence": 0-100,
  "reasoning": "detailed explanation with specific evidence",
  "citations": ["url1", "url2"]
}`

// CompareSummaries asks the oracle to pick between the original and the
// proposed corrected (date, summary) pair. The article set is passed flat as
// read-only reference material.
func (c *Checker) CompareSummaries(ctx context.Context, original, corrected DatedSummary, set models.TieredArticleSet) (*SummaryComparison, error) {
	userPrompt := fmt.Sprintf(`ORIGINAL DATE: %s
Summary: %q

CORRECTED DATE: %s
Summary: %q

Cached articles for reference:
%s

QUESTION: Which summary is MORE ACCURATE for the event that actually happened?

Consider:
1. Factual accuracy based on your knowledge and web search
2. Does one summary describe a more significant event (Bitcoin > Crypto > Macro)?
3. Is one summary clearly wrong or misleading?
4. If both are equally valid, choose "neither"

Respond ONLY with valid JSON.`, original.Date, original.Summary, corrected.Date, corrected.Summary, formatCandidates(set))

	reply, err := c.oracle.Call(ctx, compareSystemPrompt, userPrompt, oracle.RequestContext{
		Date:    fmt.Sprintf("%s vs %s", original.Date, corrected.Date),
		Purpose: "summary-comparison",
	})
	if err != nil {
		return nil, err
	}

	var raw struct {
		Winner     string   `json:"winner"`
		Confidence *int     `json:"confidence"`
		Reasoning  string   `json:"reasoning"`
		Citations  []string `json:"citations"`
	}
	if err := oracle.Decode(reply.Content, &raw); err != nil {
		return nil, err
	}

	winner := models.Winner(raw.Winner)
	switch winner {
	case models.WinnerOriginal, models.WinnerCorrected, models.WinnerNeither:
	default:
		return nil, &oracle.FormatError{Content: reply.Content, Reason: fmt.Sprintf("unknown winner %q", raw.Winner)}
	}

	citations := raw.Citations
	if len(citations) == 0 {
		citations = reply.Citations
	}

	return &SummaryComparison{
		Winner:     winner,
		Confidence: clampConfidence(raw.Confidence),
		Reasoning:  fallbackReasoning(raw.Reasoning),
		Citations:  citations,
	}, nil
}
