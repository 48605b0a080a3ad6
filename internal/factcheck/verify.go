package factcheck

import (
	"context"
	"fmt"

	"github.com/blockhistory/chronicle/internal/models"
	"github.com/blockhistory/chronicle/internal/oracle"
)

// DateVerification is the outcome of asking the oracle what really happened
// on a date. An empty VerifiedDate with EventType "none" is a valid result,
// distinct from a call failure: the oracle searched and found nothing.
type DateVerification struct {
	VerifiedDate string
	Confidence   int
	Reasoning    string
	EventType    models.Tier
	Citations    []string
}

const verifySystemPrompt = `You are a Bitcoin historical fact-checker with access to real-time web search.
Your task is to verify what event actually happened on a specific date.

PRIORITY HIERARCHY:
1. Bitcoin-specific news (highest priority)
2. Cryptocurrency/Web3 news (medium priority)
3. Macroeconomic/financial news (lowest priority)

When multiple events occurred on the same date, always prioritize Bitcoin news.

Return a JSON object:
{
  "verifiedDate": "YYYY-MM-DD or null if no event found",
  "confidence": 0-100,
  "reasoning": "detailed explanation with citations",
  "eventType": "bitcoin" | "crypto" | "macro" | "none"
}`

// VerifyDate asks the oracle what event actually happened on the given date,
// using the cached article set as context.
func (c *Checker) VerifyDate(ctx context.Context, date string, set models.TieredArticleSet) (*DateVerification, error) {
	userPrompt := fmt.Sprintf(`Date to verify: %s

%s.

Cached articles from our database:
%s

QUESTION: Based on these articles and your web search, what event actually happened on %s?

Please verify:
1. Did the event described in these articles actually happen on %s?
2. If you find contradictory evidence, what is the correct date?
3. What type of event is this? (Bitcoin > Crypto > Macro priority)
4. How confident are you based on the evidence?

Respond ONLY with valid JSON.`, date, tierHint(set), formatTieredArticles(set), date, date)

	reply, err := c.oracle.Call(ctx, verifySystemPrompt, userPrompt, oracle.RequestContext{
		Date:    date,
		Purpose: "date-verification",
	})
	if err != nil {
		return nil, err
	}

	var raw struct {
		VerifiedDate *string `json:"verifiedDate"`
		Confidence   *int    `json:"confidence"`
		Reasoning    string  `json:"reasoning"`
		EventType    string  `json:"eventType"`
	}
	if err := oracle.Decode(reply.Content, &raw); err != nil {
		return nil, err
	}

	result := &DateVerification{
		Confidence: clampConfidence(raw.Confidence),
		Reasoning:  fallbackReasoning(raw.Reasoning),
		EventType:  models.TierNone,
		Citations:  reply.Citations,
	}

	if raw.VerifiedDate != nil && models.IsValidDate(*raw.VerifiedDate) {
		result.VerifiedDate = *raw.VerifiedDate
	}
	if tier, ok := models.ParseTier(raw.EventType); ok {
		result.EventType = tier
	}

	return result, nil
}
