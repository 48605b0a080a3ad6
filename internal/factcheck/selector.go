package factcheck

import (
	"context"
	"fmt"

	"github.com/blockhistory/chronicle/internal/models"
	"github.com/blockhistory/chronicle/internal/oracle"
)

// Selection is the replacement article the oracle chose from the filtered
// candidate set.
type Selection struct {
	ArticleID string
	Tier      models.Tier
	Article   models.CachedArticle
	Reasoning string
}

const selectSystemPrompt = `You are a Bitcoin news analyst selecting the BEST article for a specific date.

PRIORITY HIERARCHY (STRICT):
1. Bitcoin news (HIGHEST priority - always prefer if available and relevant)
2. Crypto/Web3 news (MEDIUM priority - only if no relevant Bitcoin news)
3. Macroeconomic news (LOWEST priority - only if no relevant Bitcoin/Crypto news)

Your task: Select the BEST article from the available options.

Respond ONLY with valid JSON:
{
  "articleId": "the ID of the selected article",
  "reasoning": "why this article is the best choice considering tier hierarchy and relevance"
}`

// SelectReplacement asks the oracle to choose the best substitute article
// for a date, excluding the article already backing another entry. An empty
// candidate set raises ErrNoCandidates before any oracle call; an id outside
// the candidate set raises *InvalidSelectionError.
func (c *Checker) SelectReplacement(ctx context.Context, date, excludeArticleID string, set models.TieredArticleSet) (*Selection, error) {
	candidates := set.Exclude(excludeArticleID)
	if candidates.IsEmpty() {
		return nil, ErrNoCandidates
	}

	userPrompt := fmt.Sprintf(`Date: %s

Available articles (excluding already-used article %s):
%s

QUESTION: Which article is the BEST choice for %s?

Selection criteria:
1. HIGHEST PRIORITY: Bitcoin news (if available and relevant)
2. MEDIUM PRIORITY: Crypto/Web3 news (only if no Bitcoin news)
3. LOWEST PRIORITY: Macroeconomic news (last resort)
4. Within same tier, choose most significant/relevant event

Respond ONLY with valid JSON containing articleId and reasoning.`, date, excludeArticleID, formatCandidates(candidates), date)

	reply, err := c.oracle.Call(ctx, selectSystemPrompt, userPrompt, oracle.RequestContext{
		Date:    date,
		Purpose: "article-replacement",
	})
	if err != nil {
		return nil, err
	}

	var raw struct {
		ArticleID string `json:"articleId"`
		Reasoning string `json:"reasoning"`
	}
	if err := oracle.Decode(reply.Content, &raw); err != nil {
		return nil, err
	}
	if raw.ArticleID == "" {
		return nil, &oracle.FormatError{Content: reply.Content, Reason: "no articleId in reply"}
	}

	article, tier, found := candidates.Find(raw.ArticleID)
	if !found {
		return nil, &InvalidSelectionError{ArticleID: raw.ArticleID}
	}

	return &Selection{
		ArticleID: raw.ArticleID,
		Tier:      tier,
		Article:   article,
		Reasoning: fallbackReasoning(raw.Reasoning),
	}, nil
}
