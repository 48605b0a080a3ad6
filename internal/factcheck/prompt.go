package factcheck

import (
	"fmt"
	"strings"

	"github.com/blockhistory/chronicle/internal/models"
)

// formatTieredArticles renders the cached article set grouped by tier for
// inclusion in a prompt. All tiers are always passed in full; tier hints
// only bias the oracle, they never filter data.
func formatTieredArticles(set models.TieredArticleSet) string {
	var b strings.Builder

	writeTier := func(header string, articles []models.CachedArticle) {
		if len(articles) == 0 {
			return
		}
		b.WriteString("\n=== " + header + " ===\n")
		for i, a := range articles {
			fmt.Fprintf(&b, "\nArticle %d:\n", i+1)
			fmt.Fprintf(&b, "Title: %s\n", a.Title)
			fmt.Fprintf(&b, "URL: %s\n", a.URL)
			fmt.Fprintf(&b, "Published: %s\n", a.PublishedDate)
			if a.Summary != "" {
				fmt.Fprintf(&b, "Summary: %s\n", a.Summary)
			}
		}
	}

	writeTier("BITCOIN TIER ARTICLES", set.Bitcoin)
	writeTier("CRYPTO/WEB3 TIER ARTICLES", set.Crypto)
	writeTier("MACROECONOMIC TIER ARTICLES", set.Macro)

	if b.Len() == 0 {
		return "\n(No articles available)\n"
	}
	return b.String()
}

// formatCandidates renders articles with their ids and tiers so the oracle
// can name its selection.
func formatCandidates(set models.TieredArticleSet) string {
	var sections []string

	writeTier := func(tier models.Tier, articles []models.CachedArticle) {
		if len(articles) == 0 {
			return
		}
		entries := make([]string, 0, len(articles))
		for _, a := range articles {
			summary := a.Summary
			if summary == "" {
				summary = "N/A"
			}
			entries = append(entries, fmt.Sprintf(
				"ID: %s\nTier: %s\nTitle: %s\nURL: %s\nPublished: %s\nSummary: %s",
				a.ID, strings.ToUpper(string(tier)), a.Title, a.URL, a.PublishedDate, summary,
			))
		}
		sections = append(sections, strings.Join(entries, "\n\n"))
	}

	writeTier(models.TierBitcoin, set.Bitcoin)
	writeTier(models.TierCrypto, set.Crypto)
	writeTier(models.TierMacro, set.Macro)

	return strings.Join(sections, "\n\n---\n\n")
}

// tierHint describes the best tier of coverage available for a date. It is
// prompt bias only.
func tierHint(set models.TieredArticleSet) string {
	switch {
	case len(set.Bitcoin) > 0:
		return "We have Bitcoin-specific articles"
	case len(set.Crypto) > 0:
		return "We have cryptocurrency/Web3 articles"
	case len(set.Macro) > 0:
		return "We have macroeconomic/financial articles"
	default:
		return "We have limited article coverage"
	}
}
