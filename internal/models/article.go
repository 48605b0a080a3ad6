package models

// CachedArticle is one retrievable source document from the article cache.
// The pipeline never mutates cache entries; the selector only chooses ids.
type CachedArticle struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	PublishedDate string `json:"published_date"`
	Author        string `json:"author,omitempty"`
	Summary       string `json:"summary,omitempty"`
	Text          string `json:"text,omitempty"`
}

// TieredArticleSet holds the three tier lists for one date. It is the unit
// of input to the verification, selection, and validation stages.
type TieredArticleSet struct {
	Bitcoin []CachedArticle `json:"bitcoin"`
	Crypto  []CachedArticle `json:"crypto"`
	Macro   []CachedArticle `json:"macro"`
}

// IsEmpty reports whether no tier holds any article.
func (s TieredArticleSet) IsEmpty() bool {
	return len(s.Bitcoin)+len(s.Crypto)+len(s.Macro) == 0
}

// Count returns the total number of articles across all tiers.
func (s TieredArticleSet) Count() int {
	return len(s.Bitcoin) + len(s.Crypto) + len(s.Macro)
}

// Exclude returns a copy of the set with the given article id removed from
// every tier. An empty id returns the set unchanged.
func (s TieredArticleSet) Exclude(articleID string) TieredArticleSet {
	if articleID == "" {
		return s
	}
	return TieredArticleSet{
		Bitcoin: withoutID(s.Bitcoin, articleID),
		Crypto:  withoutID(s.Crypto, articleID),
		Macro:   withoutID(s.Macro, articleID),
	}
}

// Find looks up an article by id and returns it with the tier it belongs to.
func (s TieredArticleSet) Find(articleID string) (CachedArticle, Tier, bool) {
	for _, a := range s.Bitcoin {
		if a.ID == articleID {
			return a, TierBitcoin, true
		}
	}
	for _, a := range s.Crypto {
		if a.ID == articleID {
			return a, TierCrypto, true
		}
	}
	for _, a := range s.Macro {
		if a.ID == articleID {
			return a, TierMacro, true
		}
	}
	return CachedArticle{}, "", false
}

func withoutID(articles []CachedArticle, id string) []CachedArticle {
	out := make([]CachedArticle, 0, len(articles))
	for _, a := range articles {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}
