package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCorrectDate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
		ok       bool
	}{
		{
			name:     "bare ISO date",
			text:     "2016-03-03",
			expected: "2016-03-03",
			ok:       true,
		},
		{
			name:     "date embedded in prose",
			text:     "the event actually occurred on 2017-12-18, not the stated date",
			expected: "2017-12-18",
			ok:       true,
		},
		{
			name: "no date present",
			text: "sometime in late 2017",
			ok:   false,
		},
		{
			name: "empty text",
			text: "",
			ok:   false,
		},
		{
			name: "matches pattern but not a real date",
			text: "2016-13-45",
			ok:   false,
		},
		{
			name:     "first of several dates wins",
			text:     "either 2016-03-03 or 2016-03-04",
			expected: "2016-03-03",
			ok:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, ok := ParseCorrectDate(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, date)
		})
	}
}

func TestTierOrdering(t *testing.T) {
	assert.Negative(t, CompareTiers(TierBitcoin, TierCrypto))
	assert.Negative(t, CompareTiers(TierCrypto, TierMacro))
	assert.Negative(t, CompareTiers(TierBitcoin, TierMacro))
	assert.Zero(t, CompareTiers(TierCrypto, TierCrypto))
	assert.Positive(t, CompareTiers(TierMacro, TierBitcoin))
	assert.Positive(t, CompareTiers(TierNone, TierMacro))
}

func TestParseTier(t *testing.T) {
	for _, valid := range []string{"bitcoin", "crypto", "macro", "none"} {
		tier, ok := ParseTier(valid)
		assert.True(t, ok)
		assert.Equal(t, Tier(valid), tier)
	}

	for _, invalid := range []string{"", "Bitcoin", "web3", "BITCOIN"} {
		_, ok := ParseTier(invalid)
		assert.False(t, ok, "expected %q to be rejected", invalid)
	}

	assert.True(t, TierBitcoin.IsBucket())
	assert.False(t, TierNone.IsBucket())
}

func TestTieredArticleSetExclude(t *testing.T) {
	set := TieredArticleSet{
		Bitcoin: []CachedArticle{{ID: "a1"}, {ID: "a2"}},
		Crypto:  []CachedArticle{{ID: "a1"}, {ID: "c1"}},
		Macro:   []CachedArticle{{ID: "m1"}},
	}

	filtered := set.Exclude("a1")
	assert.Len(t, filtered.Bitcoin, 1)
	assert.Len(t, filtered.Crypto, 1)
	assert.Len(t, filtered.Macro, 1)
	_, _, found := filtered.Find("a1")
	assert.False(t, found)

	// Original is untouched.
	assert.Len(t, set.Bitcoin, 2)

	// Empty id is a no-op.
	assert.Equal(t, set, set.Exclude(""))
}

func TestTieredArticleSetFind(t *testing.T) {
	set := TieredArticleSet{
		Bitcoin: []CachedArticle{{ID: "b1", Title: "halving"}},
		Macro:   []CachedArticle{{ID: "m1"}},
	}

	article, tier, ok := set.Find("b1")
	assert.True(t, ok)
	assert.Equal(t, TierBitcoin, tier)
	assert.Equal(t, "halving", article.Title)

	_, tier, ok = set.Find("m1")
	assert.True(t, ok)
	assert.Equal(t, TierMacro, tier)

	_, _, ok = set.Find("missing")
	assert.False(t, ok)
}

func TestTieredArticleSetCounts(t *testing.T) {
	assert.True(t, TieredArticleSet{}.IsEmpty())
	set := TieredArticleSet{Crypto: []CachedArticle{{ID: "c1"}}}
	assert.False(t, set.IsEmpty())
	assert.Equal(t, 1, set.Count())
}
