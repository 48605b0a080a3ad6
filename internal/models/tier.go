package models

// Tier is one of the three fixed relevance buckets that partition cached
// articles for a date. Tier membership is assigned at cache-population time
// and is never changed by the resolution pipeline.
type Tier string

const (
	TierBitcoin Tier = "bitcoin"
	TierCrypto  Tier = "crypto"
	TierMacro   Tier = "macro"
	// TierNone is only ever produced by the date verification stage when no
	// event could be found; it is not a valid bucket for cached articles.
	TierNone Tier = "none"
)

// Rank returns the precedence of a tier, lower is better. Bitcoin always
// outranks crypto, which outranks macro.
func (t Tier) Rank() int {
	switch t {
	case TierBitcoin:
		return 0
	case TierCrypto:
		return 1
	case TierMacro:
		return 2
	default:
		return 3
	}
}

// IsBucket reports whether t names one of the three article buckets.
func (t Tier) IsBucket() bool {
	return t == TierBitcoin || t == TierCrypto || t == TierMacro
}

// CompareTiers orders tiers by precedence: negative when a outranks b,
// zero when equal, positive when b outranks a.
func CompareTiers(a, b Tier) int {
	return a.Rank() - b.Rank()
}

// ParseTier converts a string to a Tier, accepting only the three buckets
// plus "none".
func ParseTier(s string) (Tier, bool) {
	switch Tier(s) {
	case TierBitcoin, TierCrypto, TierMacro, TierNone:
		return Tier(s), true
	}
	return "", false
}
