package domain

import "time"

// Claim carries everything the conditional update writes in one step.
type Claim struct {
	Code      string
	Claimant  string
	ClaimedAt time.Time
	ExpiresAt time.Time
	PurgeAt   time.Time
}

// NewClaim computes expiresAt = claimedAt + ttl and purgeAt = expiresAt + retention.
// Times are kept at whole-second precision to match the token's NumericDate.
func NewClaim(code, claimant string, now time.Time, ttl, retention time.Duration) Claim {
	claimedAt := now.UTC().Truncate(time.Second)
	expiresAt := claimedAt.Add(ttl)
	return Claim{
		Code:      code,
		Claimant:  claimant,
		ClaimedAt: claimedAt,
		ExpiresAt: expiresAt,
		PurgeAt:   expiresAt.Add(retention),
	}
}

// Session is what a successful redemption hands back to the caller.
type Session struct {
	Token     string
	Subject   string
	CodeID    string
	ExpiresAt time.Time
}

// GenerateOptions tunes a generation batch. Zero values fall back to the
// service defaults.
type GenerateOptions struct {
	Prefix   string
	Length   int
	Alphabet string
	Notes    string
}
