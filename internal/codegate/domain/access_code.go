package domain

import "time"

type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusClaimed   Status = "CLAIMED"
)

func (s Status) Valid() bool {
	return s == StatusAvailable || s == StatusClaimed
}

// AccessCode is a single-use capability. Status only ever moves from
// AVAILABLE to CLAIMED, and the claim fields are written together, once.
// Zero times mean "not set".
type AccessCode struct {
	Code      string
	Status    Status
	ClaimedBy string
	ClaimedAt time.Time
	ExpiresAt time.Time
	PurgeAt   time.Time // advisory; the sweep deletes at or after this
	Notes     string
	CreatedAt time.Time
}

// NewAccessCode returns an unclaimed code created at now.
func NewAccessCode(code, notes string, now time.Time) AccessCode {
	return AccessCode{
		Code:      code,
		Status:    StatusAvailable,
		Notes:     notes,
		CreatedAt: now.UTC().Truncate(time.Second),
	}
}

func (c AccessCode) Claimed() bool { return c.Status == StatusClaimed }
