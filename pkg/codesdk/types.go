package codesdk

import "time"

// ClaimRequest is the body of POST /v1/claim.
type ClaimRequest struct {
	// Code is the access code as handed to the user. Case and surrounding
	// whitespace are ignored.
	Code string `json:"code" example:"482913"`

	// Claimant identifies who is redeeming the code. It becomes the token subject.
	Claimant string `json:"claimant" example:"client-77"`
}

// ClaimResponse carries the session token minted for a claimed code.
// ExpiresAt is in epoch seconds and equals the token's exp claim.
type ClaimResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type" example:"Bearer"`
	ExpiresAt int64  `json:"expiresAt" example:"1767225600"`
}

// Expiry returns ExpiresAt as a UTC time.
func (r ClaimResponse) Expiry() time.Time {
	return time.Unix(r.ExpiresAt, 0).UTC()
}

// GenerateRequest is the body of POST /v1/codes. Zero values fall back to
// the server's configured format.
type GenerateRequest struct {
	Count    int    `json:"count" example:"10"`
	Prefix   string `json:"prefix,omitempty" example:"EVT-"`
	Length   int    `json:"length,omitempty" example:"6"`
	Alphabet string `json:"alphabet,omitempty" example:"numeric"`
	Notes    string `json:"notes,omitempty" example:"launch party"`
}

// GenerateResponse lists the codes created by a batch.
type GenerateResponse struct {
	Created int      `json:"created"`
	Codes   []string `json:"codes"`
}

// SessionResponse describes the caller's verified session.
type SessionResponse struct {
	Subject   string    `json:"subject"`
	JTI       string    `json:"jti"`
	Exp       int64     `json:"exp"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AccessCodeResponse is the persisted record of a code, for operators.
type AccessCodeResponse struct {
	Code      string     `json:"code"`
	Status    string     `json:"status" example:"AVAILABLE"`
	ClaimedBy string     `json:"claimedBy,omitempty"`
	ClaimedAt *time.Time `json:"claimedAt,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	PurgeAt   *time.Time `json:"purgeAt,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ErrorResponse is the wire shape of every error.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency in /readyz.
type HealthChecks struct {
	Store  string `json:"store"`
	Signer string `json:"signer"`
}
