package metrics

import "time"

// Claim outcomes used as the result label.
const (
	ClaimSuccess          = "success"
	ClaimInvalidFormat    = "invalid_format"
	ClaimInvalidOrUsed    = "invalid_or_used"
	ClaimStoreUnavailable = "store_unavailable"
	ClaimKeyUnavailable   = "secret_unavailable"
	ClaimError            = "error"
)

// Recorder is what the services and handlers report to.
type Recorder interface {
	CodesGenerated(n int)
	GenerateCollision()
	ClaimResult(result string, d time.Duration)
	TokenVerification(result string)
	CodesPurged(n int64)
}

// Init returns a Prometheus recorder registered on reg, or a noop recorder
// when metrics are disabled.
func Init(enabled bool, reg Registerer) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}
	return New(reg)
}
