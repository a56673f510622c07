package metrics

import "time"

// NoopMetrics is a no-operation implementation of Recorder, used when
// metrics are disabled.
type NoopMetrics struct{}

var _ Recorder = (*NoopMetrics)(nil)

func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) CodesGenerated(int)                {}
func (n *NoopMetrics) GenerateCollision()                {}
func (n *NoopMetrics) ClaimResult(string, time.Duration) {}
func (n *NoopMetrics) TokenVerification(string)          {}
func (n *NoopMetrics) CodesPurged(int64)                 {}
