// Package health tracks the reachability of the workflow generation service.
package health

import "time"

// Status is the coarse health of the backend.
type Status string

const (
	// StatusUnknown means no probe has completed yet.
	StatusUnknown Status = "unknown"
	// StatusHealthy means the service answered and reported "healthy".
	StatusHealthy Status = "healthy"
	// StatusUnhealthy means the service answered but reported a problem or a
	// non-200 status.
	StatusUnhealthy Status = "unhealthy"
	// StatusUnreachable means no usable response was obtained.
	StatusUnreachable Status = "unreachable"
)

// Report is the result of one probe.
type Report struct {
	Status Status
	// Service is the service name the backend reported, if any.
	Service string
	// Err describes why the backend is not healthy.
	Err error
	// CheckedAt is when the probe completed.
	CheckedAt time.Time
}

// Healthy reports whether the backend was healthy at CheckedAt.
func (r Report) Healthy() bool {
	return r.Status == StatusHealthy
}

// AgeAt returns how long before now the probe completed.
func (r Report) AgeAt(now time.Time) time.Duration {
	if r.CheckedAt.IsZero() {
		return 0
	}
	return now.Sub(r.CheckedAt)
}
