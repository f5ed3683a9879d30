package entity

import "time"

// RateLimitRecord is the persisted per-identity quota record. At most one
// record exists per identity; RequestCount resets to 1 when the window lapses.
type RateLimitRecord struct {
	Identity        string    `json:"identity"`
	RequestCount    int       `json:"request_count"`
	WindowStart     time.Time `json:"window_start"`
	LastRequestTime time.Time `json:"last_request_time"`
}

// RateLimitInfo reports quota state to callers. WindowResetTime is nil when
// no window is open for the identity.
type RateLimitInfo struct {
	RemainingRequests int        `json:"remaining_requests"`
	WindowResetTime   *time.Time `json:"window_reset_time"`
	RequestCount      int        `json:"request_count"`
	RetryAfterSeconds int        `json:"retry_after_seconds,omitempty"`
}
