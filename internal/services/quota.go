package services

import (
	"log/slog"
	"time"

	"churchhelper/entity"
	"churchhelper/internal/config"
	"churchhelper/internal/lib/sl"
)

// RateLimitStore is the persisted per-identity record CRUD the quota service
// runs against. Get returns (nil, nil) when no record exists.
type RateLimitStore interface {
	GetRateLimit(identity string) (*entity.RateLimitRecord, error)
	CreateRateLimit(identity string, now time.Time) error
	UpdateRateLimit(identity string, count int, windowStart, lastRequest time.Time) error
	ResetRateLimit(identity string, now time.Time) error
	PurgeRateLimits(olderThan time.Time) (int64, error)
}

// QuotaService admits or denies public requests per client identity under a
// fixed window-by-reset policy.
type QuotaService struct {
	store       RateLimitStore
	maxRequests int
	window      time.Duration
	retention   time.Duration
	log         *slog.Logger
	now         func() time.Time
}

func NewQuotaService(conf *config.Config, store RateLimitStore, log *slog.Logger) *QuotaService {
	maxRequests := conf.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 3
	}
	windowHours := conf.RateLimit.WindowHours
	if windowHours <= 0 {
		windowHours = 3
	}
	retentionHours := conf.RateLimit.RetentionHours
	if retentionHours <= 0 {
		retentionHours = 24
	}

	return &QuotaService{
		store:       store,
		maxRequests: maxRequests,
		window:      time.Duration(windowHours) * time.Hour,
		retention:   time.Duration(retentionHours) * time.Hour,
		log:         log.With(sl.Module("quota")),
		now:         time.Now,
	}
}

// SetClock replaces the time source. For tests.
func (q *QuotaService) SetClock(now func() time.Time) {
	q.now = now
}

// CheckAndRecord decides admit/deny for one request from identity and records
// the request when admitted. Denial never mutates the stored record. If the
// store is unreachable the request is admitted (fail open) with a
// conservative quota report.
func (q *QuotaService) CheckAndRecord(identity string) (bool, *entity.RateLimitInfo) {
	now := q.now()

	record, err := q.store.GetRateLimit(identity)
	if err != nil {
		return true, q.failOpen(identity, err, now)
	}

	if record == nil {
		if err = q.store.CreateRateLimit(identity, now); err != nil {
			return true, q.failOpen(identity, err, now)
		}
		reset := now.Add(q.window)
		return true, &entity.RateLimitInfo{
			RemainingRequests: q.maxRequests - 1,
			WindowResetTime:   &reset,
			RequestCount:      1,
		}
	}

	if now.Sub(record.WindowStart) >= q.window {
		// Window elapsed, start a fresh one.
		if err = q.store.ResetRateLimit(identity, now); err != nil {
			return true, q.failOpen(identity, err, now)
		}
		reset := now.Add(q.window)
		return true, &entity.RateLimitInfo{
			RemainingRequests: q.maxRequests - 1,
			WindowResetTime:   &reset,
			RequestCount:      1,
		}
	}

	if record.RequestCount >= q.maxRequests {
		reset := record.WindowStart.Add(q.window)
		retryAfter := int(q.window.Seconds() - now.Sub(record.WindowStart).Seconds())
		return false, &entity.RateLimitInfo{
			RemainingRequests: 0,
			WindowResetTime:   &reset,
			RequestCount:      record.RequestCount,
			RetryAfterSeconds: retryAfter,
		}
	}

	newCount := record.RequestCount + 1
	if err = q.store.UpdateRateLimit(identity, newCount, record.WindowStart, now); err != nil {
		return true, q.failOpen(identity, err, now)
	}
	reset := record.WindowStart.Add(q.window)
	return true, &entity.RateLimitInfo{
		RemainingRequests: q.maxRequests - newCount,
		WindowResetTime:   &reset,
		RequestCount:      newCount,
	}
}

// Peek reports quota state for identity without creating or mutating any
// record.
func (q *QuotaService) Peek(identity string) *entity.RateLimitInfo {
	now := q.now()

	record, err := q.store.GetRateLimit(identity)
	if err != nil {
		q.log.With(sl.Err(err), slog.String("identity", identity)).Error("rate limit peek failed")
		return &entity.RateLimitInfo{RemainingRequests: q.maxRequests}
	}

	if record == nil || now.Sub(record.WindowStart) >= q.window {
		return &entity.RateLimitInfo{RemainingRequests: q.maxRequests}
	}

	remaining := q.maxRequests - record.RequestCount
	if remaining < 0 {
		remaining = 0
	}
	reset := record.WindowStart.Add(q.window)
	return &entity.RateLimitInfo{
		RemainingRequests: remaining,
		WindowResetTime:   &reset,
		RequestCount:      record.RequestCount,
	}
}

// CleanupExpired purges records older than the retention age. Stale records
// inside the retention age are left alone; the window-expiry check handles
// them on the next request.
func (q *QuotaService) CleanupExpired() int64 {
	cutoff := q.now().Add(-q.retention)
	purged, err := q.store.PurgeRateLimits(cutoff)
	if err != nil {
		q.log.With(sl.Err(err)).Error("rate limit cleanup failed")
		return 0
	}
	if purged > 0 {
		q.log.Debug("purged expired rate limit records", slog.Int64("count", purged))
	}
	return purged
}

func (q *QuotaService) failOpen(identity string, err error, now time.Time) *entity.RateLimitInfo {
	q.log.With(
		sl.Err(err),
		slog.String("identity", identity),
	).Error("rate limit check failed, allowing request")

	reset := now.Add(q.window)
	return &entity.RateLimitInfo{
		RemainingRequests: q.maxRequests - 1,
		WindowResetTime:   &reset,
		RequestCount:      1,
	}
}
