package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"churchhelper/entity"
	"churchhelper/internal/lib/sl"
)

// GenerateAnniversaryWish runs the quota check for the client identity and,
// when admitted, produces a wish. Returns allowed=false with the quota state
// when the identity is over its limit.
func (c *Core) GenerateAnniversaryWish(ctx context.Context, identity string, req *entity.WishRequest) (*entity.WishResponse, *entity.RateLimitInfo, bool) {
	if c.quota == nil || c.generator == nil {
		c.log.Error("wish generation dependencies not set")
		return nil, nil, false
	}

	allowed, info := c.quota.CheckAndRecord(identity)
	if !allowed {
		c.log.Info("wish request denied",
			slog.String("identity", identity),
			slog.Int("retry_after_seconds", info.RetryAfterSeconds),
		)
		return nil, info, false
	}

	wish := c.generator.GenerateWish(ctx, req)

	if c.wishAudit != nil {
		err := c.wishAudit.SaveWish(&entity.WishAudit{
			Identity:     identity,
			Name:         req.Name,
			Occasion:     string(req.Occasion),
			Relationship: req.Relationship,
			Tone:         string(req.Tone),
			Text:         wish.Text,
			Provider:     wish.Provider,
			CreationDate: c.now(),
		})
		if err != nil {
			c.log.With(sl.Err(err)).Warn("wish audit save failed")
		}
	}

	response := &entity.WishResponse{
		GeneratedWish:     wish.Text,
		RemainingRequests: info.RemainingRequests,
	}
	if info.WindowResetTime != nil {
		response.WindowResetTime = info.WindowResetTime.UTC().Format(time.RFC3339)
	}

	c.log.Info("wish generated",
		slog.String("identity", identity),
		slog.String("provider", wish.Provider),
		slog.Int("remaining", info.RemainingRequests),
	)
	return response, info, true
}

// RateLimitInfo reports quota state for the identity without consuming any
// request.
func (c *Core) RateLimitInfo(identity string) (*entity.RateLimitInfo, error) {
	if c.quota == nil {
		return nil, fmt.Errorf("quota service not set")
	}
	return c.quota.Peek(identity), nil
}
