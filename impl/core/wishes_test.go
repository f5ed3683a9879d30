package core

import (
	"context"
	"testing"
	"time"

	"churchhelper/entity"
)

type fakeQuota struct {
	allow      bool
	info       *entity.RateLimitInfo
	identities []string
}

func (f *fakeQuota) CheckAndRecord(identity string) (bool, *entity.RateLimitInfo) {
	f.identities = append(f.identities, identity)
	return f.allow, f.info
}

func (f *fakeQuota) Peek(string) *entity.RateLimitInfo { return f.info }

func (f *fakeQuota) CleanupExpired() int64 { return 0 }

type fakeAudit struct {
	saved []*entity.WishAudit
}

func (f *fakeAudit) SaveWish(audit *entity.WishAudit) error {
	f.saved = append(f.saved, audit)
	return nil
}

func (f *fakeAudit) DeleteExpired() (int64, error) { return 0, nil }

func wishRequest() *entity.WishRequest {
	return &entity.WishRequest{
		Name:         "John",
		Occasion:     entity.OccasionWeddingAnniversary,
		Relationship: "friend",
		Tone:         entity.ToneWarm,
	}
}

func TestGenerateAnniversaryWish_Allowed(t *testing.T) {
	c := testCore(&fakeRepo{}, nil)
	reset := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	quota := &fakeQuota{allow: true, info: &entity.RateLimitInfo{
		RemainingRequests: 2,
		WindowResetTime:   &reset,
		RequestCount:      1,
	}}
	c.SetQuota(quota)
	audit := &fakeAudit{}
	c.SetWishAuditRepository(audit)

	resp, info, allowed := c.GenerateAnniversaryWish(context.Background(), "10.0.0.1", wishRequest())
	if !allowed {
		t.Fatal("request should be admitted")
	}
	if resp.GeneratedWish == "" {
		t.Error("response should carry the generated wish")
	}
	if resp.RemainingRequests != 2 {
		t.Errorf("remaining = %d, want 2", resp.RemainingRequests)
	}
	if resp.WindowResetTime != reset.Format(time.RFC3339) {
		t.Errorf("window reset = %q, want %q", resp.WindowResetTime, reset.Format(time.RFC3339))
	}
	if info == nil || info.RemainingRequests != 2 {
		t.Error("quota info should pass through")
	}

	if len(quota.identities) != 1 || quota.identities[0] != "10.0.0.1" {
		t.Errorf("quota checked for %v, want the caller identity", quota.identities)
	}

	if len(audit.saved) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(audit.saved))
	}
	entry := audit.saved[0]
	if entry.Identity != "10.0.0.1" || entry.Provider != entity.ProviderFallback {
		t.Errorf("audit entry = %+v, want identity and provider recorded", entry)
	}
}

func TestGenerateAnniversaryWish_Denied(t *testing.T) {
	c := testCore(&fakeRepo{}, nil)
	quota := &fakeQuota{allow: false, info: &entity.RateLimitInfo{
		RemainingRequests: 0,
		RequestCount:      3,
		RetryAfterSeconds: 5400,
	}}
	c.SetQuota(quota)
	audit := &fakeAudit{}
	c.SetWishAuditRepository(audit)

	resp, info, allowed := c.GenerateAnniversaryWish(context.Background(), "10.0.0.1", wishRequest())
	if allowed {
		t.Fatal("request should be denied")
	}
	if resp != nil {
		t.Error("denied request must not produce a wish")
	}
	if info.RetryAfterSeconds != 5400 {
		t.Errorf("retry after = %d, want 5400", info.RetryAfterSeconds)
	}
	if len(audit.saved) != 0 {
		t.Error("denied request must not be audited")
	}
}

func TestGenerateAnniversaryWish_MissingDependencies(t *testing.T) {
	c := testCore(&fakeRepo{}, nil)
	// No quota set.
	_, info, allowed := c.GenerateAnniversaryWish(context.Background(), "10.0.0.1", wishRequest())
	if allowed || info != nil {
		t.Error("missing quota service should refuse generation")
	}
}

func TestRateLimitInfo_Peek(t *testing.T) {
	c := testCore(&fakeRepo{}, nil)
	quota := &fakeQuota{info: &entity.RateLimitInfo{RemainingRequests: 3}}
	c.SetQuota(quota)

	info, err := c.RateLimitInfo("10.0.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.RemainingRequests != 3 {
		t.Errorf("remaining = %d, want 3", info.RemainingRequests)
	}
}
