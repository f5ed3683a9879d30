package wish

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"churchhelper/entity"
)

type fakeCore struct {
	allow bool
	resp  *entity.WishResponse
	info  *entity.RateLimitInfo
}

func (f *fakeCore) GenerateAnniversaryWish(_ context.Context, _ string, _ *entity.WishRequest) (*entity.WishResponse, *entity.RateLimitInfo, bool) {
	if !f.allow {
		return nil, f.info, false
	}
	return f.resp, f.info, true
}

func (f *fakeCore) RateLimitInfo(string) (*entity.RateLimitInfo, error) {
	return f.info, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerate_Success(t *testing.T) {
	core := &fakeCore{
		allow: true,
		resp: &entity.WishResponse{
			GeneratedWish:     "Wishing you joy.",
			RemainingRequests: 2,
		},
		info: &entity.RateLimitInfo{RemainingRequests: 2},
	}
	handler := Generate(discardLogger(), core)

	body := `{"name":"John","anniversary_type":"wedding-anniversary","relationship":"friend"}`
	req := httptest.NewRequest(http.MethodPost, "/api/anniversary-wish", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var resp entity.WishResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.GeneratedWish != "Wishing you joy." {
		t.Errorf("generated_wish = %q", resp.GeneratedWish)
	}
	if resp.RemainingRequests != 2 {
		t.Errorf("remaining_requests = %d, want 2", resp.RemainingRequests)
	}
}

func TestGenerate_ValidationFailure(t *testing.T) {
	handler := Generate(discardLogger(), &fakeCore{allow: true})

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"not json", "not json"},
		{"missing name", `{"anniversary_type":"birthday","relationship":"friend"}`},
		{"unknown occasion", `{"name":"John","anniversary_type":"graduation","relationship":"friend"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/anniversary-wish", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", rec.Code)
			}
		})
	}
}

func TestGenerate_RateLimited(t *testing.T) {
	core := &fakeCore{
		allow: false,
		info: &entity.RateLimitInfo{
			RemainingRequests: 0,
			RequestCount:      3,
			RetryAfterSeconds: 5400,
		},
	}
	handler := Generate(discardLogger(), core)

	body := `{"name":"John","anniversary_type":"birthday","relationship":"friend"}`
	req := httptest.NewRequest(http.MethodPost, "/api/anniversary-wish", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "5400" {
		t.Errorf("Retry-After = %q, want 5400", got)
	}
	if !strings.Contains(rec.Body.String(), "RATE_LIMIT_EXCEEDED") {
		t.Errorf("body %q should carry the error code", rec.Body.String())
	}
}

func TestInfo(t *testing.T) {
	core := &fakeCore{info: &entity.RateLimitInfo{RemainingRequests: 3}}
	handler := Info(discardLogger(), core)

	req := httptest.NewRequest(http.MethodGet, "/api/anniversary-wish/rate-limit-info", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		IPAddress         string `json:"ip_address"`
		RemainingRequests int    `json:"remaining_requests"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.IPAddress != "203.0.113.7" {
		t.Errorf("ip_address = %q", resp.IPAddress)
	}
	if resp.RemainingRequests != 3 {
		t.Errorf("remaining_requests = %d, want 3", resp.RemainingRequests)
	}
}
