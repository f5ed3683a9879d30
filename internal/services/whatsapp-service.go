package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"churchhelper/entity"
	"churchhelper/internal/config"
	"churchhelper/internal/lib/sl"
)

// WhatsAppService sends messages to the configured broadcast destination
// through the Twilio WhatsApp API.
type WhatsAppService struct {
	accountSid string
	authToken  string
	baseURL    string
	from       string
	to         string
	log        *slog.Logger
	httpClient *http.Client
}

func NewWhatsAppService(conf *config.Config, log *slog.Logger) (*WhatsAppService, error) {
	if !conf.WhatsApp.Enabled {
		return nil, nil
	}

	if conf.WhatsApp.AccountSid == "" || conf.WhatsApp.AuthToken == "" {
		return nil, fmt.Errorf("whatsapp account_sid and auth_token are required")
	}
	if conf.WhatsApp.From == "" || conf.WhatsApp.To == "" {
		return nil, fmt.Errorf("whatsapp from and to addresses are required")
	}

	service := &WhatsAppService{
		accountSid: conf.WhatsApp.AccountSid,
		authToken:  conf.WhatsApp.AuthToken,
		baseURL:    strings.TrimRight(conf.WhatsApp.BaseURL, "/"),
		from:       conf.WhatsApp.From,
		to:         conf.WhatsApp.To,
		log:        log.With(sl.Module("whatsapp")),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}

	return service, nil
}

type twilioMessageResponse struct {
	Sid          string `json:"sid"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// Send delivers one message to the configured destination. The outcome is
// always reported through the result; transport errors never escape as a
// raised error.
func (s *WhatsAppService) Send(text string) *entity.GatewayResult {
	body, err := s.doRequest(text)
	if err != nil {
		s.log.With(sl.Err(err)).Error("whatsapp send failed")
		return &entity.GatewayResult{Success: false, Error: err.Error()}
	}

	var msg twilioMessageResponse
	if err = json.Unmarshal(body, &msg); err != nil {
		s.log.With(sl.Err(err)).Error("whatsapp response decode failed")
		return &entity.GatewayResult{Success: false, Error: fmt.Sprintf("decode response: %v", err)}
	}

	s.log.Info("whatsapp message sent",
		slog.String("sid", msg.Sid),
		slog.String("status", msg.Status),
	)

	return &entity.GatewayResult{Success: true, MessageID: msg.Sid}
}

// doRequest posts the message with retries and exponential backoff on
// 429/5xx, honouring Retry-After when present.
func (s *WhatsAppService) doRequest(text string) ([]byte, error) {
	const (
		maxRetries     = 3
		baseDelay      = 500 * time.Millisecond
		maxDelay       = 10 * time.Second
		jitterFraction = 0.2
	)

	ctx := context.Background()
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSid)

	form := url.Values{}
	form.Set("From", s.from)
	form.Set("To", s.to)
	form.Set("Body", text)
	encoded := form.Encode()

	backoffDuration := func(attempt int) time.Duration {
		d := float64(baseDelay) * math.Pow(2, float64(attempt))
		if d > float64(maxDelay) {
			d = float64(maxDelay)
		}
		j := 1 - jitterFraction + rand.Float64()*(2*jitterFraction)
		return time.Duration(d * j)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := Acquire(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(encoded))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.SetBasicAuth(s.accountSid, s.authToken)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("send request: %w", err)
			if attempt == maxRetries {
				break
			}
			time.Sleep(backoffDuration(attempt))
			continue
		}

		bodyBytes, readErr := io.ReadAll(resp.Body)
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.log.With(sl.Err(closeErr)).Warn("failed to close response body")
		}
		if readErr != nil {
			lastErr = fmt.Errorf("read response body: %w", readErr)
			if attempt == maxRetries {
				break
			}
			time.Sleep(backoffDuration(attempt))
			continue
		}

		if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
			return bodyBytes, nil
		}

		lastErr = fmt.Errorf("gateway error (status %d): %s", resp.StatusCode, string(bodyBytes))

		retriable := resp.StatusCode == http.StatusTooManyRequests ||
			(resp.StatusCode >= 500 && resp.StatusCode <= 599)
		if !retriable || attempt == maxRetries {
			break
		}

		wait := backoffDuration(attempt)
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if d, err := parseRetryAfter(ra); err == nil && d > 0 && d <= maxDelay {
				wait = d
			}
		}
		time.Sleep(wait)
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("request failed after retries")
}

// parseRetryAfter tries to parse a Retry-After header; supports seconds or HTTP-date
func parseRetryAfter(h string) (time.Duration, error) {
	if h == "" {
		return 0, fmt.Errorf("empty")
	}
	if secs, err := strconv.Atoi(h); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	if t, err := http.ParseTime(h); err == nil {
		d := time.Until(t)
		if d < 0 {
			return 0, nil
		}
		return d, nil
	}
	return 0, fmt.Errorf("unparsable")
}
