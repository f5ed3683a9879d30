package core

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"churchhelper/entity"
	"churchhelper/internal/config"
	"churchhelper/internal/services"
)

type loggedMessage struct {
	celebrantId int64
	content     string
	sentDate    string
	success     bool
	errMessage  string
}

// fakeRepo is an in-memory Repository for tests.
type fakeRepo struct {
	celebrants  []*entity.Celebrant
	logs        []loggedMessage
	uploads     []*entity.CSVUpload
	failFetch   error
	failLogFor  int64
	upsertCalls int
}

func (f *fakeRepo) GetCelebrantsByDate(date string) ([]*entity.Celebrant, error) {
	if f.failFetch != nil {
		return nil, f.failFetch
	}
	var out []*entity.Celebrant
	for _, c := range f.celebrants {
		if c.EventDate == date && c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetAllCelebrants(offset, limit int) ([]*entity.Celebrant, int, error) {
	total := len(f.celebrants)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return f.celebrants[offset:end], total, nil
}

func (f *fakeRepo) UpsertCelebrant(c *entity.Celebrant) (bool, error) {
	f.upsertCalls++
	for _, existing := range f.celebrants {
		if existing.Name == c.Name && existing.EventType == c.EventType {
			*existing = *c
			return false, nil
		}
	}
	c.Id = int64(len(f.celebrants) + 1)
	f.celebrants = append(f.celebrants, c)
	return true, nil
}

func (f *fakeRepo) AppendMessageLog(celebrantId int64, content, sentDate string, success bool, errorMessage string) error {
	if f.failLogFor != 0 && f.failLogFor == celebrantId {
		return errors.New("log write failed")
	}
	f.logs = append(f.logs, loggedMessage{celebrantId, content, sentDate, success, errorMessage})
	return nil
}

func (f *fakeRepo) SaveCSVUpload(u *entity.CSVUpload) error {
	f.uploads = append(f.uploads, u)
	return nil
}

func (f *fakeRepo) Ping() error { return nil }

// fakeGateway records the messages it was asked to deliver.
type fakeGateway struct {
	sent   []string
	result *entity.GatewayResult
}

func (f *fakeGateway) Send(text string) *entity.GatewayResult {
	f.sent = append(f.sent, text)
	if f.result != nil {
		return f.result
	}
	return &entity.GatewayResult{Success: true, MessageID: "SM123"}
}

func testCore(repo Repository, gateway Gateway) *Core {
	conf := config.Config{}
	c := New(slog.Default(), conf)
	c.SetRepository(repo)
	if gateway != nil {
		c.SetGateway(gateway)
	}
	generator := services.NewGenerator(slog.Default())
	generator.SetRand(func(int) int { return 0 })
	c.SetGenerator(generator)
	c.SetClock(func() time.Time {
		return time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)
	})
	return c
}

func TestSendDailyCelebrations_ConsolidatedSend(t *testing.T) {
	repo := &fakeRepo{celebrants: []*entity.Celebrant{
		{Id: 1, Name: "John Doe", EventType: entity.EventBirthday, EventDate: "08-31", Year: 1990, ContactHandle: "+2348012345678", Active: true},
		{Id: 2, Name: "Mary Smith", EventType: entity.EventAnniversary, EventDate: "08-31", Year: 2016, Spouse: "Paul Smith", Active: true},
		{Id: 3, Name: "Off Date", EventType: entity.EventBirthday, EventDate: "01-01", Active: true},
	}}
	gateway := &fakeGateway{}
	c := testCore(repo, gateway)

	summary := c.SendDailyCelebrations()

	if !summary.Success {
		t.Fatalf("summary not successful: %s", summary.Error)
	}
	if summary.SentCount != 2 || summary.TotalCelebrations != 2 {
		t.Errorf("sent=%d total=%d, want 2/2", summary.SentCount, summary.TotalCelebrations)
	}

	// One gateway send regardless of celebrant count.
	if len(gateway.sent) != 1 {
		t.Fatalf("gateway sends = %d, want 1", len(gateway.sent))
	}
	msg := gateway.sent[0]
	if !strings.Contains(msg, "John Doe (36 years) - +2348012345678") {
		t.Errorf("message missing birthday line with contact: %q", msg)
	}
	if !strings.Contains(msg, "Mary Smith & Paul Smith (10 years) - no contact") {
		t.Errorf("message missing anniversary line with contact placeholder: %q", msg)
	}
	if strings.Contains(msg, "Off Date") {
		t.Errorf("message should not include other dates: %q", msg)
	}

	// One log entry per celebrant, all sharing the single send's outcome.
	if len(repo.logs) != 2 {
		t.Fatalf("logs = %d, want 2", len(repo.logs))
	}
	for _, l := range repo.logs {
		if !l.success {
			t.Errorf("log for celebrant %d should be successful", l.celebrantId)
		}
		if l.content != msg {
			t.Errorf("log content differs from sent message")
		}
		if l.sentDate != "2026-08-31" {
			t.Errorf("sent date = %q, want 2026-08-31", l.sentDate)
		}
	}
}

func TestSendDailyCelebrations_GatewayFailureSharedByAllLogs(t *testing.T) {
	repo := &fakeRepo{celebrants: []*entity.Celebrant{
		{Id: 1, Name: "John", EventType: entity.EventBirthday, EventDate: "08-31", Active: true},
		{Id: 2, Name: "Mary", EventType: entity.EventAnniversary, EventDate: "08-31", Active: true},
	}}
	gateway := &fakeGateway{result: &entity.GatewayResult{Success: false, Error: "gateway error (status 500)"}}
	c := testCore(repo, gateway)

	summary := c.SendDailyCelebrations()

	if summary.Success {
		t.Fatal("summary should report failure")
	}
	if summary.FailedCount != 2 {
		t.Errorf("failed = %d, want 2", summary.FailedCount)
	}
	if len(repo.logs) != 2 {
		t.Fatalf("logs = %d, want 2", len(repo.logs))
	}
	for _, l := range repo.logs {
		if l.success {
			t.Errorf("log for celebrant %d should be failed", l.celebrantId)
		}
		if l.errMessage == "" {
			t.Errorf("log for celebrant %d missing error message", l.celebrantId)
		}
	}
}

func TestSendDailyCelebrations_NoCelebrants(t *testing.T) {
	repo := &fakeRepo{}
	gateway := &fakeGateway{}
	c := testCore(repo, gateway)

	summary := c.SendDailyCelebrations()

	if !summary.Success {
		t.Fatal("empty day should be a successful no-op")
	}
	if len(gateway.sent) != 0 {
		t.Errorf("gateway sends = %d, want 0", len(gateway.sent))
	}
	if len(repo.logs) != 0 {
		t.Errorf("logs = %d, want 0", len(repo.logs))
	}
}

func TestSendDailyCelebrations_FetchError(t *testing.T) {
	repo := &fakeRepo{failFetch: errors.New("connection refused")}
	gateway := &fakeGateway{}
	c := testCore(repo, gateway)

	summary := c.SendDailyCelebrations()

	if summary.Success {
		t.Fatal("fetch failure should fail the run")
	}
	if summary.Error == "" {
		t.Error("summary should carry the error")
	}
	if len(gateway.sent) != 0 {
		t.Errorf("gateway sends = %d, want 0", len(gateway.sent))
	}
}

func TestSendDailyCelebrations_LogFailureIsolated(t *testing.T) {
	repo := &fakeRepo{
		celebrants: []*entity.Celebrant{
			{Id: 1, Name: "John", EventType: entity.EventBirthday, EventDate: "08-31", Active: true},
			{Id: 2, Name: "Mary", EventType: entity.EventBirthday, EventDate: "08-31", Active: true},
		},
		failLogFor: 1,
	}
	gateway := &fakeGateway{}
	c := testCore(repo, gateway)

	summary := c.SendDailyCelebrations()

	if !summary.Success {
		t.Fatal("a failed log write must not fail the broadcast")
	}
	if len(repo.logs) != 1 {
		t.Fatalf("logs = %d, want 1 surviving entry", len(repo.logs))
	}
	if repo.logs[0].celebrantId != 2 {
		t.Errorf("surviving log for celebrant %d, want 2", repo.logs[0].celebrantId)
	}
}

func TestSendDailyCelebrations_NoGateway(t *testing.T) {
	repo := &fakeRepo{celebrants: []*entity.Celebrant{
		{Id: 1, Name: "John", EventType: entity.EventBirthday, EventDate: "08-31", Active: true},
	}}
	c := testCore(repo, nil)

	summary := c.SendDailyCelebrations()

	if summary.Success {
		t.Fatal("missing gateway should fail the run")
	}
	if len(repo.logs) != 1 || repo.logs[0].success {
		t.Error("log entry should record the failure")
	}
}

func TestBuildSimpleListing(t *testing.T) {
	c := testCore(&fakeRepo{}, nil)
	listing := c.buildSimpleListing([]*entity.Celebrant{
		{Name: "John", EventType: entity.EventBirthday},
		{Name: "Mary", EventType: entity.EventAnniversary},
	})
	if !strings.Contains(listing, "John (birthday)") || !strings.Contains(listing, "Mary (anniversary)") {
		t.Errorf("listing missing entries: %q", listing)
	}
}
