package entity

import (
	"testing"
	"time"
)

func TestValidateEventDate(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		expectErr bool
	}{
		{"valid date", "08-31", false},
		{"leap day", "02-29", false},
		{"first of january", "01-01", false},
		{"bad month", "13-01", true},
		{"bad day", "06-31", true},
		{"wrong format", "2026-08-31", true},
		{"empty", "", true},
		{"no dash", "0831", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEventDate(tt.date)
			if tt.expectErr && err == nil {
				t.Errorf("ValidateEventDate(%q) should fail", tt.date)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("ValidateEventDate(%q) = %v", tt.date, err)
			}
		})
	}
}

func TestYearsSince(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		asOf     int
		expected int
	}{
		{"known year", 1990, 2026, 36},
		{"unknown year", 0, 2026, 0},
		{"future year", 2030, 2026, 0},
		{"same year", 2026, 2026, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Celebrant{Year: tt.year}
			if got := c.YearsSince(tt.asOf); got != tt.expected {
				t.Errorf("YearsSince(%d) = %d, want %d", tt.asOf, got, tt.expected)
			}
		})
	}
}

func TestCelebrantBind(t *testing.T) {
	tests := []struct {
		name      string
		celebrant Celebrant
		expectErr bool
	}{
		{
			name:      "valid birthday",
			celebrant: Celebrant{Name: "John", EventType: EventBirthday, EventDate: "08-31"},
			expectErr: false,
		},
		{
			name:      "valid anniversary",
			celebrant: Celebrant{Name: "Mary", EventType: EventAnniversary, EventDate: "06-15", Spouse: "Paul"},
			expectErr: false,
		},
		{
			name:      "missing name",
			celebrant: Celebrant{EventType: EventBirthday, EventDate: "08-31"},
			expectErr: true,
		},
		{
			name:      "bad event type",
			celebrant: Celebrant{Name: "John", EventType: "graduation", EventDate: "08-31"},
			expectErr: true,
		},
		{
			name:      "impossible date",
			celebrant: Celebrant{Name: "John", EventType: EventBirthday, EventDate: "02-30"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.celebrant.Bind(nil)
			if tt.expectErr && err == nil {
				t.Error("expected error")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDateString(t *testing.T) {
	d := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)
	if got := DateString(d); got != "08-31" {
		t.Errorf("DateString = %q, want 08-31", got)
	}
}
