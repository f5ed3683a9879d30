package validate

import (
	"strings"
	"testing"
)

type sample struct {
	Name string `json:"name" validate:"required,max=10"`
	Kind string `json:"kind" validate:"required,oneof=alpha beta"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     sample
		expectErr bool
		contains  string
	}{
		{
			name:      "valid",
			input:     sample{Name: "ok", Kind: "alpha"},
			expectErr: false,
		},
		{
			name:      "missing required",
			input:     sample{Kind: "alpha"},
			expectErr: true,
			contains:  "field name is required",
		},
		{
			name:      "bad oneof",
			input:     sample{Name: "ok", Kind: "gamma"},
			expectErr: true,
			contains:  "field kind must be one of",
		},
		{
			name:      "over max",
			input:     sample{Name: "waytoolongvalue", Kind: "beta"},
			expectErr: true,
			contains:  "field name is above maximum 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(&tt.input)
			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tt.contains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.contains)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestStruct_JoinsMultipleFailures(t *testing.T) {
	err := Struct(&sample{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "name") || !strings.Contains(err.Error(), "kind") {
		t.Errorf("error %q should name both failing fields", err.Error())
	}
}
