package entity

import "testing"

func TestWishRequestBind(t *testing.T) {
	tests := []struct {
		name      string
		request   WishRequest
		expectErr bool
	}{
		{
			name: "valid",
			request: WishRequest{
				Name:         "John",
				Occasion:     OccasionWeddingAnniversary,
				Relationship: "friend",
			},
			expectErr: false,
		},
		{
			name: "all fields",
			request: WishRequest{
				Name:          "Mary",
				Occasion:      OccasionBirthday,
				Relationship:  "sister",
				Tone:          ToneHumorous,
				Context:       "loves gardening",
				YearsTogether: 25,
			},
			expectErr: false,
		},
		{
			name: "missing name",
			request: WishRequest{
				Occasion:     OccasionBirthday,
				Relationship: "friend",
			},
			expectErr: true,
		},
		{
			name: "unknown occasion",
			request: WishRequest{
				Name:         "John",
				Occasion:     "graduation",
				Relationship: "friend",
			},
			expectErr: true,
		},
		{
			name: "unknown tone",
			request: WishRequest{
				Name:         "John",
				Occasion:     OccasionBirthday,
				Relationship: "friend",
				Tone:         "sarcastic",
			},
			expectErr: true,
		},
		{
			name: "missing relationship",
			request: WishRequest{
				Name:     "John",
				Occasion: OccasionBirthday,
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Bind(nil)
			if tt.expectErr && err == nil {
				t.Error("expected error")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestWishRequestBind_DefaultsTone(t *testing.T) {
	req := WishRequest{
		Name:         "John",
		Occasion:     OccasionBirthday,
		Relationship: "friend",
	}
	if err := req.Bind(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Tone != ToneWarm {
		t.Errorf("tone = %q, want default %q", req.Tone, ToneWarm)
	}
}
