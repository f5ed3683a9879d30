package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"churchhelper/entity"
)

type fakeCompleter struct {
	name string
	text string
	err  error
}

func (f *fakeCompleter) Name() string { return f.name }

func (f *fakeCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	return f.text, f.err
}

func TestCleanGeneratedText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text unchanged",
			input:    "Wishing you a blessed day.",
			expected: "Wishing you a blessed day.",
		},
		{
			name:     "strips warm intro",
			input:    "Here is a warm, Christian anniversary wish for John: Wishing you joy.",
			expected: "Wishing you joy.",
		},
		{
			name:     "strips contracted intro",
			input:    "Here's a Christian anniversary wish for Mary: Blessed day to you.",
			expected: "Blessed day to you.",
		},
		{
			name:     "strips personalized intro case insensitive",
			input:    "here is a personalized anniversary wish for Sam: Joy to you.",
			expected: "Joy to you.",
		},
		{
			name:     "strips closing phrase",
			input:    "Wishing you joy. May God bless you both.",
			expected: "Wishing you joy.",
		},
		{
			name:     "strips short closing",
			input:    "Wishing you joy. God bless.",
			expected: "Wishing you joy.",
		},
		{
			name:     "collapses newlines",
			input:    "Wishing you joy.\n\nAnd peace.",
			expected: "Wishing you joy. And peace.",
		},
		{
			name:     "collapses repeated whitespace",
			input:    "Wishing   you \t joy.",
			expected: "Wishing you joy.",
		},
		{
			name:     "intro and closing together",
			input:    "Here is a warm, Christian anniversary wish for Ann:\nWishing you joy. Blessings.",
			expected: "Wishing you joy.",
		},
		{
			name:     "whitespace only becomes empty",
			input:    "  \n  ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanGeneratedText(tt.input)
			if result != tt.expected {
				t.Errorf("CleanGeneratedText(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCleanGeneratedText_Idempotent(t *testing.T) {
	input := "Here's a warm, Christian anniversary wish for John:\nWishing you joy. God bless."
	once := CleanGeneratedText(input)
	twice := CleanGeneratedText(once)
	if once != twice {
		t.Errorf("cleanup not idempotent: %q vs %q", once, twice)
	}
}

func TestGenerateWish_ProviderOrder(t *testing.T) {
	primary := &fakeCompleter{name: "groq", text: "Primary wish."}
	secondary := &fakeCompleter{name: "openai", text: "Secondary wish."}
	g := NewGenerator(slog.Default(), primary, secondary)

	wish := g.GenerateWish(context.Background(), &entity.WishRequest{
		Name: "John", Occasion: entity.OccasionBirthday, Relationship: "friend", Tone: entity.ToneWarm,
	})
	if wish.Provider != "groq" {
		t.Errorf("provider = %q, want groq", wish.Provider)
	}
	if wish.Text != "Primary wish." {
		t.Errorf("text = %q, want primary result", wish.Text)
	}
}

func TestGenerateWish_FallsBackToSecondary(t *testing.T) {
	primary := &fakeCompleter{name: "groq", err: errors.New("quota exceeded")}
	secondary := &fakeCompleter{name: "openai", text: "Secondary wish."}
	g := NewGenerator(slog.Default(), primary, secondary)

	wish := g.GenerateWish(context.Background(), &entity.WishRequest{
		Name: "John", Occasion: entity.OccasionBirthday, Relationship: "friend", Tone: entity.ToneWarm,
	})
	if wish.Provider != "openai" {
		t.Errorf("provider = %q, want openai", wish.Provider)
	}
}

func TestGenerateWish_AllProvidersFail(t *testing.T) {
	primary := &fakeCompleter{name: "groq", err: errors.New("unavailable")}
	secondary := &fakeCompleter{name: "openai", err: errors.New("unavailable")}
	g := NewGenerator(slog.Default(), primary, secondary)
	g.SetRand(func(int) int { return 0 })

	req := &entity.WishRequest{
		Name:         "John",
		Occasion:     entity.OccasionWeddingAnniversary,
		Relationship: "friend",
		Tone:         entity.ToneWarm,
	}
	wish := g.GenerateWish(context.Background(), req)
	if wish.Provider != entity.ProviderFallback {
		t.Fatalf("provider = %q, want fallback", wish.Provider)
	}
	if !strings.Contains(wish.Text, "John") {
		t.Errorf("fallback text %q should mention the celebrant", wish.Text)
	}
	if !strings.Contains(wish.Text, verses[0].Reference) {
		t.Errorf("fallback text %q should cite a verse", wish.Text)
	}
}

func TestGenerateWish_NoProviders(t *testing.T) {
	g := NewGenerator(slog.Default())
	g.SetRand(func(int) int { return 0 })

	wish := g.GenerateWish(context.Background(), &entity.WishRequest{
		Name: "Ann", Occasion: entity.OccasionBirthday, Relationship: "sister", Tone: entity.ToneWarm,
	})
	if wish.Provider != entity.ProviderFallback {
		t.Errorf("provider = %q, want fallback", wish.Provider)
	}
	if !strings.Contains(wish.Text, "Happy Birthday") {
		t.Errorf("birthday fallback %q should greet the birthday", wish.Text)
	}
}

func TestGenerateWish_SkipsNilClients(t *testing.T) {
	var absent *LLMClient
	working := &fakeCompleter{name: "openai", text: "A wish."}
	g := NewGenerator(slog.Default(), absent, working)

	wish := g.GenerateWish(context.Background(), &entity.WishRequest{
		Name: "John", Occasion: entity.OccasionBirthday, Relationship: "friend", Tone: entity.ToneWarm,
	})
	if wish.Provider != "openai" {
		t.Errorf("provider = %q, want openai", wish.Provider)
	}
}

func TestGenerateWish_EmptyProviderTextUsesNext(t *testing.T) {
	primary := &fakeCompleter{name: "groq", text: "   \n  "}
	secondary := &fakeCompleter{name: "openai", text: "A wish."}
	g := NewGenerator(slog.Default(), primary, secondary)

	wish := g.GenerateWish(context.Background(), &entity.WishRequest{
		Name: "John", Occasion: entity.OccasionBirthday, Relationship: "friend", Tone: entity.ToneWarm,
	})
	if wish.Provider != "openai" {
		t.Errorf("provider = %q, want openai after blank primary output", wish.Provider)
	}
}

func TestGenerateWish_CleansProviderOutput(t *testing.T) {
	primary := &fakeCompleter{
		name: "groq",
		text: "Here is a warm, Christian anniversary wish for John:\nWishing you joy. May God bless you both.",
	}
	g := NewGenerator(slog.Default(), primary)

	wish := g.GenerateWish(context.Background(), &entity.WishRequest{
		Name: "John", Occasion: entity.OccasionWeddingAnniversary, Relationship: "friend", Tone: entity.ToneWarm,
	})
	if wish.Text != "Wishing you joy." {
		t.Errorf("text = %q, want cleaned output", wish.Text)
	}
}

func TestRelationshipContext(t *testing.T) {
	tests := []struct {
		name         string
		relationship string
		expected     string
	}{
		{"exact match", "friend", "as their dear friend"},
		{"case insensitive", "FRIEND", "as their dear friend"},
		{"partial match", "best friend", "as their dear friend"},
		{"hyphenated variant", "step-mother", "as their mother"},
		{"ambiguous partial takes first entry", "co", "as their colleague"},
		{"unknown passthrough", "шурин", "as their шурин"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := relationshipContext(tt.relationship)
			if result != tt.expected {
				t.Errorf("relationshipContext(%q) = %q, want %q", tt.relationship, result, tt.expected)
			}
		})
	}
}

func TestOccasionContext_Total(t *testing.T) {
	occasions := []entity.Occasion{
		entity.OccasionBirthday,
		entity.OccasionWorkAnniversary,
		entity.OccasionWeddingAnniversary,
		entity.OccasionPromotion,
		entity.OccasionRetirement,
		entity.OccasionFriendship,
		entity.OccasionRelationship,
		entity.OccasionMilestone,
		entity.OccasionCustom,
		entity.Occasion("unknown"),
	}
	for _, occasion := range occasions {
		if occasionContext(occasion) == "" {
			t.Errorf("occasionContext(%q) returned empty string", occasion)
		}
	}
}
