package entity

import (
	"net/http"
	"time"

	"churchhelper/internal/lib/validate"
)

type Occasion string

const (
	OccasionBirthday           Occasion = "birthday"
	OccasionWorkAnniversary    Occasion = "work-anniversary"
	OccasionWeddingAnniversary Occasion = "wedding-anniversary"
	OccasionPromotion          Occasion = "promotion"
	OccasionRetirement         Occasion = "retirement"
	OccasionFriendship         Occasion = "friendship"
	OccasionRelationship       Occasion = "relationship"
	OccasionMilestone          Occasion = "milestone"
	OccasionCustom             Occasion = "custom"
)

type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneWarm         Tone = "warm"
	ToneHumorous     Tone = "humorous"
	ToneFormal       Tone = "formal"
)

// WishRequest is the public wish-generation request body.
type WishRequest struct {
	Name          string   `json:"name" validate:"required,min=1,max=100"`
	Occasion      Occasion `json:"anniversary_type" validate:"required,oneof=birthday work-anniversary wedding-anniversary promotion retirement friendship relationship milestone custom"`
	Relationship  string   `json:"relationship" validate:"required,min=1,max=50"`
	Tone          Tone     `json:"tone" validate:"omitempty,oneof=professional friendly warm humorous formal"`
	Context       string   `json:"context,omitempty" validate:"omitempty,max=500"`
	YearsTogether int      `json:"years_together,omitempty" validate:"omitempty,min=0,max=150"`
}

func (w *WishRequest) Bind(_ *http.Request) error {
	if w.Tone == "" {
		w.Tone = ToneWarm
	}
	return validate.Struct(w)
}

// Generation providers, recorded for audit.
const (
	ProviderGroq     = "groq"
	ProviderOpenAI   = "openai"
	ProviderFallback = "fallback"
)

// GeneratedWish is the ephemeral generation result: the produced text and
// which path produced it.
type GeneratedWish struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
}

// WishAudit is one generated wish stored for the audit trail.
type WishAudit struct {
	Identity     string    `bson:"identity"`
	Name         string    `bson:"name"`
	Occasion     string    `bson:"occasion"`
	Relationship string    `bson:"relationship"`
	Tone         string    `bson:"tone"`
	Text         string    `bson:"text"`
	Provider     string    `bson:"provider"`
	CreationDate time.Time `bson:"creation_date"`
}

// WishResponse is the public wish endpoint's response body.
type WishResponse struct {
	GeneratedWish     string `json:"generated_wish"`
	RequestID         string `json:"request_id"`
	RemainingRequests int    `json:"remaining_requests"`
	WindowResetTime   string `json:"window_reset_time,omitempty"`
}
