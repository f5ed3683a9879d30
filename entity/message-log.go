package entity

import "time"

// MessageLog records one delivery attempt for one celebrant. Every broadcast
// run writes exactly one entry per celebrant in that day's batch, success or
// failure.
type MessageLog struct {
	Id           int64     `json:"id,omitempty"`
	CelebrantId  int64     `json:"celebrant_id"`
	Content      string    `json:"message_content"`
	SentDate     string    `json:"sent_date"` // YYYY-MM-DD
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// GatewayResult is the messaging gateway's synchronous send outcome.
type GatewayResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"provider_message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}
