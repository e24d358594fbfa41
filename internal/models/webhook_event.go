package models

import "time"

// WebhookEvent is a row of webhook_events. Rows are never deleted.
type WebhookEvent struct {
	ID                string     `json:"id"`
	Provider          string     `json:"provider"`
	EventID           string     `json:"eventID"`
	EventType         string     `json:"eventType"`
	Status            string     `json:"status"`
	SignatureVerified bool       `json:"signatureVerified"`
	Payload           string     `json:"payload"` // raw body, text so that unparseable bodies still store
	Attempts          int        `json:"attempts"`
	LastError         *string    `json:"lastError"`
	ClaimedAt         *time.Time `json:"claimedAt"`
	ProcessedAt       *time.Time `json:"processedAt"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}
