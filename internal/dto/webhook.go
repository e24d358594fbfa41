package dto

import (
	"time"

	"github.com/SscSPs/payledger/internal/core/domain"
)

// WebhookAckResponse acknowledges a webhook delivery.
type WebhookAckResponse struct {
	Received  bool   `json:"received"`
	EventID   string `json:"eventId,omitempty"`
	Status    string `json:"status,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// WebhookEventResponse is the audit view of one stored delivery.
type WebhookEventResponse struct {
	RowID             string     `json:"rowId"`
	Provider          string     `json:"provider"`
	EventID           string     `json:"eventId"`
	EventType         string     `json:"eventType"`
	Status            string     `json:"status"`
	SignatureVerified bool       `json:"signatureVerified"`
	Attempts          int        `json:"attempts"`
	LastError         string     `json:"lastError,omitempty"`
	Payload           string     `json:"payload"`
	ClaimedAt         *time.Time `json:"claimedAt,omitempty"`
	ProcessedAt       *time.Time `json:"processedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// ToWebhookEventResponse converts a domain.WebhookEvent to WebhookEventResponse DTO.
func ToWebhookEventResponse(ev *domain.WebhookEvent) WebhookEventResponse {
	return WebhookEventResponse{
		RowID:             ev.ID,
		Provider:          ev.Provider,
		EventID:           ev.EventID,
		EventType:         ev.EventType,
		Status:            string(ev.Status),
		SignatureVerified: ev.SignatureVerified,
		Attempts:          ev.Attempts,
		LastError:         ev.LastError,
		Payload:           ev.Payload,
		ClaimedAt:         ev.ClaimedAt,
		ProcessedAt:       ev.ProcessedAt,
		CreatedAt:         ev.CreatedAt,
		UpdatedAt:         ev.UpdatedAt,
	}
}
