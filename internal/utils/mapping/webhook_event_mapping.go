package mapping

import (
	"github.com/SscSPs/payledger/internal/core/domain"
	"github.com/SscSPs/payledger/internal/models"
)

// ToDomainWebhookEvent converts a model WebhookEvent to a domain WebhookEvent
func ToDomainWebhookEvent(m models.WebhookEvent) domain.WebhookEvent {
	return domain.WebhookEvent{
		ID:                m.ID,
		Provider:          m.Provider,
		EventID:           m.EventID,
		EventType:         m.EventType,
		Status:            domain.WebhookStatus(m.Status),
		SignatureVerified: m.SignatureVerified,
		Payload:           m.Payload,
		Attempts:          m.Attempts,
		LastError:         stringValue(m.LastError),
		ClaimedAt:         m.ClaimedAt,
		ProcessedAt:       m.ProcessedAt,
		Timestamps:        domain.Timestamps{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
	}
}
