package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/payledger/internal/core/domain"
)

// WebhookEventClaimer defines the atomic claim operation of the webhook event ledger.
type WebhookEventClaimer interface {
	// ClaimEvent inserts a processing row for (provider, event id) or, when the row
	// exists, reclaims it if it failed or its processing lease expired. The whole
	// decision is one atomic storage operation.
	ClaimEvent(ctx context.Context, req domain.ClaimRequest, lease time.Duration, now time.Time) (domain.ClaimResult, error)
}

// WebhookEventWriter defines status transitions after a claim.
type WebhookEventWriter interface {
	// MarkEventProcessed sets the row to processed.
	MarkEventProcessed(ctx context.Context, rowID string, at time.Time) error

	// MarkEventFailed sets the row to failed and stores the reason.
	MarkEventFailed(ctx context.Context, rowID string, reason string, at time.Time) error
}

// WebhookEventReader defines read operations for the audit trail.
type WebhookEventReader interface {
	// FindEventByID retrieves a webhook event row by its id.
	FindEventByID(ctx context.Context, rowID string) (*domain.WebhookEvent, error)
}

// WebhookEventRepositoryFacade combines all webhook event repository interfaces.
type WebhookEventRepositoryFacade interface {
	WebhookEventClaimer
	WebhookEventWriter
	WebhookEventReader
}
