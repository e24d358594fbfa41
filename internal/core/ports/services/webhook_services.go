package services

import (
	"context"
	"net/http"

	"github.com/SscSPs/payledger/internal/core/domain"
)

// ProviderAdapter is the narrow contract with a payment provider's webhook format.
type ProviderAdapter interface {
	// Name returns the provider identifier used in routes and storage.
	Name() string

	// Configured reports whether the verification secret is present.
	Configured() bool

	// Verify checks the signature of the raw request body.
	Verify(headers http.Header, rawBody []byte) bool

	// Identify extracts the provider event id and type without trusting the rest
	// of the payload. It only fails for an empty body.
	Identify(headers http.Header, rawBody []byte) (domain.EventIdentity, error)

	// Normalize reduces the payload to a ProviderEvent.
	Normalize(rawBody []byte) (domain.ProviderEvent, error)
}

// WebhookLedgerSvc is the idempotent claim/commit store for inbound events.
type WebhookLedgerSvc interface {
	// Claim atomically inserts or fetches the event row and decides whether the caller processes it.
	Claim(ctx context.Context, req domain.ClaimRequest) (domain.ClaimResult, error)

	// MarkProcessed records that processing completed.
	MarkProcessed(ctx context.Context, rowID string) error

	// MarkFailed records that processing failed, with the reason.
	MarkFailed(ctx context.Context, rowID string, reason string) error

	// GetEvent returns the stored row for operators auditing a delivery.
	GetEvent(ctx context.Context, rowID string) (*domain.WebhookEvent, error)
}

// WebhookDispatcherSvc applies a normalised event to source tables and the journal.
type WebhookDispatcherSvc interface {
	Dispatch(ctx context.Context, provider string, event domain.ProviderEvent) error
}

// IngestResult is the outcome of handling one webhook delivery.
type IngestResult struct {
	RowID     string
	EventID   string
	Status    domain.WebhookStatus
	Duplicate bool
	// InFlight is true when another delivery of the same event holds the claim.
	InFlight bool
}

// WebhookIngestSvc runs verify -> claim -> dispatch -> mark for a delivery.
type WebhookIngestSvc interface {
	Ingest(ctx context.Context, provider string, headers http.Header, rawBody []byte) (*IngestResult, error)
}
