package domain

import "time"

// WebhookStatus is the processing state of an inbound provider event.
type WebhookStatus string

const (
	WebhookPending    WebhookStatus = "pending"
	WebhookProcessing WebhookStatus = "processing"
	WebhookProcessed  WebhookStatus = "processed"
	WebhookFailed     WebhookStatus = "failed"
)

// Provider identifiers accepted on the webhook endpoints.
const (
	ProviderStripe      = "stripe"
	ProviderPayPal      = "paypal"
	ProviderFlutterwave = "flutterwave"
	ProviderPaystack    = "paystack"
)

// WebhookEvent is the dedup/audit row for one provider event. Rows are never deleted.
type WebhookEvent struct {
	ID                string        `json:"id"`
	Provider          string        `json:"provider"`
	EventID           string        `json:"eventId"`
	EventType         string        `json:"eventType"`
	Status            WebhookStatus `json:"status"`
	SignatureVerified bool          `json:"signatureVerified"`
	Payload           string        `json:"payload"`
	Attempts          int           `json:"attempts"`
	LastError         string        `json:"lastError,omitempty"`
	ClaimedAt         *time.Time    `json:"claimedAt,omitempty"`
	ProcessedAt       *time.Time    `json:"processedAt,omitempty"`
	Timestamps
}

// ClaimRequest is the input to the webhook ledger's claim operation.
type ClaimRequest struct {
	Provider          string
	EventID           string
	EventType         string
	SignatureVerified bool
	Payload           []byte
}

// ClaimResult reports whether the caller owns processing of the event.
type ClaimResult struct {
	ShouldProcess bool
	RowID         string
	Status        WebhookStatus
	Attempts      int
	Inserted      bool // this claim created the row
}

// Replay reports whether the event was already fully handled.
func (r ClaimResult) Replay() bool {
	return !r.ShouldProcess && r.Status == WebhookProcessed
}
