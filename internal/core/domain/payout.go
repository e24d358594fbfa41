package domain

import "time"

// PayoutStatus tracks a creator payout.
type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "pending"
	PayoutCompleted PayoutStatus = "completed"
	PayoutFailed    PayoutStatus = "failed"
)

// Payout is money sent from the platform to a creator's wallet.
type Payout struct {
	ID                string       `json:"id"`
	WalletID          string       `json:"walletId"`
	WalletOwnerID     string       `json:"walletOwnerId"`
	Status            PayoutStatus `json:"status"`
	Provider          string       `json:"provider"`
	ProviderReference string       `json:"providerReference"`
	AmountMinor       int64        `json:"amountMinor"`
	Currency          string       `json:"currency"`
	FailureReason     string       `json:"failureReason,omitempty"`
	Timestamps
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
