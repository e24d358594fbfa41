package models

import "time"

// Transaction is a row of transactions (buyer payments).
type Transaction struct {
	TransactionID       string         `json:"transactionID"`
	Kind                string         `json:"kind"`
	Status              string         `json:"status"`
	Provider            string         `json:"provider"`
	ProviderReference   string         `json:"providerReference"`
	BuyerID             string         `json:"buyerID"`
	CreatorID           string         `json:"creatorID"`
	AmountMinor         int64          `json:"amountMinor"`
	PlatformFeeMinor    int64          `json:"platformFeeMinor"`
	RefundedAmountMinor int64          `json:"refundedAmountMinor"`
	CurrencyCode        string         `json:"currencyCode"`
	Metadata            map[string]any `json:"metadata"` // jsonb
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
	RefundedAt          *time.Time     `json:"refundedAt"`
}

// Payout is a row of payouts.
type Payout struct {
	PayoutID          string     `json:"payoutID"`
	WalletID          string     `json:"walletID"`
	WalletOwnerID     string     `json:"walletOwnerID"`
	Status            string     `json:"status"`
	Provider          string     `json:"provider"`
	ProviderReference string     `json:"providerReference"`
	AmountMinor       int64      `json:"amountMinor"`
	CurrencyCode      string     `json:"currencyCode"`
	FailureReason     *string    `json:"failureReason"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	CompletedAt       *time.Time `json:"completedAt"`
}

// CreditPurchase is a row of credit_purchases.
type CreditPurchase struct {
	CreditPurchaseID  string    `json:"creditPurchaseID"`
	UserID            string    `json:"userID"`
	Status            string    `json:"status"`
	Provider          string    `json:"provider"`
	ProviderReference string    `json:"providerReference"`
	Credits           int       `json:"credits"`
	AmountMinor       int64     `json:"amountMinor"`
	CurrencyCode      string    `json:"currencyCode"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
