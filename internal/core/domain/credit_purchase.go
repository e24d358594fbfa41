package domain

// CreditPurchaseStatus tracks a drop-in credit bundle purchase.
type CreditPurchaseStatus string

const (
	CreditPurchasePending CreditPurchaseStatus = "pending"
	CreditPurchaseActive  CreditPurchaseStatus = "active"
	CreditPurchaseExpired CreditPurchaseStatus = "expired"
)

// CreditPurchase is a user's purchase of prepaid drop-in credits.
type CreditPurchase struct {
	ID                string               `json:"id"`
	UserID            string               `json:"userId"`
	Status            CreditPurchaseStatus `json:"status"`
	Provider          string               `json:"provider"`
	ProviderReference string               `json:"providerReference"`
	Credits           int                  `json:"credits"`
	AmountMinor       int64                `json:"amountMinor"`
	Currency          string               `json:"currency"`
	Timestamps
}
