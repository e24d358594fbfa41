package domain

import "time"

// TransactionKind distinguishes the two settlement flows a payment can take.
type TransactionKind string

const (
	KindPhotoPurchase TransactionKind = "photo_purchase"
	KindTip           TransactionKind = "tip"
)

// TransactionStatus tracks a payment in the source-of-truth transactions table.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionSucceeded TransactionStatus = "succeeded"
	TransactionRefunded  TransactionStatus = "refunded"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction is a buyer payment (photo purchase or tip) captured by a provider.
type Transaction struct {
	ID                  string            `json:"id"`
	Kind                TransactionKind   `json:"kind"`
	Status              TransactionStatus `json:"status"`
	Provider            string            `json:"provider"`
	ProviderReference   string            `json:"providerReference"`
	BuyerID             string            `json:"buyerId"`
	CreatorID           string            `json:"creatorId"`
	AmountMinor         int64             `json:"amountMinor"`
	PlatformFeeMinor    int64             `json:"platformFeeMinor"`
	RefundedAmountMinor int64             `json:"refundedAmountMinor"`
	Currency            string            `json:"currency"`
	Metadata            Metadata          `json:"metadata"`
	Timestamps
	RefundedAt *time.Time `json:"refundedAt,omitempty"`
}

// TipID returns the tip identifier carried in metadata, if any.
func (t Transaction) TipID() (string, bool) {
	return t.Metadata.String("tip_id")
}

// SettlementFlow returns the flow type the transaction settles under.
func (t Transaction) SettlementFlow() FlowType {
	if _, ok := t.TipID(); ok || t.Kind == KindTip {
		return FlowTip
	}
	return FlowPhotoPurchase
}

// RefundSource returns the source a refund journal is attributed to: the tip
// when the transaction carries a tip id, otherwise the transaction itself.
func (t Transaction) RefundSource() (SourceKind, string) {
	if tipID, ok := t.TipID(); ok {
		return SourceTip, tipID
	}
	return SourceTransaction, t.ID
}

// RefundAmount returns the refunded amount, defaulting to a full refund.
func (t Transaction) RefundAmount() int64 {
	if t.RefundedAmountMinor > 0 && t.RefundedAmountMinor <= t.AmountMinor {
		return t.RefundedAmountMinor
	}
	return t.AmountMinor
}
