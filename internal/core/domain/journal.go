package domain

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// FlowType categorises the money movement a journal represents.
type FlowType string

const (
	FlowPhotoPurchase        FlowType = "photo_purchase"
	FlowTip                  FlowType = "tip"
	FlowRefund               FlowType = "refund"
	FlowPayout               FlowType = "payout"
	FlowDropInCreditPurchase FlowType = "drop_in_credit_purchase"
)

// SourceKind names the domain entity a journal or issue points back to.
type SourceKind string

const (
	SourceTransaction    SourceKind = "transaction"
	SourceTip            SourceKind = "tip"
	SourcePayout         SourceKind = "payout"
	SourceCreditPurchase SourceKind = "credit_purchase"
)

// Direction indicates whether a posting is a debit or a credit leg.
type Direction string

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

// FinancialJournal is the immutable header of one balanced financial event.
type FinancialJournal struct {
	ID             string     `json:"id"`
	IdempotencyKey string     `json:"idempotencyKey"`
	SourceKind     SourceKind `json:"sourceKind"`
	SourceID       string     `json:"sourceId"`
	FlowType       FlowType   `json:"flowType"`
	Currency       string     `json:"currency"`
	Provider       string     `json:"provider"`
	Description    string     `json:"description"`
	Metadata       Metadata   `json:"metadata"`
	Postings       []Posting  `json:"postings"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Posting is a single debit or credit leg of a journal.
type Posting struct {
	ID               string      `json:"id"`
	JournalID        string      `json:"journalId"`
	LineNo           int         `json:"lineNo"`
	AccountCode      AccountCode `json:"accountCode" validate:"required"`
	Direction        Direction   `json:"direction" validate:"required,oneof=debit credit"`
	AmountMinor      int64       `json:"amountMinor" validate:"gt=0"`
	Currency         string      `json:"currency" validate:"required,len=3"`
	CounterpartyType string      `json:"counterpartyType"`
	CounterpartyID   string      `json:"counterpartyId"`
}

// CurrencyImbalance describes a currency whose debits and credits differ, or
// whose totals do not fit in int64 minor units.
type CurrencyImbalance struct {
	Currency string
	Debits   int64
	Credits  int64
	Overflow bool
}

func (c CurrencyImbalance) Error() string {
	if c.Overflow {
		return fmt.Sprintf("%s posting totals exceed the int64 minor-unit range", c.Currency)
	}
	return fmt.Sprintf("%s debits %d != credits %d", c.Currency, c.Debits, c.Credits)
}

var maxMinor = decimal.NewFromInt(math.MaxInt64)

// Imbalances returns, sorted by currency, every currency present among the
// postings whose debit and credit totals differ or overflow int64. An empty
// result means the postings are balanced.
func Imbalances(postings []Posting) []CurrencyImbalance {
	type totals struct{ debits, credits decimal.Decimal }
	byCurrency := make(map[string]*totals)
	for _, p := range postings {
		t, ok := byCurrency[p.Currency]
		if !ok {
			t = &totals{debits: decimal.Zero, credits: decimal.Zero}
			byCurrency[p.Currency] = t
		}
		if p.Direction == Debit {
			t.debits = t.debits.Add(decimal.NewFromInt(p.AmountMinor))
		} else {
			t.credits = t.credits.Add(decimal.NewFromInt(p.AmountMinor))
		}
	}

	var out []CurrencyImbalance
	for cur, t := range byCurrency {
		if t.debits.Abs().GreaterThan(maxMinor) || t.credits.Abs().GreaterThan(maxMinor) {
			out = append(out, CurrencyImbalance{Currency: cur, Overflow: true})
			continue
		}
		if !t.debits.Equal(t.credits) {
			out = append(out, CurrencyImbalance{Currency: cur, Debits: t.debits.IntPart(), Credits: t.credits.IntPart()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

// JournalRequest is the input to the financial journal's record operation.
type JournalRequest struct {
	IdempotencyKey string     `validate:"required,max=255"`
	SourceKind     SourceKind `validate:"required"`
	SourceID       string     `validate:"required"`
	FlowType       FlowType   `validate:"required"`
	Currency       string     `validate:"required,len=3"`
	Provider       string
	Description    string
	Metadata       Metadata
	Postings       []Posting `validate:"required,min=1,dive"`
}

// JournalKey builds the default deterministic idempotency key for a source and flow.
func JournalKey(kind SourceKind, sourceID string, flow FlowType) string {
	return string(kind) + ":" + sourceID + ":" + string(flow)
}
