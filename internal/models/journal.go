package models

import "time"

// Journal is a row of financial_journals.
type Journal struct {
	JournalID      string         `json:"journalID"`
	IdempotencyKey string         `json:"idempotencyKey"`
	SourceKind     string         `json:"sourceKind"`
	SourceID       string         `json:"sourceID"`
	FlowType       string         `json:"flowType"`
	CurrencyCode   string         `json:"currencyCode"`
	Provider       string         `json:"provider"`
	Description    string         `json:"description"`
	Metadata       map[string]any `json:"metadata"` // jsonb
	CreatedAt      time.Time      `json:"createdAt"`
}

// Posting is a row of financial_journal_postings.
type Posting struct {
	PostingID        string    `json:"postingID"`
	JournalID        string    `json:"journalID"` // FK -> financial_journals.id
	LineNo           int       `json:"lineNo"`
	AccountCode      string    `json:"accountCode"`
	Direction        string    `json:"direction"`   // debit or credit
	AmountMinor      int64     `json:"amountMinor"` // > 0
	CurrencyCode     string    `json:"currencyCode"`
	CounterpartyType *string   `json:"counterpartyType"`
	CounterpartyID   *string   `json:"counterpartyID"`
	CreatedAt        time.Time `json:"createdAt"`
}
