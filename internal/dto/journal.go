package dto

import (
	"time"

	"github.com/SscSPs/payledger/internal/core/domain"
	"github.com/SscSPs/payledger/internal/utils/accounting"
	"github.com/SscSPs/payledger/internal/utils/money"
)

// PostingResponse defines the data returned for one journal leg.
type PostingResponse struct {
	LineNo           int    `json:"lineNo"`
	AccountCode      string `json:"accountCode"`
	Direction        string `json:"direction"` // debit or credit
	AmountMinor      int64  `json:"amountMinor"`
	AmountDisplay    string `json:"amountDisplay"`
	Currency         string `json:"currency"`
	CounterpartyType string `json:"counterpartyType,omitempty"`
	CounterpartyID   string `json:"counterpartyId,omitempty"`
}

// JournalResponse defines the data returned for a journal with its postings.
type JournalResponse struct {
	JournalID      string                      `json:"journalId"`
	IdempotencyKey string                      `json:"idempotencyKey"`
	SourceKind     string                      `json:"sourceKind"`
	SourceID       string                      `json:"sourceId"`
	FlowType       string                      `json:"flowType"`
	Currency       string                      `json:"currency"`
	Provider       string                      `json:"provider,omitempty"`
	Description    string                      `json:"description,omitempty"`
	Metadata       map[string]any              `json:"metadata,omitempty"`
	Postings       []PostingResponse           `json:"postings"`
	BalanceEffects map[string]map[string]int64 `json:"balanceEffects,omitempty"`
	CreatedAt      time.Time                   `json:"createdAt"`
}

// ListJournalsResponse wraps the journals recorded for one source.
type ListJournalsResponse struct {
	Journals []JournalResponse `json:"journals"`
}

// ListJournalsParams are the query parameters of the journal listing.
type ListJournalsParams struct {
	SourceKind string `form:"sourceKind" binding:"required,oneof=transaction tip payout credit_purchase"`
	SourceID   string `form:"sourceId" binding:"required"`
}

// ToPostingResponse converts a domain.Posting to PostingResponse DTO.
func ToPostingResponse(p domain.Posting) PostingResponse {
	return PostingResponse{
		LineNo:           p.LineNo,
		AccountCode:      string(p.AccountCode),
		Direction:        string(p.Direction),
		AmountMinor:      p.AmountMinor,
		AmountDisplay:    money.FormatMinor(p.AmountMinor, p.Currency),
		Currency:         p.Currency,
		CounterpartyType: p.CounterpartyType,
		CounterpartyID:   p.CounterpartyID,
	}
}

// ToJournalResponse converts a domain.FinancialJournal to JournalResponse DTO.
func ToJournalResponse(j *domain.FinancialJournal) JournalResponse {
	postings := make([]PostingResponse, len(j.Postings))
	for i, p := range j.Postings {
		postings[i] = ToPostingResponse(p)
	}

	resp := JournalResponse{
		JournalID:      j.ID,
		IdempotencyKey: j.IdempotencyKey,
		SourceKind:     string(j.SourceKind),
		SourceID:       j.SourceID,
		FlowType:       string(j.FlowType),
		Currency:       j.Currency,
		Provider:       j.Provider,
		Description:    j.Description,
		Metadata:       j.Metadata,
		Postings:       postings,
		CreatedAt:      j.CreatedAt,
	}

	// Journals reaching this point were validated on write; an account outside
	// the chart only drops the effects block.
	if effects, err := accounting.BalanceEffects(j.Postings); err == nil {
		resp.BalanceEffects = make(map[string]map[string]int64, len(effects))
		for code, byCurrency := range effects {
			resp.BalanceEffects[string(code)] = byCurrency
		}
	}
	return resp
}

// ToListJournalsResponse converts a slice of journals.
func ToListJournalsResponse(journals []domain.FinancialJournal) ListJournalsResponse {
	out := ListJournalsResponse{Journals: make([]JournalResponse, len(journals))}
	for i := range journals {
		out.Journals[i] = ToJournalResponse(&journals[i])
	}
	return out
}
