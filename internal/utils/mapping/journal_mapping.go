package mapping

import (
	"github.com/SscSPs/payledger/internal/core/domain"
	"github.com/SscSPs/payledger/internal/models"
)

// ToModelJournal converts a domain FinancialJournal to a model Journal
func ToModelJournal(d domain.FinancialJournal) models.Journal {
	return models.Journal{
		JournalID:      d.ID,
		IdempotencyKey: d.IdempotencyKey,
		SourceKind:     string(d.SourceKind),
		SourceID:       d.SourceID,
		FlowType:       string(d.FlowType),
		CurrencyCode:   d.Currency,
		Provider:       d.Provider,
		Description:    d.Description,
		Metadata:       map[string]any(d.Metadata),
		CreatedAt:      d.CreatedAt,
	}
}

// ToDomainJournal converts a model Journal and its postings to a domain FinancialJournal
func ToDomainJournal(m models.Journal, postings []models.Posting) domain.FinancialJournal {
	d := domain.FinancialJournal{
		ID:             m.JournalID,
		IdempotencyKey: m.IdempotencyKey,
		SourceKind:     domain.SourceKind(m.SourceKind),
		SourceID:       m.SourceID,
		FlowType:       domain.FlowType(m.FlowType),
		Currency:       m.CurrencyCode,
		Provider:       m.Provider,
		Description:    m.Description,
		Metadata:       domain.Metadata(m.Metadata),
		CreatedAt:      m.CreatedAt,
		Postings:       make([]domain.Posting, 0, len(postings)),
	}
	if d.Metadata == nil {
		d.Metadata = domain.Metadata{}
	}
	for _, p := range postings {
		d.Postings = append(d.Postings, ToDomainPosting(p))
	}
	return d
}

// ToModelPosting converts a domain Posting to a model Posting
func ToModelPosting(d domain.Posting) models.Posting {
	return models.Posting{
		PostingID:        d.ID,
		JournalID:        d.JournalID,
		LineNo:           d.LineNo,
		AccountCode:      string(d.AccountCode),
		Direction:        string(d.Direction),
		AmountMinor:      d.AmountMinor,
		CurrencyCode:     d.Currency,
		CounterpartyType: nullableString(d.CounterpartyType),
		CounterpartyID:   nullableString(d.CounterpartyID),
	}
}

// ToDomainPosting converts a model Posting to a domain Posting
func ToDomainPosting(m models.Posting) domain.Posting {
	return domain.Posting{
		ID:               m.PostingID,
		JournalID:        m.JournalID,
		LineNo:           m.LineNo,
		AccountCode:      domain.AccountCode(m.AccountCode),
		Direction:        domain.Direction(m.Direction),
		AmountMinor:      m.AmountMinor,
		Currency:         m.CurrencyCode,
		CounterpartyType: stringValue(m.CounterpartyType),
		CounterpartyID:   stringValue(m.CounterpartyID),
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
