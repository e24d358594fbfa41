package services

import (
	"context"

	"github.com/SscSPs/payledger/internal/core/domain"
)

// JournalWriterSvc is the single choke point for money-moving effects.
type JournalWriterSvc interface {
	// Record validates and stores a balanced journal. A repeated idempotency key
	// returns the original journal unchanged.
	Record(ctx context.Context, req domain.JournalRequest) (*domain.FinancialJournal, error)
}

// JournalReaderSvc defines read operations for journals.
type JournalReaderSvc interface {
	// GetJournalByID retrieves a journal with its postings.
	GetJournalByID(ctx context.Context, journalID string) (*domain.FinancialJournal, error)

	// ListJournalsBySource retrieves the journals recorded for a source.
	ListJournalsBySource(ctx context.Context, kind domain.SourceKind, sourceID string) ([]domain.FinancialJournal, error)
}

// JournalSvcFacade combines all journal service interfaces.
type JournalSvcFacade interface {
	JournalWriterSvc
	JournalReaderSvc
}
