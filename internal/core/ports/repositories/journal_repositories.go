package repositories

import (
	"context"

	"github.com/SscSPs/payledger/internal/core/domain"
)

// JournalReader defines read operations for financial journals.
type JournalReader interface {
	// FindJournalByID retrieves a journal with its postings.
	FindJournalByID(ctx context.Context, journalID string) (*domain.FinancialJournal, error)

	// FindJournalByIdempotencyKey retrieves a journal with its postings by idempotency key.
	FindJournalByIdempotencyKey(ctx context.Context, key string) (*domain.FinancialJournal, error)

	// ListJournalsBySource retrieves every journal recorded for a source, newest first.
	ListJournalsBySource(ctx context.Context, kind domain.SourceKind, sourceID string) ([]domain.FinancialJournal, error)
}

// JournalExistenceChecker answers "has a journal for this source already been recorded?".
type JournalExistenceChecker interface {
	// ExistsForSource matches on (source_kind, source_id, flow_type).
	ExistsForSource(ctx context.Context, kind domain.SourceKind, sourceID string, flow domain.FlowType) (bool, error)

	// ExistsByMetadata matches journals of the flow whose metadata contains subset.
	ExistsByMetadata(ctx context.Context, flow domain.FlowType, subset domain.Metadata) (bool, error)
}

// JournalWriter defines the single write path for journals.
type JournalWriter interface {
	// InsertJournalIfAbsent stores the header and all postings atomically unless a
	// journal with the same idempotency key exists. It returns the stored journal
	// and whether this call created it.
	InsertJournalIfAbsent(ctx context.Context, journal domain.FinancialJournal) (*domain.FinancialJournal, bool, error)
}

// JournalRepositoryFacade combines all journal repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalExistenceChecker
	JournalWriter
}
