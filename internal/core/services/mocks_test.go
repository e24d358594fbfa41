package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/payledger/internal/core/domain"
	portsrepo "github.com/SscSPs/payledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
)

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

// Ensure MockJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.FinancialJournal, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialJournal), args.Error(1)
}

func (m *MockJournalRepository) FindJournalByIdempotencyKey(ctx context.Context, key string) (*domain.FinancialJournal, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialJournal), args.Error(1)
}

func (m *MockJournalRepository) ListJournalsBySource(ctx context.Context, kind domain.SourceKind, sourceID string) ([]domain.FinancialJournal, error) {
	args := m.Called(ctx, kind, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FinancialJournal), args.Error(1)
}

func (m *MockJournalRepository) ExistsForSource(ctx context.Context, kind domain.SourceKind, sourceID string, flow domain.FlowType) (bool, error) {
	args := m.Called(ctx, kind, sourceID, flow)
	return args.Bool(0), args.Error(1)
}

func (m *MockJournalRepository) ExistsByMetadata(ctx context.Context, flow domain.FlowType, subset domain.Metadata) (bool, error) {
	args := m.Called(ctx, flow, subset)
	return args.Bool(0), args.Error(1)
}

func (m *MockJournalRepository) InsertJournalIfAbsent(ctx context.Context, journal domain.FinancialJournal) (*domain.FinancialJournal, bool, error) {
	args := m.Called(ctx, journal)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.FinancialJournal), args.Bool(1), args.Error(2)
}

// --- Mock ReconciliationRunner ---
type MockReconciliationRunner struct {
	mock.Mock
}

var _ portssvc.ReconciliationRunnerSvc = (*MockReconciliationRunner)(nil)

func (m *MockReconciliationRunner) Run(ctx context.Context, opts portssvc.RunOptions) (*domain.ReconciliationRun, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationRun), args.Error(1)
}

// --- Fake RunLocker ---
type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	released int
	err      error
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, false, l.err
	}
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		l.released++
		return nil
	}, true, nil
}

// fixedClock returns a clock that advances by one second per call so that
// ordering by time is deterministic.
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}
