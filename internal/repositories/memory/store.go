// Package memory is an in-process implementation of every repository port.
// It backs tests and DATABASE_DRIVER=memory for local development; state is
// lost on restart.
package memory

import (
	"context"
	"maps"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/payledger/internal/apperrors"
	"github.com/SscSPs/payledger/internal/core/domain"
	portsrepo "github.com/SscSPs/payledger/internal/core/ports/repositories"
	"github.com/SscSPs/payledger/internal/utils/pagination"
)

type webhookKey struct {
	provider string
	eventID  string
}

type Store struct {
	mu sync.RWMutex

	// Webhook event ledger
	webhookEvents map[string]*domain.WebhookEvent
	webhookByKey  map[webhookKey]string

	// Journals by id, with the idempotency key index
	journals      map[string]*domain.FinancialJournal
	journalsByKey map[string]string

	// Reconciliation
	runs   map[string]*domain.ReconciliationRun
	issues map[string]*domain.ReconciliationIssue

	// Source-of-truth tables
	transactions    map[string]*domain.Transaction
	payouts         map[string]*domain.Payout
	creditPurchases map[string]*domain.CreditPurchase
}

func New() *Store {
	return &Store{
		webhookEvents:   make(map[string]*domain.WebhookEvent),
		webhookByKey:    make(map[webhookKey]string),
		journals:        make(map[string]*domain.FinancialJournal),
		journalsByKey:   make(map[string]string),
		runs:            make(map[string]*domain.ReconciliationRun),
		issues:          make(map[string]*domain.ReconciliationIssue),
		transactions:    make(map[string]*domain.Transaction),
		payouts:         make(map[string]*domain.Payout),
		creditPurchases: make(map[string]*domain.CreditPurchase),
	}
}

// Provider exposes the store through every repository port.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		Health:             s,
		WebhookEventRepo:   s,
		JournalRepo:        s,
		ReconciliationRepo: s,
		TransactionRepo:    s,
		PayoutRepo:         s,
		CreditPurchaseRepo: s,
	}
}

var (
	_ portsrepo.HealthChecker                  = (*Store)(nil)
	_ portsrepo.WebhookEventRepositoryFacade   = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade        = (*Store)(nil)
	_ portsrepo.ReconciliationRepositoryFacade = (*Store)(nil)
	_ portsrepo.TransactionRepository          = (*Store)(nil)
	_ portsrepo.PayoutRepository               = (*Store)(nil)
	_ portsrepo.CreditPurchaseRepository       = (*Store)(nil)
)

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func notFound(what string) error {
	return apperrors.NewNotFoundError(what + " not found")
}

// Webhook event ledger

func (s *Store) ClaimEvent(_ context.Context, req domain.ClaimRequest, lease time.Duration, now time.Time) (domain.ClaimResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := webhookKey{provider: req.Provider, eventID: req.EventID}
	id, exists := s.webhookByKey[key]
	if !exists {
		claimedAt := now
		ev := &domain.WebhookEvent{
			ID:                uuid.NewString(),
			Provider:          req.Provider,
			EventID:           req.EventID,
			EventType:         req.EventType,
			Status:            domain.WebhookProcessing,
			SignatureVerified: req.SignatureVerified,
			Payload:           string(req.Payload),
			Attempts:          1,
			ClaimedAt:         &claimedAt,
			Timestamps:        domain.Timestamps{CreatedAt: now, UpdatedAt: now},
		}
		s.webhookEvents[ev.ID] = ev
		s.webhookByKey[key] = ev.ID
		return domain.ClaimResult{ShouldProcess: true, RowID: ev.ID, Status: ev.Status, Attempts: 1, Inserted: true}, nil
	}

	ev := s.webhookEvents[id]
	expired := ev.ClaimedAt == nil || ev.ClaimedAt.Before(now.Add(-lease))
	reclaim := ev.Status == domain.WebhookFailed ||
		((ev.Status == domain.WebhookProcessing || ev.Status == domain.WebhookPending) && expired)
	if !reclaim {
		return domain.ClaimResult{RowID: ev.ID, Status: ev.Status, Attempts: ev.Attempts}, nil
	}

	claimedAt := now
	ev.Status = domain.WebhookProcessing
	ev.Attempts++
	ev.ClaimedAt = &claimedAt
	ev.UpdatedAt = now
	ev.LastError = ""
	ev.SignatureVerified = ev.SignatureVerified || req.SignatureVerified
	return domain.ClaimResult{ShouldProcess: true, RowID: ev.ID, Status: ev.Status, Attempts: ev.Attempts}, nil
}

func (s *Store) MarkEventProcessed(_ context.Context, rowID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.webhookEvents[rowID]
	if !ok {
		return notFound("webhook event " + rowID)
	}
	processedAt := at
	ev.Status = domain.WebhookProcessed
	ev.ProcessedAt = &processedAt
	ev.UpdatedAt = at
	ev.LastError = ""
	return nil
}

func (s *Store) MarkEventFailed(_ context.Context, rowID string, reason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.webhookEvents[rowID]
	if !ok || ev.Status == domain.WebhookProcessed {
		return notFound("webhook event " + rowID)
	}
	ev.Status = domain.WebhookFailed
	ev.LastError = reason
	ev.UpdatedAt = at
	return nil
}

func (s *Store) FindEventByID(_ context.Context, rowID string) (*domain.WebhookEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.webhookEvents[rowID]
	if !ok {
		return nil, notFound("webhook event " + rowID)
	}
	out := *ev
	return &out, nil
}

// Journals

func (s *Store) InsertJournalIfAbsent(_ context.Context, journal domain.FinancialJournal) (*domain.FinancialJournal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.journalsByKey[journal.IdempotencyKey]; exists {
		return cloneJournal(s.journals[id]), false, nil
	}
	stored := cloneJournal(&journal)
	s.journals[stored.ID] = stored
	s.journalsByKey[stored.IdempotencyKey] = stored.ID
	return cloneJournal(stored), true, nil
}

func (s *Store) FindJournalByID(_ context.Context, journalID string) (*domain.FinancialJournal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.journals[journalID]
	if !ok {
		return nil, notFound("journal " + journalID)
	}
	return cloneJournal(j), nil
}

func (s *Store) FindJournalByIdempotencyKey(_ context.Context, key string) (*domain.FinancialJournal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.journalsByKey[key]
	if !ok {
		return nil, notFound("journal " + key)
	}
	return cloneJournal(s.journals[id]), nil
}

func (s *Store) ListJournalsBySource(_ context.Context, kind domain.SourceKind, sourceID string) ([]domain.FinancialJournal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.FinancialJournal, 0)
	for _, j := range s.journals {
		if j.SourceKind == kind && j.SourceID == sourceID {
			out = append(out, *cloneJournal(j))
		}
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].CreatedAt.After(out[k].CreatedAt)
		}
		return out[i].ID > out[k].ID
	})
	return out, nil
}

func (s *Store) ExistsForSource(_ context.Context, kind domain.SourceKind, sourceID string, flow domain.FlowType) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, j := range s.journals {
		if j.SourceKind == kind && j.SourceID == sourceID && j.FlowType == flow {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ExistsByMetadata(_ context.Context, flow domain.FlowType, subset domain.Metadata) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, j := range s.journals {
		if j.FlowType == flow && j.Metadata.Contains(subset) {
			return true, nil
		}
	}
	return false, nil
}

// JournalCount returns the number of stored journals.
func (s *Store) JournalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.journals)
}

// Reconciliation runs and issues

func (s *Store) CreateRun(_ context.Context, run domain.ReconciliationRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return apperrors.NewAppError(http.StatusConflict, "reconciliation run "+run.ID, apperrors.ErrDuplicate)
	}
	s.runs[run.ID] = cloneRun(&run)
	return nil
}

func (s *Store) CompleteRun(_ context.Context, run domain.ReconciliationRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.runs[run.ID]
	if !ok {
		return notFound("reconciliation run " + run.ID)
	}
	if existing.Status != domain.RunProcessing {
		return apperrors.NewAppError(http.StatusConflict, "reconciliation run "+run.ID+" is not processing", apperrors.ErrConflict)
	}
	stored := cloneRun(&run)
	stored.Status = domain.RunCompleted
	s.runs[run.ID] = stored
	return nil
}

func (s *Store) FindRunByID(_ context.Context, runID string) (*domain.ReconciliationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, notFound("reconciliation run " + runID)
	}
	return cloneRun(run), nil
}

func (s *Store) UpsertIssue(_ context.Context, issue domain.ReconciliationIssue, keepStatus bool) (*domain.ReconciliationIssue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.issues[issue.IssueKey]
	if !ok {
		stored := issue
		if stored.ID == "" {
			stored.ID = uuid.NewString()
		}
		stored.DetectionCount = 1
		stored.Details = maps.Clone(issue.Details)
		s.issues[stored.IssueKey] = &stored
		out := stored
		return &out, nil
	}

	existing.IssueType = issue.IssueType
	existing.Severity = issue.Severity
	existing.Details = maps.Clone(issue.Details)
	existing.RunID = issue.RunID
	existing.DetectionCount++
	existing.LastDetectedAt = issue.LastDetectedAt
	if !keepStatus {
		existing.Status = issue.Status
		existing.AutoHealed = issue.AutoHealed
		existing.ResolvedAt = issue.ResolvedAt
	}
	out := *existing
	return &out, nil
}

func (s *Store) ResolveIssue(_ context.Context, issueKey string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[issueKey]
	if !ok || issue.Status != domain.IssueOpen {
		return false, nil
	}
	resolvedAt := at
	issue.Status = domain.IssueResolved
	issue.ResolvedAt = &resolvedAt
	return true, nil
}

func (s *Store) FindIssueByKey(_ context.Context, issueKey string) (*domain.ReconciliationIssue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issue, ok := s.issues[issueKey]
	if !ok {
		return nil, notFound("reconciliation issue " + issueKey)
	}
	out := *issue
	return &out, nil
}

func (s *Store) ListIssues(_ context.Context, status domain.IssueStatus, limit int, nextToken *string) ([]domain.ReconciliationIssue, *string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		afterAt  time.Time
		afterID  string
		hasAfter bool
	)
	if nextToken != nil && *nextToken != "" {
		at, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("%s", err.Error())
		}
		afterAt, afterID, hasAfter = at, id, true
	}

	all := make([]domain.ReconciliationIssue, 0, len(s.issues))
	for _, issue := range s.issues {
		if status != "" && issue.Status != status {
			continue
		}
		all = append(all, *issue)
	}
	sort.Slice(all, func(i, k int) bool { return issueAfter(all[i], all[k].LastDetectedAt, all[k].ID) })

	out := make([]domain.ReconciliationIssue, 0, limit)
	for _, issue := range all {
		if hasAfter && !issueAfter(domain.ReconciliationIssue{LastDetectedAt: afterAt, ID: afterID}, issue.LastDetectedAt, issue.ID) {
			continue
		}
		out = append(out, issue)
	}

	var next *string
	if len(out) > limit {
		out = out[:limit]
		last := out[len(out)-1]
		token := pagination.EncodeToken(last.LastDetectedAt, last.ID)
		next = &token
	}
	return out, next, nil
}

// issueAfter reports whether a sorts before (at, id) in newest-first order.
func issueAfter(a domain.ReconciliationIssue, at time.Time, id string) bool {
	if !a.LastDetectedAt.Equal(at) {
		return a.LastDetectedAt.After(at)
	}
	return a.ID > id
}

func cloneJournal(j *domain.FinancialJournal) *domain.FinancialJournal {
	out := *j
	out.Metadata = maps.Clone(j.Metadata)
	out.Postings = append([]domain.Posting(nil), j.Postings...)
	return &out
}

func cloneRun(r *domain.ReconciliationRun) *domain.ReconciliationRun {
	out := *r
	out.Categories = maps.Clone(r.Categories)
	return &out
}
