package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/payledger/internal/core/domain"
)

// ReconciliationRunRepository persists reconciliation run checkpoints.
type ReconciliationRunRepository interface {
	// CreateRun inserts a run in processing state.
	CreateRun(ctx context.Context, run domain.ReconciliationRun) error

	// CompleteRun moves a run to completed and stores its counters.
	CompleteRun(ctx context.Context, run domain.ReconciliationRun) error

	// FindRunByID retrieves a run.
	FindRunByID(ctx context.Context, runID string) (*domain.ReconciliationRun, error)
}

// ReconciliationIssueRepository persists de-duplicated reconciliation issues.
type ReconciliationIssueRepository interface {
	// UpsertIssue inserts or updates the issue identified by issue.IssueKey.
	// When keepStatus is true an existing row keeps its status, auto_healed and
	// resolved_at; only detection details are refreshed.
	UpsertIssue(ctx context.Context, issue domain.ReconciliationIssue, keepStatus bool) (*domain.ReconciliationIssue, error)

	// ResolveIssue marks an open issue resolved. It reports whether a row changed.
	ResolveIssue(ctx context.Context, issueKey string, at time.Time) (bool, error)

	// FindIssueByKey retrieves an issue by its key.
	FindIssueByKey(ctx context.Context, issueKey string) (*domain.ReconciliationIssue, error)

	// ListIssues retrieves issues newest first using token-based pagination.
	// An empty status lists every issue.
	ListIssues(ctx context.Context, status domain.IssueStatus, limit int, nextToken *string) ([]domain.ReconciliationIssue, *string, error)
}

// ReconciliationRepositoryFacade combines run and issue persistence.
type ReconciliationRepositoryFacade interface {
	ReconciliationRunRepository
	ReconciliationIssueRepository
}
