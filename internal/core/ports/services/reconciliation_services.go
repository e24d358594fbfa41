package services

import (
	"context"
	"time"

	"github.com/SscSPs/payledger/internal/core/domain"
)

// RunOptions parameterise one reconciliation run.
type RunOptions struct {
	Limit         int
	DryRun        bool
	TriggerSource string
}

// ReconciliationRunnerSvc scans source tables for missing journals and heals them.
type ReconciliationRunnerSvc interface {
	// Run executes one reconciliation pass. Errors returned from Run are
	// run-level failures; item-level heal failures only leave issues open.
	Run(ctx context.Context, opts RunOptions) (*domain.ReconciliationRun, error)
}

// ReconciliationReaderSvc exposes runs and issues to operators.
type ReconciliationReaderSvc interface {
	GetRun(ctx context.Context, runID string) (*domain.ReconciliationRun, error)
	GetIssue(ctx context.Context, issueKey string) (*domain.ReconciliationIssue, error)
	ListIssues(ctx context.Context, status domain.IssueStatus, limit int, nextToken *string) ([]domain.ReconciliationIssue, *string, error)
}

// ReconciliationSvcFacade combines the runner and reader.
type ReconciliationSvcFacade interface {
	ReconciliationRunnerSvc
	ReconciliationReaderSvc
}

// RunLocker guards scheduled runs so that replicas do not scan on the same tick.
type RunLocker interface {
	// TryLock obtains key for ttl. ok is false when another holder has it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}
