package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/payledger/internal/apperrors"
	"github.com/SscSPs/payledger/internal/core/domain"
	portsrepo "github.com/SscSPs/payledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
)

const (
	DefaultReconcileLimit = 200
	MaxReconcileLimit     = 1000

	defaultIssuePageSize = 20
	maxIssuePageSize     = 100
)

// Issue types written by the runner.
const (
	IssueMissingSettlementJournal   = "missing_settlement_journal"
	IssueMissingRefundJournal       = "missing_refund_journal"
	IssueMissingDropInCreditJournal = "missing_drop_in_credit_journal"
	IssueMissingPayoutJournal       = "missing_payout_journal"
)

// HealOutcome is the result of one attempt to write a missing journal.
type HealOutcome string

const (
	// HealNotAttempted is used for dry runs.
	HealNotAttempted HealOutcome = "not_attempted"
	HealRecorded     HealOutcome = "recorded"
	HealFailed       HealOutcome = "failed"
)

// ReconcilerConfig bounds a reconciliation run.
type ReconcilerConfig struct {
	DefaultLimit int
	MaxLimit     int
	// Concurrency is the number of rows of one category checked at a time.
	Concurrency int
	// Timeout bounds a whole run; zero disables it.
	Timeout time.Duration
}

func (c ReconcilerConfig) withDefaults() ReconcilerConfig {
	if c.MaxLimit <= 0 {
		c.MaxLimit = MaxReconcileLimit
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = DefaultReconcileLimit
	}
	if c.DefaultLimit > c.MaxLimit {
		c.DefaultLimit = c.MaxLimit
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	return c
}

// reconcileItem is one source row of a category, with its check and heal bound in.
type reconcileItem struct {
	sourceID string
	details  domain.Metadata
	has      func(ctx context.Context) (bool, error)
	heal     func(ctx context.Context) error
}

type reconcileCategory struct {
	name       domain.Category
	issueType  string
	severity   domain.Severity
	sourceKind domain.SourceKind
	fetch      func(ctx context.Context, limit int) ([]reconcileItem, error)
}

type reconciliationService struct {
	BaseService
	cfg          ReconcilerConfig
	repo         portsrepo.ReconciliationRepositoryFacade
	transactions portsrepo.TransactionRepository
	payouts      portsrepo.PayoutRepository
	purchases    portsrepo.CreditPurchaseRepository
	recorder     portssvc.FlowRecorderSvc
	categories   []reconcileCategory
}

// NewReconciliationService creates the reconciliation runner and issue reader.
func NewReconciliationService(
	cfg ReconcilerConfig,
	repo portsrepo.ReconciliationRepositoryFacade,
	transactions portsrepo.TransactionRepository,
	payouts portsrepo.PayoutRepository,
	purchases portsrepo.CreditPurchaseRepository,
	recorder portssvc.FlowRecorderSvc,
	opts ...Option,
) portssvc.ReconciliationSvcFacade {
	s := &reconciliationService{
		cfg:          cfg.withDefaults(),
		repo:         repo,
		transactions: transactions,
		payouts:      payouts,
		purchases:    purchases,
		recorder:     recorder,
	}
	applyOptions(&s.BaseService, opts)
	s.categories = s.buildCategories()
	return s
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

func (s *reconciliationService) buildCategories() []reconcileCategory {
	return []reconcileCategory{
		{
			name:       domain.CategorySettlement,
			issueType:  IssueMissingSettlementJournal,
			severity:   domain.SeverityError,
			sourceKind: domain.SourceTransaction,
			fetch: func(ctx context.Context, limit int) ([]reconcileItem, error) {
				txns, err := s.transactions.ListTransactionsByStatus(ctx, domain.TransactionSucceeded, limit)
				if err != nil {
					return nil, err
				}
				items := make([]reconcileItem, 0, len(txns))
				for _, txn := range txns {
					items = append(items, reconcileItem{
						sourceID: txn.ID,
						details:  transactionDetails(txn, txn.SettlementFlow()),
						has:      func(ctx context.Context) (bool, error) { return s.recorder.HasSettlementJournal(ctx, txn) },
						heal: func(ctx context.Context) error {
							_, err := s.recorder.RecordSettlement(ctx, txn)
							return err
						},
					})
				}
				return items, nil
			},
		},
		{
			name:       domain.CategoryRefund,
			issueType:  IssueMissingRefundJournal,
			severity:   domain.SeverityError,
			sourceKind: domain.SourceTransaction,
			fetch: func(ctx context.Context, limit int) ([]reconcileItem, error) {
				txns, err := s.transactions.ListTransactionsByStatus(ctx, domain.TransactionRefunded, limit)
				if err != nil {
					return nil, err
				}
				items := make([]reconcileItem, 0, len(txns))
				for _, txn := range txns {
					details := transactionDetails(txn, domain.FlowRefund)
					details["refund_amount_minor"] = txn.RefundAmount()
					items = append(items, reconcileItem{
						sourceID: txn.ID,
						details:  details,
						has:      func(ctx context.Context) (bool, error) { return s.recorder.HasRefundJournal(ctx, txn) },
						heal: func(ctx context.Context) error {
							_, err := s.recorder.RecordRefund(ctx, txn)
							return err
						},
					})
				}
				return items, nil
			},
		},
		{
			name:       domain.CategoryCreditPurchase,
			issueType:  IssueMissingDropInCreditJournal,
			severity:   domain.SeverityWarning,
			sourceKind: domain.SourceCreditPurchase,
			fetch: func(ctx context.Context, limit int) ([]reconcileItem, error) {
				purchases, err := s.purchases.ListCreditPurchasesByStatus(ctx, domain.CreditPurchaseActive, limit)
				if err != nil {
					return nil, err
				}
				items := make([]reconcileItem, 0, len(purchases))
				for _, p := range purchases {
					items = append(items, reconcileItem{
						sourceID: p.ID,
						details: domain.Metadata{
							"flow_type":    string(domain.FlowDropInCreditPurchase),
							"user_id":      p.UserID,
							"amount_minor": p.AmountMinor,
							"currency":     p.Currency,
							"provider":     p.Provider,
						},
						has: func(ctx context.Context) (bool, error) { return s.recorder.HasCreditPurchaseJournal(ctx, p) },
						heal: func(ctx context.Context) error {
							_, err := s.recorder.RecordCreditPurchase(ctx, p)
							return err
						},
					})
				}
				return items, nil
			},
		},
		{
			name:       domain.CategoryPayout,
			issueType:  IssueMissingPayoutJournal,
			severity:   domain.SeverityCritical,
			sourceKind: domain.SourcePayout,
			fetch: func(ctx context.Context, limit int) ([]reconcileItem, error) {
				payouts, err := s.payouts.ListPayoutsByStatus(ctx, domain.PayoutCompleted, limit)
				if err != nil {
					return nil, err
				}
				items := make([]reconcileItem, 0, len(payouts))
				for _, p := range payouts {
					items = append(items, reconcileItem{
						sourceID: p.ID,
						details: domain.Metadata{
							"flow_type":       string(domain.FlowPayout),
							"wallet_id":       p.WalletID,
							"wallet_owner_id": p.WalletOwnerID,
							"amount_minor":    p.AmountMinor,
							"currency":        p.Currency,
							"provider":        p.Provider,
						},
						has: func(ctx context.Context) (bool, error) { return s.recorder.HasPayoutJournal(ctx, p) },
						heal: func(ctx context.Context) error {
							_, err := s.recorder.RecordPayout(ctx, p)
							return err
						},
					})
				}
				return items, nil
			},
		},
	}
}

// Run executes one reconciliation pass. Any error it returns means the run
// did not complete; the run row, if created, stays in processing.
func (s *reconciliationService) Run(ctx context.Context, opts portssvc.RunOptions) (run *domain.ReconciliationRun, err error) {
	limit := s.clampLimit(opts.Limit)
	trigger := opts.TriggerSource
	if trigger == "" {
		trigger = "manual"
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	ctx, span := s.StartSpan(ctx, "reconciliation.run",
		attribute.String("trigger_source", trigger),
		attribute.Bool("dry_run", opts.DryRun),
		attribute.Int("limit", limit),
	)
	defer func() { EndSpan(span, err) }()

	now := s.Now()
	runID := uuid.NewString()
	run = &domain.ReconciliationRun{
		ID:            runID,
		RunKey:        fmt.Sprintf("%s:%s:%s", trigger, now.Format("20060102T150405Z"), runID[:8]),
		TriggerSource: trigger,
		Status:        domain.RunProcessing,
		DryRun:        opts.DryRun,
		Limit:         limit,
		Categories:    make(map[domain.Category]domain.CategoryCounts, len(s.categories)),
		CreatedAt:     now,
	}
	logger := s.GetLogger(ctx).With(slog.String("run_id", run.ID), slog.String("trigger_source", trigger), slog.Bool("dry_run", opts.DryRun))

	if err := s.repo.CreateRun(ctx, *run); err != nil {
		s.LogError(ctx, err, "Failed to create reconciliation run")
		return nil, apperrors.NewUnavailableError("failed to create reconciliation run", err)
	}
	logger.Info("Reconciliation run started", slog.Int("limit", limit))

	for _, cat := range s.categories {
		counts, err := s.reconcileCategory(ctx, run, cat, limit, opts.DryRun)
		if err != nil {
			logger.Error("Reconciliation run aborted", slog.String("category", string(cat.name)), slog.String("error", err.Error()))
			return nil, apperrors.NewUnavailableError(fmt.Sprintf("reconciliation of %s failed", cat.name), err)
		}
		run.Categories[cat.name] = counts
		run.Checked += counts.Checked
		run.Issues += counts.Issues
		run.AutoHealed += counts.AutoHealed
	}

	completedAt := s.Now()
	run.Status = domain.RunCompleted
	run.CompletedAt = &completedAt
	if err := s.repo.CompleteRun(ctx, *run); err != nil {
		s.LogError(ctx, err, "Failed to complete reconciliation run", slog.String("run_id", run.ID))
		return nil, apperrors.NewUnavailableError("failed to complete reconciliation run", err)
	}

	logger.Info("Reconciliation run completed",
		slog.Int("checked", run.Checked),
		slog.Int("issues", run.Issues),
		slog.Int("auto_healed", run.AutoHealed),
	)
	return run, nil
}

func (s *reconciliationService) reconcileCategory(ctx context.Context, run *domain.ReconciliationRun, cat reconcileCategory, limit int, dryRun bool) (domain.CategoryCounts, error) {
	items, err := cat.fetch(ctx, limit)
	if err != nil {
		return domain.CategoryCounts{}, fmt.Errorf("failed to fetch %s rows: %w", cat.name, err)
	}

	var (
		mu     sync.Mutex
		counts = domain.CategoryCounts{Checked: len(items)}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, it := range items {
		g.Go(func() error {
			missing, healed, err := s.reconcileItem(gctx, run, cat, it, dryRun)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if missing {
				counts.Issues++
			}
			if healed {
				counts.AutoHealed++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.CategoryCounts{}, err
	}
	return counts, nil
}

// reconcileItem checks one row. Only storage failures are returned; a failed
// heal leaves the issue open.
func (s *reconciliationService) reconcileItem(ctx context.Context, run *domain.ReconciliationRun, cat reconcileCategory, it reconcileItem, dryRun bool) (missing bool, healed bool, err error) {
	issueKey := domain.IssueKey(cat.issueType, cat.sourceKind, it.sourceID)

	found, err := it.has(ctx)
	if err != nil {
		return false, false, err
	}
	if found {
		if !dryRun {
			if _, err := s.repo.ResolveIssue(ctx, issueKey, s.Now()); err != nil {
				return false, false, fmt.Errorf("failed to resolve issue %s: %w", issueKey, err)
			}
		}
		return false, false, nil
	}

	outcome, healErr := s.heal(ctx, it, dryRun)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return true, false, ctxErr
	}
	if outcome == HealRecorded {
		healed, err = it.has(ctx)
		if err != nil {
			return true, false, err
		}
	}

	details := domain.Metadata{"category": string(cat.name), "heal_outcome": string(outcome)}
	for k, v := range it.details {
		details[k] = v
	}
	if healErr != nil {
		details["heal_error"] = healErr.Error()
	}

	now := s.Now()
	issue := domain.ReconciliationIssue{
		IssueKey:        issueKey,
		IssueType:       cat.issueType,
		Severity:        cat.severity,
		SourceKind:      cat.sourceKind,
		SourceID:        it.sourceID,
		Status:          domain.IssueOpen,
		RunID:           run.ID,
		Details:         details,
		FirstDetectedAt: now,
		LastDetectedAt:  now,
	}
	if healed {
		issue.Status = domain.IssueResolved
		issue.AutoHealed = true
		issue.ResolvedAt = &now
	}
	if _, err := s.repo.UpsertIssue(ctx, issue, dryRun); err != nil {
		return true, false, fmt.Errorf("failed to upsert issue %s: %w", issueKey, err)
	}

	s.GetLogger(ctx).Warn("Missing journal detected",
		slog.String("run_id", run.ID),
		slog.String("issue_key", issueKey),
		slog.String("severity", string(cat.severity)),
		slog.String("heal_outcome", string(outcome)),
		slog.Bool("healed", healed),
	)
	return true, healed, nil
}

func (s *reconciliationService) heal(ctx context.Context, it reconcileItem, dryRun bool) (HealOutcome, error) {
	if dryRun {
		return HealNotAttempted, nil
	}
	if err := it.heal(ctx); err != nil {
		s.GetLogger(ctx).Warn("Auto-heal failed", slog.String("source_id", it.sourceID), slog.String("error", err.Error()))
		return HealFailed, err
	}
	return HealRecorded, nil
}

func (s *reconciliationService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return limit
}

func (s *reconciliationService) GetRun(ctx context.Context, runID string) (*domain.ReconciliationRun, error) {
	if runID == "" {
		return nil, apperrors.NewValidationError("run id is required")
	}
	run, err := s.repo.FindRunByID(ctx, runID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("reconciliation run " + runID)
		}
		return nil, fmt.Errorf("failed to get reconciliation run: %w", err)
	}
	return run, nil
}

func (s *reconciliationService) GetIssue(ctx context.Context, issueKey string) (*domain.ReconciliationIssue, error) {
	if issueKey == "" {
		return nil, apperrors.NewValidationError("issue key is required")
	}
	issue, err := s.repo.FindIssueByKey(ctx, issueKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("reconciliation issue " + issueKey)
		}
		return nil, fmt.Errorf("failed to get reconciliation issue: %w", err)
	}
	return issue, nil
}

func (s *reconciliationService) ListIssues(ctx context.Context, status domain.IssueStatus, limit int, nextToken *string) ([]domain.ReconciliationIssue, *string, error) {
	switch status {
	case "", domain.IssueOpen, domain.IssueResolved:
	default:
		return nil, nil, apperrors.NewValidationError("invalid issue status %q", status)
	}
	if limit <= 0 {
		limit = defaultIssuePageSize
	}
	if limit > maxIssuePageSize {
		limit = maxIssuePageSize
	}
	issues, next, err := s.repo.ListIssues(ctx, status, limit, nextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list reconciliation issues: %w", err)
	}
	return issues, next, nil
}

func transactionDetails(txn domain.Transaction, flow domain.FlowType) domain.Metadata {
	d := domain.Metadata{
		"flow_type":    string(flow),
		"buyer_id":     txn.BuyerID,
		"creator_id":   txn.CreatorID,
		"amount_minor": txn.AmountMinor,
		"currency":     txn.Currency,
		"provider":     txn.Provider,
	}
	if tipID, ok := txn.TipID(); ok {
		d["tip_id"] = tipID
	}
	return d
}
