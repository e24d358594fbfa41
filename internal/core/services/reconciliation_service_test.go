package services_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/payledger/internal/apperrors"
	"github.com/SscSPs/payledger/internal/core/domain"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
	"github.com/SscSPs/payledger/internal/core/services"
	"github.com/SscSPs/payledger/internal/repositories/memory"
)

// failingSettlementRecorder records everything except settlements.
type failingSettlementRecorder struct {
	portssvc.FlowRecorderSvc
}

func (failingSettlementRecorder) RecordSettlement(context.Context, domain.Transaction) (*domain.FinancialJournal, error) {
	return nil, errors.New("journal store rejected insert")
}

// brokenTransactions fails every transaction scan.
type brokenTransactions struct {
	*memory.Store
}

func (brokenTransactions) ListTransactionsByStatus(context.Context, domain.TransactionStatus, int) ([]domain.Transaction, error) {
	return nil, errors.New(`relation "transactions" does not exist`)
}

// runCapture remembers the id of the last run created.
type runCapture struct {
	*memory.Store
	lastRunID string
}

func (r *runCapture) CreateRun(ctx context.Context, run domain.ReconciliationRun) error {
	r.lastRunID = run.ID
	return r.Store.CreateRun(ctx, run)
}

// seedReconcileFixture stores three settled photo purchases without journals
// plus a payout and a credit purchase that are already booked.
func seedReconcileFixture(t *testing.T, store *memory.Store, recorder portssvc.FlowRecorderSvc) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		store.PutTransaction(photoPurchase(fmt.Sprintf("txn_%d", i)))
	}

	payout := domain.Payout{ID: "po_1", WalletID: "wallet_1", WalletOwnerID: "creator_42", Status: domain.PayoutCompleted,
		Provider: domain.ProviderStripe, AmountMinor: 5000, Currency: "USD"}
	store.PutPayout(payout)
	_, err := recorder.RecordPayout(ctx, payout)
	require.NoError(t, err)

	purchase := domain.CreditPurchase{ID: "cp_1", UserID: "user_3", Status: domain.CreditPurchaseActive,
		Provider: domain.ProviderStripe, Credits: 5, AmountMinor: 1500, Currency: "USD"}
	store.PutCreditPurchase(purchase)
	_, err = recorder.RecordCreditPurchase(ctx, purchase)
	require.NoError(t, err)
}

func newReconciler(store *memory.Store, recorder portssvc.FlowRecorderSvc) portssvc.ReconciliationSvcFacade {
	return services.NewReconciliationService(
		services.ReconcilerConfig{Concurrency: 4},
		store, store, store, store, recorder,
		services.WithClock(fixedClock(testEpoch)),
	)
}

func TestReconciliation_HealsMissingJournals(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	recorder := newRecorder(store)
	seedReconcileFixture(t, store, recorder)
	reconciler := newReconciler(store, recorder)

	run, err := reconciler.Run(ctx, portssvc.RunOptions{TriggerSource: services.TriggerHTTP})
	require.NoError(t, err)

	assert.Equal(t, domain.RunCompleted, run.Status)
	assert.NotNil(t, run.CompletedAt)
	assert.Equal(t, 5, run.Checked)
	assert.Equal(t, 3, run.Issues)
	assert.Equal(t, 3, run.AutoHealed)
	assert.Equal(t, services.DefaultReconcileLimit, run.Limit)
	assert.Equal(t, domain.CategoryCounts{Checked: 3, Issues: 3, AutoHealed: 3}, run.Categories[domain.CategorySettlement])
	assert.Equal(t, domain.CategoryCounts{Checked: 1}, run.Categories[domain.CategoryPayout])
	assert.Equal(t, domain.CategoryCounts{Checked: 1}, run.Categories[domain.CategoryCreditPurchase])
	assert.Equal(t, domain.CategoryCounts{}, run.Categories[domain.CategoryRefund])

	assert.Equal(t, 5, store.JournalCount())
	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("txn_%d", i)
		journals, err := store.ListJournalsBySource(ctx, domain.SourceTransaction, id)
		require.NoError(t, err)
		require.Len(t, journals, 1)
		assert.Equal(t, domain.FlowPhotoPurchase, journals[0].FlowType)

		issue, err := store.FindIssueByKey(ctx, domain.IssueKey(services.IssueMissingSettlementJournal, domain.SourceTransaction, id))
		require.NoError(t, err)
		assert.Equal(t, domain.IssueResolved, issue.Status)
		assert.True(t, issue.AutoHealed)
		assert.Equal(t, run.ID, issue.RunID)
		assert.Equal(t, string(services.HealRecorded), issue.Details["heal_outcome"])
	}

	stored, err := reconciler.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, stored.Status)
	assert.Equal(t, services.TriggerHTTP, stored.TriggerSource)

	second, err := reconciler.Run(ctx, portssvc.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 5, second.Checked)
	assert.Zero(t, second.Issues)
	assert.Zero(t, second.AutoHealed)
	assert.Equal(t, 5, store.JournalCount())
}

func TestReconciliation_SkipsAlreadyJournaledPurchases(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	recorder := newRecorder(store)
	for i := 1; i <= 5; i++ {
		store.PutTransaction(photoPurchase(fmt.Sprintf("txn_%d", i)))
	}
	for _, id := range []string{"txn_1", "txn_2"} {
		_, err := recorder.RecordSettlement(ctx, photoPurchase(id))
		require.NoError(t, err)
	}
	reconciler := newReconciler(store, recorder)

	run, err := reconciler.Run(ctx, portssvc.RunOptions{Limit: 10, TriggerSource: services.TriggerHTTP})
	require.NoError(t, err)

	assert.Equal(t, 10, run.Limit)
	assert.Equal(t, 5, run.Checked)
	assert.Equal(t, 3, run.Issues)
	assert.Equal(t, 3, run.AutoHealed)
	assert.Equal(t, domain.CategoryCounts{Checked: 5, Issues: 3, AutoHealed: 3}, run.Categories[domain.CategorySettlement])
	assert.Equal(t, 5, store.JournalCount())

	for i := 1; i <= 5; i++ {
		id := fmt.Sprintf("txn_%d", i)
		journals, err := store.ListJournalsBySource(ctx, domain.SourceTransaction, id)
		require.NoError(t, err)
		require.Len(t, journals, 1, id)
		assert.Equal(t, domain.FlowPhotoPurchase, journals[0].FlowType)

		issue, err := store.FindIssueByKey(ctx, domain.IssueKey(services.IssueMissingSettlementJournal, domain.SourceTransaction, id))
		if i <= 2 {
			assert.ErrorIs(t, err, apperrors.ErrNotFound, "%s was already journaled", id)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, domain.IssueResolved, issue.Status)
		assert.True(t, issue.AutoHealed)
	}

	second, err := reconciler.Run(ctx, portssvc.RunOptions{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, second.Checked)
	assert.Zero(t, second.Issues)
	assert.Zero(t, second.AutoHealed)
	assert.Equal(t, 5, store.JournalCount())
}

func TestReconciliation_GetIssue(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	recorder := newRecorder(store)
	store.PutTransaction(photoPurchase("txn_9"))
	reconciler := newReconciler(store, recorder)

	_, err := reconciler.Run(ctx, portssvc.RunOptions{DryRun: true})
	require.NoError(t, err)

	key := domain.IssueKey(services.IssueMissingSettlementJournal, domain.SourceTransaction, "txn_9")
	issue, err := reconciler.GetIssue(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueOpen, issue.Status)
	assert.Equal(t, "txn_9", issue.SourceID)

	_, err = reconciler.GetIssue(ctx, "missing_payout_journal:payout:po_404")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = reconciler.GetIssue(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestReconciliation_DryRunDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	recorder := newRecorder(store)
	seedReconcileFixture(t, store, recorder)
	reconciler := newReconciler(store, recorder)

	run, err := reconciler.Run(ctx, portssvc.RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, run.DryRun)
	assert.Equal(t, 3, run.Issues)
	assert.Zero(t, run.AutoHealed)
	assert.Equal(t, 2, store.JournalCount())

	issue, err := store.FindIssueByKey(ctx, domain.IssueKey(services.IssueMissingSettlementJournal, domain.SourceTransaction, "txn_1"))
	require.NoError(t, err)
	assert.Equal(t, domain.IssueOpen, issue.Status)
	assert.False(t, issue.AutoHealed)
	assert.Equal(t, string(services.HealNotAttempted), issue.Details["heal_outcome"])

	again, err := reconciler.Run(ctx, portssvc.RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 3, again.Issues)

	issue, err = store.FindIssueByKey(ctx, issue.IssueKey)
	require.NoError(t, err)
	assert.Equal(t, 2, issue.DetectionCount)
	assert.Equal(t, domain.IssueOpen, issue.Status)
}

func TestReconciliation_FailedHealLeavesIssueOpen(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	recorder := newRecorder(store)
	seedReconcileFixture(t, store, recorder)
	reconciler := newReconciler(store, failingSettlementRecorder{recorder})

	run, err := reconciler.Run(ctx, portssvc.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, run.Status)
	assert.Equal(t, 3, run.Issues)
	assert.Zero(t, run.AutoHealed)

	key := domain.IssueKey(services.IssueMissingSettlementJournal, domain.SourceTransaction, "txn_2")
	issue, err := store.FindIssueByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueOpen, issue.Status)
	assert.Equal(t, domain.SeverityError, issue.Severity)
	assert.Equal(t, string(services.HealFailed), issue.Details["heal_outcome"])
	assert.Contains(t, issue.Details["heal_error"], "journal store rejected insert")

	// The journal shows up through another path; the next run closes the issue.
	_, err = recorder.RecordSettlement(ctx, photoPurchase("txn_2"))
	require.NoError(t, err)

	next, err := reconciler.Run(ctx, portssvc.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, next.Issues)

	issue, err = store.FindIssueByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueResolved, issue.Status)
	assert.False(t, issue.AutoHealed)
	assert.NotNil(t, issue.ResolvedAt)
}

func TestReconciliation_StorageFailureAbortsRun(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	recorder := newRecorder(store)
	runs := &runCapture{Store: store}

	reconciler := services.NewReconciliationService(services.ReconcilerConfig{}, runs, brokenTransactions{store}, store, store, recorder)

	run, err := reconciler.Run(ctx, portssvc.RunOptions{})
	assert.Nil(t, run)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
	assert.Contains(t, err.Error(), "transactions")

	require.NotEmpty(t, runs.lastRunID)
	stored, err := store.FindRunByID(ctx, runs.lastRunID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunProcessing, stored.Status)
	assert.Nil(t, stored.CompletedAt)
}

func TestReconciliation_LimitIsClamped(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	recorder := newRecorder(store)
	seedReconcileFixture(t, store, recorder)
	reconciler := newReconciler(store, recorder)

	run, err := reconciler.Run(ctx, portssvc.RunOptions{Limit: 2, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, run.Limit)
	assert.Equal(t, 2, run.Categories[domain.CategorySettlement].Checked)

	run, err = reconciler.Run(ctx, portssvc.RunOptions{Limit: 50000, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, services.MaxReconcileLimit, run.Limit)
}

func TestReconciliation_RefundCategory(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	recorder := newRecorder(store)
	txn := photoPurchase("txn_refunded")
	txn.Status = domain.TransactionRefunded
	txn.Metadata = domain.Metadata{"tip_id": "tip_1"}
	store.PutTransaction(txn)
	reconciler := newReconciler(store, recorder)

	run, err := reconciler.Run(ctx, portssvc.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryCounts{Checked: 1, Issues: 1, AutoHealed: 1}, run.Categories[domain.CategoryRefund])

	journals, err := store.ListJournalsBySource(ctx, domain.SourceTip, "tip_1")
	require.NoError(t, err)
	require.Len(t, journals, 1)
	assert.Equal(t, domain.FlowRefund, journals[0].FlowType)
}

func TestReconciliation_GetRunAndListIssues(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	recorder := newRecorder(store)
	seedReconcileFixture(t, store, recorder)
	reconciler := newReconciler(store, failingSettlementRecorder{recorder})

	_, err := reconciler.GetRun(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = reconciler.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = reconciler.Run(ctx, portssvc.RunOptions{})
	require.NoError(t, err)

	_, _, err = reconciler.ListIssues(ctx, "bogus", 10, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	page, next, err := reconciler.ListIssues(ctx, domain.IssueOpen, 2, nil)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	require.NotNil(t, next)

	rest, next, err := reconciler.ListIssues(ctx, domain.IssueOpen, 2, next)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
	assert.Nil(t, next)
	assert.NotEqual(t, page[0].ID, rest[0].ID)
	assert.NotEqual(t, page[1].ID, rest[0].ID)

	resolved, _, err := reconciler.ListIssues(ctx, domain.IssueResolved, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, resolved)
}
