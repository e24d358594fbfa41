package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/payledger/internal/apperrors"
	"github.com/SscSPs/payledger/internal/core/domain"
	"github.com/SscSPs/payledger/internal/repositories/memory"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestStore_InsertJournalIfAbsent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	journal := domain.FinancialJournal{ID: "j-1", IdempotencyKey: "payout:po_1:payout", SourceKind: domain.SourcePayout, SourceID: "po_1", FlowType: domain.FlowPayout}
	stored, created, err := store.InsertJournalIfAbsent(ctx, journal)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "j-1", stored.ID)

	journal.ID = "j-2"
	stored, created, err = store.InsertJournalIfAbsent(ctx, journal)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "j-1", stored.ID)
	assert.Equal(t, 1, store.JournalCount())

	_, err = store.FindJournalByID(ctx, "j-2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_ReturnedJournalIsACopy(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	_, _, err := store.InsertJournalIfAbsent(ctx, domain.FinancialJournal{ID: "j-1", IdempotencyKey: "k", Metadata: domain.Metadata{"a": "b"}})
	require.NoError(t, err)

	got, err := store.FindJournalByID(ctx, "j-1")
	require.NoError(t, err)
	got.Metadata["a"] = "mutated"

	again, err := store.FindJournalByIdempotencyKey(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "b", again.Metadata["a"])
}

func TestStore_UpsertIssueKeepStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	key := "missing_payout_journal:payout:po_1"

	resolvedAt := t0
	_, err := store.UpsertIssue(ctx, domain.ReconciliationIssue{IssueKey: key, Status: domain.IssueResolved, AutoHealed: true, ResolvedAt: &resolvedAt, LastDetectedAt: t0}, false)
	require.NoError(t, err)

	// A dry run re-detects without touching the status.
	issue, err := store.UpsertIssue(ctx, domain.ReconciliationIssue{IssueKey: key, Status: domain.IssueOpen, RunID: "run-2", LastDetectedAt: t0.Add(time.Minute)}, true)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueResolved, issue.Status)
	assert.True(t, issue.AutoHealed)
	assert.Equal(t, 2, issue.DetectionCount)
	assert.Equal(t, "run-2", issue.RunID)

	issue, err = store.UpsertIssue(ctx, domain.ReconciliationIssue{IssueKey: key, Status: domain.IssueOpen, LastDetectedAt: t0.Add(2 * time.Minute)}, false)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueOpen, issue.Status)
	assert.Nil(t, issue.ResolvedAt)
	assert.Equal(t, 3, issue.DetectionCount)
}

func TestStore_ResolveIssue(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	ok, err := store.ResolveIssue(ctx, "missing", t0)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.UpsertIssue(ctx, domain.ReconciliationIssue{IssueKey: "k", Status: domain.IssueOpen}, false)
	require.NoError(t, err)

	ok, err = store.ResolveIssue(ctx, "k", t0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.ResolveIssue(ctx, "k", t0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_CompleteRunOnlyOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	run := domain.ReconciliationRun{ID: "run-1", RunKey: "http:1", Status: domain.RunProcessing, CreatedAt: t0}
	require.NoError(t, store.CreateRun(ctx, run))

	completedAt := t0.Add(time.Second)
	run.Status = domain.RunCompleted
	run.CompletedAt = &completedAt
	run.Checked = 5
	require.NoError(t, store.CompleteRun(ctx, run))

	err := store.CompleteRun(ctx, run)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	stored, err := store.FindRunByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Checked)
}

func TestStore_ListIssuesPaginates(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	for i, key := range []string{"a", "b", "c", "d", "e"} {
		_, err := store.UpsertIssue(ctx, domain.ReconciliationIssue{IssueKey: key, Status: domain.IssueOpen, LastDetectedAt: t0.Add(time.Duration(i) * time.Minute)}, false)
		require.NoError(t, err)
	}

	var seen []string
	var token *string
	for range 3 {
		page, next, err := store.ListIssues(ctx, domain.IssueOpen, 2, token)
		require.NoError(t, err)
		for _, issue := range page {
			seen = append(seen, issue.IssueKey)
		}
		token = next
		if next == nil {
			break
		}
	}
	assert.Equal(t, []string{"e", "d", "c", "b", "a"}, seen)

	bad := "!!!"
	_, _, err := store.ListIssues(ctx, "", 2, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestStore_ListTransactionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	for i, id := range []string{"txn_old", "txn_mid", "txn_new"} {
		store.PutTransaction(domain.Transaction{ID: id, Status: domain.TransactionSucceeded, Timestamps: domain.Timestamps{UpdatedAt: t0.Add(time.Duration(i) * time.Hour)}})
	}
	store.PutTransaction(domain.Transaction{ID: "txn_pending", Status: domain.TransactionPending, Timestamps: domain.Timestamps{UpdatedAt: t0.Add(time.Hour * 10)}})

	txns, err := store.ListTransactionsByStatus(ctx, domain.TransactionSucceeded, 2)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "txn_new", txns[0].ID)
	assert.Equal(t, "txn_mid", txns[1].ID)
}
