package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/payledger/internal/apperrors"
	"github.com/SscSPs/payledger/internal/core/domain"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
	"github.com/SscSPs/payledger/internal/core/services"
	"github.com/SscSPs/payledger/internal/repositories/memory"
)

func newDispatcher(store *memory.Store) portssvc.WebhookDispatcherSvc {
	return services.NewWebhookDispatcher(store, store, store, newRecorder(store), services.WithClock(fixedClock(testEpoch)))
}

func TestDispatcher_RefundBeforeSettlementKeepsRefundedStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	d := newDispatcher(store)
	txn := photoPurchase("txn_1")
	txn.Status = domain.TransactionPending
	store.PutTransaction(txn)

	err := d.Dispatch(ctx, domain.ProviderStripe, domain.ProviderEvent{Kind: domain.EventPaymentRefunded, Reference: txn.ProviderReference, AmountMinor: 300})
	require.NoError(t, err)

	err = d.Dispatch(ctx, domain.ProviderStripe, domain.ProviderEvent{Kind: domain.EventPaymentSucceeded, Reference: txn.ProviderReference})
	require.NoError(t, err)

	stored, err := store.FindTransactionByID(ctx, "txn_1")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionRefunded, stored.Status)
	assert.Equal(t, int64(300), stored.RefundedAmountMinor)
	assert.Equal(t, 2, store.JournalCount())
}

func TestDispatcher_SecondRefundAmountKeepsFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	d := newDispatcher(store)
	store.PutTransaction(photoPurchase("txn_1"))

	refund := domain.ProviderEvent{Kind: domain.EventPaymentRefunded, Reference: "pi_txn_1", AmountMinor: 400}
	require.NoError(t, d.Dispatch(ctx, domain.ProviderStripe, refund))
	refund.AmountMinor = 900
	require.NoError(t, d.Dispatch(ctx, domain.ProviderStripe, refund))

	stored, err := store.FindTransactionByID(ctx, "txn_1")
	require.NoError(t, err)
	assert.Equal(t, int64(400), stored.RefundedAmountMinor)

	journals, err := store.ListJournalsBySource(ctx, domain.SourceTransaction, "txn_1")
	require.NoError(t, err)
	require.Len(t, journals, 1)
	assert.EqualValues(t, 400, journals[0].Metadata["refund_amount_minor"])
}

func TestDispatcher_PayoutLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	d := newDispatcher(store)
	store.PutPayout(domain.Payout{ID: "po_ok", WalletOwnerID: "creator_42", Status: domain.PayoutPending,
		Provider: domain.ProviderPaystack, ProviderReference: "trf_ok", AmountMinor: 5000, Currency: "NGN"})
	store.PutPayout(domain.Payout{ID: "po_bad", WalletOwnerID: "creator_42", Status: domain.PayoutPending,
		Provider: domain.ProviderPaystack, ProviderReference: "trf_bad", AmountMinor: 5000, Currency: "NGN"})

	require.NoError(t, d.Dispatch(ctx, domain.ProviderPaystack, domain.ProviderEvent{Kind: domain.EventPayoutCompleted, Reference: "trf_ok"}))
	// A late failure for a completed payout is ignored.
	require.NoError(t, d.Dispatch(ctx, domain.ProviderPaystack, domain.ProviderEvent{Kind: domain.EventPayoutFailed, Reference: "trf_ok", FailureReason: "late"}))

	ok, err := store.FindPayoutByID(ctx, "po_ok")
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutCompleted, ok.Status)

	require.NoError(t, d.Dispatch(ctx, domain.ProviderPaystack, domain.ProviderEvent{Kind: domain.EventPayoutFailed, Reference: "trf_bad", FailureReason: "account closed"}))
	bad, err := store.FindPayoutByID(ctx, "po_bad")
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutFailed, bad.Status)
	assert.Equal(t, "account closed", bad.FailureReason)

	err = d.Dispatch(ctx, domain.ProviderPaystack, domain.ProviderEvent{Kind: domain.EventPayoutCompleted, Reference: "trf_bad"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Only the completed payout moved money.
	assert.Equal(t, 1, store.JournalCount())
}

func TestDispatcher_CreditPurchaseActivation(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	d := newDispatcher(store)
	store.PutCreditPurchase(domain.CreditPurchase{ID: "cp_1", UserID: "user_3", Status: domain.CreditPurchasePending,
		Provider: domain.ProviderFlutterwave, ProviderReference: "tx_ref_1", Credits: 10, AmountMinor: 2500, Currency: "NGN"})

	event := domain.ProviderEvent{Kind: domain.EventPaymentSucceeded, Reference: "tx_ref_1", Purchase: services.PurchaseDropInCredit}
	require.NoError(t, d.Dispatch(ctx, domain.ProviderFlutterwave, event))
	require.NoError(t, d.Dispatch(ctx, domain.ProviderFlutterwave, event))

	purchase, err := store.FindCreditPurchaseByID(ctx, "cp_1")
	require.NoError(t, err)
	assert.Equal(t, domain.CreditPurchaseActive, purchase.Status)
	assert.Equal(t, 1, store.JournalCount())
}

func TestDispatcher_NonFinancialEvents(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	d := newDispatcher(store)

	assert.NoError(t, d.Dispatch(ctx, domain.ProviderStripe, domain.ProviderEvent{Kind: domain.EventSubscriptionChanged}))
	assert.NoError(t, d.Dispatch(ctx, domain.ProviderStripe, domain.ProviderEvent{Kind: domain.EventIgnored, EventType: "customer.created"}))
	assert.ErrorIs(t, d.Dispatch(ctx, domain.ProviderStripe, domain.ProviderEvent{Kind: "mystery"}), apperrors.ErrValidation)
	assert.Zero(t, store.JournalCount())
}
