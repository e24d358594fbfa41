package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/payledger/internal/apperrors"
	"github.com/SscSPs/payledger/internal/core/domain"
	portsrepo "github.com/SscSPs/payledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
)

// PurchaseDropInCredit marks a payment event that pays for a credit bundle.
const PurchaseDropInCredit = "drop_in_credit"

// webhookDispatcher applies a normalised provider event: it updates the
// source-of-truth row found by provider reference, then asks the recorder for
// the matching journal. Both steps are idempotent so a redelivered event
// converges on the same state.
type webhookDispatcher struct {
	BaseService
	transactions portsrepo.TransactionRepository
	payouts      portsrepo.PayoutRepository
	purchases    portsrepo.CreditPurchaseRepository
	recorder     portssvc.FlowRecorderSvc
}

// NewWebhookDispatcher creates the dispatcher used by webhook ingestion.
func NewWebhookDispatcher(
	transactions portsrepo.TransactionRepository,
	payouts portsrepo.PayoutRepository,
	purchases portsrepo.CreditPurchaseRepository,
	recorder portssvc.FlowRecorderSvc,
	opts ...Option,
) portssvc.WebhookDispatcherSvc {
	d := &webhookDispatcher{transactions: transactions, payouts: payouts, purchases: purchases, recorder: recorder}
	applyOptions(&d.BaseService, opts)
	return d
}

var _ portssvc.WebhookDispatcherSvc = (*webhookDispatcher)(nil)

func (d *webhookDispatcher) Dispatch(ctx context.Context, provider string, event domain.ProviderEvent) error {
	logger := d.GetLogger(ctx).With(
		slog.String("provider", provider),
		slog.String("event_id", event.EventID),
		slog.String("event_kind", string(event.Kind)),
		slog.String("reference", event.Reference),
	)

	switch event.Kind {
	case domain.EventPaymentSucceeded:
		if event.Purchase == PurchaseDropInCredit {
			return d.activateCreditPurchase(ctx, provider, event)
		}
		return d.settle(ctx, provider, event)
	case domain.EventCreditPurchaseActivated:
		return d.activateCreditPurchase(ctx, provider, event)
	case domain.EventPaymentRefunded:
		return d.refund(ctx, provider, event)
	case domain.EventPayoutCompleted:
		return d.completePayout(ctx, provider, event)
	case domain.EventPayoutFailed:
		return d.failPayout(ctx, provider, event)
	case domain.EventSubscriptionChanged:
		logger.Info("Subscription lifecycle event acknowledged")
		return nil
	case domain.EventIgnored:
		logger.Debug("Webhook event type not handled", slog.String("event_type", event.EventType))
		return nil
	default:
		return apperrors.NewValidationError("unknown event kind %q", event.Kind)
	}
}

func (d *webhookDispatcher) settle(ctx context.Context, provider string, event domain.ProviderEvent) error {
	txn, err := d.transactions.FindTransactionByProviderReference(ctx, provider, event.Reference)
	if err != nil {
		return fmt.Errorf("failed to find transaction for reference %q: %w", event.Reference, err)
	}
	// A refund may have arrived first; the settlement journal is still owed
	// but the status must not move backwards.
	if txn.Status != domain.TransactionSucceeded && txn.Status != domain.TransactionRefunded {
		if err := d.transactions.UpdateTransactionStatus(ctx, txn.ID, domain.TransactionSucceeded, txn.RefundedAmountMinor, d.Now()); err != nil {
			return fmt.Errorf("failed to mark transaction %s succeeded: %w", txn.ID, err)
		}
		txn.Status = domain.TransactionSucceeded
	}
	if _, err := d.recorder.RecordSettlement(ctx, *txn); err != nil {
		return fmt.Errorf("failed to record settlement for transaction %s: %w", txn.ID, err)
	}
	return nil
}

func (d *webhookDispatcher) refund(ctx context.Context, provider string, event domain.ProviderEvent) error {
	txn, err := d.transactions.FindTransactionByProviderReference(ctx, provider, event.Reference)
	if err != nil {
		return fmt.Errorf("failed to find transaction for reference %q: %w", event.Reference, err)
	}
	refunded := event.AmountMinor
	if refunded <= 0 || refunded > txn.AmountMinor {
		refunded = txn.AmountMinor
	}
	if txn.Status != domain.TransactionRefunded || txn.RefundedAmountMinor != refunded {
		if txn.Status == domain.TransactionRefunded {
			// The refund journal is keyed per source, so a second refund amount
			// cannot be booked automatically.
			d.GetLogger(ctx).Warn("Refund amount differs from recorded refund; keeping the first",
				slog.String("transaction_id", txn.ID),
				slog.Int64("recorded_minor", txn.RefundedAmountMinor),
				slog.Int64("event_minor", refunded),
			)
			refunded = txn.RefundedAmountMinor
		} else {
			if err := d.transactions.UpdateTransactionStatus(ctx, txn.ID, domain.TransactionRefunded, refunded, d.Now()); err != nil {
				return fmt.Errorf("failed to mark transaction %s refunded: %w", txn.ID, err)
			}
			txn.Status = domain.TransactionRefunded
		}
	}
	txn.RefundedAmountMinor = refunded
	if _, err := d.recorder.RecordRefund(ctx, *txn); err != nil {
		return fmt.Errorf("failed to record refund for transaction %s: %w", txn.ID, err)
	}
	return nil
}

func (d *webhookDispatcher) activateCreditPurchase(ctx context.Context, provider string, event domain.ProviderEvent) error {
	purchase, err := d.purchases.FindCreditPurchaseByProviderReference(ctx, provider, event.Reference)
	if err != nil {
		return fmt.Errorf("failed to find credit purchase for reference %q: %w", event.Reference, err)
	}
	if purchase.Status == domain.CreditPurchasePending {
		if err := d.purchases.UpdateCreditPurchaseStatus(ctx, purchase.ID, domain.CreditPurchaseActive, d.Now()); err != nil {
			return fmt.Errorf("failed to activate credit purchase %s: %w", purchase.ID, err)
		}
		purchase.Status = domain.CreditPurchaseActive
	}
	if _, err := d.recorder.RecordCreditPurchase(ctx, *purchase); err != nil {
		return fmt.Errorf("failed to record credit purchase %s: %w", purchase.ID, err)
	}
	return nil
}

func (d *webhookDispatcher) completePayout(ctx context.Context, provider string, event domain.ProviderEvent) error {
	payout, err := d.payouts.FindPayoutByProviderReference(ctx, provider, event.Reference)
	if err != nil {
		return fmt.Errorf("failed to find payout for reference %q: %w", event.Reference, err)
	}
	if payout.Status == domain.PayoutFailed {
		return apperrors.NewAppError(http.StatusConflict, fmt.Sprintf("payout %s already failed", payout.ID), apperrors.ErrConflict)
	}
	if payout.Status != domain.PayoutCompleted {
		if err := d.payouts.UpdatePayoutStatus(ctx, payout.ID, domain.PayoutCompleted, "", d.Now()); err != nil {
			return fmt.Errorf("failed to complete payout %s: %w", payout.ID, err)
		}
		payout.Status = domain.PayoutCompleted
	}
	if _, err := d.recorder.RecordPayout(ctx, *payout); err != nil {
		return fmt.Errorf("failed to record payout %s: %w", payout.ID, err)
	}
	return nil
}

// failPayout only updates the payout row; no money moved.
func (d *webhookDispatcher) failPayout(ctx context.Context, provider string, event domain.ProviderEvent) error {
	payout, err := d.payouts.FindPayoutByProviderReference(ctx, provider, event.Reference)
	if err != nil {
		return fmt.Errorf("failed to find payout for reference %q: %w", event.Reference, err)
	}
	if payout.Status == domain.PayoutCompleted {
		d.GetLogger(ctx).Warn("Ignoring failure for completed payout", slog.String("payout_id", payout.ID))
		return nil
	}
	if payout.Status == domain.PayoutFailed {
		return nil
	}
	if err := d.payouts.UpdatePayoutStatus(ctx, payout.ID, domain.PayoutFailed, event.FailureReason, d.Now()); err != nil {
		return fmt.Errorf("failed to mark payout %s failed: %w", payout.ID, err)
	}
	return nil
}
