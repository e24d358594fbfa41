package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/payledger/internal/apperrors"
	"github.com/SscSPs/payledger/internal/core/domain"
	portsrepo "github.com/SscSPs/payledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
	"github.com/SscSPs/payledger/internal/utils/money"
)

// Counterparty types recorded on postings.
const (
	CounterpartyBuyer    = "buyer"
	CounterpartyCreator  = "creator"
	CounterpartyPlatform = "platform"
	CounterpartyUser     = "user"
)

// flowRecorder turns domain events into journal requests. Every journal it
// writes uses a key derived only from the source, so any caller (webhook,
// reconciliation, a manual retry) ends up with the same single journal.
type flowRecorder struct {
	BaseService
	journal portssvc.JournalWriterSvc
	exists  portsrepo.JournalExistenceChecker
}

// NewFlowRecorder creates the settlement, refund, credit purchase and payout recorders.
func NewFlowRecorder(journal portssvc.JournalWriterSvc, exists portsrepo.JournalExistenceChecker, opts ...Option) portssvc.FlowRecorderSvc {
	r := &flowRecorder{journal: journal, exists: exists}
	applyOptions(&r.BaseService, opts)
	return r
}

var _ portssvc.FlowRecorderSvc = (*flowRecorder)(nil)

// RecordSettlement books a captured photo purchase or tip: the provider owes
// us the gross amount, the creator is owed the net and the platform keeps the fee.
func (r *flowRecorder) RecordSettlement(ctx context.Context, txn domain.Transaction) (*domain.FinancialJournal, error) {
	if err := checkAmounts(txn.ID, txn.AmountMinor, txn.PlatformFeeMinor); err != nil {
		return nil, err
	}
	flow := txn.SettlementFlow()
	net := txn.AmountMinor - txn.PlatformFeeMinor

	postings := []domain.Posting{
		leg(domain.AccountProviderClearing, domain.Debit, txn.AmountMinor, txn.Currency, CounterpartyBuyer, txn.BuyerID),
	}
	if net > 0 {
		postings = append(postings, leg(domain.AccountCreatorPayable, domain.Credit, net, txn.Currency, CounterpartyCreator, txn.CreatorID))
	}
	if txn.PlatformFeeMinor > 0 {
		postings = append(postings, leg(domain.AccountPlatformRevenue, domain.Credit, txn.PlatformFeeMinor, txn.Currency, CounterpartyPlatform, ""))
	}

	metadata := transactionMetadata(txn)
	return r.journal.Record(ctx, domain.JournalRequest{
		IdempotencyKey: domain.JournalKey(domain.SourceTransaction, txn.ID, flow),
		SourceKind:     domain.SourceTransaction,
		SourceID:       txn.ID,
		FlowType:       flow,
		Currency:       txn.Currency,
		Provider:       txn.Provider,
		Description:    fmt.Sprintf("%s settlement for transaction %s", flow, txn.ID),
		Metadata:       metadata,
		Postings:       postings,
	})
}

// RecordRefund reverses a settlement for the refunded amount. The platform fee
// is returned pro rata, rounded down; the creator absorbs the remainder.
func (r *flowRecorder) RecordRefund(ctx context.Context, txn domain.Transaction) (*domain.FinancialJournal, error) {
	if err := checkAmounts(txn.ID, txn.AmountMinor, txn.PlatformFeeMinor); err != nil {
		return nil, err
	}
	refund := txn.RefundAmount()
	feeShare := money.ProRata(txn.PlatformFeeMinor, refund, txn.AmountMinor)
	creatorShare := refund - feeShare

	postings := make([]domain.Posting, 0, 3)
	if creatorShare > 0 {
		postings = append(postings, leg(domain.AccountCreatorPayable, domain.Debit, creatorShare, txn.Currency, CounterpartyCreator, txn.CreatorID))
	}
	if feeShare > 0 {
		postings = append(postings, leg(domain.AccountPlatformRevenue, domain.Debit, feeShare, txn.Currency, CounterpartyPlatform, ""))
	}
	postings = append(postings, leg(domain.AccountProviderClearing, domain.Credit, refund, txn.Currency, CounterpartyBuyer, txn.BuyerID))

	kind, sourceID := txn.RefundSource()
	metadata := transactionMetadata(txn)
	metadata["refund_amount_minor"] = refund
	return r.journal.Record(ctx, domain.JournalRequest{
		IdempotencyKey: domain.JournalKey(kind, sourceID, domain.FlowRefund),
		SourceKind:     kind,
		SourceID:       sourceID,
		FlowType:       domain.FlowRefund,
		Currency:       txn.Currency,
		Provider:       txn.Provider,
		Description:    fmt.Sprintf("refund for transaction %s", txn.ID),
		Metadata:       metadata,
		Postings:       postings,
	})
}

// RecordCreditPurchase books a drop-in credit bundle as a liability to the user
// until the credits are consumed.
func (r *flowRecorder) RecordCreditPurchase(ctx context.Context, purchase domain.CreditPurchase) (*domain.FinancialJournal, error) {
	if purchase.AmountMinor <= 0 {
		return nil, apperrors.NewValidationError("credit purchase %s has non-positive amount %d", purchase.ID, purchase.AmountMinor)
	}
	return r.journal.Record(ctx, domain.JournalRequest{
		IdempotencyKey: domain.JournalKey(domain.SourceCreditPurchase, purchase.ID, domain.FlowDropInCreditPurchase),
		SourceKind:     domain.SourceCreditPurchase,
		SourceID:       purchase.ID,
		FlowType:       domain.FlowDropInCreditPurchase,
		Currency:       purchase.Currency,
		Provider:       purchase.Provider,
		Description:    fmt.Sprintf("drop-in credit purchase %s (%d credits)", purchase.ID, purchase.Credits),
		Metadata: domain.Metadata{
			"credit_purchase_id": purchase.ID,
			"user_id":            purchase.UserID,
			"credits":            purchase.Credits,
		},
		Postings: []domain.Posting{
			leg(domain.AccountProviderClearing, domain.Debit, purchase.AmountMinor, purchase.Currency, CounterpartyUser, purchase.UserID),
			leg(domain.AccountDropInCreditLiability, domain.Credit, purchase.AmountMinor, purchase.Currency, CounterpartyUser, purchase.UserID),
		},
	})
}

// RecordPayout moves money owed to a creator into paid-out.
func (r *flowRecorder) RecordPayout(ctx context.Context, payout domain.Payout) (*domain.FinancialJournal, error) {
	if payout.AmountMinor <= 0 {
		return nil, apperrors.NewValidationError("payout %s has non-positive amount %d", payout.ID, payout.AmountMinor)
	}
	return r.journal.Record(ctx, domain.JournalRequest{
		IdempotencyKey: domain.JournalKey(domain.SourcePayout, payout.ID, domain.FlowPayout),
		SourceKind:     domain.SourcePayout,
		SourceID:       payout.ID,
		FlowType:       domain.FlowPayout,
		Currency:       payout.Currency,
		Provider:       payout.Provider,
		Description:    fmt.Sprintf("payout %s to wallet %s", payout.ID, payout.WalletID),
		Metadata: domain.Metadata{
			"payout_id": payout.ID,
			"wallet_id": payout.WalletID,
		},
		Postings: []domain.Posting{
			leg(domain.AccountCreatorPayable, domain.Debit, payout.AmountMinor, payout.Currency, CounterpartyCreator, payout.WalletOwnerID),
			leg(domain.AccountCreatorPayouts, domain.Credit, payout.AmountMinor, payout.Currency, CounterpartyCreator, payout.WalletOwnerID),
		},
	})
}

func (r *flowRecorder) HasSettlementJournal(ctx context.Context, txn domain.Transaction) (bool, error) {
	return r.has(ctx, domain.SourceTransaction, txn.ID, txn.SettlementFlow(), domain.Metadata{"transaction_id": txn.ID})
}

func (r *flowRecorder) HasRefundJournal(ctx context.Context, txn domain.Transaction) (bool, error) {
	kind, sourceID := txn.RefundSource()
	return r.has(ctx, kind, sourceID, domain.FlowRefund, domain.Metadata{"transaction_id": txn.ID})
}

func (r *flowRecorder) HasCreditPurchaseJournal(ctx context.Context, purchase domain.CreditPurchase) (bool, error) {
	return r.has(ctx, domain.SourceCreditPurchase, purchase.ID, domain.FlowDropInCreditPurchase, domain.Metadata{"credit_purchase_id": purchase.ID})
}

func (r *flowRecorder) HasPayoutJournal(ctx context.Context, payout domain.Payout) (bool, error) {
	return r.has(ctx, domain.SourcePayout, payout.ID, domain.FlowPayout, domain.Metadata{"payout_id": payout.ID})
}

// has checks the exact source first and only falls back to metadata
// containment on a miss. The fallback finds journals written before the
// source columns were populated consistently.
func (r *flowRecorder) has(ctx context.Context, kind domain.SourceKind, sourceID string, flow domain.FlowType, subset domain.Metadata) (bool, error) {
	found, err := r.exists.ExistsForSource(ctx, kind, sourceID, flow)
	if err != nil {
		return false, fmt.Errorf("failed to check journal for %s: %w", domain.JournalKey(kind, sourceID, flow), err)
	}
	if found {
		return true, nil
	}
	found, err = r.exists.ExistsByMetadata(ctx, flow, subset)
	if err != nil {
		return false, fmt.Errorf("failed to check journal metadata for %s: %w", domain.JournalKey(kind, sourceID, flow), err)
	}
	if found {
		r.GetLogger(ctx).Debug("Journal matched by metadata fallback",
			slog.String("source_kind", string(kind)),
			slog.String("source_id", sourceID),
			slog.String("flow_type", string(flow)),
		)
	}
	return found, nil
}

func leg(account domain.AccountCode, dir domain.Direction, amount int64, currency, counterpartyType, counterpartyID string) domain.Posting {
	return domain.Posting{
		AccountCode:      account,
		Direction:        dir,
		AmountMinor:      amount,
		Currency:         currency,
		CounterpartyType: counterpartyType,
		CounterpartyID:   counterpartyID,
	}
}

func checkAmounts(id string, amount, fee int64) error {
	if amount <= 0 {
		return apperrors.NewValidationError("transaction %s has non-positive amount %d", id, amount)
	}
	if fee < 0 || fee > amount {
		return apperrors.NewValidationError("transaction %s has platform fee %d outside [0, %d]", id, fee, amount)
	}
	return nil
}

func transactionMetadata(txn domain.Transaction) domain.Metadata {
	m := domain.Metadata{
		"transaction_id": txn.ID,
		"buyer_id":       txn.BuyerID,
		"creator_id":     txn.CreatorID,
		"kind":           string(txn.Kind),
	}
	if tipID, ok := txn.TipID(); ok {
		m["tip_id"] = tipID
	}
	return m
}
