package services

import (
	"context"

	"github.com/SscSPs/payledger/internal/core/domain"
)

// FlowRecorderSvc translates domain events into journal postings with
// deterministic idempotency keys, and answers the matching existence checks.
type FlowRecorderSvc interface {
	RecordSettlement(ctx context.Context, txn domain.Transaction) (*domain.FinancialJournal, error)
	RecordRefund(ctx context.Context, txn domain.Transaction) (*domain.FinancialJournal, error)
	RecordCreditPurchase(ctx context.Context, purchase domain.CreditPurchase) (*domain.FinancialJournal, error)
	RecordPayout(ctx context.Context, payout domain.Payout) (*domain.FinancialJournal, error)

	HasSettlementJournal(ctx context.Context, txn domain.Transaction) (bool, error)
	HasRefundJournal(ctx context.Context, txn domain.Transaction) (bool, error)
	HasCreditPurchaseJournal(ctx context.Context, purchase domain.CreditPurchase) (bool, error)
	HasPayoutJournal(ctx context.Context, payout domain.Payout) (bool, error)
}
