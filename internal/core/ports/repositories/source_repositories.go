package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/payledger/internal/core/domain"
)

// TransactionRepository reads and updates buyer payments.
type TransactionRepository interface {
	// ListTransactionsByStatus returns up to limit transactions, most recently updated first.
	ListTransactionsByStatus(ctx context.Context, status domain.TransactionStatus, limit int) ([]domain.Transaction, error)

	// FindTransactionByID retrieves a transaction.
	FindTransactionByID(ctx context.Context, id string) (*domain.Transaction, error)

	// FindTransactionByProviderReference retrieves a transaction by the provider's reference.
	FindTransactionByProviderReference(ctx context.Context, provider, reference string) (*domain.Transaction, error)

	// UpdateTransactionStatus sets the status and, for refunds, the refunded amount.
	UpdateTransactionStatus(ctx context.Context, id string, status domain.TransactionStatus, refundedAmountMinor int64, at time.Time) error
}

// PayoutRepository reads and updates creator payouts.
type PayoutRepository interface {
	// ListPayoutsByStatus returns up to limit payouts, most recently updated first.
	ListPayoutsByStatus(ctx context.Context, status domain.PayoutStatus, limit int) ([]domain.Payout, error)

	// FindPayoutByID retrieves a payout.
	FindPayoutByID(ctx context.Context, id string) (*domain.Payout, error)

	// FindPayoutByProviderReference retrieves a payout by the provider's reference.
	FindPayoutByProviderReference(ctx context.Context, provider, reference string) (*domain.Payout, error)

	// UpdatePayoutStatus sets the payout status and failure reason.
	UpdatePayoutStatus(ctx context.Context, id string, status domain.PayoutStatus, failureReason string, at time.Time) error
}

// CreditPurchaseRepository reads and updates drop-in credit purchases.
type CreditPurchaseRepository interface {
	// ListCreditPurchasesByStatus returns up to limit purchases, most recently updated first.
	ListCreditPurchasesByStatus(ctx context.Context, status domain.CreditPurchaseStatus, limit int) ([]domain.CreditPurchase, error)

	// FindCreditPurchaseByID retrieves a purchase.
	FindCreditPurchaseByID(ctx context.Context, id string) (*domain.CreditPurchase, error)

	// FindCreditPurchaseByProviderReference retrieves a purchase by the provider's reference.
	FindCreditPurchaseByProviderReference(ctx context.Context, provider, reference string) (*domain.CreditPurchase, error)

	// UpdateCreditPurchaseStatus sets the purchase status.
	UpdateCreditPurchaseStatus(ctx context.Context, id string, status domain.CreditPurchaseStatus, at time.Time) error
}
