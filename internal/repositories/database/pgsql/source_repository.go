package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/payledger/internal/apperrors"
	"github.com/SscSPs/payledger/internal/core/domain"
	portsrepo "github.com/SscSPs/payledger/internal/core/ports/repositories"
	"github.com/SscSPs/payledger/internal/models"
	"github.com/SscSPs/payledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	transactionColumns = `id, kind, status, provider, provider_reference, buyer_id, creator_id,
		       amount_minor, platform_fee_minor, refunded_amount_minor, currency, metadata,
		       created_at, updated_at, refunded_at`
	payoutColumns = `id, wallet_id, wallet_owner_id, status, provider, provider_reference,
		       amount_minor, currency, failure_reason, created_at, updated_at, completed_at`
	creditPurchaseColumns = `id, user_id, status, provider, provider_reference, credits,
		       amount_minor, currency, created_at, updated_at`
)

// PgxSourceRepository reads and updates the source-of-truth payment tables.
type PgxSourceRepository struct {
	BaseRepository
}

func newPgxSourceRepository(pool *pgxpool.Pool) *PgxSourceRepository {
	return &PgxSourceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.TransactionRepository    = (*PgxSourceRepository)(nil)
	_ portsrepo.PayoutRepository         = (*PgxSourceRepository)(nil)
	_ portsrepo.CreditPurchaseRepository = (*PgxSourceRepository)(nil)
)

func (r *PgxSourceRepository) ListTransactionsByStatus(ctx context.Context, status domain.TransactionStatus, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE status = $1 ORDER BY updated_at DESC, id DESC LIMIT $2;`
	rows, err := r.Pool.Query(ctx, query, string(status), limit)
	if err != nil {
		return nil, mapError(err, "failed to list transactions")
	}
	found, err := pgx.CollectRows(rows, scanTransaction)
	if err != nil {
		return nil, mapError(err, "failed to scan transactions")
	}
	out := make([]domain.Transaction, 0, len(found))
	for _, m := range found {
		out = append(out, mapping.ToDomainTransaction(m))
	}
	return out, nil
}

func (r *PgxSourceRepository) FindTransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return r.findTransaction(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1;`, id)
}

func (r *PgxSourceRepository) FindTransactionByProviderReference(ctx context.Context, provider, reference string) (*domain.Transaction, error) {
	return r.findTransaction(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE provider = $1 AND provider_reference = $2;`, provider, reference)
}

func (r *PgxSourceRepository) UpdateTransactionStatus(ctx context.Context, id string, status domain.TransactionStatus, refundedAmountMinor int64, at time.Time) error {
	query := `
		UPDATE transactions
		SET status = $2::text,
		    refunded_amount_minor = $3,
		    updated_at = $4,
		    refunded_at = CASE WHEN $2::text = 'refunded' THEN $4 ELSE refunded_at END
		WHERE id = $1;
	`
	return r.execOne(ctx, "failed to update transaction "+id, query, id, string(status), refundedAmountMinor, at)
}

func (r *PgxSourceRepository) ListPayoutsByStatus(ctx context.Context, status domain.PayoutStatus, limit int) ([]domain.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE status = $1 ORDER BY updated_at DESC, id DESC LIMIT $2;`
	rows, err := r.Pool.Query(ctx, query, string(status), limit)
	if err != nil {
		return nil, mapError(err, "failed to list payouts")
	}
	found, err := pgx.CollectRows(rows, scanPayout)
	if err != nil {
		return nil, mapError(err, "failed to scan payouts")
	}
	out := make([]domain.Payout, 0, len(found))
	for _, m := range found {
		out = append(out, mapping.ToDomainPayout(m))
	}
	return out, nil
}

func (r *PgxSourceRepository) FindPayoutByID(ctx context.Context, id string) (*domain.Payout, error) {
	return r.findPayout(ctx, `SELECT `+payoutColumns+` FROM payouts WHERE id = $1;`, id)
}

func (r *PgxSourceRepository) FindPayoutByProviderReference(ctx context.Context, provider, reference string) (*domain.Payout, error) {
	return r.findPayout(ctx, `SELECT `+payoutColumns+` FROM payouts WHERE provider = $1 AND provider_reference = $2;`, provider, reference)
}

func (r *PgxSourceRepository) UpdatePayoutStatus(ctx context.Context, id string, status domain.PayoutStatus, failureReason string, at time.Time) error {
	query := `
		UPDATE payouts
		SET status = $2::text,
		    failure_reason = NULLIF($3, ''),
		    updated_at = $4,
		    completed_at = CASE WHEN $2::text = 'completed' THEN $4 ELSE completed_at END
		WHERE id = $1;
	`
	return r.execOne(ctx, "failed to update payout "+id, query, id, string(status), failureReason, at)
}

func (r *PgxSourceRepository) ListCreditPurchasesByStatus(ctx context.Context, status domain.CreditPurchaseStatus, limit int) ([]domain.CreditPurchase, error) {
	query := `SELECT ` + creditPurchaseColumns + ` FROM credit_purchases WHERE status = $1 ORDER BY updated_at DESC, id DESC LIMIT $2;`
	rows, err := r.Pool.Query(ctx, query, string(status), limit)
	if err != nil {
		return nil, mapError(err, "failed to list credit purchases")
	}
	found, err := pgx.CollectRows(rows, scanCreditPurchase)
	if err != nil {
		return nil, mapError(err, "failed to scan credit purchases")
	}
	out := make([]domain.CreditPurchase, 0, len(found))
	for _, m := range found {
		out = append(out, mapping.ToDomainCreditPurchase(m))
	}
	return out, nil
}

func (r *PgxSourceRepository) FindCreditPurchaseByID(ctx context.Context, id string) (*domain.CreditPurchase, error) {
	return r.findCreditPurchase(ctx, `SELECT `+creditPurchaseColumns+` FROM credit_purchases WHERE id = $1;`, id)
}

func (r *PgxSourceRepository) FindCreditPurchaseByProviderReference(ctx context.Context, provider, reference string) (*domain.CreditPurchase, error) {
	return r.findCreditPurchase(ctx, `SELECT `+creditPurchaseColumns+` FROM credit_purchases WHERE provider = $1 AND provider_reference = $2;`, provider, reference)
}

func (r *PgxSourceRepository) UpdateCreditPurchaseStatus(ctx context.Context, id string, status domain.CreditPurchaseStatus, at time.Time) error {
	query := `UPDATE credit_purchases SET status = $2, updated_at = $3 WHERE id = $1;`
	return r.execOne(ctx, "failed to update credit purchase "+id, query, id, string(status), at)
}

func (r *PgxSourceRepository) findTransaction(ctx context.Context, query string, args ...any) (*domain.Transaction, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "failed to find transaction")
	}
	m, err := pgx.CollectExactlyOneRow(rows, scanTransaction)
	if err != nil {
		return nil, mapError(err, "failed to find transaction")
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

func (r *PgxSourceRepository) findPayout(ctx context.Context, query string, args ...any) (*domain.Payout, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "failed to find payout")
	}
	m, err := pgx.CollectExactlyOneRow(rows, scanPayout)
	if err != nil {
		return nil, mapError(err, "failed to find payout")
	}
	payout := mapping.ToDomainPayout(m)
	return &payout, nil
}

func (r *PgxSourceRepository) findCreditPurchase(ctx context.Context, query string, args ...any) (*domain.CreditPurchase, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "failed to find credit purchase")
	}
	m, err := pgx.CollectExactlyOneRow(rows, scanCreditPurchase)
	if err != nil {
		return nil, mapError(err, "failed to find credit purchase")
	}
	purchase := mapping.ToDomainCreditPurchase(m)
	return &purchase, nil
}

func (r *PgxSourceRepository) execOne(ctx context.Context, msg string, query string, args ...any) error {
	tag, err := r.Pool.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, msg)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(msg + ": no matching row")
	}
	return nil
}

func scanTransaction(row pgx.CollectableRow) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID, &m.Kind, &m.Status, &m.Provider, &m.ProviderReference, &m.BuyerID, &m.CreatorID,
		&m.AmountMinor, &m.PlatformFeeMinor, &m.RefundedAmountMinor, &m.CurrencyCode, &m.Metadata,
		&m.CreatedAt, &m.UpdatedAt, &m.RefundedAt,
	)
	return m, err
}

func scanPayout(row pgx.CollectableRow) (models.Payout, error) {
	var m models.Payout
	err := row.Scan(
		&m.PayoutID, &m.WalletID, &m.WalletOwnerID, &m.Status, &m.Provider, &m.ProviderReference,
		&m.AmountMinor, &m.CurrencyCode, &m.FailureReason, &m.CreatedAt, &m.UpdatedAt, &m.CompletedAt,
	)
	return m, err
}

func scanCreditPurchase(row pgx.CollectableRow) (models.CreditPurchase, error) {
	var m models.CreditPurchase
	err := row.Scan(
		&m.CreditPurchaseID, &m.UserID, &m.Status, &m.Provider, &m.ProviderReference, &m.Credits,
		&m.AmountMinor, &m.CurrencyCode, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}
