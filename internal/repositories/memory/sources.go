package memory

import (
	"context"
	"maps"
	"sort"
	"time"

	"github.com/SscSPs/payledger/internal/core/domain"
)

// PutTransaction inserts or replaces a transaction.
func (s *Store) PutTransaction(txn domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn.Metadata = maps.Clone(txn.Metadata)
	s.transactions[txn.ID] = &txn
}

// PutPayout inserts or replaces a payout.
func (s *Store) PutPayout(p domain.Payout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payouts[p.ID] = &p
}

// PutCreditPurchase inserts or replaces a credit purchase.
func (s *Store) PutCreditPurchase(p domain.CreditPurchase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creditPurchases[p.ID] = &p
}

// newestFirst orders by UpdatedAt descending, then id descending, matching the
// SQL implementation.
func newestFirst(aUpdated, bUpdated time.Time, aID, bID string) bool {
	if !aUpdated.Equal(bUpdated) {
		return aUpdated.After(bUpdated)
	}
	return aID > bID
}

func (s *Store) ListTransactionsByStatus(_ context.Context, status domain.TransactionStatus, limit int) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, 0)
	for _, t := range s.transactions {
		if t.Status == status {
			c := *t
			c.Metadata = maps.Clone(t.Metadata)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, k int) bool { return newestFirst(out[i].UpdatedAt, out[k].UpdatedAt, out[i].ID, out[k].ID) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) FindTransactionByID(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok {
		return nil, notFound("transaction " + id)
	}
	c := *t
	c.Metadata = maps.Clone(t.Metadata)
	return &c, nil
}

func (s *Store) FindTransactionByProviderReference(_ context.Context, provider, reference string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.transactions {
		if t.Provider == provider && t.ProviderReference == reference {
			c := *t
			c.Metadata = maps.Clone(t.Metadata)
			return &c, nil
		}
	}
	return nil, notFound("transaction with reference " + reference)
}

func (s *Store) UpdateTransactionStatus(_ context.Context, id string, status domain.TransactionStatus, refundedAmountMinor int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok {
		return notFound("transaction " + id)
	}
	t.Status = status
	t.RefundedAmountMinor = refundedAmountMinor
	t.UpdatedAt = at
	if status == domain.TransactionRefunded {
		refundedAt := at
		t.RefundedAt = &refundedAt
	}
	return nil
}

func (s *Store) ListPayoutsByStatus(_ context.Context, status domain.PayoutStatus, limit int) ([]domain.Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Payout, 0)
	for _, p := range s.payouts {
		if p.Status == status {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, k int) bool { return newestFirst(out[i].UpdatedAt, out[k].UpdatedAt, out[i].ID, out[k].ID) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) FindPayoutByID(_ context.Context, id string) (*domain.Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payouts[id]
	if !ok {
		return nil, notFound("payout " + id)
	}
	c := *p
	return &c, nil
}

func (s *Store) FindPayoutByProviderReference(_ context.Context, provider, reference string) (*domain.Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.payouts {
		if p.Provider == provider && p.ProviderReference == reference {
			c := *p
			return &c, nil
		}
	}
	return nil, notFound("payout with reference " + reference)
}

func (s *Store) UpdatePayoutStatus(_ context.Context, id string, status domain.PayoutStatus, failureReason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payouts[id]
	if !ok {
		return notFound("payout " + id)
	}
	p.Status = status
	p.FailureReason = failureReason
	p.UpdatedAt = at
	if status == domain.PayoutCompleted {
		completedAt := at
		p.CompletedAt = &completedAt
	}
	return nil
}

func (s *Store) ListCreditPurchasesByStatus(_ context.Context, status domain.CreditPurchaseStatus, limit int) ([]domain.CreditPurchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CreditPurchase, 0)
	for _, p := range s.creditPurchases {
		if p.Status == status {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, k int) bool { return newestFirst(out[i].UpdatedAt, out[k].UpdatedAt, out[i].ID, out[k].ID) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) FindCreditPurchaseByID(_ context.Context, id string) (*domain.CreditPurchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.creditPurchases[id]
	if !ok {
		return nil, notFound("credit purchase " + id)
	}
	c := *p
	return &c, nil
}

func (s *Store) FindCreditPurchaseByProviderReference(_ context.Context, provider, reference string) (*domain.CreditPurchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.creditPurchases {
		if p.Provider == provider && p.ProviderReference == reference {
			c := *p
			return &c, nil
		}
	}
	return nil, notFound("credit purchase with reference " + reference)
}

func (s *Store) UpdateCreditPurchaseStatus(_ context.Context, id string, status domain.CreditPurchaseStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.creditPurchases[id]
	if !ok {
		return notFound("credit purchase " + id)
	}
	p.Status = status
	p.UpdatedAt = at
	return nil
}
