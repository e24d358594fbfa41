package mapping

import (
	"github.com/SscSPs/payledger/internal/core/domain"
	"github.com/SscSPs/payledger/internal/models"
)

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:                  m.TransactionID,
		Kind:                domain.TransactionKind(m.Kind),
		Status:              domain.TransactionStatus(m.Status),
		Provider:            m.Provider,
		ProviderReference:   m.ProviderReference,
		BuyerID:             m.BuyerID,
		CreatorID:           m.CreatorID,
		AmountMinor:         m.AmountMinor,
		PlatformFeeMinor:    m.PlatformFeeMinor,
		RefundedAmountMinor: m.RefundedAmountMinor,
		Currency:            m.CurrencyCode,
		Metadata:            domain.Metadata(m.Metadata),
		Timestamps:          domain.Timestamps{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		RefundedAt:          m.RefundedAt,
	}
}

// ToDomainPayout converts a model Payout to a domain Payout
func ToDomainPayout(m models.Payout) domain.Payout {
	return domain.Payout{
		ID:                m.PayoutID,
		WalletID:          m.WalletID,
		WalletOwnerID:     m.WalletOwnerID,
		Status:            domain.PayoutStatus(m.Status),
		Provider:          m.Provider,
		ProviderReference: m.ProviderReference,
		AmountMinor:       m.AmountMinor,
		Currency:          m.CurrencyCode,
		FailureReason:     stringValue(m.FailureReason),
		Timestamps:        domain.Timestamps{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		CompletedAt:       m.CompletedAt,
	}
}

// ToDomainCreditPurchase converts a model CreditPurchase to a domain CreditPurchase
func ToDomainCreditPurchase(m models.CreditPurchase) domain.CreditPurchase {
	return domain.CreditPurchase{
		ID:                m.CreditPurchaseID,
		UserID:            m.UserID,
		Status:            domain.CreditPurchaseStatus(m.Status),
		Provider:          m.Provider,
		ProviderReference: m.ProviderReference,
		Credits:           m.Credits,
		AmountMinor:       m.AmountMinor,
		Currency:          m.CurrencyCode,
		Timestamps:        domain.Timestamps{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
	}
}
