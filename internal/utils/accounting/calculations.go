package accounting

import (
	"fmt"

	"github.com/SscSPs/payledger/internal/core/domain"
)

// CalculateSignedAmount applies the correct sign to a posting amount based on
// the type of its account, so that positive means the account balance grew.
func CalculateSignedAmount(p domain.Posting) (int64, error) {
	accountType, ok := p.AccountCode.Type()
	if !ok {
		return 0, fmt.Errorf("unknown account code '%s' on posting %d", p.AccountCode, p.LineNo)
	}
	isDebit := p.Direction == domain.Debit

	// DEBIT to ASSET/EXPENSE -> Positive (+)
	// CREDIT to ASSET/EXPENSE -> Negative (-)
	// DEBIT to LIABILITY/EQUITY/INCOME -> Negative (-)
	// CREDIT to LIABILITY/EQUITY/INCOME -> Positive (+)
	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			return -p.AmountMinor, nil
		}
	case domain.Liability, domain.Equity, domain.Income:
		if isDebit {
			return -p.AmountMinor, nil
		}
	default:
		return 0, fmt.Errorf("unknown account type '%s' for account %s", accountType, p.AccountCode)
	}
	return p.AmountMinor, nil
}

// BalanceEffects sums the signed effect of postings per account and currency.
func BalanceEffects(postings []domain.Posting) (map[domain.AccountCode]map[string]int64, error) {
	out := make(map[domain.AccountCode]map[string]int64)
	for _, p := range postings {
		signed, err := CalculateSignedAmount(p)
		if err != nil {
			return nil, err
		}
		byCurrency, ok := out[p.AccountCode]
		if !ok {
			byCurrency = make(map[string]int64)
			out[p.AccountCode] = byCurrency
		}
		byCurrency[p.Currency] += signed
	}
	return out, nil
}
