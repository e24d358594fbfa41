package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// AccountCode names a ledger account postings are made against.
type AccountCode string

const (
	// AccountProviderClearing holds money captured by a provider but not yet settled to us.
	AccountProviderClearing AccountCode = "provider_clearing"
	// AccountCreatorPayable is what the platform owes creators.
	AccountCreatorPayable AccountCode = "creator_payable"
	// AccountPlatformRevenue is the platform's fee income.
	AccountPlatformRevenue AccountCode = "platform_revenue"
	// AccountCreatorPayouts is money sent out to creators.
	AccountCreatorPayouts AccountCode = "creator_payouts"
	// AccountDropInCreditLiability is prepaid credit not yet consumed.
	AccountDropInCreditLiability AccountCode = "drop_in_credit_liability"
)

// chartOfAccounts maps every known account code to its accounting type.
var chartOfAccounts = map[AccountCode]AccountType{
	AccountProviderClearing:      Asset,
	AccountCreatorPayable:        Liability,
	AccountPlatformRevenue:       Income,
	AccountCreatorPayouts:        Asset,
	AccountDropInCreditLiability: Liability,
}

// Type returns the accounting type of the account and whether the code is known.
func (c AccountCode) Type() (AccountType, bool) {
	t, ok := chartOfAccounts[c]
	return t, ok
}
