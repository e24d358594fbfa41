package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	Health             HealthChecker
	WebhookEventRepo   WebhookEventRepositoryFacade
	JournalRepo        JournalRepositoryFacade
	ReconciliationRepo ReconciliationRepositoryFacade
	TransactionRepo    TransactionRepository
	PayoutRepo         PayoutRepository
	CreditPurchaseRepo CreditPurchaseRepository
}
