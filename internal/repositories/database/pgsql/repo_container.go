package pgsql

import (
	portsrepo "github.com/SscSPs/payledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	sourceRepo := newPgxSourceRepository(dbPool)

	return portsrepo.RepositoryProvider{
		Health:             &BaseRepository{Pool: dbPool},
		WebhookEventRepo:   newPgxWebhookEventRepository(dbPool),
		JournalRepo:        newPgxJournalRepository(dbPool),
		ReconciliationRepo: newPgxReconciliationRepository(dbPool),
		TransactionRepo:    sourceRepo,
		PayoutRepo:         sourceRepo,
		CreditPurchaseRepo: sourceRepo,
	}
}
