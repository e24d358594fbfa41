package services

import (
	portsrepo "github.com/SscSPs/payledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
	"github.com/SscSPs/payledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, adapters []portssvc.ProviderAdapter, opts ...Option) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Health = NewHealthService(repos.Health)
	container.Journal = NewJournalService(repos.JournalRepo, opts...)

	// Recorders write through the journal service so every money movement is
	// validated in one place.
	container.Recorder = NewFlowRecorder(container.Journal, repos.JournalRepo, opts...)

	container.WebhookLedger = NewWebhookLedgerService(repos.WebhookEventRepo, cfg.WebhookClaimLease, opts...)
	dispatcher := NewWebhookDispatcher(repos.TransactionRepo, repos.PayoutRepo, repos.CreditPurchaseRepo, container.Recorder, opts...)
	container.WebhookIngest = NewWebhookIngestService(container.WebhookLedger, dispatcher, adapters, opts...)

	container.Reconciliation = NewReconciliationService(
		ReconcilerConfig{
			DefaultLimit: cfg.ReconcileDefaultLimit,
			MaxLimit:     cfg.ReconcileMaxLimit,
			Concurrency:  cfg.ReconcileConcurrency,
			Timeout:      cfg.ReconcileTimeout,
		},
		repos.ReconciliationRepo,
		repos.TransactionRepo,
		repos.PayoutRepo,
		repos.CreditPurchaseRepo,
		container.Recorder,
		opts...,
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.JournalSvcFacade        = (*journalService)(nil)
	_ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)
	_ portssvc.HealthSvc               = (*healthService)(nil)
)
