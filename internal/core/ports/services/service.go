package services

import "context"

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	WebhookLedger  WebhookLedgerSvc
	WebhookIngest  WebhookIngestSvc
	Journal        JournalSvcFacade
	Recorder       FlowRecorderSvc
	Reconciliation ReconciliationSvcFacade
	Health         HealthSvc
}

// HealthSvc reports whether the service can reach its store.
type HealthSvc interface {
	Check(ctx context.Context) error
}
