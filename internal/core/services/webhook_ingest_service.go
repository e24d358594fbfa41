package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/SscSPs/payledger/internal/apperrors"
	"github.com/SscSPs/payledger/internal/core/domain"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
)

// webhookIngestService runs one delivery through verify, claim, dispatch and mark.
type webhookIngestService struct {
	BaseService
	ledger     portssvc.WebhookLedgerSvc
	dispatcher portssvc.WebhookDispatcherSvc
	adapters   map[string]portssvc.ProviderAdapter
}

// NewWebhookIngestService creates the ingestion pipeline for the given provider adapters.
func NewWebhookIngestService(
	ledger portssvc.WebhookLedgerSvc,
	dispatcher portssvc.WebhookDispatcherSvc,
	adapters []portssvc.ProviderAdapter,
	opts ...Option,
) portssvc.WebhookIngestSvc {
	s := &webhookIngestService{
		ledger:     ledger,
		dispatcher: dispatcher,
		adapters:   make(map[string]portssvc.ProviderAdapter, len(adapters)),
	}
	for _, a := range adapters {
		s.adapters[a.Name()] = a
	}
	applyOptions(&s.BaseService, opts)
	return s
}

var _ portssvc.WebhookIngestSvc = (*webhookIngestService)(nil)

func (s *webhookIngestService) Ingest(ctx context.Context, provider string, headers http.Header, rawBody []byte) (result *portssvc.IngestResult, err error) {
	ctx, span := s.StartSpan(ctx, "webhook.ingest", attribute.String("provider", provider))
	defer func() { EndSpan(span, err) }()
	logger := s.GetLogger(ctx).With(slog.String("provider", provider))

	adapter, ok := s.adapters[provider]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("unknown webhook provider %q", provider))
	}
	if !adapter.Configured() {
		logger.Error("Webhook secret not configured")
		return nil, apperrors.NewAppError(http.StatusServiceUnavailable, provider+" webhook secret not configured", apperrors.ErrConfiguration)
	}
	if !adapter.Verify(headers, rawBody) {
		logger.Warn("Webhook signature verification failed")
		return nil, apperrors.NewAppError(http.StatusUnauthorized, "invalid webhook signature", apperrors.ErrSignature)
	}

	identity, err := adapter.Identify(headers, rawBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	logger = logger.With(slog.String("event_id", identity.EventID), slog.String("event_type", identity.EventType))
	span.SetAttributes(attribute.String("event_id", identity.EventID))

	claim, err := s.ledger.Claim(ctx, domain.ClaimRequest{
		Provider:          provider,
		EventID:           identity.EventID,
		EventType:         identity.EventType,
		SignatureVerified: true,
		Payload:           rawBody,
	})
	if err != nil {
		return nil, err
	}
	result = &portssvc.IngestResult{RowID: claim.RowID, EventID: identity.EventID, Status: claim.Status}
	if !claim.ShouldProcess {
		if claim.Replay() {
			logger.Info("Duplicate webhook event already processed")
			result.Duplicate = true
			return result, nil
		}
		logger.Info("Webhook event is being processed by another delivery", slog.String("status", string(claim.Status)))
		result.InFlight = true
		return result, nil
	}

	// The claim is ours now; finish bookkeeping even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	event, err := adapter.Normalize(rawBody)
	if err != nil {
		err = fmt.Errorf("%w: failed to parse %s payload: %w", apperrors.ErrValidation, provider, err)
		return s.fail(ctx, logger, result, err)
	}
	if event.EventID == "" {
		event.EventID = identity.EventID
	}
	if event.EventType == "" {
		event.EventType = identity.EventType
	}

	if err := s.dispatcher.Dispatch(ctx, provider, event); err != nil {
		return s.fail(ctx, logger, result, err)
	}

	if err := s.ledger.MarkProcessed(ctx, claim.RowID); err != nil {
		return result, err
	}
	result.Status = domain.WebhookProcessed
	logger.Info("Webhook event processed", slog.String("event_kind", string(event.Kind)), slog.Int("attempts", claim.Attempts))
	return result, nil
}

// fail records the processing failure on the claimed row and returns cause so
// the provider receives a non-success response and redelivers.
func (s *webhookIngestService) fail(ctx context.Context, logger *slog.Logger, result *portssvc.IngestResult, cause error) (*portssvc.IngestResult, error) {
	logger.Error("Webhook event processing failed", slog.String("error", cause.Error()))
	if err := s.ledger.MarkFailed(ctx, result.RowID, cause.Error()); err != nil {
		logger.Error("Failed to record webhook failure", slog.String("error", err.Error()))
	} else {
		result.Status = domain.WebhookFailed
	}
	return result, cause
}
