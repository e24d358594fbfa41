package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/SscSPs/payledger/internal/apperrors"
	"github.com/SscSPs/payledger/internal/core/domain"
	portsrepo "github.com/SscSPs/payledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
)

// DefaultClaimLease is how long a processing claim is honoured before another
// delivery of the same event may take it over.
const DefaultClaimLease = 5 * time.Minute

const maxFailureReasonLength = 2000

// webhookLedgerService is the dedup/claim store for inbound provider events.
// It never performs business logic.
type webhookLedgerService struct {
	BaseService
	repo  portsrepo.WebhookEventRepositoryFacade
	lease time.Duration
}

// NewWebhookLedgerService creates the webhook event ledger.
func NewWebhookLedgerService(repo portsrepo.WebhookEventRepositoryFacade, lease time.Duration, opts ...Option) portssvc.WebhookLedgerSvc {
	if lease <= 0 {
		lease = DefaultClaimLease
	}
	s := &webhookLedgerService{repo: repo, lease: lease}
	applyOptions(&s.BaseService, opts)
	return s
}

var _ portssvc.WebhookLedgerSvc = (*webhookLedgerService)(nil)

// Claim atomically inserts or fetches the row keyed by (provider, event id).
func (s *webhookLedgerService) Claim(ctx context.Context, req domain.ClaimRequest) (result domain.ClaimResult, err error) {
	ctx, span := s.StartSpan(ctx, "webhook.claim",
		attribute.String("provider", req.Provider),
		attribute.String("event_id", req.EventID),
	)
	defer func() { EndSpan(span, err) }()

	if req.Provider == "" || req.EventID == "" {
		return domain.ClaimResult{}, apperrors.NewValidationError("provider and event id are required to claim an event")
	}

	result, err = s.repo.ClaimEvent(ctx, req, s.lease, s.Now())
	if err != nil {
		s.LogError(ctx, err, "Failed to claim webhook event", slog.String("provider", req.Provider), slog.String("event_id", req.EventID))
		return domain.ClaimResult{}, fmt.Errorf("failed to claim webhook event: %w", err)
	}

	s.GetLogger(ctx).Debug("Webhook event claim",
		slog.String("provider", req.Provider),
		slog.String("event_id", req.EventID),
		slog.String("row_id", result.RowID),
		slog.Bool("should_process", result.ShouldProcess),
		slog.String("status", string(result.Status)),
		slog.Int("attempts", result.Attempts),
	)
	return result, nil
}

// MarkProcessed records that processing completed.
func (s *webhookLedgerService) MarkProcessed(ctx context.Context, rowID string) error {
	if err := s.repo.MarkEventProcessed(ctx, rowID, s.Now()); err != nil {
		s.LogError(ctx, err, "Failed to mark webhook event processed", slog.String("row_id", rowID))
		return fmt.Errorf("failed to mark webhook event processed: %w", err)
	}
	return nil
}

// MarkFailed records that processing failed. The caller is expected to answer
// the provider with a non-success status so that it redelivers.
func (s *webhookLedgerService) MarkFailed(ctx context.Context, rowID string, reason string) error {
	reason = strings.TrimSpace(reason)
	if len(reason) > maxFailureReasonLength {
		reason = reason[:maxFailureReasonLength]
	}
	if err := s.repo.MarkEventFailed(ctx, rowID, reason, s.Now()); err != nil {
		s.LogError(ctx, err, "Failed to mark webhook event failed", slog.String("row_id", rowID))
		return fmt.Errorf("failed to mark webhook event failed: %w", err)
	}
	return nil
}

func (s *webhookLedgerService) GetEvent(ctx context.Context, rowID string) (*domain.WebhookEvent, error) {
	if rowID == "" {
		return nil, apperrors.NewValidationError("webhook event id is required")
	}
	event, err := s.repo.FindEventByID(ctx, rowID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("webhook event " + rowID)
		}
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}
	return event, nil
}
