package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/SscSPs/payledger/internal/apperrors"
	"github.com/SscSPs/payledger/internal/core/domain"
	portsrepo "github.com/SscSPs/payledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
)

var (
	ErrJournalUnbalanced     = errors.New("journal postings do not balance")
	ErrJournalNoPostings     = errors.New("journal must have at least one posting")
	ErrUnknownAccountCode    = errors.New("unknown account code")
	ErrIdempotencyKeyMissing = errors.New("idempotency key is required")
)

// journalService is the double-entry posting engine.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	validate    *validator.Validate
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, opts ...Option) portssvc.JournalSvcFacade {
	s := &journalService{
		journalRepo: journalRepo,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
	applyOptions(&s.BaseService, opts)
	return s
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// validatePostings checks structure, known accounts and the per-currency balance.
// Nothing is written when it returns an error.
func (s *journalService) validatePostings(req domain.JournalRequest) error {
	if strings.TrimSpace(req.IdempotencyKey) == "" {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrIdempotencyKeyMissing)
	}
	if len(req.Postings) == 0 {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrJournalNoPostings)
	}
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	for i, p := range req.Postings {
		if _, ok := p.AccountCode.Type(); !ok {
			return fmt.Errorf("%w: %w %q on posting %d", apperrors.ErrValidation, ErrUnknownAccountCode, p.AccountCode, i)
		}
	}

	if imbalances := domain.Imbalances(req.Postings); len(imbalances) > 0 {
		parts := make([]string, len(imbalances))
		for i, im := range imbalances {
			parts[i] = im.Error()
		}
		return fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrJournalUnbalanced, strings.Join(parts, "; "))
	}
	return nil
}

// Record validates and stores a balanced journal.
func (s *journalService) Record(ctx context.Context, req domain.JournalRequest) (journal *domain.FinancialJournal, err error) {
	ctx, span := s.StartSpan(ctx, "journal.record",
		attribute.String("idempotency_key", req.IdempotencyKey),
		attribute.String("flow_type", string(req.FlowType)),
	)
	defer func() { EndSpan(span, err) }()

	logger := s.GetLogger(ctx).With(slog.String("idempotency_key", req.IdempotencyKey))

	if err := s.validatePostings(req); err != nil {
		logger.Warn("Rejected journal", slog.String("error", err.Error()))
		return nil, err
	}

	now := s.Now()
	journalID := uuid.NewString()
	postings := make([]domain.Posting, len(req.Postings))
	for i, p := range req.Postings {
		p.ID = uuid.NewString()
		p.JournalID = journalID
		p.LineNo = i + 1
		postings[i] = p
	}
	metadata := req.Metadata
	if metadata == nil {
		metadata = domain.Metadata{}
	}

	candidate := domain.FinancialJournal{
		ID:             journalID,
		IdempotencyKey: req.IdempotencyKey,
		SourceKind:     req.SourceKind,
		SourceID:       req.SourceID,
		FlowType:       req.FlowType,
		Currency:       req.Currency,
		Provider:       req.Provider,
		Description:    req.Description,
		Metadata:       metadata,
		Postings:       postings,
		CreatedAt:      now,
	}

	stored, created, err := s.journalRepo.InsertJournalIfAbsent(ctx, candidate)
	if err != nil {
		s.LogError(ctx, err, "Failed to save journal", slog.String("idempotency_key", req.IdempotencyKey))
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}

	if !created {
		if !samePostings(stored.Postings, postings) {
			logger.Warn("Idempotency key reused with different postings, returning original journal", slog.String("journal_id", stored.ID))
		} else {
			logger.Debug("Journal already recorded", slog.String("journal_id", stored.ID))
		}
		return stored, nil
	}

	logger.Info("Journal recorded",
		slog.String("journal_id", stored.ID),
		slog.String("flow_type", string(stored.FlowType)),
		slog.String("source_kind", string(stored.SourceKind)),
		slog.String("source_id", stored.SourceID),
		slog.Int("posting_count", len(stored.Postings)),
	)
	return stored, nil
}

// GetJournalByID retrieves a journal with its postings.
func (s *journalService) GetJournalByID(ctx context.Context, journalID string) (*domain.FinancialJournal, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal by ID", slog.String("journal_id", journalID))
		}
		return nil, fmt.Errorf("failed to find journal %s: %w", journalID, err)
	}
	return journal, nil
}

// ListJournalsBySource retrieves the journals recorded for a source.
func (s *journalService) ListJournalsBySource(ctx context.Context, kind domain.SourceKind, sourceID string) ([]domain.FinancialJournal, error) {
	if kind == "" || sourceID == "" {
		return nil, apperrors.NewValidationError("sourceKind and sourceId are required")
	}
	journals, err := s.journalRepo.ListJournalsBySource(ctx, kind, sourceID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journals by source", slog.String("source_kind", string(kind)), slog.String("source_id", sourceID))
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}
	return journals, nil
}

// samePostings compares the money-relevant fields of two posting sets in line order.
func samePostings(a, b []domain.Posting) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.AccountCode != y.AccountCode || x.Direction != y.Direction || x.AmountMinor != y.AmountMinor ||
			x.Currency != y.Currency || x.CounterpartyType != y.CounterpartyType || x.CounterpartyID != y.CounterpartyID {
			return false
		}
	}
	return true
}
