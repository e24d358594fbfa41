package pgsql

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SscSPs/payledger/internal/apperrors"
	"github.com/SscSPs/payledger/internal/core/domain"
	portsrepo "github.com/SscSPs/payledger/internal/core/ports/repositories"
	"github.com/SscSPs/payledger/internal/models"
	"github.com/SscSPs/payledger/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxWebhookEventRepository struct {
	BaseRepository
}

func newPgxWebhookEventRepository(pool *pgxpool.Pool) portsrepo.WebhookEventRepositoryFacade {
	return &PgxWebhookEventRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.WebhookEventRepositoryFacade = (*PgxWebhookEventRepository)(nil)

// ClaimEvent is a single upsert. A conflicting row is only taken over when it
// failed or its processing lease expired; otherwise the upsert affects no row
// and the existing row is read back.
func (r *PgxWebhookEventRepository) ClaimEvent(ctx context.Context, req domain.ClaimRequest, lease time.Duration, now time.Time) (domain.ClaimResult, error) {
	query := `
		INSERT INTO webhook_events (
			id, provider, event_id, event_type, status, signature_verified,
			payload, attempts, claimed_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, 'processing', $5, $6, 1, $7, $7, $7)
		ON CONFLICT (provider, event_id) DO UPDATE
		SET status = 'processing',
		    attempts = webhook_events.attempts + 1,
		    claimed_at = EXCLUDED.claimed_at,
		    updated_at = EXCLUDED.updated_at,
		    last_error = NULL,
		    signature_verified = webhook_events.signature_verified OR EXCLUDED.signature_verified
		WHERE webhook_events.status = 'failed'
		   OR (webhook_events.status IN ('pending', 'processing')
		       AND (webhook_events.claimed_at IS NULL OR webhook_events.claimed_at < $8))
		RETURNING id, status, attempts, (xmax = 0) AS inserted;
	`
	var result domain.ClaimResult
	var status string
	err := r.Pool.QueryRow(ctx, query,
		uuid.NewString(),
		req.Provider,
		req.EventID,
		req.EventType,
		req.SignatureVerified,
		storablePayload(req.Payload),
		now,
		now.Add(-lease),
	).Scan(&result.RowID, &status, &result.Attempts, &result.Inserted)
	if err == nil {
		result.ShouldProcess = true
		result.Status = domain.WebhookStatus(status)
		return result, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.ClaimResult{}, mapError(err, "failed to claim webhook event")
	}

	existing := `SELECT id, status, attempts FROM webhook_events WHERE provider = $1 AND event_id = $2;`
	if err := r.Pool.QueryRow(ctx, existing, req.Provider, req.EventID).Scan(&result.RowID, &status, &result.Attempts); err != nil {
		return domain.ClaimResult{}, mapError(err, "failed to read claimed webhook event")
	}
	result.Status = domain.WebhookStatus(status)
	return result, nil
}

func (r *PgxWebhookEventRepository) MarkEventProcessed(ctx context.Context, rowID string, at time.Time) error {
	query := `
		UPDATE webhook_events
		SET status = 'processed', processed_at = $2, updated_at = $2, last_error = NULL
		WHERE id = $1;
	`
	return r.execOne(ctx, "failed to mark webhook event processed", query, rowID, at)
}

func (r *PgxWebhookEventRepository) MarkEventFailed(ctx context.Context, rowID string, reason string, at time.Time) error {
	query := `
		UPDATE webhook_events
		SET status = 'failed', last_error = $2, updated_at = $3
		WHERE id = $1 AND status <> 'processed';
	`
	return r.execOne(ctx, "failed to mark webhook event failed", query, rowID, storablePayload([]byte(reason)), at)
}

func (r *PgxWebhookEventRepository) FindEventByID(ctx context.Context, rowID string) (*domain.WebhookEvent, error) {
	query := `
		SELECT id, provider, event_id, event_type, status, signature_verified, payload,
		       attempts, last_error, claimed_at, processed_at, created_at, updated_at
		FROM webhook_events
		WHERE id = $1;
	`
	var m models.WebhookEvent
	err := r.Pool.QueryRow(ctx, query, rowID).Scan(
		&m.ID, &m.Provider, &m.EventID, &m.EventType, &m.Status, &m.SignatureVerified, &m.Payload,
		&m.Attempts, &m.LastError, &m.ClaimedAt, &m.ProcessedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, "failed to find webhook event "+rowID)
	}
	event := mapping.ToDomainWebhookEvent(m)
	return &event, nil
}

func (r *PgxWebhookEventRepository) execOne(ctx context.Context, msg string, query string, args ...any) error {
	tag, err := r.Pool.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, msg)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(msg + ": no matching row")
	}
	return nil
}

// storablePayload makes an arbitrary body storable in a text column: NUL bytes
// are dropped and invalid UTF-8 is replaced.
func storablePayload(raw []byte) string {
	s := strings.ReplaceAll(string(raw), "\x00", "")
	return strings.ToValidUTF8(s, "\uFFFD")
}
