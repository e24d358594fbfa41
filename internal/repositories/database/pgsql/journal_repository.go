package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/payledger/internal/core/domain"
	portsrepo "github.com/SscSPs/payledger/internal/core/ports/repositories"
	"github.com/SscSPs/payledger/internal/models"
	"github.com/SscSPs/payledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const journalColumns = `id, idempotency_key, source_kind, source_id, flow_type, currency,
		       provider, description, metadata, created_at`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journals and their postings.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

// InsertJournalIfAbsent writes the header and postings in one transaction. The
// header insert is a no-op on an existing idempotency key; a concurrent writer
// blocks on the key until the winner commits and then reads the winner back.
func (r *PgxJournalRepository) InsertJournalIfAbsent(ctx context.Context, journal domain.FinancialJournal) (*domain.FinancialJournal, bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	// Will be ignored if transaction is committed successfully
	defer r.Rollback(ctx, tx)

	modelJournal := mapping.ToModelJournal(journal)
	headerQuery := `
		INSERT INTO financial_journals (
			id, idempotency_key, source_kind, source_id, flow_type, currency,
			provider, description, metadata, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING id;
	`
	var insertedID string
	err = tx.QueryRow(ctx, headerQuery,
		modelJournal.JournalID,
		modelJournal.IdempotencyKey,
		modelJournal.SourceKind,
		modelJournal.SourceID,
		modelJournal.FlowType,
		modelJournal.CurrencyCode,
		modelJournal.Provider,
		modelJournal.Description,
		modelJournal.Metadata,
		modelJournal.CreatedAt,
	).Scan(&insertedID)
	if errors.Is(err, pgx.ErrNoRows) {
		_ = r.Rollback(ctx, tx)
		existing, err := r.FindJournalByIdempotencyKey(ctx, journal.IdempotencyKey)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, mapError(err, "failed to insert journal "+journal.IdempotencyKey)
	}

	batch := &pgx.Batch{}
	postingQuery := `
		INSERT INTO financial_journal_postings (
			id, journal_id, line_no, account_code, direction, amount_minor,
			currency, counterparty_type, counterparty_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, p := range journal.Postings {
		m := mapping.ToModelPosting(p)
		batch.Queue(postingQuery,
			m.PostingID,
			m.JournalID,
			m.LineNo,
			m.AccountCode,
			m.Direction,
			m.AmountMinor,
			m.CurrencyCode,
			m.CounterpartyType,
			m.CounterpartyID,
			journal.CreatedAt,
		)
	}
	// Close the batch results to check for errors in each command
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, false, mapError(err, "failed to insert postings for journal "+journal.IdempotencyKey)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, false, err
	}
	stored := journal
	return &stored, true, nil
}

// FindJournalByID retrieves a journal by its ID.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.FinancialJournal, error) {
	query := `SELECT ` + journalColumns + ` FROM financial_journals WHERE id = $1;`
	return r.findOne(ctx, query, journalID)
}

func (r *PgxJournalRepository) FindJournalByIdempotencyKey(ctx context.Context, key string) (*domain.FinancialJournal, error) {
	query := `SELECT ` + journalColumns + ` FROM financial_journals WHERE idempotency_key = $1;`
	return r.findOne(ctx, query, key)
}

func (r *PgxJournalRepository) ListJournalsBySource(ctx context.Context, kind domain.SourceKind, sourceID string) ([]domain.FinancialJournal, error) {
	query := `
		SELECT ` + journalColumns + `
		FROM financial_journals
		WHERE source_kind = $1 AND source_id = $2
		ORDER BY created_at DESC, id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, string(kind), sourceID)
	if err != nil {
		return nil, mapError(err, "failed to list journals by source")
	}
	headers, err := pgx.CollectRows(rows, scanJournal)
	if err != nil {
		return nil, mapError(err, "failed to scan journals")
	}
	if len(headers) == 0 {
		return []domain.FinancialJournal{}, nil
	}

	ids := make([]string, len(headers))
	for i, h := range headers {
		ids[i] = h.JournalID
	}
	postings, err := r.postingsFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	journals := make([]domain.FinancialJournal, 0, len(headers))
	for _, h := range headers {
		journals = append(journals, mapping.ToDomainJournal(h, postings[h.JournalID]))
	}
	return journals, nil
}

func (r *PgxJournalRepository) ExistsForSource(ctx context.Context, kind domain.SourceKind, sourceID string, flow domain.FlowType) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM financial_journals
			WHERE source_kind = $1 AND source_id = $2 AND flow_type = $3
		);
	`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, string(kind), sourceID, string(flow)).Scan(&exists); err != nil {
		return false, mapError(err, "failed to check journal existence")
	}
	return exists, nil
}

func (r *PgxJournalRepository) ExistsByMetadata(ctx context.Context, flow domain.FlowType, subset domain.Metadata) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM financial_journals
			WHERE flow_type = $1 AND metadata @> $2::jsonb
		);
	`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, string(flow), map[string]any(subset)).Scan(&exists); err != nil {
		return false, mapError(err, "failed to check journal metadata")
	}
	return exists, nil
}

func (r *PgxJournalRepository) findOne(ctx context.Context, query string, arg string) (*domain.FinancialJournal, error) {
	rows, err := r.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, mapError(err, "failed to find journal")
	}
	header, err := pgx.CollectExactlyOneRow(rows, scanJournal)
	if err != nil {
		return nil, mapError(err, "failed to find journal "+arg)
	}
	postings, err := r.postingsFor(ctx, []string{header.JournalID})
	if err != nil {
		return nil, err
	}
	journal := mapping.ToDomainJournal(header, postings[header.JournalID])
	return &journal, nil
}

// postingsFor loads postings for the given journals, grouped by journal id and
// ordered by line number.
func (r *PgxJournalRepository) postingsFor(ctx context.Context, journalIDs []string) (map[string][]models.Posting, error) {
	query := `
		SELECT id, journal_id, line_no, account_code, direction, amount_minor,
		       currency, counterparty_type, counterparty_id, created_at
		FROM financial_journal_postings
		WHERE journal_id = ANY($1)
		ORDER BY journal_id, line_no;
	`
	rows, err := r.Pool.Query(ctx, query, journalIDs)
	if err != nil {
		return nil, mapError(err, "failed to load postings")
	}
	defer rows.Close()

	out := make(map[string][]models.Posting, len(journalIDs))
	for rows.Next() {
		var p models.Posting
		if err := rows.Scan(
			&p.PostingID, &p.JournalID, &p.LineNo, &p.AccountCode, &p.Direction, &p.AmountMinor,
			&p.CurrencyCode, &p.CounterpartyType, &p.CounterpartyID, &p.CreatedAt,
		); err != nil {
			return nil, mapError(err, "failed to scan posting")
		}
		out[p.JournalID] = append(out[p.JournalID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "failed to iterate postings")
	}
	return out, nil
}

func scanJournal(row pgx.CollectableRow) (models.Journal, error) {
	var m models.Journal
	err := row.Scan(
		&m.JournalID, &m.IdempotencyKey, &m.SourceKind, &m.SourceID, &m.FlowType, &m.CurrencyCode,
		&m.Provider, &m.Description, &m.Metadata, &m.CreatedAt,
	)
	return m, err
}
