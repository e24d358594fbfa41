package pgsql

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/payledger/internal/apperrors"
	"github.com/SscSPs/payledger/internal/core/domain"
	portsrepo "github.com/SscSPs/payledger/internal/core/ports/repositories"
	"github.com/SscSPs/payledger/internal/models"
	"github.com/SscSPs/payledger/internal/utils/mapping"
	"github.com/SscSPs/payledger/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const issueColumns = `id, issue_key, issue_type, severity, source_kind, source_id, status,
		       auto_healed, run_id, detection_count, details, first_detected_at,
		       last_detected_at, resolved_at`

type PgxReconciliationRepository struct {
	BaseRepository
}

func newPgxReconciliationRepository(pool *pgxpool.Pool) portsrepo.ReconciliationRepositoryFacade {
	return &PgxReconciliationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReconciliationRepositoryFacade = (*PgxReconciliationRepository)(nil)

func (r *PgxReconciliationRepository) CreateRun(ctx context.Context, run domain.ReconciliationRun) error {
	m := mapping.ToModelRun(run)
	query := `
		INSERT INTO reconciliation_runs (id, run_key, trigger_source, status, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	if _, err := r.Pool.Exec(ctx, query, m.RunID, m.RunKey, m.TriggerSource, m.Status, m.Metadata, m.CreatedAt); err != nil {
		return mapError(err, "failed to create reconciliation run")
	}
	return nil
}

// CompleteRun only moves runs that are still processing.
func (r *PgxReconciliationRepository) CompleteRun(ctx context.Context, run domain.ReconciliationRun) error {
	m := mapping.ToModelRun(run)
	query := `
		UPDATE reconciliation_runs
		SET status = 'completed', metadata = $2, completed_at = $3
		WHERE id = $1 AND status = 'processing';
	`
	tag, err := r.Pool.Exec(ctx, query, m.RunID, m.Metadata, m.CompletedAt)
	if err != nil {
		return mapError(err, "failed to complete reconciliation run")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAppError(http.StatusConflict, "reconciliation run "+run.ID+" is not processing", apperrors.ErrConflict)
	}
	return nil
}

func (r *PgxReconciliationRepository) FindRunByID(ctx context.Context, runID string) (*domain.ReconciliationRun, error) {
	query := `
		SELECT id, run_key, trigger_source, status, metadata, created_at, completed_at
		FROM reconciliation_runs
		WHERE id = $1;
	`
	var m models.ReconciliationRun
	err := r.Pool.QueryRow(ctx, query, runID).Scan(
		&m.RunID, &m.RunKey, &m.TriggerSource, &m.Status, &m.Metadata, &m.CreatedAt, &m.CompletedAt,
	)
	if err != nil {
		return nil, mapError(err, "failed to find reconciliation run "+runID)
	}
	run := mapping.ToDomainRun(m)
	return &run, nil
}

// UpsertIssue inserts or refreshes the issue row for issue.IssueKey. Each
// detection bumps detection_count; keepStatus preserves the resolution columns.
func (r *PgxReconciliationRepository) UpsertIssue(ctx context.Context, issue domain.ReconciliationIssue, keepStatus bool) (*domain.ReconciliationIssue, error) {
	m := mapping.ToModelIssue(issue)
	if m.IssueID == "" {
		m.IssueID = uuid.NewString()
	}
	query := `
		INSERT INTO reconciliation_issues (
			id, issue_key, issue_type, severity, source_kind, source_id, status,
			auto_healed, run_id, detection_count, details, first_detected_at,
			last_detected_at, resolved_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, $10, $11, $12, $13)
		ON CONFLICT (issue_key) DO UPDATE
		SET issue_type = EXCLUDED.issue_type,
		    severity = EXCLUDED.severity,
		    details = EXCLUDED.details,
		    run_id = EXCLUDED.run_id,
		    detection_count = reconciliation_issues.detection_count + 1,
		    last_detected_at = EXCLUDED.last_detected_at,
		    status = CASE WHEN $14::boolean THEN reconciliation_issues.status ELSE EXCLUDED.status END,
		    auto_healed = CASE WHEN $14::boolean THEN reconciliation_issues.auto_healed ELSE EXCLUDED.auto_healed END,
		    resolved_at = CASE WHEN $14::boolean THEN reconciliation_issues.resolved_at ELSE EXCLUDED.resolved_at END
		RETURNING ` + issueColumns + `;
	`
	rows, err := r.Pool.Query(ctx, query,
		m.IssueID, m.IssueKey, m.IssueType, m.Severity, m.SourceKind, m.SourceID, m.Status,
		m.AutoHealed, m.RunID, m.Details, m.FirstDetectedAt, m.LastDetectedAt, m.ResolvedAt,
		keepStatus,
	)
	if err != nil {
		return nil, mapError(err, "failed to upsert reconciliation issue "+issue.IssueKey)
	}
	stored, err := pgx.CollectExactlyOneRow(rows, scanIssue)
	if err != nil {
		return nil, mapError(err, "failed to upsert reconciliation issue "+issue.IssueKey)
	}
	out := mapping.ToDomainIssue(stored)
	return &out, nil
}

func (r *PgxReconciliationRepository) ResolveIssue(ctx context.Context, issueKey string, at time.Time) (bool, error) {
	query := `
		UPDATE reconciliation_issues
		SET status = 'resolved', resolved_at = $2
		WHERE issue_key = $1 AND status = 'open';
	`
	tag, err := r.Pool.Exec(ctx, query, issueKey, at)
	if err != nil {
		return false, mapError(err, "failed to resolve reconciliation issue "+issueKey)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgxReconciliationRepository) FindIssueByKey(ctx context.Context, issueKey string) (*domain.ReconciliationIssue, error) {
	query := `SELECT ` + issueColumns + ` FROM reconciliation_issues WHERE issue_key = $1;`
	rows, err := r.Pool.Query(ctx, query, issueKey)
	if err != nil {
		return nil, mapError(err, "failed to find reconciliation issue")
	}
	m, err := pgx.CollectExactlyOneRow(rows, scanIssue)
	if err != nil {
		return nil, mapError(err, "failed to find reconciliation issue "+issueKey)
	}
	issue := mapping.ToDomainIssue(m)
	return &issue, nil
}

// ListIssues pages by (last_detected_at, id) descending.
func (r *PgxReconciliationRepository) ListIssues(ctx context.Context, status domain.IssueStatus, limit int, nextToken *string) ([]domain.ReconciliationIssue, *string, error) {
	var (
		conditions []string
		args       []any
	)
	if status != "" {
		args = append(args, string(status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if nextToken != nil && *nextToken != "" {
		at, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("%s", err.Error())
		}
		args = append(args, at, id)
		conditions = append(conditions, fmt.Sprintf("(last_detected_at, id) < ($%d, $%d::uuid)", len(args)-1, len(args)))
	}

	query := `SELECT ` + issueColumns + ` FROM reconciliation_issues`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	// Fetch one extra row to know whether another page exists.
	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY last_detected_at DESC, id DESC LIMIT $%d;`, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, mapError(err, "failed to list reconciliation issues")
	}
	found, err := pgx.CollectRows(rows, scanIssue)
	if err != nil {
		return nil, nil, mapError(err, "failed to scan reconciliation issues")
	}

	var next *string
	if len(found) > limit {
		found = found[:limit]
		last := found[len(found)-1]
		token := pagination.EncodeToken(last.LastDetectedAt, last.IssueID)
		next = &token
	}
	issues := make([]domain.ReconciliationIssue, 0, len(found))
	for _, m := range found {
		issues = append(issues, mapping.ToDomainIssue(m))
	}
	return issues, next, nil
}

func scanIssue(row pgx.CollectableRow) (models.ReconciliationIssue, error) {
	var m models.ReconciliationIssue
	err := row.Scan(
		&m.IssueID, &m.IssueKey, &m.IssueType, &m.Severity, &m.SourceKind, &m.SourceID, &m.Status,
		&m.AutoHealed, &m.RunID, &m.DetectionCount, &m.Details, &m.FirstDetectedAt,
		&m.LastDetectedAt, &m.ResolvedAt,
	)
	return m, err
}
