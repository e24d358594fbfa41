package mapping

import (
	"github.com/SscSPs/payledger/internal/core/domain"
	"github.com/SscSPs/payledger/internal/models"
)

// ToModelRun converts a domain ReconciliationRun to a model ReconciliationRun
func ToModelRun(d domain.ReconciliationRun) models.ReconciliationRun {
	m := models.ReconciliationRun{
		RunID:         d.ID,
		RunKey:        d.RunKey,
		TriggerSource: d.TriggerSource,
		Status:        string(d.Status),
		CreatedAt:     d.CreatedAt,
		CompletedAt:   d.CompletedAt,
		Metadata: models.RunMetadata{
			DryRun:     d.DryRun,
			Limit:      d.Limit,
			Checked:    d.Checked,
			Issues:     d.Issues,
			AutoHealed: d.AutoHealed,
		},
	}
	if len(d.Categories) > 0 {
		m.Metadata.Categories = make(map[string]models.CategoryCounts, len(d.Categories))
		for cat, c := range d.Categories {
			m.Metadata.Categories[string(cat)] = models.CategoryCounts(c)
		}
	}
	return m
}

// ToDomainRun converts a model ReconciliationRun to a domain ReconciliationRun
func ToDomainRun(m models.ReconciliationRun) domain.ReconciliationRun {
	d := domain.ReconciliationRun{
		ID:            m.RunID,
		RunKey:        m.RunKey,
		TriggerSource: m.TriggerSource,
		Status:        domain.RunStatus(m.Status),
		DryRun:        m.Metadata.DryRun,
		Limit:         m.Metadata.Limit,
		Checked:       m.Metadata.Checked,
		Issues:        m.Metadata.Issues,
		AutoHealed:    m.Metadata.AutoHealed,
		CreatedAt:     m.CreatedAt,
		CompletedAt:   m.CompletedAt,
	}
	if len(m.Metadata.Categories) > 0 {
		d.Categories = make(map[domain.Category]domain.CategoryCounts, len(m.Metadata.Categories))
		for cat, c := range m.Metadata.Categories {
			d.Categories[domain.Category(cat)] = domain.CategoryCounts(c)
		}
	}
	return d
}

// ToModelIssue converts a domain ReconciliationIssue to a model ReconciliationIssue
func ToModelIssue(d domain.ReconciliationIssue) models.ReconciliationIssue {
	return models.ReconciliationIssue{
		IssueID:         d.ID,
		IssueKey:        d.IssueKey,
		IssueType:       d.IssueType,
		Severity:        string(d.Severity),
		SourceKind:      string(d.SourceKind),
		SourceID:        d.SourceID,
		Status:          string(d.Status),
		AutoHealed:      d.AutoHealed,
		RunID:           nullableString(d.RunID),
		DetectionCount:  d.DetectionCount,
		Details:         map[string]any(d.Details),
		FirstDetectedAt: d.FirstDetectedAt,
		LastDetectedAt:  d.LastDetectedAt,
		ResolvedAt:      d.ResolvedAt,
	}
}

// ToDomainIssue converts a model ReconciliationIssue to a domain ReconciliationIssue
func ToDomainIssue(m models.ReconciliationIssue) domain.ReconciliationIssue {
	return domain.ReconciliationIssue{
		ID:              m.IssueID,
		IssueKey:        m.IssueKey,
		IssueType:       m.IssueType,
		Severity:        domain.Severity(m.Severity),
		SourceKind:      domain.SourceKind(m.SourceKind),
		SourceID:        m.SourceID,
		Status:          domain.IssueStatus(m.Status),
		AutoHealed:      m.AutoHealed,
		RunID:           stringValue(m.RunID),
		DetectionCount:  m.DetectionCount,
		Details:         domain.Metadata(m.Details),
		FirstDetectedAt: m.FirstDetectedAt,
		LastDetectedAt:  m.LastDetectedAt,
		ResolvedAt:      m.ResolvedAt,
	}
}
