package dto

import (
	"time"

	"github.com/SscSPs/payledger/internal/core/domain"
)

// ReconcileRequest holds the optional trigger parameters. Both may arrive as
// query parameters or in a JSON body; query parameters win.
type ReconcileRequest struct {
	Limit  *int  `json:"limit" form:"limit"`
	DryRun *bool `json:"dryRun" form:"dryRun"`
}

// ReconcileResponse is returned by the reconciliation trigger.
type ReconcileResponse struct {
	Success    bool                                      `json:"success"`
	RunID      string                                    `json:"runId"`
	DryRun     bool                                      `json:"dryRun"`
	Checked    int                                       `json:"checked"`
	Issues     int                                       `json:"issues"`
	AutoHealed int                                       `json:"autoHealed"`
	Timestamp  time.Time                                 `json:"timestamp"`
	Categories map[domain.Category]domain.CategoryCounts `json:"categories,omitempty"`
}

// RunResponse describes a stored reconciliation run.
type RunResponse struct {
	RunID         string                                    `json:"runId"`
	RunKey        string                                    `json:"runKey"`
	TriggerSource string                                    `json:"triggerSource"`
	Status        string                                    `json:"status"`
	DryRun        bool                                      `json:"dryRun"`
	Limit         int                                       `json:"limit"`
	Checked       int                                       `json:"checked"`
	Issues        int                                       `json:"issues"`
	AutoHealed    int                                       `json:"autoHealed"`
	Categories    map[domain.Category]domain.CategoryCounts `json:"categories,omitempty"`
	CreatedAt     time.Time                                 `json:"createdAt"`
	CompletedAt   *time.Time                                `json:"completedAt,omitempty"`
}

// IssueResponse describes one reconciliation issue.
type IssueResponse struct {
	IssueID         string         `json:"issueId"`
	IssueKey        string         `json:"issueKey"`
	IssueType       string         `json:"issueType"`
	Severity        string         `json:"severity"`
	SourceKind      string         `json:"sourceKind"`
	SourceID        string         `json:"sourceId"`
	Status          string         `json:"status"`
	AutoHealed      bool           `json:"autoHealed"`
	RunID           string         `json:"runId"`
	DetectionCount  int            `json:"detectionCount"`
	Details         map[string]any `json:"details,omitempty"`
	FirstDetectedAt time.Time      `json:"firstDetectedAt"`
	LastDetectedAt  time.Time      `json:"lastDetectedAt"`
	ResolvedAt      *time.Time     `json:"resolvedAt,omitempty"`
}

// ListIssuesParams are the query parameters of the issue listing.
type ListIssuesParams struct {
	Status    string  `form:"status" binding:"omitempty,oneof=open resolved"`
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListIssuesResponse is one page of issues.
type ListIssuesResponse struct {
	Issues    []IssueResponse `json:"issues"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToReconcileResponse converts a completed run to the trigger response.
func ToReconcileResponse(run *domain.ReconciliationRun) ReconcileResponse {
	ts := run.CreatedAt
	if run.CompletedAt != nil {
		ts = *run.CompletedAt
	}
	return ReconcileResponse{
		Success:    true,
		RunID:      run.ID,
		DryRun:     run.DryRun,
		Checked:    run.Checked,
		Issues:     run.Issues,
		AutoHealed: run.AutoHealed,
		Timestamp:  ts,
		Categories: run.Categories,
	}
}

// ToRunResponse converts a domain.ReconciliationRun to RunResponse DTO.
func ToRunResponse(run *domain.ReconciliationRun) RunResponse {
	return RunResponse{
		RunID:         run.ID,
		RunKey:        run.RunKey,
		TriggerSource: run.TriggerSource,
		Status:        string(run.Status),
		DryRun:        run.DryRun,
		Limit:         run.Limit,
		Checked:       run.Checked,
		Issues:        run.Issues,
		AutoHealed:    run.AutoHealed,
		Categories:    run.Categories,
		CreatedAt:     run.CreatedAt,
		CompletedAt:   run.CompletedAt,
	}
}

// ToIssueResponse converts a domain.ReconciliationIssue to IssueResponse DTO.
func ToIssueResponse(issue domain.ReconciliationIssue) IssueResponse {
	return IssueResponse{
		IssueID:         issue.ID,
		IssueKey:        issue.IssueKey,
		IssueType:       issue.IssueType,
		Severity:        string(issue.Severity),
		SourceKind:      string(issue.SourceKind),
		SourceID:        issue.SourceID,
		Status:          string(issue.Status),
		AutoHealed:      issue.AutoHealed,
		RunID:           issue.RunID,
		DetectionCount:  issue.DetectionCount,
		Details:         issue.Details,
		FirstDetectedAt: issue.FirstDetectedAt,
		LastDetectedAt:  issue.LastDetectedAt,
		ResolvedAt:      issue.ResolvedAt,
	}
}

// ToListIssuesResponse converts a page of issues.
func ToListIssuesResponse(issues []domain.ReconciliationIssue, nextToken *string) ListIssuesResponse {
	out := ListIssuesResponse{Issues: make([]IssueResponse, len(issues)), NextToken: nextToken}
	for i, issue := range issues {
		out.Issues[i] = ToIssueResponse(issue)
	}
	return out
}
