package models

import "time"

// ReconciliationRun is a row of reconciliation_runs.
type ReconciliationRun struct {
	RunID         string      `json:"runID"`
	RunKey        string      `json:"runKey"`
	TriggerSource string      `json:"triggerSource"`
	Status        string      `json:"status"`
	Metadata      RunMetadata `json:"metadata"` // jsonb
	CreatedAt     time.Time   `json:"createdAt"`
	CompletedAt   *time.Time  `json:"completedAt"`
}

// RunMetadata is the jsonb document stored on a run.
type RunMetadata struct {
	DryRun     bool                      `json:"dryRun"`
	Limit      int                       `json:"limit"`
	Checked    int                       `json:"checked"`
	Issues     int                       `json:"issues"`
	AutoHealed int                       `json:"autoHealed"`
	Categories map[string]CategoryCounts `json:"categories,omitempty"`
}

// CategoryCounts are the per-category counters inside RunMetadata.
type CategoryCounts struct {
	Checked    int `json:"checked"`
	Issues     int `json:"issues"`
	AutoHealed int `json:"autoHealed"`
}

// ReconciliationIssue is a row of reconciliation_issues, keyed by IssueKey.
type ReconciliationIssue struct {
	IssueID         string         `json:"issueID"`
	IssueKey        string         `json:"issueKey"`
	IssueType       string         `json:"issueType"`
	Severity        string         `json:"severity"`
	SourceKind      string         `json:"sourceKind"`
	SourceID        string         `json:"sourceID"`
	Status          string         `json:"status"`
	AutoHealed      bool           `json:"autoHealed"`
	RunID           *string        `json:"runID"`
	DetectionCount  int            `json:"detectionCount"`
	Details         map[string]any `json:"details"` // jsonb
	FirstDetectedAt time.Time      `json:"firstDetectedAt"`
	LastDetectedAt  time.Time      `json:"lastDetectedAt"`
	ResolvedAt      *time.Time     `json:"resolvedAt"`
}
