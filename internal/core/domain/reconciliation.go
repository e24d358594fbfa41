package domain

import "time"

// RunStatus is the state of a reconciliation run. The only transition is processing -> completed.
type RunStatus string

const (
	RunProcessing RunStatus = "processing"
	RunCompleted  RunStatus = "completed"
)

// IssueStatus tracks a reconciliation issue.
type IssueStatus string

const (
	IssueOpen     IssueStatus = "open"
	IssueResolved IssueStatus = "resolved"
)

// Severity ranks reconciliation issues.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Category names one scan performed by the reconciliation runner.
type Category string

const (
	CategorySettlement     Category = "settlement"
	CategoryRefund         Category = "refund"
	CategoryCreditPurchase Category = "drop_in_credit_purchase"
	CategoryPayout         Category = "payout"
)

// CategoryCounts are the counters collected for one category.
type CategoryCounts struct {
	Checked    int `json:"checked"`
	Issues     int `json:"issues"`
	AutoHealed int `json:"autoHealed"`
}

// ReconciliationRun is one invocation of the reconciliation runner.
type ReconciliationRun struct {
	ID            string                      `json:"id"`
	RunKey        string                      `json:"runKey"`
	TriggerSource string                      `json:"triggerSource"`
	Status        RunStatus                   `json:"status"`
	DryRun        bool                        `json:"dryRun"`
	Limit         int                         `json:"limit"`
	Checked       int                         `json:"checked"`
	Issues        int                         `json:"issues"`
	AutoHealed    int                         `json:"autoHealed"`
	Categories    map[Category]CategoryCounts `json:"categories,omitempty"`
	CreatedAt     time.Time                   `json:"createdAt"`
	CompletedAt   *time.Time                  `json:"completedAt,omitempty"`
}

// ReconciliationIssue is a de-duplicated record of a detected ledger gap.
type ReconciliationIssue struct {
	ID              string      `json:"id"`
	IssueKey        string      `json:"issueKey"`
	IssueType       string      `json:"issueType"`
	Severity        Severity    `json:"severity"`
	SourceKind      SourceKind  `json:"sourceKind"`
	SourceID        string      `json:"sourceId"`
	Status          IssueStatus `json:"status"`
	AutoHealed      bool        `json:"autoHealed"`
	RunID           string      `json:"runId"`
	DetectionCount  int         `json:"detectionCount"`
	Details         Metadata    `json:"details"`
	FirstDetectedAt time.Time   `json:"firstDetectedAt"`
	LastDetectedAt  time.Time   `json:"lastDetectedAt"`
	ResolvedAt      *time.Time  `json:"resolvedAt,omitempty"`
}

// IssueKey builds the deterministic key of an issue, e.g.
// missing_settlement_journal:transaction:<id>.
func IssueKey(issueType string, kind SourceKind, sourceID string) string {
	return issueType + ":" + string(kind) + ":" + sourceID
}
