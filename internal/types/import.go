package types

import "time"

// ImportStatus is the lifecycle state of an import job
type ImportStatus string

const (
	ImportPending    ImportStatus = "PENDING"
	ImportProcessing ImportStatus = "PROCESSING"
	ImportCompleted  ImportStatus = "COMPLETED"
	ImportFailed     ImportStatus = "FAILED"
)

// IsTerminal reports whether no further transitions are allowed
func (s ImportStatus) IsTerminal() bool {
	return s == ImportCompleted || s == ImportFailed
}

// CanTransition reports whether a job may move from one status to another
func CanTransition(from, to ImportStatus) bool {
	switch from {
	case ImportPending:
		return to == ImportProcessing || to == ImportFailed
	case ImportProcessing:
		return to == ImportCompleted || to == ImportFailed
	default:
		return false
	}
}

// RowStatus is the per-row sub-outcome inside a processing job
type RowStatus string

const (
	RowSuccess RowStatus = "SUCCESS"
	RowReview  RowStatus = "REVIEW"
	RowFailed  RowStatus = "FAILED"
)

// ImportJob is one supplier catalog upload
type ImportJob struct {
	ID            string       `json:"id"`
	SupplierID    string       `json:"supplierId"`
	Filename      string       `json:"filename"`
	TotalRows     int          `json:"totalRows"`
	SuccessCount  int          `json:"successCount"`
	FailedCount   int          `json:"failedCount"`
	ReviewCount   int          `json:"reviewCount"`
	EnrichedCount int          `json:"enrichedCount"`
	Status        ImportStatus `json:"status"`
	ErrorMessage  *string      `json:"errorMessage,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	CompletedAt   *time.Time   `json:"completedAt,omitempty"`
}

// RowResult is one line of the audit trail returned to the caller
type RowResult struct {
	RowIndex        int         `json:"rowIndex"`
	SKU             string      `json:"sku,omitempty"`
	Status          RowStatus   `json:"status"`
	Success         bool        `json:"success"`
	ProductID       *string     `json:"productId,omitempty"`
	MatchMethod     MatchMethod `json:"matchMethod"`
	MatchConfidence float64     `json:"matchConfidence"`
	NeedsReview     bool        `json:"needsReview"`
	Issues          []IssueTag  `json:"issues"`
	Errors          []string    `json:"errors"`
	Enriched        bool        `json:"enriched,omitempty"`
}

// ImportResult is the job result payload
type ImportResult struct {
	ImportID      string       `json:"importId"`
	Success       bool         `json:"success"`
	Status        ImportStatus `json:"status"`
	Error         string       `json:"error,omitempty"`
	TotalRows     int          `json:"totalRows"`
	SuccessCount  int          `json:"successCount"`
	FailedCount   int          `json:"failedCount"`
	ReviewCount   int          `json:"reviewCount"`
	EnrichedCount int          `json:"enrichedCount"`
	Items         []RowResult  `json:"items"`
}
