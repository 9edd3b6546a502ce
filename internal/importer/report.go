package importer

import (
	"fmt"
	"sort"

	"github.com/kosarica/catalog-import/internal/types"
)

// BuildResult assembles the result payload for a job. Every row is
// included, successes too, ordered by row index.
func BuildResult(job types.ImportJob, rows []types.RowResult) types.ImportResult {
	items := make([]types.RowResult, len(rows))
	copy(items, rows)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RowIndex < items[j].RowIndex
	})

	result := types.ImportResult{
		ImportID:      job.ID,
		Success:       job.Status == types.ImportCompleted,
		Status:        job.Status,
		TotalRows:     job.TotalRows,
		SuccessCount:  job.SuccessCount,
		FailedCount:   job.FailedCount,
		ReviewCount:   job.ReviewCount,
		EnrichedCount: job.EnrichedCount,
		Items:         items,
	}
	if job.ErrorMessage != nil {
		result.Error = *job.ErrorMessage
	}
	return result
}

// Summarize renders a one-line summary of a result
func Summarize(result types.ImportResult) string {
	switch result.Status {
	case types.ImportFailed:
		return fmt.Sprintf("import %s failed: %s", result.ImportID, result.Error)
	case types.ImportCompleted:
		return fmt.Sprintf("import %s completed: %d rows, %d succeeded (%d for review), %d failed, %d enriched",
			result.ImportID, result.TotalRows, result.SuccessCount, result.ReviewCount, result.FailedCount, result.EnrichedCount)
	default:
		return fmt.Sprintf("import %s is %s", result.ImportID, result.Status)
	}
}

// tally fills the job counters from row results
func tally(job *types.ImportJob, rows []types.RowResult) {
	job.TotalRows = len(rows)
	job.SuccessCount, job.FailedCount, job.ReviewCount, job.EnrichedCount = 0, 0, 0, 0
	for _, row := range rows {
		switch row.Status {
		case types.RowSuccess:
			job.SuccessCount++
		case types.RowReview:
			job.SuccessCount++
			job.ReviewCount++
		case types.RowFailed:
			job.FailedCount++
		}
		if row.Enriched {
			job.EnrichedCount++
		}
	}
}
