package model

import (
	"math"
	"time"
)

// BatchStatus is the lifecycle of a batch job.
type BatchStatus string

const (
	BatchQueued              BatchStatus = "queued"
	BatchRunning             BatchStatus = "running"
	BatchCompletedOK         BatchStatus = "completed_successfully"
	BatchCompletedWithErrors BatchStatus = "completed_with_errors"
	BatchFailed              BatchStatus = "failed"
)

// BatchRow is one unit of work submitted to a batch job.
type BatchRow struct {
	MainKeyword string   `json:"main_keyword"`
	Subsidiary  []string `json:"subsidiary_keywords"`
}

// RowResult records the outcome of one processed row.
type RowResult struct {
	Row          int    `json:"row"`
	MainKeyword  string `json:"main_keyword"`
	KeywordSetID string `json:"keyword_set_id,omitempty"`
	ArticleID    string `json:"article_id,omitempty"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`

	// Timestamp marks when the row reached its terminal status.
	Timestamp time.Time `json:"timestamp"`
}

// BatchJob is the mutable status document of one batch run. The worker is
// its only writer; readers poll a point-in-time copy.
type BatchJob struct {
	ID          string      `json:"id"`
	Status      BatchStatus `json:"status"`
	TotalRows   int         `json:"total_rows"`
	Processed   int         `json:"processed"`
	Failed      int         `json:"failed"`
	CurrentRow  int         `json:"current_row"`
	Stage       string      `json:"stage"`
	Progress    float64     `json:"progress"`
	Results     []RowResult `json:"results"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

func NewBatchJob(id string, totalRows int) *BatchJob {
	now := time.Now()
	return &BatchJob{
		ID:        id,
		Status:    BatchQueued,
		TotalRows: totalRows,
		Results:   []RowResult{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Terminal reports whether the job has reached a final state.
func (j *BatchJob) Terminal() bool {
	switch j.Status {
	case BatchCompletedOK, BatchCompletedWithErrors, BatchFailed:
		return true
	}
	return false
}

// ProgressPercent computes processed/total as a percentage rounded to two
// decimals. Total of zero yields zero.
func ProgressPercent(processed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(processed)/float64(total)*100*100) / 100
}
