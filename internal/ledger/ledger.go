package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/dkarademir/docstage/internal/models"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// Window restricts a query to rows selected within a relative time span.
type Window string

const (
	WindowAll   Window = ""
	WindowHour  Window = "1h"
	WindowDay   Window = "24h"
	WindowWeek  Window = "7d"
	WindowMonth Window = "30d"
)

// cutoff returns the lower bound for selection_time, or zero for WindowAll.
func (w Window) cutoff(now time.Time) (time.Time, bool) {
	switch w {
	case WindowHour:
		return now.Add(-time.Hour), true
	case WindowDay:
		return now.Add(-24 * time.Hour), true
	case WindowWeek:
		return now.Add(-7 * 24 * time.Hour), true
	case WindowMonth:
		return now.Add(-30 * 24 * time.Hour), true
	default:
		return time.Time{}, false
	}
}

// Filters narrows QueryFiltered results. Zero values mean "no restriction".
type Filters struct {
	// Status filters on the derived composite status. Accepted values:
	// SELECTED, UPLOADED, PROCESSED, DUPLICATE, UP_FAILED, PROC_FAILED.
	Status string

	// User matches user_name exactly.
	User string

	// Window keeps rows whose selection_time is within the span.
	Window Window

	// Extension matches file_extension exactly (".pdf").
	Extension string
}

// DuplicateInfo describes the most recent ledger row for a filename.
type DuplicateInfo struct {
	ID                int64
	SelectionTime     time.Time
	OverwriteCount    int64
	LastDuplicateTime *time.Time
}

// UserStat aggregates per-operator totals.
type UserStat struct {
	User      string
	Total     int64
	Processed int64
	TotalSize int64
}

// SuccessRate is the share of the user's files that completed processing.
func (u UserStat) SuccessRate() float64 {
	if u.Total == 0 {
		return 0
	}
	return float64(u.Processed) / float64(u.Total)
}

// FormatStat aggregates per-extension totals and average durations.
type FormatStat struct {
	Extension     string
	Count         int64
	TotalSize     int64
	AvgUploadSecs *float64
	AvgProcSecs   *float64
}

// DailyStat is the number of selections on one calendar day.
type DailyStat struct {
	Date  string
	Count int64
}

// SummaryStats is the aggregate view over the whole ledger.
type SummaryStats struct {
	TotalFiles   int64
	StatusCounts map[string]int64
	UserStats    []UserStat
	FormatStats  []FormatStat
	DailyStats   []DailyStat
}

// Repository is the persistence contract for staged files and operation
// records. Inserts are append-only; the upload/processing transitions are
// bulk updates keyed by current state, never by row id, so an entire
// in-flight batch moves atomically from the caller's perspective.
type Repository interface {
	// InsertSelection appends one row for a freshly staged file and returns
	// its id. Status fields start at selected/not_processed.
	InsertSelection(ctx context.Context, f *models.StagedFile) (int64, error)

	// HasHash reports whether any prior row carries the given content hash.
	HasHash(ctx context.Context, hash string) (bool, error)

	// LatestByName returns duplicate bookkeeping for the most recent row with
	// the given filename, or ErrNotFound.
	LatestByName(ctx context.Context, filename string) (*DuplicateInfo, error)

	// BumpOverwrite increments overwrite_count and stamps last_duplicate_time
	// on every row with the given filename.
	BumpOverwrite(ctx context.Context, filename string) error

	// TouchDuplicate stamps last_duplicate_time without touching the counter.
	TouchDuplicate(ctx context.Context, filename string) error

	// MarkUploading moves selected -> uploading and stamps upload_start_time.
	MarkUploading(ctx context.Context) (int64, error)
	// MarkUploaded moves uploading -> uploaded, stamping end time + duration.
	MarkUploaded(ctx context.Context) (int64, error)
	// MarkUploadFailed moves uploading -> upload_failed, records the error
	// text and bumps retry_count.
	MarkUploadFailed(ctx context.Context, errMsg string) (int64, error)

	// MarkProcessing moves uploaded+not_processed -> processing.
	MarkProcessing(ctx context.Context) (int64, error)
	// MarkProcessingCompleted moves processing -> completed with durations.
	MarkProcessingCompleted(ctx context.Context) (int64, error)
	// MarkProcessingFailed moves processing -> failed, records the error text
	// and bumps retry_count.
	MarkProcessingFailed(ctx context.Context, errMsg string) (int64, error)

	// QueryFiltered returns full rows matching the filters, newest selection
	// first.
	QueryFiltered(ctx context.Context, f Filters) ([]models.StagedFile, error)

	// Users lists distinct operator names.
	Users(ctx context.Context) ([]string, error)

	// CountByUploadStatus counts rows currently in the given upload state.
	CountByUploadStatus(ctx context.Context, s models.UploadStatus) (int64, error)

	// SummaryStats computes the aggregate view (status, user, format, daily).
	SummaryStats(ctx context.Context) (*SummaryStats, error)

	// StartOperation records the beginning of a remote call attempt.
	StartOperation(ctx context.Context, op models.OperationType, user string, fileCount, totalSize int64) (int64, error)
	// FinishOperation records the single outcome of an attempt.
	FinishOperation(ctx context.Context, id int64, successCount, errorCount int64, errMsg string) error
	// Operations lists all recorded attempts, newest first.
	Operations(ctx context.Context) ([]models.OperationRecord, error)

	// ClearAll truncates both tables. Irreversible; staged files on disk are
	// not touched.
	ClearAll(ctx context.Context) error
}
