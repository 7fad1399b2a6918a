// Package models defines the data types shared by the staging pipeline,
// the ledger, and the presentation layer.
package models

import (
	"fmt"
	"time"
)

// UploadStatus tracks a staged file through the remote upload call.
type UploadStatus string

const (
	UploadSelected  UploadStatus = "selected"
	UploadUploading UploadStatus = "uploading"
	UploadUploaded  UploadStatus = "uploaded"
	UploadFailed    UploadStatus = "upload_failed"
)

// ProcessingStatus tracks a staged file through the remote process call.
type ProcessingStatus string

const (
	ProcessingNotProcessed ProcessingStatus = "not_processed"
	ProcessingInProgress   ProcessingStatus = "processing"
	ProcessingCompleted    ProcessingStatus = "completed"
	ProcessingFailed       ProcessingStatus = "failed"
)

// OperationType identifies a remote call attempt recorded in the ledger.
type OperationType string

const (
	OperationUpload  OperationType = "upload"
	OperationProcess OperationType = "process"
)

// StagedFile is one ledger row: a single selection event for a document.
// Each selection appends a new row; rows are never rewritten except for the
// overwrite counters kept on the latest row of the same filename.
type StagedFile struct {
	ID int64 `json:"id"`

	// Filename is the display name (basename) of the document.
	Filename string `json:"filename"`

	// ContentHash is the digest of the file bytes, used only for equality.
	ContentHash string `json:"file_hash"`

	SizeBytes int64  `json:"file_size"`
	Extension string `json:"file_extension"`

	// OwnerUser is a free-text operator identifier, not authenticated.
	OwnerUser string `json:"user_name"`

	// OriginalPath is where the file was selected from.
	OriginalPath string `json:"original_path"`
	// LocalPath is the slot the file occupies inside the staging store.
	LocalPath string `json:"local_path"`

	// IsDuplicate is set on a name collision the operator overwrote, or on a
	// content-hash match with any prior row. The two flags are OR'ed.
	IsDuplicate bool `json:"is_duplicate"`

	// OverwriteCount is bumped in place on the matching filename for every
	// overwrite decision. It never decreases.
	OverwriteCount    int64      `json:"overwrite_count"`
	LastDuplicateTime *time.Time `json:"last_duplicate_time"`

	SelectionTime       time.Time  `json:"selection_time"`
	UploadStartTime     *time.Time `json:"upload_start_time"`
	UploadEndTime       *time.Time `json:"upload_end_time"`
	UploadDuration      *float64   `json:"upload_duration_seconds"`
	ProcessingStartTime *time.Time `json:"processing_start_time"`
	ProcessingEndTime   *time.Time `json:"processing_end_time"`
	ProcessingDuration  *float64   `json:"processing_duration_seconds"`

	UploadStatus     UploadStatus     `json:"upload_status"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`

	UploadError     string `json:"upload_error_message"`
	ProcessingError string `json:"processing_error_message"`

	RetryCount    int64      `json:"retry_count"`
	LastRetryTime *time.Time `json:"last_retry_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompositeStatus derives the single user-facing state of the row.
// Priority: overwritten duplicate > duplicate > completed > proc-failed >
// uploaded > upload-failed > uploading > processing > selected.
func (f *StagedFile) CompositeStatus() string {
	switch {
	case f.IsDuplicate && f.OverwriteCount > 0:
		return fmt.Sprintf("OVERWRITE (%dx)", f.OverwriteCount)
	case f.IsDuplicate:
		return "DUPLICATE"
	case f.ProcessingStatus == ProcessingCompleted:
		return "PROCESSED"
	case f.ProcessingStatus == ProcessingFailed:
		return "PROC_FAILED"
	case f.UploadStatus == UploadUploaded:
		return "UPLOADED"
	case f.UploadStatus == UploadFailed:
		return "UP_FAILED"
	case f.UploadStatus == UploadUploading:
		return "UPLOADING"
	case f.ProcessingStatus == ProcessingInProgress:
		return "PROCESSING"
	default:
		return "SELECTED"
	}
}

// ErrorText returns whichever error message is set, upload errors first.
func (f *StagedFile) ErrorText() string {
	if f.UploadError != "" {
		return f.UploadError
	}
	return f.ProcessingError
}

// OperationRecord is one row per remote call attempt (upload or process).
// End/duration/outcome fields stay nil until the attempt completes; at most
// one outcome is recorded per attempt.
type OperationRecord struct {
	ID            int64         `json:"id"`
	OperationType OperationType `json:"operation_type"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       *time.Time    `json:"end_time"`
	Duration      *float64      `json:"duration_seconds"`
	FileCount     int64         `json:"file_count"`
	TotalSize     int64         `json:"total_size_bytes"`
	SuccessCount  *int64        `json:"success_count"`
	ErrorCount    *int64        `json:"error_count"`
	ErrorMessage  string        `json:"error_message"`
	OwnerUser     string        `json:"user_name"`
}
