package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkarademir/docstage/internal/dbx"
	"github.com/dkarademir/docstage/internal/models"
)

// timeLayout is the storage format for all timestamps: UTC, millisecond
// precision, fixed width so lexicographic comparison matches time order and
// SQLite's date functions can parse it.
const timeLayout = "2006-01-02 15:04:05.000"

// nowFn is a test seam for the wall clock.
var nowFn = time.Now

func stamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) InsertSelection(ctx context.Context, f *models.StagedFile) (int64, error) {
	now := stamp(nowFn())

	query := `INSERT INTO upload_logs
		(filename, file_hash, file_size, file_extension, user_name, original_path, local_path,
		 is_duplicate, selection_time, upload_status, processing_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'selected', 'not_processed', ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		f.Filename, f.ContentHash, f.SizeBytes, f.Extension, f.OwnerUser,
		f.OriginalPath, f.LocalPath, f.IsDuplicate, now, now, now)
	if err != nil {
		return 0, fmt.Errorf("insert selection: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) HasHash(ctx context.Context, hash string) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM upload_logs WHERE file_hash = ?`, hash).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count by hash: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) LatestByName(ctx context.Context, filename string) (*DuplicateInfo, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, selection_time, overwrite_count, last_duplicate_time
		FROM upload_logs
		WHERE filename = ?
		ORDER BY selection_time DESC, id DESC
		LIMIT 1`, filename)

	var (
		info    DuplicateInfo
		selRaw  string
		lastRaw sql.NullString
		count   sql.NullInt64
	)
	if err := row.Scan(&info.ID, &selRaw, &count, &lastRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("latest by name: %w", err)
	}

	info.OverwriteCount = count.Int64
	if t, err := parseStamp(selRaw); err == nil {
		info.SelectionTime = t
	}
	info.LastDuplicateTime = parseNullStamp(lastRaw)
	return &info, nil
}

func (r *SQLiteRepository) BumpOverwrite(ctx context.Context, filename string) error {
	now := stamp(nowFn())
	_, err := r.db.ExecContext(ctx, `
		UPDATE upload_logs
		SET overwrite_count = overwrite_count + 1,
		    last_duplicate_time = ?,
		    updated_at = ?
		WHERE filename = ?`, now, now, filename)
	if err != nil {
		return fmt.Errorf("bump overwrite: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) TouchDuplicate(ctx context.Context, filename string) error {
	now := stamp(nowFn())
	_, err := r.db.ExecContext(ctx, `
		UPDATE upload_logs
		SET last_duplicate_time = ?, updated_at = ?
		WHERE filename = ?`, now, now, filename)
	if err != nil {
		return fmt.Errorf("touch duplicate: %w", err)
	}
	return nil
}

// Bulk-by-state transitions. The WHERE clauses match current state only, so a
// whole cohort moves together; rows parked in a failure state stay put until
// a fresh selection re-enters them into the pipeline.

func (r *SQLiteRepository) MarkUploading(ctx context.Context) (int64, error) {
	now := stamp(nowFn())
	res, err := r.db.ExecContext(ctx, `
		UPDATE upload_logs
		SET upload_status = 'uploading', upload_start_time = ?, updated_at = ?
		WHERE upload_status = 'selected'`, now, now)
	if err != nil {
		return 0, fmt.Errorf("mark uploading: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) MarkUploaded(ctx context.Context) (int64, error) {
	now := stamp(nowFn())
	res, err := r.db.ExecContext(ctx, `
		UPDATE upload_logs
		SET upload_status = 'uploaded',
		    upload_end_time = ?,
		    upload_duration_seconds = MAX((julianday(?) - julianday(upload_start_time)) * 86400.0, 0.0),
		    updated_at = ?
		WHERE upload_status = 'uploading'`, now, now, now)
	if err != nil {
		return 0, fmt.Errorf("mark uploaded: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) MarkUploadFailed(ctx context.Context, errMsg string) (int64, error) {
	now := stamp(nowFn())
	res, err := r.db.ExecContext(ctx, `
		UPDATE upload_logs
		SET upload_status = 'upload_failed',
		    upload_end_time = ?,
		    upload_error_message = ?,
		    retry_count = retry_count + 1,
		    last_retry_time = ?,
		    updated_at = ?
		WHERE upload_status = 'uploading'`, now, errMsg, now, now)
	if err != nil {
		return 0, fmt.Errorf("mark upload failed: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) MarkProcessing(ctx context.Context) (int64, error) {
	now := stamp(nowFn())
	res, err := r.db.ExecContext(ctx, `
		UPDATE upload_logs
		SET processing_status = 'processing', processing_start_time = ?, updated_at = ?
		WHERE upload_status = 'uploaded' AND processing_status = 'not_processed'`, now, now)
	if err != nil {
		return 0, fmt.Errorf("mark processing: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) MarkProcessingCompleted(ctx context.Context) (int64, error) {
	now := stamp(nowFn())
	res, err := r.db.ExecContext(ctx, `
		UPDATE upload_logs
		SET processing_status = 'completed',
		    processing_end_time = ?,
		    processing_duration_seconds = MAX((julianday(?) - julianday(processing_start_time)) * 86400.0, 0.0),
		    updated_at = ?
		WHERE processing_status = 'processing'`, now, now, now)
	if err != nil {
		return 0, fmt.Errorf("mark processing completed: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) MarkProcessingFailed(ctx context.Context, errMsg string) (int64, error) {
	now := stamp(nowFn())
	res, err := r.db.ExecContext(ctx, `
		UPDATE upload_logs
		SET processing_status = 'failed',
		    processing_end_time = ?,
		    processing_error_message = ?,
		    retry_count = retry_count + 1,
		    last_retry_time = ?,
		    updated_at = ?
		WHERE processing_status = 'processing'`, now, errMsg, now, now)
	if err != nil {
		return 0, fmt.Errorf("mark processing failed: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) CountByUploadStatus(ctx context.Context, s models.UploadStatus) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM upload_logs WHERE upload_status = ?`, string(s)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count by upload status: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) StartOperation(ctx context.Context, op models.OperationType, user string, fileCount, totalSize int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO api_stats (operation_type, start_time, file_count, total_size_bytes, user_name)
		VALUES (?, ?, ?, ?, ?)`,
		string(op), stamp(nowFn()), fileCount, totalSize, user)
	if err != nil {
		return 0, fmt.Errorf("start operation: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) FinishOperation(ctx context.Context, id int64, successCount, errorCount int64, errMsg string) error {
	now := stamp(nowFn())

	var errVal any
	if errMsg != "" {
		errVal = errMsg
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE api_stats
		SET end_time = ?,
		    duration_seconds = MAX((julianday(?) - julianday(start_time)) * 86400.0, 0.0),
		    success_count = ?,
		    error_count = ?,
		    error_message = ?
		WHERE id = ?`, now, now, successCount, errorCount, errVal, id)
	if err != nil {
		return fmt.Errorf("finish operation: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ClearAll(ctx context.Context) error {
	if sqlDB, ok := r.db.(*sql.DB); ok {
		return dbx.WithTx(ctx, sqlDB, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return clearTables(ctx, tx)
		})
	}
	return clearTables(ctx, r.db)
}

func clearTables(ctx context.Context, db dbx.DBTX) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM upload_logs`); err != nil {
		return fmt.Errorf("clear upload_logs: %w", err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM api_stats`); err != nil {
		return fmt.Errorf("clear api_stats: %w", err)
	}
	return nil
}
