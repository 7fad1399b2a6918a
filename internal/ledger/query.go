package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dkarademir/docstage/internal/models"
)

func parseStamp(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, s, time.UTC)
}

func parseNullStamp(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := parseStamp(ns.String)
	if err != nil {
		// Rows written by older releases may carry SQLite's own
		// CURRENT_TIMESTAMP format.
		t, err = time.ParseInLocation("2006-01-02 15:04:05", ns.String, time.UTC)
		if err != nil {
			return nil
		}
	}
	return &t
}

func nullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

// buildFilterClause translates Filters into a WHERE fragment and its args.
func buildFilterClause(f Filters, now time.Time) (string, []any) {
	clause := " WHERE 1=1"
	var args []any

	switch f.Status {
	case "SELECTED":
		clause += " AND upload_status = 'selected'"
	case "UPLOADED":
		clause += " AND upload_status = 'uploaded'"
	case "PROCESSED":
		clause += " AND processing_status = 'completed'"
	case "DUPLICATE":
		clause += " AND is_duplicate = 1"
	case "UP_FAILED":
		clause += " AND upload_status = 'upload_failed'"
	case "PROC_FAILED":
		clause += " AND processing_status = 'failed'"
	}

	if f.User != "" {
		clause += " AND user_name = ?"
		args = append(args, f.User)
	}

	if cut, ok := f.Window.cutoff(now); ok {
		clause += " AND selection_time >= ?"
		args = append(args, stamp(cut))
	}

	if f.Extension != "" {
		clause += " AND file_extension = ?"
		args = append(args, f.Extension)
	}

	return clause, args
}

const stagedFileColumns = `id, filename, file_hash, file_size, file_extension,
	selection_time, upload_start_time, upload_end_time, upload_duration_seconds,
	processing_start_time, processing_end_time, processing_duration_seconds,
	user_name, original_path, local_path, is_duplicate,
	upload_status, processing_status,
	upload_error_message, processing_error_message,
	retry_count, last_retry_time, overwrite_count, last_duplicate_time,
	created_at, updated_at`

func (r *SQLiteRepository) QueryFiltered(ctx context.Context, f Filters) ([]models.StagedFile, error) {
	clause, args := buildFilterClause(f, nowFn())
	// id breaks ties between selections landing in the same millisecond
	query := "SELECT " + stagedFileColumns + " FROM upload_logs" + clause +
		" ORDER BY selection_time DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query filtered: %w", err)
	}
	defer rows.Close()

	var result []models.StagedFile
	for rows.Next() {
		sf, err := scanStagedFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *sf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filtered rows: %w", err)
	}
	return result, nil
}

func scanStagedFile(rows *sql.Rows) (*models.StagedFile, error) {
	var (
		f models.StagedFile

		selRaw                    string
		upStart, upEnd            sql.NullString
		procStart, procEnd        sql.NullString
		upDur, procDur            sql.NullFloat64
		upErr, procErr            sql.NullString
		lastRetry, lastDup        sql.NullString
		createdRaw, updatedRaw    sql.NullString
		retryCount, overwriteCnt  sql.NullInt64
		isDuplicate               bool
		uploadStatus, procStatus  string
	)

	err := rows.Scan(&f.ID, &f.Filename, &f.ContentHash, &f.SizeBytes, &f.Extension,
		&selRaw, &upStart, &upEnd, &upDur,
		&procStart, &procEnd, &procDur,
		&f.OwnerUser, &f.OriginalPath, &f.LocalPath, &isDuplicate,
		&uploadStatus, &procStatus,
		&upErr, &procErr,
		&retryCount, &lastRetry, &overwriteCnt, &lastDup,
		&createdRaw, &updatedRaw)
	if err != nil {
		return nil, fmt.Errorf("scan staged file: %w", err)
	}

	if t, perr := parseStamp(selRaw); perr == nil {
		f.SelectionTime = t
	} else if t := parseNullStamp(sql.NullString{String: selRaw, Valid: true}); t != nil {
		f.SelectionTime = *t
	}

	f.UploadStartTime = parseNullStamp(upStart)
	f.UploadEndTime = parseNullStamp(upEnd)
	f.UploadDuration = nullFloat(upDur)
	f.ProcessingStartTime = parseNullStamp(procStart)
	f.ProcessingEndTime = parseNullStamp(procEnd)
	f.ProcessingDuration = nullFloat(procDur)
	f.IsDuplicate = isDuplicate
	f.UploadStatus = models.UploadStatus(uploadStatus)
	f.ProcessingStatus = models.ProcessingStatus(procStatus)
	f.UploadError = upErr.String
	f.ProcessingError = procErr.String
	f.RetryCount = retryCount.Int64
	f.LastRetryTime = parseNullStamp(lastRetry)
	f.OverwriteCount = overwriteCnt.Int64
	f.LastDuplicateTime = parseNullStamp(lastDup)
	if t := parseNullStamp(createdRaw); t != nil {
		f.CreatedAt = *t
	}
	if t := parseNullStamp(updatedRaw); t != nil {
		f.UpdatedAt = *t
	}

	return &f, nil
}

func (r *SQLiteRepository) Users(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_name FROM upload_logs ORDER BY user_name`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *SQLiteRepository) Operations(ctx context.Context) ([]models.OperationRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, operation_type, start_time, end_time, duration_seconds,
		       file_count, total_size_bytes, success_count, error_count,
		       error_message, user_name
		FROM api_stats
		ORDER BY start_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	var result []models.OperationRecord
	for rows.Next() {
		var (
			rec      models.OperationRecord
			opType   string
			startRaw string
			endRaw   sql.NullString
			dur      sql.NullFloat64
			succ     sql.NullInt64
			errs     sql.NullInt64
			errMsg   sql.NullString
		)
		err := rows.Scan(&rec.ID, &opType, &startRaw, &endRaw, &dur,
			&rec.FileCount, &rec.TotalSize, &succ, &errs, &errMsg, &rec.OwnerUser)
		if err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}

		rec.OperationType = models.OperationType(opType)
		if t, perr := parseStamp(startRaw); perr == nil {
			rec.StartTime = t
		}
		rec.EndTime = parseNullStamp(endRaw)
		rec.Duration = nullFloat(dur)
		if succ.Valid {
			v := succ.Int64
			rec.SuccessCount = &v
		}
		if errs.Valid {
			v := errs.Int64
			rec.ErrorCount = &v
		}
		rec.ErrorMessage = errMsg.String

		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
