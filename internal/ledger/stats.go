package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

// SummaryStats aggregates the whole ledger: totals, counts by composite
// status, per-user and per-extension rollups, and daily selection counts for
// the last 30 distinct days.
func (r *SQLiteRepository) SummaryStats(ctx context.Context) (*SummaryStats, error) {
	stats := &SummaryStats{StatusCounts: map[string]int64{}}

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM upload_logs`).Scan(&stats.TotalFiles); err != nil {
		return nil, fmt.Errorf("total files: %w", err)
	}

	if err := r.statusCounts(ctx, stats); err != nil {
		return nil, err
	}
	if err := r.userStats(ctx, stats); err != nil {
		return nil, err
	}
	if err := r.formatStats(ctx, stats); err != nil {
		return nil, err
	}
	if err := r.dailyStats(ctx, stats); err != nil {
		return nil, err
	}

	return stats, nil
}

// statusCounts folds the two status columns into composite buckets the same
// way the row display does: processing outcome outranks upload state.
func (r *SQLiteRepository) statusCounts(ctx context.Context, stats *SummaryStats) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT upload_status, processing_status, COUNT(*)
		FROM upload_logs
		GROUP BY upload_status, processing_status`)
	if err != nil {
		return fmt.Errorf("status counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var up, proc string
		var n int64
		if err := rows.Scan(&up, &proc, &n); err != nil {
			return err
		}
		switch {
		case proc == "completed":
			stats.StatusCounts["processed"] += n
		case proc == "failed":
			stats.StatusCounts["proc_failed"] += n
		case up == "uploaded":
			stats.StatusCounts["uploaded"] += n
		case up == "upload_failed":
			stats.StatusCounts["upload_failed"] += n
		default:
			stats.StatusCounts["selected"] += n
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var dup int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM upload_logs WHERE is_duplicate = 1`).Scan(&dup); err != nil {
		return fmt.Errorf("duplicate count: %w", err)
	}
	stats.StatusCounts["duplicates"] = dup

	return nil
}

func (r *SQLiteRepository) userStats(ctx context.Context, stats *SummaryStats) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_name,
		       COUNT(*) AS total,
		       SUM(CASE WHEN processing_status = 'completed' THEN 1 ELSE 0 END) AS processed,
		       SUM(file_size) AS total_size
		FROM upload_logs
		GROUP BY user_name
		ORDER BY total DESC`)
	if err != nil {
		return fmt.Errorf("user stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u UserStat
		if err := rows.Scan(&u.User, &u.Total, &u.Processed, &u.TotalSize); err != nil {
			return err
		}
		stats.UserStats = append(stats.UserStats, u)
	}
	return rows.Err()
}

func (r *SQLiteRepository) formatStats(ctx context.Context, stats *SummaryStats) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT file_extension,
		       COUNT(*) AS count,
		       SUM(file_size) AS total_size,
		       AVG(upload_duration_seconds) AS avg_upload,
		       AVG(processing_duration_seconds) AS avg_processing
		FROM upload_logs
		WHERE file_extension IS NOT NULL AND file_extension != ''
		GROUP BY file_extension
		ORDER BY count DESC`)
	if err != nil {
		return fmt.Errorf("format stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			f              FormatStat
			avgUp, avgProc sql.NullFloat64
		)
		if err := rows.Scan(&f.Extension, &f.Count, &f.TotalSize, &avgUp, &avgProc); err != nil {
			return err
		}
		f.AvgUploadSecs = nullFloat(avgUp)
		f.AvgProcSecs = nullFloat(avgProc)
		stats.FormatStats = append(stats.FormatStats, f)
	}
	return rows.Err()
}

func (r *SQLiteRepository) dailyStats(ctx context.Context, stats *SummaryStats) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DATE(selection_time) AS day, COUNT(*) AS count
		FROM upload_logs
		WHERE selection_time IS NOT NULL
		GROUP BY DATE(selection_time)
		ORDER BY day DESC
		LIMIT 30`)
	if err != nil {
		return fmt.Errorf("daily stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d DailyStat
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return err
		}
		stats.DailyStats = append(stats.DailyStats, d)
	}
	return rows.Err()
}
