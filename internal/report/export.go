package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dkarademir/docstage/internal/models"
)

// ExportJSON writes the full-column dump, one object per ledger row, with
// timestamps as RFC 3339 strings.
func ExportJSON(w io.Writer, rows []models.StagedFile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"filename", "status", "user", "size", "extension",
	"selection_time", "upload_duration", "processing_duration",
	"retry_count", "error",
}

// WriteCSV writes one sheet row per ledger row with the derived composite
// status and human-readable durations.
func WriteCSV(w io.Writer, rows []models.StagedFile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range rows {
		r := &rows[i]
		record := []string{
			r.Filename,
			r.CompositeStatus(),
			r.OwnerUser,
			FormatSize(r.SizeBytes),
			r.Extension,
			r.SelectionTime.Format(time.RFC3339),
			durationCell(r.UploadDuration),
			durationCell(r.ProcessingDuration),
			strconv.FormatInt(r.RetryCount, 10),
			r.ErrorText(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func durationCell(secs *float64) string {
	if secs == nil {
		return ""
	}
	return FormatDuration(*secs)
}
