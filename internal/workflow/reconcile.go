package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dkarademir/docstage/internal/ledger"
	"github.com/dkarademir/docstage/internal/models"
)

// ReconcileReport lists the two ways the ledger and the staging directory can
// disagree.
type ReconcileReport struct {
	// MissingFiles are ledger rows whose staged copy no longer exists.
	MissingFiles []models.StagedFile
	// UntrackedFiles are staged files no ledger row points at.
	UntrackedFiles []string
}

func (r *ReconcileReport) Clean() bool {
	return len(r.MissingFiles) == 0 && len(r.UntrackedFiles) == 0
}

// Reconcile compares the ledger against the staging directory. It only
// reports; nothing is deleted or re-inserted.
func (c *Coordinator) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	rows, err := c.repo.QueryFiltered(ctx, ledger.Filters{})
	if err != nil {
		return nil, fmt.Errorf("load ledger rows: %w", err)
	}

	report := &ReconcileReport{}
	tracked := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		tracked[filepath.Base(row.LocalPath)] = struct{}{}
		if row.LocalPath == "" {
			continue
		}
		if _, err := os.Stat(row.LocalPath); os.IsNotExist(err) {
			report.MissingFiles = append(report.MissingFiles, row)
		}
	}

	staged, err := c.store.ListSupported()
	if err != nil {
		return nil, fmt.Errorf("list staged files: %w", err)
	}
	for _, path := range staged {
		if _, ok := tracked[filepath.Base(path)]; !ok {
			report.UntrackedFiles = append(report.UntrackedFiles, path)
		}
	}

	return report, nil
}
