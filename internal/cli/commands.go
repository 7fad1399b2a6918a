package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dkarademir/docstage/internal/apiclient"
	"github.com/dkarademir/docstage/internal/background"
	"github.com/dkarademir/docstage/internal/ledger"
	"github.com/dkarademir/docstage/internal/report"
	"github.com/dkarademir/docstage/internal/workflow"
)

func (a *App) cmdUser(ctx context.Context, args []string) {
	if len(args) > 0 {
		a.user = args[0]
		a.printf("Operator set to %s", a.user)
		return
	}
	if a.user == "" {
		a.printf("No operator set. Usage: user <name>")
	} else {
		a.printf("Current operator: %s", a.user)
	}
	if users, err := a.repo.Users(ctx); err == nil && len(users) > 0 {
		a.printf("Known operators: %s", strings.Join(users, ", "))
	}
}

func (a *App) cmdSelect(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		a.printf("Usage: select <path>...")
		return
	}
	a.stage(ctx, paths)
}

func (a *App) cmdSelectDir(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.printf("Usage: selectdir <dir>")
		return
	}
	paths, err := a.store.ScanDir(args[0])
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	if len(paths) == 0 {
		a.printf("No supported files under %s", args[0])
		return
	}
	a.stage(ctx, paths)
}

func (a *App) stage(ctx context.Context, paths []string) {
	res, err := a.resolver.Resolve(ctx, paths, a.user, a.conflictDecider())
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	a.printf("Staged %d file(s), skipped %d", len(res.Accepted), len(res.Skipped))
	if res.Cancelled {
		a.printf("Selection cancelled; remaining files were not staged")
	}
}

func (a *App) cmdList(ctx context.Context, args []string) {
	filters, err := parseFilters(args)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	rows, err := a.repo.QueryFiltered(ctx, filters)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	if len(rows) == 0 {
		a.printf("No matching rows")
		return
	}
	for i := range rows {
		r := &rows[i]
		line := r.SelectionTime.Format("2006-01-02 15:04:05") + "  " +
			pad(r.CompositeStatus(), 16) + pad(r.Filename, 32) +
			pad(report.FormatSize(r.SizeBytes), 10) + r.OwnerUser
		if msg := r.ErrorText(); msg != "" {
			line += "  [" + msg + "]"
		}
		a.printf("%s", line)
	}
	a.printf("%d row(s)", len(rows))
}

// parseFilters turns "status=UPLOADED user=alice window=24h ext=.pdf" tokens
// into a ledger filter.
func parseFilters(args []string) (ledger.Filters, error) {
	var f ledger.Filters
	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		if !ok {
			return f, errors.New("filters look like status=UPLOADED user=alice window=24h ext=.pdf")
		}
		switch key {
		case "status":
			f.Status = strings.ToUpper(val)
		case "user":
			f.User = val
		case "window":
			switch w := ledger.Window(val); w {
			case ledger.WindowHour, ledger.WindowDay, ledger.WindowWeek, ledger.WindowMonth:
				f.Window = w
			default:
				return f, errors.New("window must be one of 1h, 24h, 7d, 30d")
			}
		case "ext":
			if !strings.HasPrefix(val, ".") {
				val = "." + val
			}
			f.Extension = strings.ToLower(val)
		default:
			return f, errors.New("unknown filter: " + key)
		}
	}
	return f, nil
}

func (a *App) cmdUpload(ctx context.Context) {
	a.runner.Submit(ctx, "upload", func(ctx context.Context) background.Result {
		out, err := a.coord.UploadStaged(ctx, a.user)
		return toResult(out, err)
	})
	a.printf("Upload started in background")
}

func (a *App) cmdProcess(ctx context.Context, args []string) {
	recursive := true
	if len(args) > 0 && args[0] == "flat" {
		recursive = false
	}
	a.runner.Submit(ctx, "process", func(ctx context.Context) background.Result {
		out, err := a.coord.ProcessStaged(ctx, a.user, recursive)
		return toResult(out, err)
	})
	a.printf("Processing started in background")
}

func toResult(out apiclient.Outcome, err error) background.Result {
	switch {
	case errors.Is(err, workflow.ErrBusy):
		return background.Result{Message: "operation already in progress"}
	case err != nil:
		return background.Result{Message: err.Error()}
	case !out.Success:
		return background.Result{Message: out.Message}
	default:
		msg := out.Message
		if msg == "" {
			msg = "ok"
		}
		return background.Result{Success: true, Message: msg}
	}
}

func (a *App) cmdStats(ctx context.Context) {
	stats, err := a.repo.SummaryStats(ctx)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	a.printf("Total files: %d", stats.TotalFiles)

	keys := make([]string, 0, len(stats.StatusCounts))
	for k := range stats.StatusCounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a.printf("  %s: %d", k, stats.StatusCounts[k])
	}

	for _, u := range stats.UserStats {
		a.printf("user %s: %d files, %d processed (%.0f%%), %s",
			u.User, u.Total, u.Processed, u.SuccessRate()*100, report.FormatSize(u.TotalSize))
	}
	for _, f := range stats.FormatStats {
		a.printf("format %s: %d files, %s", f.Extension, f.Count, report.FormatSize(f.TotalSize))
	}
}

func (a *App) cmdOps(ctx context.Context) {
	ops, err := a.repo.Operations(ctx)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	if len(ops) == 0 {
		a.printf("No operations recorded")
		return
	}
	for _, op := range ops {
		line := op.StartTime.Format("2006-01-02 15:04:05") + "  " +
			pad(string(op.OperationType), 9) + pad(op.OwnerUser, 12)
		switch {
		case op.EndTime == nil:
			line += "in flight"
		case op.ErrorMessage != "":
			line += "failed: " + op.ErrorMessage
		default:
			line += "ok"
			if op.Duration != nil {
				line += " in " + report.FormatDuration(*op.Duration)
			}
		}
		a.printf("%s", line)
	}
}

func (a *App) cmdExport(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.printf("Usage: export <file.json>")
		return
	}
	rows, err := a.repo.QueryFiltered(ctx, ledger.Filters{})
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	f, err := os.Create(args[0])
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	defer f.Close()
	if err := report.ExportJSON(f, rows); err != nil {
		a.printf("Error: %v", err)
		return
	}
	a.printf("Exported %d row(s) to %s", len(rows), args[0])
}

func (a *App) cmdReport(ctx context.Context, args []string) {
	summary := false
	if len(args) > 0 && args[0] == "summary" {
		summary = true
		args = args[1:]
	}
	if len(args) != 1 {
		a.printf("Usage: report [summary] <file.html|file.csv>")
		return
	}
	path := args[0]

	f, err := os.Create(path)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	defer f.Close()

	switch {
	case summary:
		stats, err := a.repo.SummaryStats(ctx)
		if err == nil {
			err = report.WriteHTMLSummary(f, stats)
		}
		if err != nil {
			a.printf("Error: %v", err)
			return
		}
	case strings.EqualFold(filepath.Ext(path), ".csv"):
		rows, err := a.repo.QueryFiltered(ctx, ledger.Filters{})
		if err == nil {
			err = report.WriteCSV(f, rows)
		}
		if err != nil {
			a.printf("Error: %v", err)
			return
		}
	default:
		rows, err := a.repo.QueryFiltered(ctx, ledger.Filters{})
		if err == nil {
			err = report.WriteHTMLDetail(f, rows)
		}
		if err != nil {
			a.printf("Error: %v", err)
			return
		}
	}
	a.printf("Report written to %s", path)
}

func (a *App) cmdReconcile(ctx context.Context) {
	rep, err := a.coord.Reconcile(ctx)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	if rep.Clean() {
		a.printf("Ledger and staging dir are in sync")
		return
	}
	for _, row := range rep.MissingFiles {
		a.printf("missing on disk: %s (logged %s)",
			row.Filename, row.SelectionTime.Format("2006-01-02 15:04:05"))
	}
	for _, path := range rep.UntrackedFiles {
		a.printf("untracked file: %s", path)
	}
}

func (a *App) cmdClearLogs(ctx context.Context) {
	if !a.confirm("This deletes every ledger row (staged files stay). Type 'yes' to confirm:") {
		a.printf("Aborted")
		return
	}
	if err := a.repo.ClearAll(ctx); err != nil {
		a.printf("Error: %v", err)
		return
	}
	a.printf("Ledger cleared")
}

func (a *App) cmdClearFiles() {
	if !a.confirm("This deletes every staged file (ledger rows stay). Type 'yes' to confirm:") {
		a.printf("Aborted")
		return
	}
	n, err := a.store.ClearFiles()
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	a.printf("Removed %d staged file(s)", n)
}

func (a *App) cmdHealth(ctx context.Context) {
	if a.health.Health(ctx) {
		a.printf("Service at %s is healthy", a.cfg.APIBaseURL)
	} else {
		a.printf("Service at %s is not responding", a.cfg.APIBaseURL)
	}
}

func (a *App) confirm(prompt string) bool {
	a.printf("%s", prompt)
	if !a.in.Scan() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(a.in.Text()), "yes")
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}
