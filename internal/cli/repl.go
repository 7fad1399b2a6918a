package cli

import (
	"context"
	"strings"

	"github.com/dkarademir/docstage/internal/background"
)

const helpText = `Available commands:
  user [name]             show or set the operator name
  select <path>...        stage files for upload
  selectdir <dir>         stage every supported file under dir, recursively
  list [filters]          show ledger rows (status=X user=X window=1h|24h|7d|30d ext=.pdf)
  upload                  send staged files to the server (runs in background)
  process [flat]          trigger server-side processing (flat = non-recursive)
  stats                   aggregate statistics
  ops                     remote call history
  export <file.json>      dump all rows as JSON
  report [summary] <file> write an HTML or CSV report
  reconcile               compare ledger against staging dir
  clearlogs               delete all ledger rows (files stay)
  clearfiles              delete all staged files (ledger stays)
  health                  probe the remote service
  exit                    leave`

// repl reads commands until EOF or exit. Completions of background
// operations are delivered here, before each prompt, never from the worker
// goroutine.
func (a *App) repl(ctx context.Context) {
	for {
		a.drainCompletions()

		prompt := "docstage"
		if a.user != "" {
			prompt += " [" + a.user + "]"
		}
		if n := a.runner.Pending(); n > 0 {
			prompt += " (working)"
		}
		a.printf("%s > ", prompt)

		if !a.in.Scan() {
			return
		}
		parts := strings.Fields(a.in.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			a.printf("%s", helpText)
		case "user":
			a.cmdUser(ctx, args)
		case "select":
			a.cmdSelect(ctx, args)
		case "selectdir":
			a.cmdSelectDir(ctx, args)
		case "list":
			a.cmdList(ctx, args)
		case "upload":
			a.cmdUpload(ctx)
		case "process":
			a.cmdProcess(ctx, args)
		case "stats":
			a.cmdStats(ctx)
		case "ops":
			a.cmdOps(ctx)
		case "export":
			a.cmdExport(ctx, args)
		case "report":
			a.cmdReport(ctx, args)
		case "reconcile":
			a.cmdReconcile(ctx)
		case "clearlogs":
			a.cmdClearLogs(ctx)
		case "clearfiles":
			a.cmdClearFiles()
		case "health":
			a.cmdHealth(ctx)
		case "exit", "quit":
			a.printf("Bye!")
			return
		default:
			a.printf("Unknown command: %s", cmd)
		}
	}
}

func (a *App) drainCompletions() {
	a.runner.Drain(func(res background.Result) {
		if res.Success {
			a.printf("[%s] done in %.1fs: %s", res.Name, res.Elapsed.Seconds(), res.Message)
		} else {
			a.printf("[%s] failed: %s", res.Name, res.Message)
		}
	})
}
