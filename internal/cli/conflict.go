package cli

import (
	"strings"

	"github.com/dkarademir/docstage/internal/staging"
)

// conflictDecider prompts for overwrite/skip/cancel on a staging name
// collision. Without a terminal on stdin every collision is skipped, so
// piped input never hangs on a prompt.
func (a *App) conflictDecider() staging.ConflictDecider {
	if !isTerminalFn() {
		return staging.SkipAll
	}
	return staging.DeciderFunc(func(filename string) staging.Decision {
		a.printf("%s is already staged. [o]verwrite / [s]kip / [c]ancel rest?", filename)
		for a.in.Scan() {
			switch strings.ToLower(strings.TrimSpace(a.in.Text())) {
			case "o", "overwrite":
				return staging.DecisionOverwrite
			case "s", "skip", "":
				return staging.DecisionSkip
			case "c", "cancel":
				return staging.DecisionCancel
			default:
				a.printf("Please answer o, s or c")
			}
		}
		return staging.DecisionSkip
	})
}
