package config

import (
	"flag"
	"os"

	"github.com/dkarademir/docstage/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the remote document service
//	-d string   staging directory
//	-b string   ledger SQLite file
//	-u string   operator identifier
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-b", "-u"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the remote document service")
	fs.StringVar(&cfg.StagingDir, "d", cfg.StagingDir, "staging directory")
	fs.StringVar(&cfg.DBPath, "b", cfg.DBPath, "ledger database file")
	fs.StringVar(&cfg.OwnerUser, "u", cfg.OwnerUser, "operator identifier")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
