package config

import (
	"flag"
	"os"

	"github.com/dkharitonov/userstore/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-b string   storage backend, "postgres" or "sqlite"
//	-d string   database DSN
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, so the JSON layer's -c/-config flags pass through
// untouched.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Backend, "b", config.Backend, "storage backend (postgres or sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
