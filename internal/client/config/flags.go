package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/jarsclient/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   store base URL
//	-m string   backend mode: http or local
//	-t int      request timeout in seconds, 0 disables it
//	-d string   session database file, empty disables persistence
//	-s string   seed file for local mode
//	-debug      log requests and responses
//
// os.Args is filtered with flagx.FilterArgs first so -c and friends do not
// trip the parser.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-t", "-d", "-s", "-debug"}, "-debug")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "store base URL")
	mode := fs.String("m", string(cfg.Mode), "backend mode (http or local)")
	timeout := fs.Int("t", int(cfg.Timeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.SessionDB, "d", cfg.SessionDB, "session database file")
	fs.StringVar(&cfg.SeedFile, "s", cfg.SeedFile, "seed file for local mode")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "log requests and responses")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "m":
			cfg.Mode = Mode(strings.ToLower(*mode))
		case "t":
			cfg.Timeout = time.Duration(*timeout) * time.Second
		}
	})
}
