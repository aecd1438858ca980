package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// Config holds the parsed empdir command line.
// Empty strings mean "not given"; settings then fall back to the
// environment, the config file and built-in defaults, in that order.
type Config struct {
	ConfigFile string
	Version    string
	Color      string
	Listen     string
	Templates  string
	InitSchema bool
	Verbose    bool
}

// Parse parses command-line arguments into a Config.
//
// Format:
//
//	empdir [-c <file>] [--version v2] [--color blue] [-listen :8080]
//	       [-templates <dir>] [-init-schema] [-v]
//
// Positional arguments are rejected.
func Parse(args []string) (Config, error) {
	cfg := Config{}

	fs := flag.NewFlagSet("empdir", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ConfigFile, "c", "", "")
	fs.StringVar(&cfg.ConfigFile, "config", "", "")
	fs.StringVar(&cfg.Version, "version", "", "")
	fs.StringVar(&cfg.Color, "color", "", "")
	fs.StringVar(&cfg.Listen, "listen", "", "")
	fs.StringVar(&cfg.Templates, "templates", "", "")
	fs.BoolVar(&cfg.InitSchema, "init-schema", false, "")
	fs.BoolVar(&cfg.Verbose, "v", false, "")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "")

	fs.Usage = func() {
		fmt.Fprint(fs.Output(), Usage())
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			fmt.Print(Usage())
			return cfg, err
		}
		return cfg, err
	}

	if rest := fs.Args(); len(rest) > 0 {
		return cfg, fmt.Errorf("unexpected argument %q", rest[0])
	}

	cfg.Color = strings.TrimSpace(cfg.Color)
	cfg.Version = strings.TrimSpace(cfg.Version)
	return cfg, nil
}

// Usage returns the help text.
func Usage() string {
	return `Usage: empdir [flags]

Serves the employee directory.

Flags:
  -c, -config <file>   settings file (default: empdir.yaml, optional)
  --version <tag>      display version (env VERSION, default v1)
  --color <name>       theme color (env APP_COLOR, default lime)
                       one of: red green blue blue2 pink darkblue lime
  -listen <addr>       HTTP listen address (env LISTEN, default :8080)
  -templates <dir>     serve templates from disk and reload on change
  -init-schema         create the employee table if it does not exist
  -v, -verbose         verbose output

Environment:
  DBDRIVER DBHOST DBPORT DBUSER DBPWD DATABASE VERSION APP_COLOR LISTEN TEMPLATES
`
}
