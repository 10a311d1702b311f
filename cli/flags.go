package cli

import (
	"flag"
	"io"
	"time"
)

const defaultTimeout = 10 * time.Minute

// Flags represents command line flags
type Flags struct {
	ConfigFile string
	Timeout    time.Duration
	Verbose    bool
	Version    bool
}

// ParseFlags parses args. Usage and errors are written to output.
func ParseFlags(args []string, output io.Writer) (*Flags, error) {
	flags := &Flags{}
	fs := flag.NewFlagSet("authcheck", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to YAML configuration file (defaults apply when empty)")
	fs.DurationVar(&flags.Timeout, "timeout", defaultTimeout, "Deadline for the whole run, 0 for none")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable debug logging")
	fs.BoolVar(&flags.Version, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}
