package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"authcheck/cli"
)

func main() {
	app, err := cli.NewApp(os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	if err := app.Run(context.Background()); err != nil {
		if !errors.Is(err, cli.ErrTestsFailed) {
			logger := app.Logger()
			logger.Error().Err(err).Msg("Application error")
		}
		os.Exit(1)
	}
}
