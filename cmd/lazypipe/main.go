// Command lazypipe concatenates files through a lazy pipeline, like cat, or counts
// their lines, like wc -l.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/askiada/go-lazypipe/internal/cli"
	"github.com/askiada/go-lazypipe/pkg/shell"
)

func main() {
	os.Exit(run())
}

func run() int {
	flags := cli.NewFlagSet("lazypipe", pflag.ExitOnError)
	_ = flags.Parse(os.Args[1:])

	fs := afero.NewOsFs()
	cfg, err := cli.LoadConfig(fs, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERR:", err)

		return 1
	}
	err = cfg.Validate()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERR:", err)
		flags.Usage()

		return 2
	}
	logger, err := cli.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERR:", err)

		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := shell.NewSession(fs, cfg.Workdir)
	if err != nil {
		logger.Error().Err(err).Msg("unable to open working directory")

		return 1
	}

	err = cli.NewRunner(cfg, session, os.Stdout, logger).Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("lazypipe failed")

		return 1
	}

	return 0
}
