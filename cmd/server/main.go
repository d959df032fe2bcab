// Package main implements the entry point for the item catalog server,
// which stores items, queues delayed tasks against them and reports task
// status over HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/strefethen/crud-example/internal/config"
)

// Flags holds the global command line options.
type Flags struct {
	ConfigPath string
	LogLevel   string
}

func main() {
	if err := newRootCmd(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. out receives command output such as
// migration status.
func newRootCmd(out io.Writer) *cli.Command {
	flags := &Flags{}

	serve := newServeCmd(flags)
	app := &cli.Command{
		Name:      "crud-example",
		Usage:     "Serve the item catalog and its delayed tasks",
		UsageText: "crud-example [global options] [command [command options]]",
		Writer:    out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to a YAML, JSON or TOML config file",
				Sources:     cli.EnvVars("CRUD_CONFIG"),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error); overrides the config file",
				Destination: &flags.LogLevel,
			},
		},
		Commands: []*cli.Command{
			serve,
			newMigrateCmd(flags, out),
			newSeedCmd(flags, out),
		},
		// Running without a subcommand serves.
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() > 0 {
				return fmt.Errorf("unknown command %q. Run 'crud-example --help' for usage", c.Args().First())
			}
			return serve.Action(ctx, c)
		},
	}

	return app
}

// loadConfig reads configuration and applies command line overrides.
func loadConfig(flags *Flags) (*config.Config, error) {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if flags.LogLevel != "" {
		cfg.Server.LogLevel = flags.LogLevel
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
