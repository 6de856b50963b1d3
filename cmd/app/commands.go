package main

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/trustcore/cmd/app/commands"
	"github.com/allisson/trustcore/internal/app"
	"github.com/allisson/trustcore/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getSealCommands()...)
	cmds = append(cmds, getPKICommands()...)
	return cmds
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

// unlockFlags are shared by every command that needs the master key.
func unlockFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "share",
			Aliases: []string{"s"},
			Usage:   "Unseal share (repeat once per share until the threshold is reached)",
		},
		&cli.BoolFlag{
			Name:  "auto-unseal",
			Value: false,
			Usage: "Unseal with the active auto-unseal KMS config instead of shares",
		},
	}
}

func unlockOptions(cmd *cli.Command) commands.UnlockOptions {
	return commands.UnlockOptions{
		Shares:     cmd.StringSlice("share"),
		AutoUnseal: cmd.Bool("auto-unseal"),
	}
}

// newContainer loads and validates the environment configuration.
func newContainer() (*app.Container, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return app.NewContainer(cfg), nil
}
