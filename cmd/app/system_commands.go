package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/trustcore/cmd/app/commands"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Restore the seal state, optionally auto-unseal, and serve the HTTP API",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Apply or roll back database schema migrations",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "steps",
					Value: 0,
					Usage: "Migrations to apply; 0 applies all pending, a negative value rolls back",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				cfg := container.Config()

				return commands.RunMigrations(
					container.Logger(),
					cfg.DBDriver,
					cfg.DBConnectionString,
					int(cmd.Int("steps")),
				)
			},
		},
	}
}
