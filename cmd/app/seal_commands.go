package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/trustcore/cmd/app/commands"
	sealDTO "github.com/allisson/trustcore/internal/seal/http/dto"
)

func getSealCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "init",
			Usage: "Initialize the vault and print the unseal shares",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "secret-shares",
					Aliases: []string{"n"},
					Value:   5,
					Usage:   "Number of shares to split the master key into",
				},
				&cli.IntFlag{
					Name:    "secret-threshold",
					Aliases: []string{"t"},
					Value:   3,
					Usage:   "Number of shares required to unseal",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				sealUseCase, err := container.SealUseCase()
				if err != nil {
					return err
				}

				return commands.RunInit(
					ctx,
					sealUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("secret-shares")),
					int(cmd.Int("secret-threshold")),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "unseal",
			Usage: "Verify that a set of unseal shares reconstructs the master key",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:     "share",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Unseal share (repeat once per share)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				sealUseCase, err := container.SealUseCase()
				if err != nil {
					return err
				}

				return commands.RunUnseal(
					ctx,
					sealUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.StringSlice("share"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "status",
			Usage: "Show the vault seal configuration",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				sealUseCase, err := container.SealUseCase()
				if err != nil {
					return err
				}

				return commands.RunStatus(ctx, sealUseCase, commands.DefaultIO().Writer, cmd.String("format"))
			},
		},
		{
			Name:  "create-auto-unseal",
			Usage: "Register a KMS key that wraps the unseal shares (before init)",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "provider",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "KMS provider: awskms, gcpkms, azurekeyvault, hashivault or localsecrets",
				},
				&cli.StringFlag{
					Name:     "kms-key-id",
					Aliases:  []string{"k"},
					Required: true,
					Usage:    "Provider key identifier or full gocloud secrets URL",
				},
				&cli.StringFlag{
					Name:  "region",
					Usage: "Provider region (awskms)",
				},
				&cli.IntFlag{
					Name:  "max-retries",
					Value: -1,
					Usage: "Retries per KMS call during auto-unseal (default 5)",
				},
				&cli.IntFlag{
					Name:  "retry-delay-ms",
					Value: -1,
					Usage: "Initial backoff between KMS retries in milliseconds (default 500)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				sealUseCase, err := container.SealUseCase()
				if err != nil {
					return err
				}

				req := sealDTO.CreateAutoUnsealConfigRequest{
					Provider: cmd.String("provider"),
					KMSKeyID: cmd.String("kms-key-id"),
					Region:   cmd.String("region"),
				}
				if v := int(cmd.Int("max-retries")); v >= 0 {
					req.MaxRetries = &v
				}
				if v := int(cmd.Int("retry-delay-ms")); v >= 0 {
					req.RetryDelayMs = &v
				}

				return commands.RunCreateAutoUnseal(
					ctx,
					sealUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					req,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-auto-unseal",
			Usage: "List auto-unseal configs",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				sealUseCase, err := container.SealUseCase()
				if err != nil {
					return err
				}

				return commands.RunListAutoUnseal(ctx, sealUseCase, commands.DefaultIO().Writer, cmd.String("format"))
			},
		},
	}
}
