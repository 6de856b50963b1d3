package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/trustcore/cmd/app/commands"
	pkiDTO "github.com/allisson/trustcore/internal/pki/http/dto"
)

func keyOptionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "key-type",
			Value: "rsa",
			Usage: "Key algorithm: 'rsa' or 'ecdsa'",
		},
		&cli.IntFlag{
			Name:  "key-size",
			Usage: "RSA modulus size (2048, 4096) or ECDSA curve size (384); 0 uses the default",
		},
		&cli.IntFlag{
			Name:  "validity-days",
			Usage: "Validity period in days; 0 uses the configured default",
		},
		&cli.StringFlag{Name: "country", Usage: "Two-letter subject country code"},
		&cli.StringFlag{Name: "state", Usage: "Subject state or province"},
		&cli.StringFlag{Name: "locality", Usage: "Subject locality"},
	}
}

func keyOptions(cmd *cli.Command) pkiDTO.KeyOptionsRequest {
	return pkiDTO.KeyOptionsRequest{
		KeyType:      cmd.String("key-type"),
		KeySize:      int(cmd.Int("key-size")),
		ValidityDays: int(cmd.Int("validity-days")),
		Country:      cmd.String("country"),
		State:        cmd.String("state"),
		Locality:     cmd.String("locality"),
	}
}

func subjectFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "common-name",
			Aliases:  []string{"cn"},
			Required: true,
			Usage:    "Subject common name",
		},
		&cli.StringFlag{
			Name:     "organization",
			Aliases:  []string{"o"},
			Required: true,
			Usage:    "Subject organization",
		},
	}
}

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, group := range groups {
		flags = append(flags, group...)
	}
	return flags
}

func getPKICommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "generate-root-ca",
			Usage: "Generate a self-signed root CA and print its private key once",
			Flags: withFlags(subjectFlags(), keyOptionFlags(), unlockFlags(), []cli.Flag{formatFlag()}),
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
				pkiUseCase, err := container.PKIUseCase()
				if err != nil {
					return err
				}

				return commands.RunGenerateRootCA(
					ctx,
					sealUseCase,
					pkiUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					unlockOptions(cmd),
					pkiDTO.GenerateRootCARequest{
						CommonName:        cmd.String("common-name"),
						Organization:      cmd.String("organization"),
						KeyOptionsRequest: keyOptions(cmd),
					},
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "generate-intermediate-ca",
			Usage: "Generate an intermediate CA signed by an existing CA",
			Flags: withFlags(
				subjectFlags(),
				[]cli.Flag{
					&cli.StringFlag{
						Name:     "parent-ca-id",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "ID of the signing CA (UUID)",
					},
				},
				keyOptionFlags(),
				unlockFlags(),
				[]cli.Flag{formatFlag()},
			),
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
				pkiUseCase, err := container.PKIUseCase()
				if err != nil {
					return err
				}

				return commands.RunGenerateIntermediateCA(
					ctx,
					sealUseCase,
					pkiUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					unlockOptions(cmd),
					pkiDTO.GenerateIntermediateCARequest{
						CommonName:        cmd.String("common-name"),
						Organization:      cmd.String("organization"),
						ParentCAID:        cmd.String("parent-ca-id"),
						KeyOptionsRequest: keyOptions(cmd),
					},
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "sign-csr",
			Usage: "Issue a client certificate for a PEM encoded CSR",
			Flags: withFlags(
				[]cli.Flag{
					&cli.StringFlag{
						Name:     "csr",
						Required: true,
						Usage:    "Path to the CSR PEM file, or '-' to read from stdin",
					},
					&cli.StringFlag{
						Name:     "ca-id",
						Required: true,
						Usage:    "ID of the signing CA (UUID)",
					},
					&cli.StringFlag{
						Name:     "cert-type",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Certificate type: agent_client, app_client or admin_client",
					},
					&cli.IntFlag{
						Name:  "validity-days",
						Usage: "Validity period in days; 0 uses the configured default",
					},
					&cli.StringFlag{Name: "entity-id", Usage: "Identifier of the entity the certificate is issued to"},
					&cli.StringFlag{Name: "entity-type", Usage: "Kind of entity the certificate is issued to"},
				},
				unlockFlags(),
				[]cli.Flag{formatFlag()},
			),
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
				pkiUseCase, err := container.PKIUseCase()
				if err != nil {
					return err
				}

				return commands.RunSignCSR(
					ctx,
					sealUseCase,
					pkiUseCase,
					container.Logger(),
					commands.DefaultIO(),
					unlockOptions(cmd),
					cmd.String("csr"),
					pkiDTO.SignCSRRequest{
						CAID:         cmd.String("ca-id"),
						CertType:     cmd.String("cert-type"),
						ValidityDays: int(cmd.Int("validity-days")),
						EntityID:     cmd.String("entity-id"),
						EntityType:   cmd.String("entity-type"),
					},
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "revoke-certificate",
			Usage: "Mark a certificate as revoked",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Certificate ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "reason",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Revocation reason",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				pkiUseCase, err := container.PKIUseCase()
				if err != nil {
					return err
				}

				return commands.RunRevokeCertificate(
					ctx,
					pkiUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("reason"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "ca-chain",
			Usage: "Print the PEM bundle of all non-revoked CAs",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				pkiUseCase, err := container.PKIUseCase()
				if err != nil {
					return err
				}

				return commands.RunCAChain(ctx, pkiUseCase, commands.DefaultIO().Writer)
			},
		},
	}
}
