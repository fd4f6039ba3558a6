package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/apikeys/cmd/app/commands"
	"github.com/allisson/apikeys/internal/app"
	"github.com/allisson/apikeys/internal/config"
)

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func getAPIKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-system-key",
			Usage: "Create a SYSTEM scoped API key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Human-readable key name",
				},
				&cli.IntFlag{
					Name:    "expiration-days",
					Aliases: []string{"e"},
					Value:   0,
					Usage:   "Days until the key expires (0 uses API_KEY_DEFAULT_EXPIRATION_DAYS)",
				},
				&cli.StringFlag{
					Name:    "created-by",
					Aliases: []string{"c"},
					Usage:   "Operator email recorded in the audit trail (defaults to system)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				apiKeyUseCase, err := container.APIKeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateSystemKey(
					ctx,
					apiKeyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("name"),
					int(cmd.Int("expiration-days")),
					cmd.String("created-by"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "create-user-key",
			Usage: "Create a USER scoped API key on behalf of a person",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "owner-email",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Email of the person who will own the key",
				},
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Human-readable key name",
				},
				&cli.IntFlag{
					Name:    "expiration-days",
					Aliases: []string{"e"},
					Value:   0,
					Usage:   "Days until the key expires (0 uses API_KEY_DEFAULT_EXPIRATION_DAYS)",
				},
				&cli.StringFlag{
					Name:    "created-by",
					Aliases: []string{"c"},
					Usage:   "Operator email recorded in the audit trail (defaults to system)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				apiKeyUseCase, err := container.APIKeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateUserKey(
					ctx,
					apiKeyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("owner-email"),
					cmd.String("name"),
					int(cmd.Int("expiration-days")),
					cmd.String("created-by"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "sweep-expired-keys",
			Usage: "Deactivate API keys past their expiration date",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				sweeperUseCase, err := container.SweeperUseCase()
				if err != nil {
					return err
				}

				return commands.RunSweepExpiredKeys(
					ctx,
					sweeperUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "sweep-rotated-keys",
			Usage: "Revoke rotated API keys whose grace period has elapsed",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				sweeperUseCase, err := container.SweeperUseCase()
				if err != nil {
					return err
				}

				return commands.RunSweepRotatedKeys(
					ctx,
					sweeperUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
	}
}
