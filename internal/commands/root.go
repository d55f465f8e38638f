package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"qrquicker/internal/app"
	"qrquicker/internal/infra"
)

// NewRoot builds the qrquicker command tree. The container is created in the
// Before hook and released in After.
func NewRoot(version string) *cli.Command {
	var (
		flags     = &Flags{}
		container = &app.Container{}
		ready     bool
	)

	root := &cli.Command{
		Name:      "qrquicker",
		Usage:     "Generate, publish and read QR codes",
		UsageText: "qrquicker [global options] command [command options]",
		Version:   version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("QRQ_LOG_LEVEL"),
				Value:       "warn",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to a YAML config file",
				Sources:     cli.EnvVars(infra.ConfigFileEnv),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "locale",
				Usage:       "language of notification texts",
				Sources:     cli.EnvVars("QRQ_LOCALE"),
				Destination: &flags.Locale,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := infra.LoadConfigFile(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			logger := infra.NewCLILogger(flags.LogLevel)

			built, err := app.New(ctx, cfg, logger)
			if err != nil {
				return ctx, err
			}
			*container = *built
			ready = true
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if ready {
				container.Close()
			}
			return nil
		},
	}

	root = NewCreateCmd(flags, container).Register(root)
	root = NewDecodeCmd(flags, container).Register(root)
	root = NewGalleryCmd(flags, container).Register(root)
	root = NewSweepCmd(flags, container).Register(root)

	return root
}
