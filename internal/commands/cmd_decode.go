package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"qrquicker/internal/app"
)

type DecodeCmd struct {
	flags     *Flags
	container *app.Container

	jsonOutput bool
}

// NewDecodeCmd creates a new decode command
func NewDecodeCmd(flags *Flags, container *app.Container) *DecodeCmd {
	return &DecodeCmd{flags: flags, container: container}
}

// Register adds the decode command to the application
func (cmd *DecodeCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:      "decode",
		Usage:     "Read the QR code in an image file",
		UsageText: "qrquicker decode [--json] <file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the result as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})
	return root
}

func (cmd *DecodeCmd) run(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("image file is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	res, err := cmd.container.Scanner.Scan(ctx, f, cmd.flags.Locale)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return json.NewEncoder(out).Encode(res)
	}
	_, _ = fmt.Fprintln(out, res.Text)
	if res.Weblink != "" {
		_, _ = fmt.Fprintf(out, "weblink: %s\n", res.Weblink)
	}
	return nil
}
