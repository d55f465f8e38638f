package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"qrquicker/internal/app"
)

type SweepCmd struct {
	flags     *Flags
	container *app.Container
}

// NewSweepCmd creates a new sweep command
func NewSweepCmd(flags *Flags, container *app.Container) *SweepCmd {
	return &SweepCmd{flags: flags, container: container}
}

// Register adds the sweep command to the application
func (cmd *SweepCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:      "sweep",
		Usage:     "Remove generated temp files older than TEMP_RETENTION",
		UsageText: "qrquicker sweep",
		Action:    cmd.run,
	})
	return root
}

func (cmd *SweepCmd) run(ctx context.Context, c *cli.Command) error {
	if !cmd.container.Sweeper.Enabled() {
		_, _ = fmt.Fprintln(c.Root().Writer, "temp retention disabled, nothing to do")
		return nil
	}
	removed, err := cmd.container.Sweeper.SweepOnce(ctx)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "removed %d temp files\n", removed)
	return nil
}
