package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"qrquicker/internal/app"
	"qrquicker/internal/domain"
	"qrquicker/internal/pipeline"
)

type CreateCmd struct {
	flags     *Flags
	container *app.Container
}

// NewCreateCmd creates a new create command
func NewCreateCmd(flags *Flags, container *app.Container) *CreateCmd {
	return &CreateCmd{flags: flags, container: container}
}

// Register adds the create command to the application
func (cmd *CreateCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:      "create",
		Usage:     "Generate QR codes and publish them to the gallery",
		UsageText: "qrquicker create <text> [<text>...]",
		Description: `Runs the generate and save chain for every argument on the pipeline
workers and waits for all chains to finish. Each text becomes one gallery
entry. More texts than the queue holds are fed in as room frees up.`,
		Action: cmd.run,
	})
	return root
}

func (cmd *CreateCmd) run(ctx context.Context, c *cli.Command) error {
	texts := c.Args().Slice()
	if len(texts) == 0 {
		return errors.New("at least one text is required")
	}

	ctrl := cmd.container.Controller
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	runErr := make(chan error, 1)
	go func() {
		runErr <- ctrl.Run(runCtx)
		cancel()
	}()

	chans := make([]<-chan pipeline.ChainOutcome, 0, len(texts))
	for _, text := range texts {
		ch, err := ctrl.SubmitWait(runCtx, domain.CreationRequest{Text: text, Locale: cmd.flags.Locale})
		if err != nil {
			cancel()
			if rerr := <-runErr; rerr != nil {
				return fmt.Errorf("start pipeline: %w", rerr)
			}
			return fmt.Errorf("submit %q: %w", text, err)
		}
		chans = append(chans, ch)
	}

	outcomes := make([]pipeline.ChainOutcome, len(chans))
	for i, ch := range chans {
		outcomes[i] = <-ch
	}
	cancel()
	if err := <-runErr; err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TEXT\tSTATUS\tRESULT")
	failed := 0
	for i, out := range outcomes {
		result := out.Output.Get(pipeline.KeyPublishedURI)
		if !out.Succeeded() {
			failed++
			result = fmt.Sprintf("%s at %s", out.Failure, out.FailedStep)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", truncate(texts[i], 40), out.Status, result)
	}
	_ = w.Flush()

	if failed > 0 {
		return fmt.Errorf("%d of %d codes failed", failed, len(texts))
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}
