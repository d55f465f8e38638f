package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"qrquicker/internal/app"
)

type GalleryCmd struct {
	flags     *Flags
	container *app.Container

	limit  int
	offset int
	output string
}

// NewGalleryCmd creates a new gallery command
func NewGalleryCmd(flags *Flags, container *app.Container) *GalleryCmd {
	return &GalleryCmd{flags: flags, container: container}
}

// Register adds the gallery command to the application
func (cmd *GalleryCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "gallery",
		Usage: "Inspect published QR codes",
		Description: `Entries are listed from the configured catalog: Postgres when DATABASE_URL
is set, otherwise the catalog.json file in GALLERY_DIR.`,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List published entries, newest first",
				UsageText: "qrquicker gallery ls [--limit N] [--offset N]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "limit",
						Usage:       "maximum number of entries",
						Value:       20,
						Destination: &cmd.limit,
					},
					&cli.IntFlag{
						Name:        "offset",
						Usage:       "number of entries to skip",
						Destination: &cmd.offset,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "export",
				Usage:     "Write every published entry into a zip archive",
				UsageText: "qrquicker gallery export [--output file.zip]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "output",
						Aliases:     []string{"o"},
						Usage:       "archive path",
						Value:       "qr-quicker.zip",
						Destination: &cmd.output,
					},
				},
				Action: cmd.runExport,
			},
		},
	})
	return root
}

func (cmd *GalleryCmd) runList(ctx context.Context, c *cli.Command) error {
	entries, err := cmd.container.Gallery.List(ctx, cmd.limit, cmd.offset)
	if err != nil {
		return fmt.Errorf("list gallery: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "No entries found\n")
		return nil
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tBYTES\tTAKEN")
	for _, e := range entries {
		taken := time.UnixMilli(e.DateTaken).Format(time.DateTime)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.ID, e.DisplayName, e.Bytes, taken)
	}
	return w.Flush()
}

func (cmd *GalleryCmd) runExport(ctx context.Context, c *cli.Command) error {
	f, err := os.Create(cmd.output)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	n, err := cmd.container.Gallery.Export(ctx, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(cmd.output)
		return fmt.Errorf("export gallery: %w", err)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "exported %d entries to %s\n", n, cmd.output)
	return nil
}
