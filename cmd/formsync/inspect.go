package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formsync/internal/report"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		workers int
		format  string
	)
	cmd := &cobra.Command{
		Use:   "inspect <page.html>...",
		Short: "List steps, fields, summary slots, conditional blocks and radio groups",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}
			pages := make([]report.Page, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			if workers > 0 {
				g.SetLimit(workers)
			}
			for i, path := range args {
				g.Go(func() error {
					eng, err := a.open(ctx, path)
					if err != nil {
						return err
					}
					defer eng.Detach()
					pages[i] = report.Build(path, eng)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			if format == "json" {
				return report.RenderJSON(cmd.OutOrStdout(), pages)
			}
			return report.Render(cmd.OutOrStdout(), pages)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().IntVar(&workers, "workers", 4, "Pages inspected concurrently (0 = unlimited)")
	return cmd
}
