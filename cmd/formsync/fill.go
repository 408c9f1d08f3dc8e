package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formsync/internal/prompt"
)

func newFillCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fill <page.html>",
		Short: "Fill a form interactively, one step at a time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer eng.Detach()

			filler := prompt.NewFiller(eng, prompt.NewSurveyDriver(), a.logger)
			if err := filler.Fill(cmd.Context()); err != nil {
				if errors.Is(err, prompt.ErrAborted) {
					return nil
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\nSummary")
			for _, line := range filler.Summaries() {
				fmt.Fprintln(out, "  "+line)
			}
			return nil
		},
	}
}
