package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsync/internal/config"
	"github.com/goliatone/go-formsync/pkg/dom"
	"github.com/goliatone/go-formsync/pkg/engine"
)

var errUnknownField = errors.New("no control matches field")

func newApplyCmd(a *app) *cobra.Command {
	var (
		valuesPath string
		output     string
		strict     bool
	)
	cmd := &cobra.Command{
		Use:   "apply <page.html>",
		Short: "Enter values into a page and write the resulting HTML",
		Long: `apply attaches the engine, enters each value from the values file the way a
user would (typing, choosing, clicking) and writes the page with summaries
mirrored and conditional blocks shown or hidden.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := config.LoadValues(valuesPath)
			if err != nil {
				return err
			}
			eng, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer eng.Detach()

			for _, v := range values {
				if err := applyValue(eng, v); err != nil {
					if strict {
						return err
					}
					a.logger.Warn("value not applied", zap.String("field", v.Field), zap.Error(err))
				}
				eng.Flush()
			}
			if invalid := eng.InvalidGroups(); len(invalid) > 0 {
				a.logger.Info("required groups still empty", zap.Strings("groups", invalid))
			}

			var out io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				out = f
			}
			if err := eng.Document().Render(out); err != nil {
				return fmt.Errorf("write html: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&valuesPath, "values", "", "YAML file mapping field names to values")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if empty)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on values that match no control")
	_ = cmd.MarkFlagRequired("values")
	return cmd
}

// applyValue enters v into the first control it names, dispatching the events
// a user interaction would.
func applyValue(eng *engine.Engine, v config.Value) error {
	ctrl := findControl(eng, v.Field)
	if ctrl == nil {
		return fmt.Errorf("%w %q", errUnknownField, v.Field)
	}
	doc := eng.Document()

	switch ctrl.Kind() {
	case dom.KindRadio:
		for _, r := range ctrl.RadioGroup() {
			if strings.EqualFold(r.AttrValue("value"), v.Value) {
				doc.Click(r)
				return nil
			}
		}
		return fmt.Errorf("field %q has no option %q", v.Field, v.Value)

	case dom.KindCheckbox:
		want := truthy(v.Value) || (ctrl.HasAttr("value") && ctrl.AttrValue("value") == v.Value)
		if want != ctrl.Checked() {
			doc.Click(ctrl)
		}
		return nil

	case dom.KindSelect:
		for i, opt := range ctrl.Options() {
			if opt.OptionValue() == v.Value || strings.EqualFold(strings.TrimSpace(opt.OptionText()), v.Value) {
				doc.Choose(ctrl, i)
				return nil
			}
		}
		return fmt.Errorf("field %q has no option %q", v.Field, v.Value)
	}

	doc.Type(ctrl, v.Value)
	return nil
}

func findControl(eng *engine.Engine, name string) *dom.Element {
	if fields := eng.Registry().FieldsNamed(name); len(fields) > 0 {
		return fields[0].Element
	}
	return eng.Document().Query(func(el *dom.Element) bool {
		return el.IsControl() && (el.Name() == name || el.ID() == name)
	})
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on", "y", "checked":
		return true
	}
	return false
}
