package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formsync/internal/config"
	"github.com/goliatone/go-formsync/pkg/dom"
	"github.com/goliatone/go-formsync/pkg/engine"
)

// app carries the state shared by subcommands.
type app struct {
	debug      bool
	configPath string

	logger *zap.Logger
	cfg    config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "formsync",
		Short: "Inspect and exercise Webflow multi-step forms",
		Long: `formsync attaches the form engine to a saved Webflow page and lets you
inspect its fields, summary slots, conditional blocks and radio groups,
apply a set of values non-interactively, or fill the form step by step.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zcfg := zap.NewProductionConfig()
			if a.debug {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := zcfg.Build()
			if err != nil {
				return fmt.Errorf("initialise logger: %w", err)
			}
			a.logger = logger

			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "JSON or YAML file overriding attribute names and selectors")

	root.AddCommand(
		newInspectCmd(a),
		newApplyCmd(a),
		newFillCmd(a),
	)
	return root
}

// open parses the page at path and attaches an engine to it.
func (a *app) open(ctx context.Context, path string) (*engine.Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	opts := append(a.cfg.EngineOptions(), engine.WithLogger(a.logger.With(zap.String("page", path))))
	eng := engine.New(doc, opts...)
	if err := eng.Attach(ctx, nil); err != nil {
		return nil, fmt.Errorf("attach %s: %w", path, err)
	}
	return eng, nil
}
