package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/speedwagon-io/labelscore/internal/config"
	"github.com/speedwagon-io/labelscore/internal/lib/logger/sl"
)

type app struct {
	cfgPath string
	cfg     *config.Config
	log     *slog.Logger
}

// load reads the config and builds the logger. Logs go to w so command
// output on stdout stays clean.
func (a *app) load(w io.Writer) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = sl.NewLogger(w, cfg.Log.Level, cfg.Log.Format)
	a.log.Debug("config loaded",
		slog.String("env", cfg.Env),
		slog.String("thresholds.source", cfg.Thresholds.Source),
	)
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "labelscore",
		Short: "Traffic-light scoring for nutrition labels",
		Long: `labelscore grades the fat, saturated fat, sugar and salt content of a
food label as favorable, moderate or unfavorable against configured
per-nutrient thresholds.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file path (default: $CONFIG_PATH or config/config.yaml)")

	root.AddCommand(
		newEvaluateCmd(a),
		newServeCmd(a),
		newSeedCmd(a),
		newVersionCmd(),
	)

	return root
}
