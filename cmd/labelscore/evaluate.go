package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/speedwagon-io/labelscore/internal/evaluator"
	"github.com/speedwagon-io/labelscore/internal/lib/logger/sl"
	"github.com/speedwagon-io/labelscore/internal/model"
	"github.com/speedwagon-io/labelscore/internal/provider"
)

func newEvaluateCmd(a *app) *cobra.Command {
	var (
		label model.Label
		unit  string
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a label against the configured thresholds",
		Example: `  labelscore evaluate --fat 3 --saturated-fat 1 --sugar 2 --salt 0.5
  labelscore evaluate --unit milliliter --fat 1 --saturated-fat 0.2 --sugar 10 --salt 0.1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := model.ParseUnit(unit)
			if err != nil {
				return err
			}

			if err := a.load(cmd.ErrOrStderr()); err != nil {
				return err
			}

			src, err := provider.New(a.log, &a.cfg.Thresholds)
			if err != nil {
				return fmt.Errorf("failed to open threshold source: %w", err)
			}
			defer src.Close()

			if err := provider.Ping(cmd.Context(), src); err != nil {
				a.log.Error("threshold source is not reachable", slog.String("source", src.Name()), sl.Err(err))
				return err
			}

			result, err := evaluator.New(a.log, src).Evaluate(cmd.Context(), label, u)
			if err != nil {
				a.log.Error("evaluation failed", slog.String("source", src.Name()), sl.Err(err))
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, n := range result.Nutrients() {
				score, _ := result.Score(n)
				value, _ := label.Value(n)
				fmt.Fprintf(tw, "%s\t%g\t%s\t%s\n", n, value, score, score.Color())
			}
			return tw.Flush()
		},
	}

	f := cmd.Flags()
	f.Float64Var(&label.Fat, "fat", 0, "fat quantity")
	f.Float64Var(&label.SaturatedFat, "saturated-fat", 0, "saturated fat quantity")
	f.Float64Var(&label.Sugar, "sugar", 0, "sugar quantity")
	f.Float64Var(&label.Salt, "salt", 0, "salt quantity")
	f.StringVarP(&unit, "unit", "u", string(model.UnitGram), "measurement unit (gram|milliliter)")

	for _, name := range []string{"fat", "saturated-fat", "sugar", "salt"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
