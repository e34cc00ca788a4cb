package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speedwagon-io/labelscore/internal/config"
	"github.com/speedwagon-io/labelscore/internal/provider"
)

func newSeedCmd(a *app) *cobra.Command {
	var tablePath, dbPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a YAML threshold table into the sqlite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.ErrOrStderr()); err != nil {
				return err
			}
			if tablePath == "" {
				tablePath = a.cfg.Thresholds.TablePath
			}
			if dbPath == "" {
				dbPath = a.cfg.Thresholds.DBPath
			}

			table, err := config.LoadThresholdTable(tablePath)
			if err != nil {
				return err
			}
			rules, err := provider.RulesFromTable(table)
			if err != nil {
				return fmt.Errorf("failed to parse threshold table: %w", err)
			}

			db, err := provider.NewSQLiteProvider(a.log, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.StoreAll(cmd.Context(), rules); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d rules into %s\n", len(rules), dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&tablePath, "table", "", "threshold table to load (default: thresholds.table_path)")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path (default: thresholds.db_path)")

	return cmd
}
