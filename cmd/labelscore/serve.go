package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/speedwagon-io/labelscore/internal/config"
	"github.com/speedwagon-io/labelscore/internal/lib/logger/sl"
	"github.com/speedwagon-io/labelscore/internal/provider"
	"github.com/speedwagon-io/labelscore/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Publish the configured threshold table over HTTP",
		Long: `serve exposes the static or sqlite threshold table so that other
instances can use it through the http threshold source.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.ErrOrStderr()); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	var (
		store     server.ThresholdStore
		countFunc func(ctx context.Context) (int64, error)
	)

	switch a.cfg.Thresholds.Source {
	case config.SourceStatic:
		table, err := config.LoadThresholdTable(a.cfg.Thresholds.TablePath)
		if err != nil {
			return err
		}
		p, err := provider.NewStaticProviderFromTable(table)
		if err != nil {
			return err
		}
		store = p
		countFunc = func(context.Context) (int64, error) { return int64(p.Len()), nil }
	case config.SourceSQLite:
		p, err := provider.NewSQLiteProvider(a.log, a.cfg.Thresholds.DBPath)
		if err != nil {
			return err
		}
		defer p.Close()
		store = p
		countFunc = p.Count
	default:
		return fmt.Errorf("serve needs a %q or %q threshold source, got %q",
			config.SourceStatic, config.SourceSQLite, a.cfg.Thresholds.Source)
	}

	srv := server.New(a.log, a.cfg.Server, store)
	srv.AddChecker(server.NewStoreHealthChecker(a.cfg.Thresholds.Source, countFunc))

	if err := srv.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	a.log.Info("shutting down threshold server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		a.log.Error("failed to stop threshold server", sl.Err(err))
		return err
	}

	a.log.Info("threshold server stopped", slog.String("address", a.cfg.Server.Address))
	return nil
}
