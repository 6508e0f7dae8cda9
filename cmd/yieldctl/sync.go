package main

import (
	"errors"

	"github.com/spf13/cobra"

	"crop-yield-service/internal/adapters/secondary/dataset"
	"crop-yield-service/internal/core/services"
)

func newSyncCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "retrain model artifacts when validation reports fallback",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&force, "force", false, "retrain even when every artifact is compatible")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		syncCfg := services.DefaultSyncConfig()
		syncCfg.Workers = a.cfg.Sync.Workers
		syncCfg.Seed = a.cfg.Sync.Seed

		syncer := services.NewTrainingSynchronizer(
			a.validator(),
			a.store(),
			dataset.NewCSVSource(a.cfg.Sync.TrainingDataPath),
			a.fingerprinter(),
			syncCfg,
		)
		outcome, report := syncer.SyncModels(cmd.Context(), force)
		if err := a.print(cmd.OutOrStdout(), validateOutput{
			Status: outcome.Status(),
			Detail: outcome.Detail,
			Report: report,
		}); err != nil {
			return err
		}
		if !outcome.OK {
			return errors.New(outcome.Detail)
		}
		return nil
	}
	return cmd
}
