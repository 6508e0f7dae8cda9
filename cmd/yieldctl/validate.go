package main

import (
	"errors"

	"github.com/spf13/cobra"

	"crop-yield-service/internal/core/domain"
)

var errDegraded = errors.New("model store requires fallback")

type validateOutput struct {
	Status string                      `json:"status"`
	Detail string                      `json:"detail,omitempty"`
	Report *domain.CompatibilityReport `json:"report"`
}

func newValidateCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "check every model artifact against the running environment",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when fallback is active")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		outcome, report := a.validator().ValidateAllModels(cmd.Context())
		if err := a.print(cmd.OutOrStdout(), validateOutput{
			Status: outcome.Status(),
			Detail: outcome.Detail,
			Report: report,
		}); err != nil {
			return err
		}
		if strict && report.FallbackActive {
			return errDegraded
		}
		return nil
	}
	return cmd
}
