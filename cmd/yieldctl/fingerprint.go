package main

import (
	"github.com/spf13/cobra"

	"crop-yield-service/internal/core/domain"
)

type fingerprintOutput struct {
	Digest      string                         `json:"digest"`
	Comparison  domain.FingerprintComparison   `json:"comparison"`
	Fingerprint *domain.EnvironmentFingerprint `json:"fingerprint"`
}

func newFingerprintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "record the runtime fingerprint and show drift since the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmp, fp := a.fingerprinter().CompareWithCached(cmd.Context())
			return a.print(cmd.OutOrStdout(), fingerprintOutput{
				Digest:      fp.Digest,
				Comparison:  cmp,
				Fingerprint: fp,
			})
		},
	}
}
