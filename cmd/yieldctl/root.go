package main

import (
	"encoding/json"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"crop-yield-service/internal/adapters/secondary/filestore"
	"crop-yield-service/internal/adapters/secondary/runtimeinfo"
	"crop-yield-service/internal/config"
	ports "crop-yield-service/internal/core/ports/output"
	"crop-yield-service/internal/core/services"
)

// flagBindings maps persistent flags onto config keys.
var flagBindings = map[string]string{
	"level":             "LOGGER_LEVEL",
	"format":            "LOGGER_FORMAT",
	"model-dir":         "MODEL_DIR",
	"fingerprint-cache": "FINGERPRINT_CACHE_PATH",
	"catalog-backend":   "CATALOG_BACKEND",
	"catalog-seed":      "CATALOG_SEED_PATH",
	"training-data":     "TRAINING_DATA_PATH",
	"workers":           "SYNC_WORKERS",
	"seed":              "SYNC_SEED",
}

type app struct {
	cfg    *config.Config
	output string
	probe  ports.RuntimeProbe
}

func (a *app) store() ports.ArtifactStore {
	return filestore.NewArtifactStore(a.cfg.Models.Dir)
}

func (a *app) fingerprinter() *services.Fingerprinter {
	return services.NewFingerprinter(a.probe, filestore.NewFingerprintCache(a.cfg.Fingerprint.CachePath))
}

func (a *app) validator() *services.CompatibilityValidator {
	return services.NewCompatibilityValidator(a.store(), a.probe, a.cfg.Models.PinnedLibraries, a.cfg.Models.YieldRange)
}

// print renders v as JSON or YAML.
func (a *app) print(w io.Writer, v interface{}) error {
	switch a.output {
	case "yaml":
		// round-trip through JSON so field names follow the json tags
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	a := &app{probe: runtimeinfo.NewProbe()}

	var flags *pflag.FlagSet
	cmd := &cobra.Command{
		Use:           "yieldctl",
		Short:         "operate the crop yield model store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			for flag, key := range flagBindings {
				if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
					return fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
			cfg, err := config.FromViper(v)
			if err != nil {
				return err
			}
			a.cfg = cfg
			initLogger(cmd.ErrOrStderr(), cfg)
			return nil
		},
	}

	flags = cmd.PersistentFlags()
	flags.String("level", "", "logging level (debug, info, warn, error)")
	flags.String("format", "", "log format (text or json)")
	flags.String("model-dir", "", "model artifact directory")
	flags.String("fingerprint-cache", "", "environment fingerprint cache file")
	flags.String("catalog-backend", "", "variety catalog backend (memory or postgres)")
	flags.String("catalog-seed", "", "YAML seed for the memory catalog")
	flags.String("training-data", "", "training table CSV")
	flags.Int("workers", 0, "parallel training workers")
	flags.Int64("seed", 0, "training random seed")
	flags.StringVarP(&a.output, "output", "o", "json", "output format (json or yaml)")

	cmd.AddCommand(newValidateCmd(a))
	cmd.AddCommand(newSyncCmd(a))
	cmd.AddCommand(newFingerprintCmd(a))
	cmd.AddCommand(newVarietyCmd(a))
	cmd.AddCommand(newCatalogCmd(a))

	return cmd
}

func initLogger(w io.Writer, cfg *config.Config) {
	log.SetOutput(w)
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
