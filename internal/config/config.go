package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"crop-yield-service/internal/core/domain"
)

type Config struct {
	Server      ServerConfig
	Logger      LoggerConfig
	Models      ModelsConfig
	Catalog     CatalogConfig
	Database    DatabaseConfig
	Kubernetes  KubernetesConfig
	Sync        SyncConfig
	Metrics     MetricsConfig
	Fingerprint FingerprintConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type LoggerConfig struct {
	Level  string
	Format string
}

type ModelsConfig struct {
	Dir        string
	YieldRange domain.YieldRange
	// PinnedLibraries maps library name to the pinned major.minor.
	PinnedLibraries map[string]string
}

type FingerprintConfig struct {
	CachePath string
}

const (
	CatalogBackendMemory   = "memory"
	CatalogBackendPostgres = "postgres"
)

type CatalogConfig struct {
	Backend  string
	SeedPath string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type KubernetesConfig struct {
	Enabled        bool
	InCluster      bool
	KubeConfigPath string
	Namespace      string
	ConfigMapName  string
}

type SyncConfig struct {
	TrainingDataPath string
	Workers          int
	Seed             int64
}

type MetricsConfig struct {
	Enabled bool
}

// New returns a viper instance with every default registered and the
// environment bound. The CLI binds its flags into the same instance.
func New() *viper.Viper {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	v.SetDefault("MODEL_DIR", "models")
	v.SetDefault("FINGERPRINT_CACHE_PATH", "models/.fingerprint.json")
	v.SetDefault("YIELD_RANGE_MIN", domain.DefaultYieldRange.Min)
	v.SetDefault("YIELD_RANGE_MAX", domain.DefaultYieldRange.Max)
	v.SetDefault("PINNED_LIBRARIES", "estimator=1.4")

	v.SetDefault("CATALOG_BACKEND", CatalogBackendMemory)
	v.SetDefault("CATALOG_SEED_PATH", "configs/varieties.yaml")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "crop_yield")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("KUBERNETES_ENABLED", false)
	v.SetDefault("KUBERNETES_IN_CLUSTER", false)
	v.SetDefault("KUBERNETES_KUBECONFIG", "")
	v.SetDefault("KUBERNETES_NAMESPACE", "default")
	v.SetDefault("KUBERNETES_CONFIGMAP", "crop-yield-model-status")

	v.SetDefault("TRAINING_DATA_PATH", "data/training.csv")
	v.SetDefault("SYNC_WORKERS", 4)
	v.SetDefault("SYNC_SEED", 42)

	v.SetDefault("METRICS_ENABLED", true)

	// Env
	v.AutomaticEnv()
	return v
}

func Load() (*Config, error) {
	return FromViper(New())
}

func FromViper(v *viper.Viper) (*Config, error) {
	lifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		lifetime = 30 * time.Minute
	}

	pins, err := ParsePins(v.GetString("PINNED_LIBRARIES"))
	if err != nil {
		return nil, err
	}

	yieldRange := domain.YieldRange{
		Min: v.GetFloat64("YIELD_RANGE_MIN"),
		Max: v.GetFloat64("YIELD_RANGE_MAX"),
	}
	if yieldRange.Min >= yieldRange.Max {
		return nil, fmt.Errorf("yield range: min %.2f must be below max %.2f", yieldRange.Min, yieldRange.Max)
	}

	backend := strings.ToLower(v.GetString("CATALOG_BACKEND"))
	if backend != CatalogBackendMemory && backend != CatalogBackendPostgres {
		return nil, fmt.Errorf("catalog backend %q: want %s or %s", backend, CatalogBackendMemory, CatalogBackendPostgres)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Models: ModelsConfig{
			Dir:             v.GetString("MODEL_DIR"),
			YieldRange:      yieldRange,
			PinnedLibraries: pins,
		},
		Fingerprint: FingerprintConfig{
			CachePath: v.GetString("FINGERPRINT_CACHE_PATH"),
		},
		Catalog: CatalogConfig{
			Backend:  backend,
			SeedPath: v.GetString("CATALOG_SEED_PATH"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: lifetime,
		},
		Kubernetes: KubernetesConfig{
			Enabled:        v.GetBool("KUBERNETES_ENABLED"),
			InCluster:      v.GetBool("KUBERNETES_IN_CLUSTER"),
			KubeConfigPath: v.GetString("KUBERNETES_KUBECONFIG"),
			Namespace:      v.GetString("KUBERNETES_NAMESPACE"),
			ConfigMapName:  v.GetString("KUBERNETES_CONFIGMAP"),
		},
		Sync: SyncConfig{
			TrainingDataPath: v.GetString("TRAINING_DATA_PATH"),
			Workers:          v.GetInt("SYNC_WORKERS"),
			Seed:             v.GetInt64("SYNC_SEED"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}

	return cfg, nil
}

// ParsePins reads "name=major.minor,name=major.minor".
func ParsePins(s string) (map[string]string, error) {
	pins := make(map[string]string)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, version, ok := strings.Cut(part, "=")
		name, version = strings.TrimSpace(name), strings.TrimSpace(version)
		if !ok || name == "" || version == "" {
			return nil, fmt.Errorf("pinned library %q: want name=major.minor", part)
		}
		pins[name] = version
	}
	return pins, nil
}
