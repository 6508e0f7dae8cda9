package testutil

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"sync"

	"crop-yield-service/internal/core/domain"
	"crop-yield-service/internal/estimator"
)

// StaticProbe is a RuntimeProbe with fixed answers.
type StaticProbe struct {
	Runtime   string
	Plat      string
	Libraries map[string]string
	Features  []string
	Flags     map[string]string
}

// NewStaticProbe reports the running estimator version so pins match by default.
func NewStaticProbe() *StaticProbe {
	return &StaticProbe{
		Runtime:   "go1.24.9",
		Plat:      "linux/amd64",
		Libraries: map[string]string{estimator.LibraryName: estimator.Version},
		Features:  []string{"AVX2", "FMA3", "SSE4"},
		Flags:     map[string]string{"GOMAXPROCS": "unset"},
	}
}

func (p *StaticProbe) RuntimeVersion() string { return p.Runtime }
func (p *StaticProbe) Platform() string       { return p.Plat }
func (p *StaticProbe) CPUFeatures() []string  { return p.Features }
func (p *StaticProbe) EnvFlags() map[string]string {
	out := make(map[string]string, len(p.Flags))
	for k, v := range p.Flags {
		out[k] = v
	}
	return out
}

func (p *StaticProbe) LibraryVersions() map[string]string {
	out := make(map[string]string, len(p.Libraries))
	for k, v := range p.Libraries {
		out[k] = v
	}
	return out
}

// MemoryFingerprintCache is an in-memory FingerprintCache.
type MemoryFingerprintCache struct {
	mu sync.Mutex
	fp *domain.EnvironmentFingerprint
}

func (c *MemoryFingerprintCache) Load(ctx context.Context) (*domain.EnvironmentFingerprint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fp, nil
}

func (c *MemoryFingerprintCache) Save(ctx context.Context, fp *domain.EnvironmentFingerprint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fp = fp
	return nil
}

// StaticTrainingSource serves a fixed table. Each Load returns a fresh copy
// because imputation mutates the table.
type StaticTrainingSource struct {
	Table *domain.TrainingTable
}

func (s *StaticTrainingSource) Load(ctx context.Context) (*domain.TrainingTable, error) {
	cols := make(map[string][]float64, len(s.Table.Columns))
	for k, v := range s.Table.Columns {
		cols[k] = append([]float64(nil), v...)
	}
	return &domain.TrainingTable{
		Columns:   cols,
		Locations: append([]string(nil), s.Table.Locations...),
		Rows:      s.Table.Rows,
	}, nil
}

// TrainingTable builds a plausible training table with rows spread over the
// five state regions. Every fifteenth cell of soil_ph is missing.
func TrainingTable(rows int, withYield bool, seed int64) *domain.TrainingTable {
	rng := rand.New(rand.NewSource(seed))
	nominal := map[string]float64{
		domain.FeatureNDVI:          0.65,
		domain.FeatureEVI:           0.42,
		domain.FeatureTempMean:      27.5,
		domain.FeatureTempMax:       33.0,
		domain.FeaturePrecipitation: 85.0,
		domain.FeatureHumidity:      64.0,
		domain.FeatureSoilPH:        7.1,
		domain.FeatureGDD:           1850.0,
	}
	spread := map[string]float64{
		domain.FeatureNDVI:          0.1,
		domain.FeatureEVI:           0.08,
		domain.FeatureTempMean:      3,
		domain.FeatureTempMax:       3,
		domain.FeaturePrecipitation: 25,
		domain.FeatureHumidity:      10,
		domain.FeatureSoilPH:        0.4,
		domain.FeatureGDD:           150,
	}

	t := &domain.TrainingTable{Columns: make(map[string][]float64), Rows: rows}
	for name := range nominal {
		t.Columns[name] = make([]float64, rows)
	}
	if withYield {
		t.Columns[domain.ColumnYield] = make([]float64, rows)
	}

	for i := 0; i < rows; i++ {
		for name, mean := range nominal {
			t.Columns[name][i] = mean + rng.NormFloat64()*spread[name]
		}
		if i%15 == 0 {
			t.Columns[domain.FeatureSoilPH][i] = math.NaN()
		}
		if withYield {
			t.Columns[domain.ColumnYield][i] = 1.5 + 4*t.Columns[domain.FeatureNDVI][i] + rng.NormFloat64()*0.2
		}
		t.Locations = append(t.Locations, strings.ToLower(string(domain.Regions[i%len(domain.Regions)])))
	}
	return t
}
