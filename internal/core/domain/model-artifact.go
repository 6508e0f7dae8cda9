package domain

import (
	"fmt"
	"strings"
	"time"
)

type Algorithm string

const (
	AlgorithmRidge            Algorithm = "ridge"
	AlgorithmRandomForest     Algorithm = "random_forest"
	AlgorithmGradientBoosting Algorithm = "gradient_boosting"
)

var Algorithms = []Algorithm{
	AlgorithmRidge,
	AlgorithmRandomForest,
	AlgorithmGradientBoosting,
}

func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Algorithms {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgo, s)
}

// TimestampLayout sorts lexicographically in chronological order.
const TimestampLayout = "20060102T150405Z"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ArtifactKey identifies an artifact family; several timestamped versions may share one.
type ArtifactKey struct {
	Location  Region    `json:"location"`
	Algorithm Algorithm `json:"algorithm"`
}

func (k ArtifactKey) String() string {
	return k.Location.Slug() + "/" + string(k.Algorithm)
}

// ExpectedArtifactKeys is every (location, algorithm) pair the service trains.
func ExpectedArtifactKeys() []ArtifactKey {
	keys := make([]ArtifactKey, 0, len(Regions)*len(Algorithms))
	for _, loc := range Regions {
		for _, algo := range Algorithms {
			keys = append(keys, ArtifactKey{Location: loc, Algorithm: algo})
		}
	}
	return keys
}

// Estimator is a trained regressor over an ordered feature vector.
type Estimator interface {
	Kind() string
	NumFeatures() int
	Predict(x []float64) (float64, error)
}

type TrainingMetrics struct {
	R2        float64 `json:"r2"`
	RMSE      float64 `json:"rmse"`
	MAE       float64 `json:"mae"`
	TrainRows int     `json:"train_rows"`
	TestRows  int     `json:"test_rows"`
}

// ModelArtifact is the normalized form of a stored estimator blob.
type ModelArtifact struct {
	ID            string            `json:"id"`
	Key           ArtifactKey       `json:"key"`
	Timestamp     string            `json:"timestamp"`
	TrainedAt     time.Time         `json:"trained_at"`
	FeatureOrder  []string          `json:"feature_order"`
	Target        string            `json:"target"`
	SchemaVersion string            `json:"schema_version"`
	Environment   map[string]string `json:"environment,omitempty"`
	Metrics       *TrainingMetrics  `json:"training_metrics,omitempty"`
	Path          string            `json:"path"`
	Estimator     Estimator         `json:"-"`
}

func (a *ModelArtifact) Name() string {
	if a.Path != "" {
		return a.Path
	}
	return a.Key.String() + "@" + a.Timestamp
}

// ArtifactFileName encodes {location}_{algorithm}_{timestamp}.
func ArtifactFileName(key ArtifactKey, timestamp, ext string) string {
	return fmt.Sprintf("%s_%s_%s%s", key.Location.Slug(), key.Algorithm, timestamp, ext)
}

// ParseArtifactFileName is the inverse of ArtifactFileName; ext must already be stripped.
func ParseArtifactFileName(base string) (ArtifactKey, string, error) {
	idx := strings.LastIndex(base, "_")
	if idx <= 0 || idx == len(base)-1 {
		return ArtifactKey{}, "", fmt.Errorf("artifact file name %q: missing timestamp", base)
	}
	timestamp := base[idx+1:]
	rest := base[:idx]
	for _, algo := range Algorithms {
		suffix := "_" + string(algo)
		if !strings.HasSuffix(rest, suffix) {
			continue
		}
		loc, ok := ParseRegion(strings.TrimSuffix(rest, suffix))
		if !ok || !loc.IsState() {
			return ArtifactKey{}, "", fmt.Errorf("artifact file name %q: %w", base, ErrUnknownLocation)
		}
		return ArtifactKey{Location: loc, Algorithm: algo}, timestamp, nil
	}
	return ArtifactKey{}, "", fmt.Errorf("artifact file name %q: %w", base, ErrUnknownAlgo)
}
