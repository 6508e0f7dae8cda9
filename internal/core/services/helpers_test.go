package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"crop-yield-service/internal/adapters/secondary/filestore"
	"crop-yield-service/internal/core/domain"
	ports "crop-yield-service/internal/core/ports/output"
	"crop-yield-service/internal/estimator"
)

// constantArtifact predicts yield for any input near the synthetic probe.
func constantArtifact(key domain.ArtifactKey, ts string, yield float64) *domain.ModelArtifact {
	return &domain.ModelArtifact{
		ID:            key.Location.Slug() + "-" + string(key.Algorithm) + "-" + ts,
		Key:           key,
		Timestamp:     ts,
		FeatureOrder:  []string{domain.FeatureNDVI, domain.FeatureTempMean},
		Target:        domain.TargetObservedYield,
		SchemaVersion: estimator.SchemaVersion,
		Estimator: &estimator.Ridge{
			Alpha:     1,
			Means:     []float64{0.65, 27.5},
			Scales:    []float64{1, 1},
			Coef:      []float64{0, 0},
			Intercept: yield,
		},
	}
}

func saveArtifact(t *testing.T, store ports.ArtifactStore, a *domain.ModelArtifact) {
	t.Helper()
	_, err := store.Save(context.Background(), a)
	require.NoError(t, err)
}

// seedAllKeys writes one healthy artifact for every expected key.
func seedAllKeys(t *testing.T, store ports.ArtifactStore, ts string) {
	t.Helper()
	for _, key := range domain.ExpectedArtifactKeys() {
		saveArtifact(t, store, constantArtifact(key, ts, 4.2))
	}
}

func writeRaw(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func tempStore(t *testing.T) (string, ports.ArtifactStore) {
	dir := filepath.Join(t.TempDir(), "models")
	return dir, filestore.NewArtifactStore(dir)
}
