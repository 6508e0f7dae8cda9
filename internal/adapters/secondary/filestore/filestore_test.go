package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crop-yield-service/internal/core/domain"
	"crop-yield-service/internal/estimator"
)

func ridgeArtifact(t *testing.T, key domain.ArtifactKey, ts string) *domain.ModelArtifact {
	t.Helper()
	d := estimator.Dataset{
		X: [][]float64{{0.5, 25, 80}, {0.6, 27, 90}, {0.7, 29, 70}, {0.4, 24, 60}, {0.65, 26, 85}},
		Y: []float64{4.1, 4.6, 5.0, 3.5, 4.8},
	}
	est, err := estimator.FitRidge(d, 1)
	require.NoError(t, err)
	return &domain.ModelArtifact{
		ID:            "id-" + ts,
		Key:           key,
		Timestamp:     ts,
		TrainedAt:     time.Date(2026, 10, 18, 10, 15, 0, 0, time.UTC),
		FeatureOrder:  []string{domain.FeatureNDVI, domain.FeatureTempMean, domain.FeaturePrecipitation},
		Target:        domain.TargetObservedYield,
		SchemaVersion: estimator.SchemaVersion,
		Estimator:     est,
	}
}

func TestArtifactStore_SaveListLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "models")
	store := NewArtifactStore(dir)
	ctx := context.Background()

	assert.False(t, store.Exists())

	key := domain.ArtifactKey{Location: domain.RegionUttarPradesh, Algorithm: domain.AlgorithmRandomForest}
	// ridge estimator saved under a random_forest key only matters to the validator
	a := ridgeArtifact(t, key, "20261018T101500Z")
	ref, err := store.Save(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "uttar-pradesh_random_forest_20261018T101500Z.model.json", ref.Name)
	assert.True(t, store.Exists())

	refs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, key, refs[0].Key)
	assert.Equal(t, "20261018T101500Z", refs[0].Timestamp)

	got, err := store.Load(ctx, refs[0])
	require.NoError(t, err)
	assert.Equal(t, key, got.Key)
	assert.Equal(t, a.FeatureOrder, got.FeatureOrder)
	assert.Equal(t, ref.Path, got.Path)
	assert.Equal(t, "id-20261018T101500Z", got.ID)
}

func TestArtifactStore_ListSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.model.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "punjab_ridge_20260101T000000Z.model.json"), []byte("{}"), 0o644))

	refs, err := NewArtifactStore(dir).List(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, domain.ArtifactKey{Location: domain.RegionPunjab, Algorithm: domain.AlgorithmRidge}, refs[0].Key)
}

func TestArtifactStore_LoadRawEstimatorTakesKeyFromFileName(t *testing.T) {
	dir := t.TempDir()
	name := "bihar_ridge_20260101T000000Z.model.json"
	doc := `{"kind":"ridge","params":{"alpha":1,"means":[0,0],"scales":[1,1],"coef":[0.5,0.25],"intercept":3},"feature_names":["ndvi","soil_ph"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644))

	store := NewArtifactStore(dir)
	refs, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 1)

	got, err := store.Load(context.Background(), refs[0])
	require.NoError(t, err)
	assert.Equal(t, domain.RegionBihar, got.Key.Location)
	assert.Equal(t, "20260101T000000Z", got.Timestamp)
	assert.Equal(t, []string{"ndvi", "soil_ph"}, got.FeatureOrder)
}

func TestFingerprintCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "fingerprint.json")
	cache := NewFingerprintCache(path)
	ctx := context.Background()

	fp, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, fp)

	want := &domain.EnvironmentFingerprint{
		RuntimeVersion:  "go1.24.9",
		Platform:        "linux/amd64",
		LibraryVersions: map[string]string{"estimator": "1.4.2"},
		CPUFeatures:     []string{"AVX2"},
		EnvFlags:        map[string]string{},
	}
	want.Digest = want.ComputeDigest()
	require.NoError(t, cache.Save(ctx, want))

	want.LibraryVersions["estimator"] = "1.5.0"
	want.Digest = want.ComputeDigest()
	require.NoError(t, cache.Save(ctx, want))

	got, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.5.0", got.LibraryVersions["estimator"])
	assert.Equal(t, want.Digest, got.Digest)
}

func TestFingerprintCache_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fingerprint.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFingerprintCache(path).Load(context.Background())
	assert.Error(t, err)
}
