package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapLocationToRegion(t *testing.T) {
	tests := []struct {
		location string
		want     Region
	}{
		{"Ludhiana", RegionPunjab},
		{"  LUDHIANA ", RegionPunjab},
		{"Karnal", RegionHaryana},
		{"Uttar Pradesh", RegionUttarPradesh},
		{"uttar-pradesh", RegionUttarPradesh},
		{"Patna", RegionBihar},
		{"Bhopal", RegionMadhyaPradesh},
		{"North India", RegionAllNorthIndia},
		{"Chennai", RegionAllNorthIndia},
		{"", RegionAllNorthIndia},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.want, MapLocationToRegion(tt.location))
		})
	}
}

func TestParseRegion(t *testing.T) {
	r, ok := ParseRegion("all-north-india")
	assert.True(t, ok)
	assert.Equal(t, RegionAllNorthIndia, r)
	assert.False(t, RegionAllNorthIndia.IsState())

	_, ok = ParseRegion("Ludhiana")
	assert.False(t, ok)
}

func TestArtifactFileName_RoundTrip(t *testing.T) {
	for _, key := range ExpectedArtifactKeys() {
		name := ArtifactFileName(key, "20261018T101500Z", "")
		got, ts, err := ParseArtifactFileName(name)
		require.NoError(t, err, name)
		assert.Equal(t, key, got)
		assert.Equal(t, "20261018T101500Z", ts)
	}
	assert.Equal(t, "madhya-pradesh_gradient_boosting_20261018T101500Z",
		ArtifactFileName(ArtifactKey{Location: RegionMadhyaPradesh, Algorithm: AlgorithmGradientBoosting}, "20261018T101500Z", ""))
}

func TestParseArtifactFileName_Rejects(t *testing.T) {
	tests := []struct {
		name string
		want error
	}{
		{"punjab_ridge", ErrUnknownAlgo},
		{"punjab_svm_20261018T101500Z", ErrUnknownAlgo},
		{"kerala_ridge_20261018T101500Z", ErrUnknownLocation},
		{"all-north-india_ridge_20261018T101500Z", ErrUnknownLocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseArtifactFileName(tt.name)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, _, err := ParseArtifactFileName("ridge_")
	assert.Error(t, err)
}

func TestParseAlgorithm(t *testing.T) {
	a, err := ParseAlgorithm(" Random_Forest ")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmRandomForest, a)

	_, err = ParseAlgorithm("svm")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCompatibilityReport_Finalize(t *testing.T) {
	punjab := ArtifactKey{Location: RegionPunjab, Algorithm: AlgorithmRidge}
	bihar := ArtifactKey{Location: RegionBihar, Algorithm: AlgorithmRidge}

	r := NewCompatibilityReport()
	r.AddIncompatible(punjab)
	r.AddCompatible(punjab)
	r.AddIncompatible(punjab)
	r.AddIncompatible(bihar)
	r.AddIncompatible(bihar)
	r.Finalize()

	assert.Equal(t, []ArtifactKey{punjab}, r.Compatible)
	assert.Equal(t, []ArtifactKey{bihar}, r.Incompatible)
	assert.Len(t, r.Missing, 13)
	assert.NotContains(t, r.Missing, punjab)
	assert.NotContains(t, r.Missing, bihar)

	// idempotent
	r.Finalize()
	assert.Len(t, r.Missing, 13)
}

func TestCompareFingerprints(t *testing.T) {
	base := &EnvironmentFingerprint{
		RuntimeVersion:  "go1.24.9",
		Platform:        "linux/amd64",
		LibraryVersions: map[string]string{"estimator": "1.4.2"},
		CPUFeatures:     []string{"FMA3", "AVX2"},
		EnvFlags:        map[string]string{"GOMAXPROCS": "unset"},
	}

	first := CompareFingerprints(nil, base)
	assert.True(t, first.FirstRun)
	assert.Equal(t, "no cached fingerprint", first.Summary())

	reordered := *base
	reordered.CPUFeatures = []string{"AVX2", "FMA3"}
	assert.True(t, CompareFingerprints(base, &reordered).Identical)
	assert.Equal(t, base.ComputeDigest(), reordered.ComputeDigest())

	changed := *base
	changed.RuntimeVersion = "go1.25.1"
	changed.LibraryVersions = map[string]string{"estimator": "1.4.2", "new-lib": "0.1.0"}
	cmp := CompareFingerprints(base, &changed)
	assert.False(t, cmp.Identical)
	assert.Equal(t, []FingerprintDiff{{Key: "runtime", Cached: "go1.24.9", Current: "go1.25.1"}}, cmp.Diffs)
	assert.Equal(t, "runtime: go1.24.9 -> go1.25.1", cmp.Summary())
	assert.NotEqual(t, base.ComputeDigest(), changed.ComputeDigest())
}

func TestTrainingTable(t *testing.T) {
	table := &TrainingTable{
		Columns: map[string][]float64{
			FeatureNDVI:   {0.5, math.NaN(), 0.7, 0.9},
			FeatureSoilPH: {math.NaN(), math.NaN(), math.NaN(), math.NaN()},
		},
		Locations: []string{"Ludhiana", "Patna", "amritsar", "Chennai"},
		Rows:      4,
	}

	assert.Equal(t, []int{0, 2}, table.RowsFor(RegionPunjab))
	assert.Equal(t, []int{3}, table.RowsFor(RegionAllNorthIndia))

	table.ImputeMedians()
	assert.Equal(t, []float64{0.5, 0.7, 0.7, 0.9}, table.Columns[FeatureNDVI])
	assert.Equal(t, []float64{0, 0, 0, 0}, table.Columns[FeatureSoilPH])
}

func TestFeatureVector_Ordered(t *testing.T) {
	v := FeatureVector{FeatureNDVI: 0.6}

	x, err := v.Ordered([]string{FeatureNDVI, FeatureTempMean}, FeatureVector{FeatureTempMean: 27})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.6, 27}, x)

	_, err = v.Ordered([]string{FeatureNDVI, "moon_phase"}, nil)
	assert.ErrorIs(t, err, ErrFeatureOrder)
}

func TestOutcome_Status(t *testing.T) {
	assert.Equal(t, "ok", Healthy("").Status())
	assert.Equal(t, "degraded", Degraded("").Status())
	assert.Equal(t, "failed", Failed("").Status())
}

func TestNoVarietyAvailableError(t *testing.T) {
	err := error(&NoVarietyAvailableError{
		CropType: "Rice",
		Location: "Bhopal",
		Region:   RegionMadhyaPradesh,
		Trail:    []string{"regional:Madhya Pradesh", "global_default"},
	})
	assert.ErrorIs(t, err, ErrNoVarietyAvailable)
	assert.Contains(t, err.Error(), `crop_type="Rice"`)
	assert.Contains(t, err.Error(), `location="Bhopal"`)
}
