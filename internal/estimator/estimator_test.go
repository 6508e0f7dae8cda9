package estimator

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crop-yield-service/internal/core/domain"
)

// linearDataset draws y = 2*x0 - 3*x1 + 0.5*x2 + 4 with small noise.
func linearDataset(n int, seed int64) Dataset {
	rng := rand.New(rand.NewSource(seed))
	d := Dataset{X: make([][]float64, n), Y: make([]float64, n)}
	for i := 0; i < n; i++ {
		x := []float64{rng.Float64() * 10, rng.Float64() * 5, rng.NormFloat64()}
		d.X[i] = x
		d.Y[i] = 2*x[0] - 3*x[1] + 0.5*x[2] + 4 + rng.NormFloat64()*0.01
	}
	return d
}

func TestFitRidge_RecoversLinearRelation(t *testing.T) {
	d := linearDataset(300, 1)
	r, err := FitRidge(d, 1e-6)
	require.NoError(t, err)

	pred, err := r.Predict([]float64{1, 1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, pred, 0.05)
	assert.Equal(t, 3, r.NumFeatures())
}

func TestFitRidge_ConstantFeature(t *testing.T) {
	d := Dataset{
		X: [][]float64{{1, 5}, {2, 5}, {3, 5}, {4, 5}},
		Y: []float64{2, 4, 6, 8},
	}
	r, err := FitRidge(d, 0.01)
	require.NoError(t, err)

	pred, err := r.Predict([]float64{2.5, 5})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, pred, 0.1)
}

func TestPredict_RejectsBadInput(t *testing.T) {
	r, err := FitRidge(linearDataset(50, 2), 1)
	require.NoError(t, err)

	_, err = r.Predict([]float64{1, 2})
	assert.ErrorIs(t, err, ErrFeatureCount)

	_, err = r.Predict([]float64{1, math.NaN(), 3})
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestFitTreeEnsembles(t *testing.T) {
	train, test := linearDataset(400, 3).Split(0.2, 42)

	tests := []struct {
		name string
		algo domain.Algorithm
		minR float64
	}{
		{"random forest", domain.AlgorithmRandomForest, 0.8},
		{"gradient boosting", domain.AlgorithmGradientBoosting, 0.8},
		{"ridge", domain.AlgorithmRidge, 0.99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := Fit(tt.algo, train, 42)
			require.NoError(t, err)
			assert.Equal(t, string(tt.algo), est.Kind())

			m, err := Evaluate(est, test, train.Len())
			require.NoError(t, err)
			assert.Greater(t, m.R2, tt.minR)
			assert.Equal(t, 320, m.TrainRows)
			assert.Equal(t, 80, m.TestRows)
		})
	}
}

func TestFit_DeterministicForSeed(t *testing.T) {
	d := linearDataset(200, 4)
	a, err := Fit(domain.AlgorithmRandomForest, d, 7)
	require.NoError(t, err)
	b, err := Fit(domain.AlgorithmRandomForest, d, 7)
	require.NoError(t, err)

	x := []float64{3, 2, 0.1}
	pa, _ := a.Predict(x)
	pb, _ := b.Predict(x)
	assert.Equal(t, pa, pb)
}

func TestFit_UnknownAlgorithm(t *testing.T) {
	_, err := Fit("svm", linearDataset(10, 5), 1)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestFit_EmptyDataset(t *testing.T) {
	_, err := FitRidge(Dataset{}, 1)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestSplit_Sizes(t *testing.T) {
	train, test := linearDataset(100, 6).Split(0.2, 42)
	assert.Equal(t, 80, train.Len())
	assert.Equal(t, 20, test.Len())
}

func newArtifact(t *testing.T) *domain.ModelArtifact {
	t.Helper()
	est, err := FitRidge(linearDataset(60, 8), 1)
	require.NoError(t, err)
	return &domain.ModelArtifact{
		ID:           "a-1",
		Key:          domain.ArtifactKey{Location: domain.RegionUttarPradesh, Algorithm: domain.AlgorithmRidge},
		Timestamp:    "20261018T101500Z",
		FeatureOrder: []string{"ndvi", "temperature_mean", "precipitation"},
		Target:       domain.TargetSyntheticYield,
		Environment:  map[string]string{"estimator": Version},
		Estimator:    est,
	}
}

func TestEncodeDecode_Wrapper(t *testing.T) {
	a := newArtifact(t)
	data, err := Encode(a)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, a.Key, got.Key)
	assert.Equal(t, a.FeatureOrder, got.FeatureOrder)
	assert.Equal(t, SchemaVersion, got.SchemaVersion)
	assert.Equal(t, domain.TargetSyntheticYield, got.Target)

	x := []float64{0.6, 25, 80}
	want, _ := a.Estimator.Predict(x)
	have, err := got.Estimator.Predict(x)
	require.NoError(t, err)
	assert.InDelta(t, want, have, 1e-9)
}

func TestDecode_RawEstimator(t *testing.T) {
	est, err := FitRidge(linearDataset(40, 9), 1)
	require.NoError(t, err)
	params, err := json.Marshal(est)
	require.NoError(t, err)
	data, err := json.Marshal(map[string]interface{}{
		"kind":          KindRidge,
		"params":        json.RawMessage(params),
		"feature_names": []string{"a", "b", "c"},
	})
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got.FeatureOrder)
	assert.Equal(t, KindRidge, got.Estimator.Kind())
}

func TestDecode_RawEstimatorDefaultsToCanonicalOrder(t *testing.T) {
	est, err := FitRidge(linearDataset(40, 9), 1)
	require.NoError(t, err)
	params, _ := json.Marshal(est)
	data, _ := json.Marshal(map[string]interface{}{"kind": KindRidge, "params": json.RawMessage(params)})

	// three coefficients cannot line up with the twenty canonical features
	_, err = Decode(data)
	assert.ErrorIs(t, err, ErrFeatureCount)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"both shapes", `{"kind":"ridge","model":{}}`, domain.ErrAmbiguousArtifact},
		{"neither shape", `{"feature_order":["a"]}`, domain.ErrAmbiguousArtifact},
		{"unknown kind", `{"kind":"svm","params":{}}`, ErrUnknownKind},
		{"schema major", `{"model":{"kind":"ridge","params":{}},"schema_version":"1.0"}`, domain.ErrModelIncompatible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecode_CorruptTree(t *testing.T) {
	doc := `{"model":{"kind":"random_forest","params":{"n_features":2,"trees":[{"nodes":[{"f":0,"t":1,"l":0,"r":1,"v":0}]}]}},"feature_order":["a","b"]}`
	_, err := Decode([]byte(doc))
	assert.Error(t, err)
}
