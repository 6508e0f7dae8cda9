// Package estimator holds the regressors served and trained by the yield
// service, and the JSON document format they are stored in.
package estimator

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"crop-yield-service/internal/core/domain"
)

// Version is reported to the environment fingerprinter as the installed
// estimator library version. Bump the minor on any change to Predict semantics.
const Version = "1.4.2"

// LibraryName is the key under which Version appears in fingerprints and pins.
const LibraryName = "estimator"

const (
	KindRidge            = string(domain.AlgorithmRidge)
	KindRandomForest     = string(domain.AlgorithmRandomForest)
	KindGradientBoosting = string(domain.AlgorithmGradientBoosting)
)

var (
	ErrFeatureCount = errors.New("feature count mismatch")
	ErrNonFinite    = errors.New("non-finite value")
	ErrEmptyDataset = errors.New("empty dataset")
	ErrUnknownKind  = errors.New("unknown estimator kind")
)

// Dataset is row-major training data.
type Dataset struct {
	X [][]float64
	Y []float64
}

func (d Dataset) Len() int { return len(d.Y) }

func (d Dataset) NumFeatures() int {
	if len(d.X) == 0 {
		return 0
	}
	return len(d.X[0])
}

// Subset copies the rows at idx.
func (d Dataset) Subset(idx []int) Dataset {
	out := Dataset{X: make([][]float64, len(idx)), Y: make([]float64, len(idx))}
	for i, j := range idx {
		out.X[i] = d.X[j]
		out.Y[i] = d.Y[j]
	}
	return out
}

// Split shuffles with seed and cuts off testFrac of the rows for evaluation.
func (d Dataset) Split(testFrac float64, seed int64) (train, test Dataset) {
	n := d.Len()
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(math.Round(float64(n) * testFrac))
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}
	return d.Subset(perm[nTest:]), d.Subset(perm[:nTest])
}

func (d Dataset) validate() error {
	if d.Len() == 0 {
		return ErrEmptyDataset
	}
	if len(d.X) != len(d.Y) {
		return fmt.Errorf("%w: %d rows, %d targets", ErrFeatureCount, len(d.X), len(d.Y))
	}
	nf := d.NumFeatures()
	for i, row := range d.X {
		if len(row) != nf {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrFeatureCount, i, len(row), nf)
		}
	}
	return nil
}

func checkInput(x []float64, want int) error {
	if len(x) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(x), want)
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w at feature %d", ErrNonFinite, i)
		}
	}
	return nil
}

// Fit trains the estimator for algo with the library's default hyperparameters.
func Fit(algo domain.Algorithm, d Dataset, seed int64) (domain.Estimator, error) {
	switch algo {
	case domain.AlgorithmRidge:
		return FitRidge(d, 1.0)
	case domain.AlgorithmRandomForest:
		return FitRandomForest(d, DefaultForestParams(seed))
	case domain.AlgorithmGradientBoosting:
		return FitGradientBoosting(d, DefaultBoostingParams(seed))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, algo)
	}
}

// Evaluate scores e on d.
func Evaluate(e domain.Estimator, d Dataset, trainRows int) (*domain.TrainingMetrics, error) {
	m := &domain.TrainingMetrics{TrainRows: trainRows, TestRows: d.Len()}
	if d.Len() == 0 {
		return m, nil
	}

	var mean float64
	for _, y := range d.Y {
		mean += y
	}
	mean /= float64(d.Len())

	var ssRes, ssTot, absSum float64
	for i, x := range d.X {
		pred, err := e.Predict(x)
		if err != nil {
			return nil, err
		}
		diff := d.Y[i] - pred
		ssRes += diff * diff
		absSum += math.Abs(diff)
		ssTot += (d.Y[i] - mean) * (d.Y[i] - mean)
	}

	n := float64(d.Len())
	m.RMSE = math.Sqrt(ssRes / n)
	m.MAE = absSum / n
	if ssTot > 0 {
		m.R2 = 1 - ssRes/ssTot
	}
	return m, nil
}
