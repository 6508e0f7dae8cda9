package estimator

import (
	"errors"
	"fmt"
	"math"
)

var errSingular = errors.New("singular system")

// Ridge is L2-regularized linear regression over standardized features.
type Ridge struct {
	Alpha     float64   `json:"alpha"`
	Means     []float64 `json:"means"`
	Scales    []float64 `json:"scales"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

func FitRidge(d Dataset, alpha float64) (*Ridge, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	n, p := d.Len(), d.NumFeatures()

	means := make([]float64, p)
	scales := make([]float64, p)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			means[j] += d.X[i][j]
		}
		means[j] /= float64(n)
		for i := 0; i < n; i++ {
			diff := d.X[i][j] - means[j]
			scales[j] += diff * diff
		}
		scales[j] = math.Sqrt(scales[j] / float64(n))
		if scales[j] == 0 {
			scales[j] = 1
		}
	}

	var yMean float64
	for _, y := range d.Y {
		yMean += y
	}
	yMean /= float64(n)

	// Normal equations: (Z'Z + alpha*I) w = Z'(y - yMean)
	a := make([][]float64, p)
	b := make([]float64, p)
	for j := range a {
		a[j] = make([]float64, p)
	}
	z := make([]float64, p)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			z[j] = (d.X[i][j] - means[j]) / scales[j]
		}
		yc := d.Y[i] - yMean
		for j := 0; j < p; j++ {
			b[j] += z[j] * yc
			for k := j; k < p; k++ {
				a[j][k] += z[j] * z[k]
			}
		}
	}
	for j := 0; j < p; j++ {
		for k := 0; k < j; k++ {
			a[j][k] = a[k][j]
		}
		a[j][j] += alpha
	}

	coef, err := solve(a, b)
	if err != nil {
		return nil, fmt.Errorf("fit ridge: %w", err)
	}
	return &Ridge{Alpha: alpha, Means: means, Scales: scales, Coef: coef, Intercept: yMean}, nil
}

func (r *Ridge) Kind() string     { return KindRidge }
func (r *Ridge) NumFeatures() int { return len(r.Coef) }

func (r *Ridge) Predict(x []float64) (float64, error) {
	if err := checkInput(x, len(r.Coef)); err != nil {
		return 0, err
	}
	out := r.Intercept
	for j, w := range r.Coef {
		out += w * (x[j] - r.Means[j]) / r.Scales[j]
	}
	return out, nil
}

func (r *Ridge) validate() error {
	p := len(r.Coef)
	if p == 0 || len(r.Means) != p || len(r.Scales) != p {
		return fmt.Errorf("ridge: %w: coef=%d means=%d scales=%d", ErrFeatureCount, p, len(r.Means), len(r.Scales))
	}
	for _, s := range r.Scales {
		if s == 0 {
			return errors.New("ridge: zero feature scale")
		}
	}
	return nil
}

// solve runs Gaussian elimination with partial pivoting; a and b are overwritten.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, errSingular
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			f := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= f * a[col][k]
			}
			b[row] -= f * b[col]
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < n; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, nil
}
