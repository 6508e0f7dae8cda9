package estimator

import (
	"errors"
	"fmt"
	"math/rand"
)

type ForestParams struct {
	NumTrees int
	Tree     TreeParams
	Seed     int64
}

func DefaultForestParams(seed int64) ForestParams {
	return ForestParams{
		NumTrees: 40,
		Tree:     TreeParams{MaxDepth: 8, MinLeaf: 3, MaxFeatures: 7},
		Seed:     seed,
	}
}

// RandomForest averages bootstrap-trained trees.
type RandomForest struct {
	Features int     `json:"n_features"`
	Trees    []*Tree `json:"trees"`
}

func FitRandomForest(d Dataset, params ForestParams) (*RandomForest, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	if params.NumTrees < 1 {
		return nil, errors.New("random forest: need at least one tree")
	}
	rng := rand.New(rand.NewSource(params.Seed))
	n := d.Len()

	rf := &RandomForest{Features: d.NumFeatures(), Trees: make([]*Tree, 0, params.NumTrees)}
	idx := make([]int, n)
	for t := 0; t < params.NumTrees; t++ {
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		rf.Trees = append(rf.Trees, fitTree(d.X, d.Y, idx, params.Tree, rng))
	}
	return rf, nil
}

func (f *RandomForest) Kind() string     { return KindRandomForest }
func (f *RandomForest) NumFeatures() int { return f.Features }

func (f *RandomForest) Predict(x []float64) (float64, error) {
	if err := checkInput(x, f.Features); err != nil {
		return 0, err
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.Trees)), nil
}

func (f *RandomForest) validate() error {
	if f.Features <= 0 || len(f.Trees) == 0 {
		return errors.New("random forest: empty model")
	}
	for i, t := range f.Trees {
		if err := t.validate(f.Features); err != nil {
			return fmt.Errorf("random forest tree %d: %w", i, err)
		}
	}
	return nil
}

type BoostingParams struct {
	NumStages    int
	LearningRate float64
	Subsample    float64
	Tree         TreeParams
	Seed         int64
}

func DefaultBoostingParams(seed int64) BoostingParams {
	return BoostingParams{
		NumStages:    80,
		LearningRate: 0.1,
		Subsample:    0.8,
		Tree:         TreeParams{MaxDepth: 3, MinLeaf: 5},
		Seed:         seed,
	}
}

// GradientBoosting is least-squares boosting of shallow trees.
type GradientBoosting struct {
	Features     int     `json:"n_features"`
	Init         float64 `json:"init"`
	LearningRate float64 `json:"learning_rate"`
	Trees        []*Tree `json:"trees"`
}

func FitGradientBoosting(d Dataset, params BoostingParams) (*GradientBoosting, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	if params.NumStages < 1 || params.LearningRate <= 0 {
		return nil, errors.New("gradient boosting: invalid stage count or learning rate")
	}
	rng := rand.New(rand.NewSource(params.Seed))
	n := d.Len()

	var init float64
	for _, y := range d.Y {
		init += y
	}
	init /= float64(n)

	current := make([]float64, n)
	for i := range current {
		current[i] = init
	}
	residual := make([]float64, n)

	sampleSize := int(float64(n) * params.Subsample)
	if sampleSize < 1 || sampleSize > n {
		sampleSize = n
	}

	gb := &GradientBoosting{Features: d.NumFeatures(), Init: init, LearningRate: params.LearningRate}
	for s := 0; s < params.NumStages; s++ {
		for i := range residual {
			residual[i] = d.Y[i] - current[i]
		}
		idx := rng.Perm(n)[:sampleSize]
		tree := fitTree(d.X, residual, idx, params.Tree, rng)
		for i := range current {
			current[i] += params.LearningRate * tree.predict(d.X[i])
		}
		gb.Trees = append(gb.Trees, tree)
	}
	return gb, nil
}

func (g *GradientBoosting) Kind() string     { return KindGradientBoosting }
func (g *GradientBoosting) NumFeatures() int { return g.Features }

func (g *GradientBoosting) Predict(x []float64) (float64, error) {
	if err := checkInput(x, g.Features); err != nil {
		return 0, err
	}
	out := g.Init
	for _, t := range g.Trees {
		out += g.LearningRate * t.predict(x)
	}
	return out, nil
}

func (g *GradientBoosting) validate() error {
	if g.Features <= 0 {
		return errors.New("gradient boosting: empty model")
	}
	for i, t := range g.Trees {
		if err := t.validate(g.Features); err != nil {
			return fmt.Errorf("gradient boosting stage %d: %w", i, err)
		}
	}
	return nil
}
