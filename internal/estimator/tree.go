package estimator

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

// Node is one CART node. Leaves have Left == Right == -1.
type Node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Value     float64 `json:"v"`
}

func (n Node) leaf() bool { return n.Left < 0 }

// Tree is a regression tree stored as a flat node array rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t *Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.leaf() {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func (t *Tree) validate(numFeatures int) error {
	if len(t.Nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.leaf() {
			if n.Right >= 0 {
				return fmt.Errorf("node %d: half leaf", i)
			}
			continue
		}
		// children always come after their parent, which also rules out cycles
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d: child index out of range", i)
		}
		if n.Feature < 0 || n.Feature >= numFeatures {
			return fmt.Errorf("node %d: %w: feature %d", i, ErrFeatureCount, n.Feature)
		}
	}
	return nil
}

type TreeParams struct {
	MaxDepth    int
	MinLeaf     int
	MaxFeatures int // 0 means all features
}

type treeBuilder struct {
	x      [][]float64
	y      []float64
	params TreeParams
	rng    *rand.Rand
	nodes  []Node
}

func fitTree(x [][]float64, y []float64, idx []int, params TreeParams, rng *rand.Rand) *Tree {
	if params.MinLeaf < 1 {
		params.MinLeaf = 1
	}
	b := &treeBuilder{x: x, y: y, params: params, rng: rng}
	b.build(idx, 0)
	return &Tree{Nodes: b.nodes}
}

func (b *treeBuilder) build(idx []int, depth int) int {
	var sum float64
	for _, i := range idx {
		sum += b.y[i]
	}
	self := len(b.nodes)
	b.nodes = append(b.nodes, Node{Left: -1, Right: -1, Value: sum / float64(len(idx))})

	if depth >= b.params.MaxDepth || len(idx) < 2*b.params.MinLeaf {
		return self
	}

	feature, threshold, ok := b.bestSplit(idx, sum)
	if !ok {
		return self
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return self
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[self].Feature = feature
	b.nodes[self].Threshold = threshold
	b.nodes[self].Left = l
	b.nodes[self].Right = r
	return self
}

func (b *treeBuilder) candidateFeatures() []int {
	p := len(b.x[0])
	if b.params.MaxFeatures <= 0 || b.params.MaxFeatures >= p {
		all := make([]int, p)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return b.rng.Perm(p)[:b.params.MaxFeatures]
}

// bestSplit maximizes the between-child sum of squares, which is equivalent to
// minimizing the children's variance.
func (b *treeBuilder) bestSplit(idx []int, total float64) (int, float64, bool) {
	n := len(idx)
	minLeaf := b.params.MinLeaf
	parentScore := total * total / float64(n)

	bestScore := parentScore + 1e-12
	bestFeature, bestThreshold, found := -1, 0.0, false

	order := make([]int, n)
	for _, f := range b.candidateFeatures() {
		copy(order, idx)
		sort.Slice(order, func(a, c int) bool { return b.x[order[a]][f] < b.x[order[c]][f] })

		var leftSum float64
		for k := 0; k < n-1; k++ {
			leftSum += b.y[order[k]]
			nl := k + 1
			if nl < minLeaf || n-nl < minLeaf {
				continue
			}
			cur, next := b.x[order[k]][f], b.x[order[k+1]][f]
			if cur == next {
				continue
			}
			rightSum := total - leftSum
			score := leftSum*leftSum/float64(nl) + rightSum*rightSum/float64(n-nl)
			if score > bestScore {
				bestScore = score
				bestFeature = f
				bestThreshold = (cur + next) / 2
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}
