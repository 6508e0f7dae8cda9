package domain

import (
	"math"
	"sort"
)

// Column names with special meaning in the training table.
const (
	ColumnYield    = "yield"
	ColumnLocation = "location"
)

// Target labels recorded in artifact metadata.
const (
	TargetObservedYield = "yield"
	// TargetSyntheticYield marks a heuristic placeholder target, not a learned relationship.
	TargetSyntheticYield = "synthetic_nonauthoritative"
)

// TrainingTable is column-major; missing numeric cells are NaN.
type TrainingTable struct {
	Columns   map[string][]float64
	Locations []string
	Rows      int
}

func (t *TrainingTable) HasColumn(name string) bool {
	_, ok := t.Columns[name]
	return ok
}

// ImputeMedians replaces NaN cells with their column median. Columns with no
// observed values become zero.
func (t *TrainingTable) ImputeMedians() {
	for name, col := range t.Columns {
		median := ColumnMedian(col)
		for i, v := range col {
			if math.IsNaN(v) {
				col[i] = median
			}
		}
		t.Columns[name] = col
	}
}

func ColumnMedian(col []float64) float64 {
	observed := make([]float64, 0, len(col))
	for _, v := range col {
		if !math.IsNaN(v) {
			observed = append(observed, v)
		}
	}
	if len(observed) == 0 {
		return 0
	}
	sort.Float64s(observed)
	mid := len(observed) / 2
	if len(observed)%2 == 0 {
		return (observed[mid-1] + observed[mid]) / 2
	}
	return observed[mid]
}

// RowsFor returns the row indexes whose location maps to region.
func (t *TrainingTable) RowsFor(region Region) []int {
	var idx []int
	for i, loc := range t.Locations {
		if MapLocationToRegion(loc) == region {
			idx = append(idx, i)
		}
	}
	return idx
}
