package services

import (
	"math"
	"strings"

	"crop-yield-service/internal/core/domain"
)

// DefaultBaseYields is the typical North Indian yield per crop in tonnes/hectare.
var DefaultBaseYields = map[string]float64{
	"Rice":      4.0,
	"Wheat":     4.5,
	"Maize":     3.2,
	"Sugarcane": 70.0,
	"Cotton":    1.8,
	"Mustard":   1.6,
	"Bajra":     2.0,
	"Barley":    3.0,
	"Gram":      1.1,
}

const fallbackBaseYield = 2.5

// HeuristicPredictor is the deterministic rule-based stand-in used when no
// compatible artifact exists for a location.
type HeuristicPredictor struct {
	baseYields map[string]float64
}

func NewHeuristicPredictor(baseYields map[string]float64) *HeuristicPredictor {
	if baseYields == nil {
		baseYields = DefaultBaseYields
	}
	return &HeuristicPredictor{baseYields: baseYields}
}

func (h *HeuristicPredictor) BaseYield(cropType string) float64 {
	for crop, y := range h.baseYields {
		if strings.EqualFold(crop, cropType) {
			return y
		}
	}
	return fallbackBaseYield
}

// Predict combines the crop base yield, the variety's potential and
// environmental adjustment factors. Features absent from the vector are
// treated as nominal.
func (h *HeuristicPredictor) Predict(cropType string, variety *domain.CropVariety, features domain.FeatureVector) float64 {
	base := h.BaseYield(cropType)

	varietyFactor := 1.0
	if variety != nil && variety.YieldPotential > 0 {
		varietyFactor = clamp(variety.YieldPotential/base, 0.7, 1.4)
	}

	nominal := SyntheticFeatureVector()
	get := func(name string) float64 {
		if v, ok := features[name]; ok && !math.IsNaN(v) {
			return v
		}
		return nominal[name]
	}

	vegetation := clamp(get(domain.FeatureNDVI)/nominal[domain.FeatureNDVI], 0.5, 1.2)

	heat := 1.0
	if tmax := get(domain.FeatureTempMax); tmax > 35 {
		perDegree := 0.03
		if variety != nil && strings.EqualFold(variety.DroughtTolerance, "high") {
			perDegree = 0.015
		}
		heat = clamp(1-perDegree*(tmax-35), 0.5, 1)
	}

	water := 1.0
	if deficit := get(domain.FeaturePrecipDeficit); deficit > 20 {
		water = clamp(1-0.004*(deficit-20), 0.6, 1)
	}

	soil := 1.0
	if ph := get(domain.FeatureSoilPH); ph < 6 || ph > 8 {
		soil = 0.9
	}

	return round2(base * varietyFactor * vegetation * heat * water * soil)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
