package domain

type CropVariety struct {
	CropType         string   `json:"crop_type" yaml:"crop_type"`
	VarietyName      string   `json:"variety_name" yaml:"variety_name"`
	YieldPotential   float64  `json:"yield_potential" yaml:"yield_potential"`
	MaturityDays     int      `json:"maturity_days" yaml:"maturity_days"`
	DroughtTolerance string   `json:"drought_tolerance" yaml:"drought_tolerance"`
	RegionPrevalence []Region `json:"region_prevalence" yaml:"region_prevalence"`
}

// PrevalentIn reports whether the variety is grown in the region.
func (v *CropVariety) PrevalentIn(region Region) bool {
	for _, r := range v.RegionPrevalence {
		if r == region {
			return true
		}
	}
	return false
}

type SelectionReason string

const (
	ReasonRegionalHighestYield SelectionReason = "regional_highest_yield"
	ReasonRegionalFallback     SelectionReason = "regional_fallback"
	ReasonGlobalDefault        SelectionReason = "global_default"
)

type SelectionMetadata struct {
	Region          Region          `json:"region"`
	OriginalRegion  Region          `json:"original_region,omitempty"`
	Reason          SelectionReason `json:"reason"`
	SelectionTimeMs float64         `json:"selection_time_ms"`
}

type VarietySelectionResult struct {
	VarietyName       string            `json:"variety_name"`
	VarietyAssumed    bool              `json:"variety_assumed"`
	SelectionMetadata SelectionMetadata `json:"selection_metadata"`
}

// GlobalDefaultVarieties is the last rung of the escalation ladder, keyed by crop type.
var GlobalDefaultVarieties = map[string]string{
	"Rice":      "IR-64",
	"Wheat":     "HD-2967",
	"Maize":     "DHM-117",
	"Sugarcane": "Co-0238",
	"Cotton":    "Bt-Cotton-RCH-2",
	"Mustard":   "Pusa Bold",
	"Bajra":     "HHB-67",
	"Barley":    "RD-2552",
	"Gram":      "Pusa-256",
}
