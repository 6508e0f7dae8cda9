package domain

import (
	"strings"
	"unicode"
)

type Region string

const (
	RegionPunjab        Region = "Punjab"
	RegionHaryana       Region = "Haryana"
	RegionUttarPradesh  Region = "Uttar Pradesh"
	RegionBihar         Region = "Bihar"
	RegionMadhyaPradesh Region = "Madhya Pradesh"

	// RegionAllNorthIndia is the umbrella catchment every state region falls back to.
	RegionAllNorthIndia Region = "All North India"

	DefaultRegion = RegionAllNorthIndia
)

// Regions lists the state regions, which are also the model locations.
var Regions = []Region{
	RegionPunjab,
	RegionHaryana,
	RegionUttarPradesh,
	RegionBihar,
	RegionMadhyaPradesh,
}

var allRegions = []Region{
	RegionPunjab,
	RegionHaryana,
	RegionUttarPradesh,
	RegionBihar,
	RegionMadhyaPradesh,
	RegionAllNorthIndia,
}

// Slug is the filesystem-safe form used in artifact file names.
func (r Region) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(r)), " ", "-")
}

func (r Region) IsState() bool {
	for _, s := range Regions {
		if s == r {
			return true
		}
	}
	return false
}

// ParseRegion accepts a region display name or slug.
func ParseRegion(s string) (Region, bool) {
	key := normalizeLocation(s)
	for _, r := range allRegions {
		if normalizeLocation(string(r)) == key {
			return r, true
		}
	}
	return "", false
}

// locationRegions is keyed by normalized location (lowercase, alphanumerics only).
var locationRegions = map[string]Region{
	// Punjab
	"punjab":    RegionPunjab,
	"ludhiana":  RegionPunjab,
	"amritsar":  RegionPunjab,
	"jalandhar": RegionPunjab,
	"patiala":   RegionPunjab,
	"bathinda":  RegionPunjab,
	"mohali":    RegionPunjab,
	"sangrur":   RegionPunjab,
	"firozpur":  RegionPunjab,

	// Haryana
	"haryana":     RegionHaryana,
	"karnal":      RegionHaryana,
	"hisar":       RegionHaryana,
	"rohtak":      RegionHaryana,
	"ambala":      RegionHaryana,
	"panipat":     RegionHaryana,
	"kurukshetra": RegionHaryana,
	"sirsa":       RegionHaryana,
	"gurugram":    RegionHaryana,
	"gurgaon":     RegionHaryana,

	// Uttar Pradesh
	"uttarpradesh": RegionUttarPradesh,
	"up":           RegionUttarPradesh,
	"lucknow":      RegionUttarPradesh,
	"kanpur":       RegionUttarPradesh,
	"varanasi":     RegionUttarPradesh,
	"agra":         RegionUttarPradesh,
	"meerut":       RegionUttarPradesh,
	"prayagraj":    RegionUttarPradesh,
	"allahabad":    RegionUttarPradesh,
	"gorakhpur":    RegionUttarPradesh,
	"bareilly":     RegionUttarPradesh,

	// Bihar
	"bihar":       RegionBihar,
	"patna":       RegionBihar,
	"gaya":        RegionBihar,
	"bhagalpur":   RegionBihar,
	"muzaffarpur": RegionBihar,
	"darbhanga":   RegionBihar,
	"purnia":      RegionBihar,

	// Madhya Pradesh
	"madhyapradesh": RegionMadhyaPradesh,
	"mp":            RegionMadhyaPradesh,
	"bhopal":        RegionMadhyaPradesh,
	"indore":        RegionMadhyaPradesh,
	"jabalpur":      RegionMadhyaPradesh,
	"gwalior":       RegionMadhyaPradesh,
	"ujjain":        RegionMadhyaPradesh,
	"sagar":         RegionMadhyaPradesh,
	"hoshangabad":   RegionMadhyaPradesh,

	// Umbrella
	"allnorthindia": RegionAllNorthIndia,
	"northindia":    RegionAllNorthIndia,
}

// MapLocationToRegion resolves a free-form location to its region. Unknown or
// blank locations resolve to DefaultRegion.
func MapLocationToRegion(location string) Region {
	if r, ok := locationRegions[normalizeLocation(location)]; ok {
		return r
	}
	return DefaultRegion
}

func normalizeLocation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
