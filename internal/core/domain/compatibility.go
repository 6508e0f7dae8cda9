package domain

import "sort"

// YieldRange bounds a sane model output during compatibility probing.
type YieldRange struct {
	Min float64
	Max float64
}

var DefaultYieldRange = YieldRange{Min: -10, Max: 20}

func (r YieldRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// LibraryMismatch records a tracked library whose installed major.minor differs from the pin.
type LibraryMismatch struct {
	Library   string `json:"library"`
	Pinned    string `json:"pinned"`
	Installed string `json:"installed"`
}

type ArtifactFailure struct {
	Artifact string `json:"artifact"`
	Key      string `json:"key,omitempty"`
	Cause    string `json:"cause"`
}

// CompatibilityReport is recomputed on every validation pass.
type CompatibilityReport struct {
	Compatible       []ArtifactKey     `json:"compatible"`
	Incompatible     []ArtifactKey     `json:"incompatible"`
	Missing          []ArtifactKey     `json:"missing,omitempty"`
	Failures         []ArtifactFailure `json:"failures,omitempty"`
	LibraryMismatch  []LibraryMismatch `json:"library_mismatches,omitempty"`
	ModelDirMissing  bool              `json:"model_dir_missing"`
	EnvironmentDrift bool              `json:"environment_drift"`
	FallbackActive   bool              `json:"fallback_active"`
}

func NewCompatibilityReport() *CompatibilityReport {
	return &CompatibilityReport{
		Compatible:   []ArtifactKey{},
		Incompatible: []ArtifactKey{},
	}
}

func (r *CompatibilityReport) IsCompatible(key ArtifactKey) bool {
	for _, k := range r.Compatible {
		if k == key {
			return true
		}
	}
	return false
}

// AddCompatible and AddIncompatible keep both sets free of duplicates. A key with
// one good version stays compatible even if an older version failed.
func (r *CompatibilityReport) AddCompatible(key ArtifactKey) {
	if r.IsCompatible(key) {
		return
	}
	r.Compatible = append(r.Compatible, key)
	r.Incompatible = removeKey(r.Incompatible, key)
}

func (r *CompatibilityReport) AddIncompatible(key ArtifactKey) {
	if r.IsCompatible(key) {
		return
	}
	for _, k := range r.Incompatible {
		if k == key {
			return
		}
	}
	r.Incompatible = append(r.Incompatible, key)
}

// Finalize sorts the sets and computes which expected keys never showed up.
func (r *CompatibilityReport) Finalize() {
	sortKeys(r.Compatible)
	sortKeys(r.Incompatible)
	r.Missing = r.Missing[:0]
	for _, k := range ExpectedArtifactKeys() {
		if r.IsCompatible(k) {
			continue
		}
		seen := false
		for _, bad := range r.Incompatible {
			if bad == k {
				seen = true
				break
			}
		}
		if !seen {
			r.Missing = append(r.Missing, k)
		}
	}
}

func removeKey(keys []ArtifactKey, key ArtifactKey) []ArtifactKey {
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

func sortKeys(keys []ArtifactKey) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}
