package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

// NotInstalled marks a tracked library that is absent from the runtime.
const NotInstalled = "not-installed"

type EnvironmentFingerprint struct {
	RuntimeVersion  string            `json:"runtime_version"`
	Platform        string            `json:"platform"`
	LibraryVersions map[string]string `json:"library_versions"`
	CPUFeatures     []string          `json:"cpu_features"`
	EnvFlags        map[string]string `json:"env_flags"`
	Digest          string            `json:"digest"`
	CreatedAt       time.Time         `json:"created_at"`
}

// Flatten returns a comparable key/value view of the fingerprint.
func (f *EnvironmentFingerprint) Flatten() map[string]string {
	out := map[string]string{
		"runtime":  f.RuntimeVersion,
		"platform": f.Platform,
	}
	for k, v := range f.LibraryVersions {
		out["library."+k] = v
	}
	for k, v := range f.EnvFlags {
		out["env."+k] = v
	}
	features := append([]string(nil), f.CPUFeatures...)
	sort.Strings(features)
	out["cpu_features"] = strings.Join(features, ",")
	return out
}

// ComputeDigest hashes the flattened view in key order, so it is independent of map iteration.
func (f *EnvironmentFingerprint) ComputeDigest() string {
	flat := f.Flatten()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(flat[k]))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

type FingerprintDiff struct {
	Key     string `json:"key"`
	Cached  string `json:"cached"`
	Current string `json:"current"`
}

type FingerprintComparison struct {
	Identical bool              `json:"identical"`
	FirstRun  bool              `json:"first_run"`
	Diffs     []FingerprintDiff `json:"diffs,omitempty"`
}

func (c FingerprintComparison) Summary() string {
	if c.FirstRun {
		return "no cached fingerprint"
	}
	if c.Identical {
		return "identical"
	}
	parts := make([]string, 0, len(c.Diffs))
	for _, d := range c.Diffs {
		parts = append(parts, d.Key+": "+d.Cached+" -> "+d.Current)
	}
	return strings.Join(parts, "; ")
}

// CompareFingerprints diffs keys present in both snapshots. A nil cached snapshot is a first run.
func CompareFingerprints(cached, current *EnvironmentFingerprint) FingerprintComparison {
	if cached == nil {
		return FingerprintComparison{Identical: true, FirstRun: true}
	}
	before := cached.Flatten()
	after := current.Flatten()

	var diffs []FingerprintDiff
	for k, v := range before {
		now, ok := after[k]
		if !ok || now == v {
			continue
		}
		diffs = append(diffs, FingerprintDiff{Key: k, Cached: v, Current: now})
	}
	sort.Slice(diffs, func(i, j int) bool { return diffs[i].Key < diffs[j].Key })
	return FingerprintComparison{Identical: len(diffs) == 0, Diffs: diffs}
}
