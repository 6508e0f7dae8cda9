package runtimeinfo

import (
	"os"
	"runtime"
	"runtime/debug"
	"sort"

	"github.com/klauspost/cpuid/v2"

	"crop-yield-service/internal/core/domain"
	ports "crop-yield-service/internal/core/ports/output"
	"crop-yield-service/internal/estimator"
)

// TrackedModules are the third-party modules whose versions feed the fingerprint.
var TrackedModules = []string{
	"github.com/klauspost/cpuid/v2",
	"github.com/Masterminds/semver/v3",
}

// TrackedFeatures are the instruction sets that change float results or speed.
var TrackedFeatures = []cpuid.FeatureID{
	cpuid.SSE2,
	cpuid.SSE4,
	cpuid.AVX,
	cpuid.AVX2,
	cpuid.FMA3,
	cpuid.AVX512F,
	cpuid.ASIMD,
}

// TrackedEnv are the environment variables that affect numeric execution.
var TrackedEnv = []string{"GOMAXPROCS", "GODEBUG", "GOAMD64", "GOARM64", "GOGC"}

const unset = "unset"

type probe struct {
	modules map[string]string
}

// NewProbe inspects the running binary. Build info is read once.
func NewProbe() ports.RuntimeProbe {
	p := &probe{modules: make(map[string]string)}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range info.Deps {
			m := dep
			if m.Replace != nil {
				m = m.Replace
			}
			p.modules[dep.Path] = m.Version
		}
	}
	return p
}

func (p *probe) RuntimeVersion() string { return runtime.Version() }

func (p *probe) Platform() string { return runtime.GOOS + "/" + runtime.GOARCH }

func (p *probe) LibraryVersions() map[string]string {
	out := map[string]string{estimator.LibraryName: estimator.Version}
	for _, path := range TrackedModules {
		v, ok := p.modules[path]
		if !ok || v == "" {
			v = domain.NotInstalled
		}
		out[path] = v
	}
	return out
}

func (p *probe) CPUFeatures() []string {
	var out []string
	for _, f := range TrackedFeatures {
		if cpuid.CPU.Supports(f) {
			out = append(out, f.String())
		}
	}
	sort.Strings(out)
	return out
}

func (p *probe) EnvFlags() map[string]string {
	out := make(map[string]string, len(TrackedEnv))
	for _, name := range TrackedEnv {
		v, ok := os.LookupEnv(name)
		if !ok {
			v = unset
		}
		out[name] = v
	}
	return out
}
