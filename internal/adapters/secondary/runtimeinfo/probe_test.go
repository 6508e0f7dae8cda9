package runtimeinfo

import (
	"runtime"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"crop-yield-service/internal/estimator"
)

func TestProbe(t *testing.T) {
	t.Setenv("GOGC", "150")
	p := NewProbe()

	assert.Equal(t, runtime.Version(), p.RuntimeVersion())
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, p.Platform())

	libs := p.LibraryVersions()
	assert.Equal(t, estimator.Version, libs[estimator.LibraryName])
	for _, m := range TrackedModules {
		assert.NotEmpty(t, libs[m], m)
	}

	flags := p.EnvFlags()
	assert.Equal(t, "150", flags["GOGC"])
	assert.Len(t, flags, len(TrackedEnv))

	features := p.CPUFeatures()
	assert.True(t, sort.StringsAreSorted(features))
	assert.LessOrEqual(t, len(features), len(TrackedFeatures))
}
