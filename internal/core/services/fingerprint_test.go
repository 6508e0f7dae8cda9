package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crop-yield-service/internal/core/domain"
	"crop-yield-service/internal/estimator"
	"crop-yield-service/internal/testutil"
)

func TestFingerprinter_Current(t *testing.T) {
	probe := testutil.NewStaticProbe()
	probe.Features = []string{"SSE4", "AVX2", "FMA3"}
	probe.Libraries["github.com/Masterminds/semver/v3"] = ""
	f := NewFingerprinter(probe, &testutil.MemoryFingerprintCache{})

	fp := f.Current()

	assert.Equal(t, "go1.24.9", fp.RuntimeVersion)
	assert.Equal(t, []string{"AVX2", "FMA3", "SSE4"}, fp.CPUFeatures)
	assert.Equal(t, domain.NotInstalled, fp.LibraryVersions["github.com/Masterminds/semver/v3"])
	assert.Equal(t, estimator.Version, fp.LibraryVersions[estimator.LibraryName])
	assert.Len(t, fp.Digest, 64)

	// stable for an unchanged runtime
	assert.Equal(t, fp.Digest, f.Current().Digest)
}

func TestFingerprinter_CompareWithCached(t *testing.T) {
	probe := testutil.NewStaticProbe()
	cache := &testutil.MemoryFingerprintCache{}
	f := NewFingerprinter(probe, cache)
	ctx := context.Background()

	first, fp := f.CompareWithCached(ctx)
	assert.True(t, first.FirstRun)
	assert.True(t, first.Identical)
	cached, _ := cache.Load(ctx)
	assert.Equal(t, fp.Digest, cached.Digest)

	same, _ := f.CompareWithCached(ctx)
	assert.False(t, same.FirstRun)
	assert.True(t, same.Identical)

	logger, hook := test.NewNullLogger()
	f.logger = logger
	probe.Libraries[estimator.LibraryName] = "1.5.0"
	probe.Flags["GOMAXPROCS"] = "2"

	drift, current := f.CompareWithCached(ctx)
	assert.False(t, drift.Identical)
	assert.Equal(t, []domain.FingerprintDiff{
		{Key: "env.GOMAXPROCS", Cached: "unset", Current: "2"},
		{Key: "library.estimator", Cached: estimator.Version, Current: "1.5.0"},
	}, drift.Diffs)
	assert.Contains(t, hook.LastEntry().Message, "library.estimator: "+estimator.Version+" -> 1.5.0")

	// the cache now holds the drifted snapshot
	cached, _ = cache.Load(ctx)
	assert.Equal(t, current.Digest, cached.Digest)
	again, _ := f.CompareWithCached(ctx)
	assert.True(t, again.Identical)
}

func TestFingerprinter_CacheErrorsDoNotFail(t *testing.T) {
	cache := new(testutil.MockFingerprintCache)
	cache.On("Load", mock.Anything).Return(nil, errors.New("unexpected end of JSON input"))
	cache.On("Save", mock.Anything, mock.Anything).Return(errors.New("read-only file system"))
	f := NewFingerprinter(testutil.NewStaticProbe(), cache)
	logger, hook := test.NewNullLogger()
	f.logger = logger

	cmp, fp := f.CompareWithCached(context.Background())

	assert.True(t, cmp.FirstRun)
	require.NotNil(t, fp)
	assert.Len(t, hook.AllEntries(), 3)
	cache.AssertExpectations(t)
}

func TestFingerprinter_Create(t *testing.T) {
	cache := &testutil.MemoryFingerprintCache{}
	f := NewFingerprinter(testutil.NewStaticProbe(), cache)

	fp := f.Create(context.Background())

	cached, err := cache.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fp, cached)
}
