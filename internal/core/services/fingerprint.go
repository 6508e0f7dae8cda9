package services

import (
	"context"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"crop-yield-service/internal/core/domain"
	ports "crop-yield-service/internal/core/ports/output"
)

// Fingerprinter digests the numeric runtime for drift detection.
type Fingerprinter struct {
	probe  ports.RuntimeProbe
	cache  ports.FingerprintCache
	logger log.FieldLogger
	now    func() time.Time
}

func NewFingerprinter(probe ports.RuntimeProbe, cache ports.FingerprintCache) *Fingerprinter {
	return &Fingerprinter{
		probe:  probe,
		cache:  cache,
		logger: log.StandardLogger(),
		now:    time.Now,
	}
}

// Current builds the fingerprint of the running process without touching the cache.
func (f *Fingerprinter) Current() *domain.EnvironmentFingerprint {
	libs := make(map[string]string)
	for name, version := range f.probe.LibraryVersions() {
		if version == "" {
			version = domain.NotInstalled
		}
		libs[name] = version
	}

	features := append([]string(nil), f.probe.CPUFeatures()...)
	sort.Strings(features)

	fp := &domain.EnvironmentFingerprint{
		RuntimeVersion:  f.probe.RuntimeVersion(),
		Platform:        f.probe.Platform(),
		LibraryVersions: libs,
		CPUFeatures:     features,
		EnvFlags:        f.probe.EnvFlags(),
		CreatedAt:       f.now().UTC(),
	}
	fp.Digest = fp.ComputeDigest()
	return fp
}

// Create computes the fingerprint and overwrites the cache with it. A cache
// write failure is logged and does not fail the call.
func (f *Fingerprinter) Create(ctx context.Context) *domain.EnvironmentFingerprint {
	fp := f.Current()
	f.save(ctx, fp)
	return fp
}

// CompareWithCached diffs the current runtime against the last persisted
// snapshot, then replaces the snapshot. An unreadable or absent cache counts as
// a first run.
func (f *Fingerprinter) CompareWithCached(ctx context.Context) (domain.FingerprintComparison, *domain.EnvironmentFingerprint) {
	cached, err := f.cache.Load(ctx)
	if err != nil {
		f.logger.WithError(err).WithField("operation", "fingerprint_load").
			Warn("cached fingerprint unreadable, treating as first run")
		cached = nil
	}

	current := f.Current()
	cmp := domain.CompareFingerprints(cached, current)
	f.save(ctx, current)

	switch {
	case cmp.FirstRun:
		f.logger.WithField("digest", current.Digest).Info("no cached fingerprint, recorded current environment")
	case !cmp.Identical:
		f.logger.WithFields(log.Fields{
			"digest":        current.Digest,
			"cached_digest": cached.Digest,
			"changes":       len(cmp.Diffs),
		}).WithError(domain.ErrEnvironmentMismatch).Warn("environment drift: " + cmp.Summary())
	}
	return cmp, current
}

func (f *Fingerprinter) save(ctx context.Context, fp *domain.EnvironmentFingerprint) {
	if err := f.cache.Save(ctx, fp); err != nil {
		f.logger.WithError(err).WithFields(log.Fields{
			"operation": "fingerprint_save",
			"digest":    fp.Digest,
		}).Warn("failed to persist fingerprint cache")
	}
}
