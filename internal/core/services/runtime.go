package services

import (
	"context"

	log "github.com/sirupsen/logrus"

	"crop-yield-service/internal/core/domain"
	ports "crop-yield-service/internal/core/ports/output"
)

// RuntimeContext is the per-process state computed once at startup and passed
// explicitly to whatever serves requests.
type RuntimeContext struct {
	Fingerprint *domain.EnvironmentFingerprint
	Drift       domain.FingerprintComparison
	Outcome     domain.Outcome
	Report      *domain.CompatibilityReport
	Registry    *ModelRegistry
}

// Bootstrap fingerprints the environment, validates the artifact store and
// builds the registry. It never fails: every problem degrades to fallback.
func Bootstrap(ctx context.Context, fingerprinter *Fingerprinter, validator *CompatibilityValidator, publisher ports.StatusPublisher) *RuntimeContext {
	drift, fp := fingerprinter.CompareWithCached(ctx)

	res := validator.Validate(ctx)
	res.Report.EnvironmentDrift = !drift.Identical
	outcome := res.Outcome
	if res.Report.EnvironmentDrift {
		outcome.Detail += "; environment drift since last run"
	}
	validator.metrics.SetCompatibility(res.Report)

	rc := &RuntimeContext{
		Fingerprint: fp,
		Drift:       drift,
		Outcome:     outcome,
		Report:      res.Report,
		Registry:    NewModelRegistry(res.Artifacts),
	}

	entry := log.WithFields(log.Fields{
		"status":            outcome.Status(),
		"fingerprint":       fp.Digest,
		"served_artifacts":  rc.Registry.Len(),
		"fallback_active":   res.Report.FallbackActive,
		"environment_drift": res.Report.EnvironmentDrift,
	})
	if outcome.Degraded {
		entry.Warn("runtime ready in degraded mode: " + outcome.Detail)
	} else {
		entry.Info("runtime ready")
	}

	if publisher != nil {
		status := ports.CompatibilityStatus{Outcome: outcome, Report: res.Report, FingerprintDigest: fp.Digest}
		if err := publisher.Publish(ctx, status); err != nil {
			log.WithError(err).WithField("operation", "publish_status").Warn("failed to publish compatibility status")
		}
	}
	return rc
}
