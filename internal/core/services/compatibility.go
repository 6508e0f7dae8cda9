package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	log "github.com/sirupsen/logrus"

	"crop-yield-service/internal/core/domain"
	ports "crop-yield-service/internal/core/ports/output"
)

// DefaultPinnedLibraries is the major.minor each tracked library must match
// for stored artifacts to be trusted.
var DefaultPinnedLibraries = map[string]string{
	"estimator": "1.4",
}

// SyntheticFeatureVector is the probe input used to test-load every artifact.
func SyntheticFeatureVector() domain.FeatureVector {
	return domain.FeatureVector{
		domain.FeatureNDVI:             0.65,
		domain.FeatureEVI:              0.42,
		domain.FeatureSAVI:             0.48,
		domain.FeatureNDWI:             0.21,
		domain.FeatureLAI:              3.1,
		domain.FeatureTempMean:         27.5,
		domain.FeatureTempMax:          33.0,
		domain.FeatureTempMin:          21.0,
		domain.FeaturePrecipitation:    85.0,
		domain.FeatureHumidity:         64.0,
		domain.FeatureSolarRadiation:   19.5,
		domain.FeatureSoilPH:           7.1,
		domain.FeatureSoilMoisture:     0.27,
		domain.FeatureOrganicCarbon:    0.62,
		domain.FeatureNitrogen:         240.0,
		domain.FeatureGDD:              1850.0,
		domain.FeatureHeatStress:       0.18,
		domain.FeatureWaterStress:      0.22,
		domain.FeaturePrecipDeficit:    12.0,
		domain.FeatureVaporPressureDef: 1.4,
	}
}

// ValidationResult is one validation pass including the artifacts that passed.
type ValidationResult struct {
	Outcome   domain.Outcome
	Report    *domain.CompatibilityReport
	Artifacts []*domain.ModelArtifact
}

type CompatibilityValidator struct {
	store      ports.ArtifactStore
	probe      ports.RuntimeProbe
	pins       map[string]string
	yieldRange domain.YieldRange
	metrics    ports.MetricsRecorder
	logger     log.FieldLogger
}

func NewCompatibilityValidator(store ports.ArtifactStore, probe ports.RuntimeProbe, pins map[string]string, yieldRange domain.YieldRange) *CompatibilityValidator {
	if pins == nil {
		pins = DefaultPinnedLibraries
	}
	return &CompatibilityValidator{
		store:      store,
		probe:      probe,
		pins:       pins,
		yieldRange: yieldRange,
		metrics:    noopMetrics{},
		logger:     log.StandardLogger(),
	}
}

func (v *CompatibilityValidator) SetMetrics(m ports.MetricsRecorder) {
	if m != nil {
		v.metrics = m
	}
}

// ValidateAllModels reports which artifacts are safe to serve. The outcome is
// always OK: incompatibility degrades to the heuristic predictor.
func (v *CompatibilityValidator) ValidateAllModels(ctx context.Context) (domain.Outcome, *domain.CompatibilityReport) {
	res := v.Validate(ctx)
	return res.Outcome, res.Report
}

func (v *CompatibilityValidator) Validate(ctx context.Context) *ValidationResult {
	report := domain.NewCompatibilityReport()
	res := &ValidationResult{Report: report}
	defer func() { v.metrics.SetCompatibility(report) }()

	if !v.store.Exists() {
		v.logger.WithField("operation", "validate_models").Warn("model directory missing, using heuristic fallback")
		report.ModelDirMissing = true
		report.FallbackActive = true
		report.Finalize()
		res.Outcome = domain.Degraded("model directory missing")
		return res
	}

	refs, err := v.store.List(ctx)
	if err != nil {
		v.logger.WithError(err).WithField("operation", "list_models").Warn("cannot list model artifacts, using heuristic fallback")
		report.FallbackActive = true
		report.Finalize()
		res.Outcome = domain.Degraded("model listing failed: " + err.Error())
		return res
	}
	if len(refs) == 0 {
		v.logger.WithField("operation", "validate_models").Warn("model directory empty, using heuristic fallback")
		report.ModelDirMissing = true
		report.FallbackActive = true
		report.Finalize()
		res.Outcome = domain.Degraded("model directory empty")
		return res
	}

	installed := v.probe.LibraryVersions()
	report.LibraryMismatch = CheckPinnedVersions(v.pins, installed)
	for _, m := range report.LibraryMismatch {
		v.logger.WithFields(log.Fields{
			"library":   m.Library,
			"pinned":    m.Pinned,
			"installed": m.Installed,
		}).Warn("library version differs from pin")
	}

	probe := SyntheticFeatureVector()
	for _, ref := range refs {
		artifact, err := v.checkArtifact(ctx, ref, probe, installed)
		if err != nil {
			v.logger.WithError(err).WithFields(log.Fields{
				"artifact": ref.Name,
				"key":      ref.Key.String(),
			}).Warn("model artifact incompatible")
			report.AddIncompatible(ref.Key)
			report.Failures = append(report.Failures, domain.ArtifactFailure{
				Artifact: ref.Name,
				Key:      ref.Key.String(),
				Cause:    err.Error(),
			})
			continue
		}
		report.AddCompatible(artifact.Key)
		res.Artifacts = append(res.Artifacts, artifact)
	}
	report.Finalize()

	report.FallbackActive = len(report.LibraryMismatch) > 0 ||
		len(report.Compatible) == 0 ||
		len(report.Incompatible) > 0 ||
		len(report.Missing) > 0

	detail := fmt.Sprintf("%d compatible, %d incompatible, %d missing",
		len(report.Compatible), len(report.Incompatible), len(report.Missing))
	if report.FallbackActive {
		res.Outcome = domain.Degraded(detail)
	} else {
		res.Outcome = domain.Healthy(detail)
	}
	v.logger.WithFields(log.Fields{
		"compatible":      len(report.Compatible),
		"incompatible":    len(report.Incompatible),
		"missing":         len(report.Missing),
		"fallback_active": report.FallbackActive,
	}).Info("model compatibility validated")
	return res
}

// checkArtifact test-loads one artifact. Panics from a corrupt estimator are
// converted into errors so one bad blob never takes the pass down.
func (v *CompatibilityValidator) checkArtifact(ctx context.Context, ref ports.ArtifactRef, probe domain.FeatureVector, installed map[string]string) (artifact *domain.ModelArtifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			artifact = nil
			err = fmt.Errorf("%w: panic during probe: %v", domain.ErrModelIncompatible, r)
		}
	}()

	artifact, err = v.store.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if artifact.Key != ref.Key {
		return nil, fmt.Errorf("%w: file name says %s, document says %s",
			domain.ErrModelIncompatible, ref.Key, artifact.Key)
	}

	for lib, trained := range artifact.Environment {
		current, tracked := installed[lib]
		if !tracked || trained == domain.NotInstalled {
			continue
		}
		if !sameMajorMinor(trained, current) {
			return nil, fmt.Errorf("%w: trained with %s %s, runtime has %s",
				domain.ErrModelIncompatible, lib, trained, current)
		}
	}

	x, err := probe.Ordered(artifact.FeatureOrder, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", err, artifact.FeatureOrder)
	}
	out, err := artifact.Estimator.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("probe inference: %w", err)
	}
	if !v.yieldRange.Contains(out) {
		return nil, fmt.Errorf("%w: %.3f not in [%g, %g]", domain.ErrOutputOutOfRange, out, v.yieldRange.Min, v.yieldRange.Max)
	}
	return artifact, nil
}

// CheckPinnedVersions compares installed versions against pins on major.minor.
func CheckPinnedVersions(pins, installed map[string]string) []domain.LibraryMismatch {
	var out []domain.LibraryMismatch
	for lib, pin := range pins {
		have, ok := installed[lib]
		if !ok || have == "" {
			have = domain.NotInstalled
		}
		if !sameMajorMinor(pin, have) {
			out = append(out, domain.LibraryMismatch{Library: lib, Pinned: pin, Installed: have})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Library < out[j].Library })
	return out
}

func sameMajorMinor(a, b string) bool {
	va, err := parseVersion(a)
	if err != nil {
		return false
	}
	vb, err := parseVersion(b)
	if err != nil {
		return false
	}
	return va.Major() == vb.Major() && va.Minor() == vb.Minor()
}

// parseVersion accepts semver strings as well as Go toolchain versions ("go1.24.9").
func parseVersion(s string) (*semver.Version, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "go")
	return semver.NewVersion(s)
}
