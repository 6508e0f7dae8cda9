package prometheus

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"crop-yield-service/internal/core/domain"
	ports "crop-yield-service/internal/core/ports/output"
)

const (
	promNamespace = "crop_yield"
	promSubsystem = "service"
)

type recorder struct {
	selectionSeconds *prom.HistogramVec
	varietyFailures  prom.Counter
	predictions      *prom.CounterVec
	artifacts        *prom.GaugeVec
	fallbackActive   prom.Gauge
	libraryMismatch  prom.Gauge
	environmentDrift prom.Gauge
}

// NewRecorder registers the service collectors on reg.
func NewRecorder(reg prom.Registerer) ports.MetricsRecorder {
	r := &recorder{
		selectionSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: promNamespace,
			Subsystem: promSubsystem,
			Name:      "variety_selection_seconds",
			Help:      "duration of default variety selection by outcome",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"reason"}),
		varietyFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: promNamespace,
			Subsystem: promSubsystem,
			Name:      "variety_selection_failures_total",
			Help:      "selections that exhausted the escalation ladder",
		}),
		predictions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: promNamespace,
			Subsystem: promSubsystem,
			Name:      "predictions_total",
			Help:      "yield predictions by model source",
		}, []string{"source"}),
		artifacts: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: promNamespace,
			Subsystem: promSubsystem,
			Name:      "model_artifacts",
			Help:      "artifact keys by compatibility state",
		}, []string{"state"}),
		fallbackActive: prom.NewGauge(prom.GaugeOpts{
			Namespace: promNamespace,
			Subsystem: promSubsystem,
			Name:      "fallback_active",
			Help:      "1 when predictions are served by the heuristic fallback",
		}),
		libraryMismatch: prom.NewGauge(prom.GaugeOpts{
			Namespace: promNamespace,
			Subsystem: promSubsystem,
			Name:      "library_mismatch",
			Help:      "number of pinned libraries whose installed version differs",
		}),
		environmentDrift: prom.NewGauge(prom.GaugeOpts{
			Namespace: promNamespace,
			Subsystem: promSubsystem,
			Name:      "environment_drift",
			Help:      "1 when the environment fingerprint changed since the last run",
		}),
	}
	reg.MustRegister(
		r.selectionSeconds,
		r.varietyFailures,
		r.predictions,
		r.artifacts,
		r.fallbackActive,
		r.libraryMismatch,
		r.environmentDrift,
	)
	return r
}

func (r *recorder) ObserveVarietySelection(reason domain.SelectionReason, elapsed time.Duration) {
	r.selectionSeconds.WithLabelValues(string(reason)).Observe(elapsed.Seconds())
}

func (r *recorder) IncVarietyFailure() {
	r.varietyFailures.Inc()
}

func (r *recorder) IncPrediction(source domain.ModelSource) {
	r.predictions.WithLabelValues(string(source)).Inc()
}

func (r *recorder) SetCompatibility(report *domain.CompatibilityReport) {
	if report == nil {
		return
	}
	r.artifacts.WithLabelValues("compatible").Set(float64(len(report.Compatible)))
	r.artifacts.WithLabelValues("incompatible").Set(float64(len(report.Incompatible)))
	r.artifacts.WithLabelValues("missing").Set(float64(len(report.Missing)))
	r.fallbackActive.Set(boolGauge(report.FallbackActive))
	r.libraryMismatch.Set(float64(len(report.LibraryMismatch)))
	r.environmentDrift.Set(boolGauge(report.EnvironmentDrift))
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
