package ports

import (
	"time"

	"crop-yield-service/internal/core/domain"
)

// MetricsRecorder receives operational counters from the core services.
type MetricsRecorder interface {
	ObserveVarietySelection(reason domain.SelectionReason, elapsed time.Duration)
	IncVarietyFailure()
	IncPrediction(source domain.ModelSource)
	SetCompatibility(report *domain.CompatibilityReport)
}
