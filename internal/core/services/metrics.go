package services

import (
	"time"

	"crop-yield-service/internal/core/domain"
)

// noopMetrics is used until a recorder is attached.
type noopMetrics struct{}

func (noopMetrics) ObserveVarietySelection(domain.SelectionReason, time.Duration) {}
func (noopMetrics) IncVarietyFailure()                                            {}
func (noopMetrics) IncPrediction(domain.ModelSource)                              {}
func (noopMetrics) SetCompatibility(*domain.CompatibilityReport)                  {}
