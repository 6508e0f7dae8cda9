package dto

import (
	"time"

	"crop-yield-service/internal/core/domain"
)

type ModelArtifactResponse struct {
	ID            string                  `json:"id"`
	Location      string                  `json:"location"`
	Algorithm     string                  `json:"algorithm"`
	Timestamp     string                  `json:"timestamp"`
	TrainedAt     string                  `json:"trained_at,omitempty"`
	Estimator     string                  `json:"estimator"`
	FeatureOrder  []string                `json:"feature_order"`
	Target        string                  `json:"target"`
	SchemaVersion string                  `json:"schema_version"`
	Metrics       *domain.TrainingMetrics `json:"training_metrics,omitempty"`
}

func ToModelArtifactResponse(a *domain.ModelArtifact) ModelArtifactResponse {
	resp := ModelArtifactResponse{
		ID:            a.ID,
		Location:      string(a.Key.Location),
		Algorithm:     string(a.Key.Algorithm),
		Timestamp:     a.Timestamp,
		FeatureOrder:  a.FeatureOrder,
		Target:        a.Target,
		SchemaVersion: a.SchemaVersion,
		Metrics:       a.Metrics,
	}
	if !a.TrainedAt.IsZero() {
		resp.TrainedAt = a.TrainedAt.UTC().Format(time.RFC3339)
	}
	if a.Estimator != nil {
		resp.Estimator = a.Estimator.Kind()
	}
	return resp
}

type CompatibilityResponse struct {
	Status            string                      `json:"status"`
	Detail            string                      `json:"detail,omitempty"`
	FingerprintDigest string                      `json:"fingerprint_digest,omitempty"`
	EnvironmentDiffs  []domain.FingerprintDiff    `json:"environment_diffs,omitempty"`
	Report            *domain.CompatibilityReport `json:"report"`
	ServedArtifacts   []ModelArtifactResponse     `json:"served_artifacts"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	FallbackActive bool   `json:"fallback_active"`
	Detail         string `json:"detail,omitempty"`
}
