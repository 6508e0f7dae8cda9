package ports

import (
	"context"

	"crop-yield-service/internal/core/domain"
)

// ArtifactRef points at one stored artifact blob.
type ArtifactRef struct {
	Name      string
	Path      string
	Key       domain.ArtifactKey
	Timestamp string
}

// ArtifactStore is the model artifact directory.
type ArtifactStore interface {
	// Exists reports whether the store's backing directory is present.
	Exists() bool
	List(ctx context.Context) ([]ArtifactRef, error)
	// Load deserializes a blob into the normalized artifact form.
	Load(ctx context.Context, ref ArtifactRef) (*domain.ModelArtifact, error)
	Save(ctx context.Context, artifact *domain.ModelArtifact) (ArtifactRef, error)
}

// FingerprintCache holds the last persisted environment snapshot.
type FingerprintCache interface {
	// Load returns nil, nil when nothing was cached yet.
	Load(ctx context.Context) (*domain.EnvironmentFingerprint, error)
	Save(ctx context.Context, fp *domain.EnvironmentFingerprint) error
}

// VarietyCatalog is the crop variety query store.
type VarietyCatalog interface {
	// GetCropVarieties returns varieties in catalog order. A nil region means all regions.
	GetCropVarieties(ctx context.Context, cropType string, region *domain.Region) ([]domain.CropVariety, error)
	// GetVarietyByName returns domain.ErrVarietyNotFound when absent.
	GetVarietyByName(ctx context.Context, cropType, name string) (*domain.CropVariety, error)
}

// TrainingSource loads the canonical training table.
type TrainingSource interface {
	Load(ctx context.Context) (*domain.TrainingTable, error)
}
