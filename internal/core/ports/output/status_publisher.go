package ports

import (
	"context"

	"crop-yield-service/internal/core/domain"
)

// StatusPublisher exposes the compatibility state to operators outside the process.
type StatusPublisher interface {
	Publish(ctx context.Context, status CompatibilityStatus) error
}

type CompatibilityStatus struct {
	Outcome           domain.Outcome
	Report            *domain.CompatibilityReport
	FingerprintDigest string
}
