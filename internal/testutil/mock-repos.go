package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crop-yield-service/internal/core/domain"
	ports "crop-yield-service/internal/core/ports/output"
)

// MockVarietyCatalog is a mock of VarietyCatalog.
type MockVarietyCatalog struct {
	mock.Mock
}

func (m *MockVarietyCatalog) GetCropVarieties(ctx context.Context, cropType string, region *domain.Region) ([]domain.CropVariety, error) {
	args := m.Called(ctx, cropType, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CropVariety), args.Error(1)
}

func (m *MockVarietyCatalog) GetVarietyByName(ctx context.Context, cropType, name string) (*domain.CropVariety, error) {
	args := m.Called(ctx, cropType, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CropVariety), args.Error(1)
}

// RegionIs matches the *domain.Region argument of GetCropVarieties.
func RegionIs(want domain.Region) interface{} {
	return mock.MatchedBy(func(r *domain.Region) bool {
		return r != nil && *r == want
	})
}

// MockFingerprintCache is a mock of FingerprintCache.
type MockFingerprintCache struct {
	mock.Mock
}

func (m *MockFingerprintCache) Load(ctx context.Context) (*domain.EnvironmentFingerprint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EnvironmentFingerprint), args.Error(1)
}

func (m *MockFingerprintCache) Save(ctx context.Context, fp *domain.EnvironmentFingerprint) error {
	args := m.Called(ctx, fp)
	return args.Error(0)
}

// MockTrainingSource is a mock of TrainingSource.
type MockTrainingSource struct {
	mock.Mock
}

func (m *MockTrainingSource) Load(ctx context.Context) (*domain.TrainingTable, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrainingTable), args.Error(1)
}

// MockStatusPublisher is a mock of StatusPublisher.
type MockStatusPublisher struct {
	mock.Mock
}

func (m *MockStatusPublisher) Publish(ctx context.Context, status ports.CompatibilityStatus) error {
	args := m.Called(ctx, status)
	return args.Error(0)
}

// MockArtifactStore is a mock of ArtifactStore.
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Exists() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockArtifactStore) List(ctx context.Context) ([]ports.ArtifactRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.ArtifactRef), args.Error(1)
}

func (m *MockArtifactStore) Load(ctx context.Context, ref ports.ArtifactRef) (*domain.ModelArtifact, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModelArtifact), args.Error(1)
}

func (m *MockArtifactStore) Save(ctx context.Context, artifact *domain.ModelArtifact) (ports.ArtifactRef, error) {
	args := m.Called(ctx, artifact)
	return args.Get(0).(ports.ArtifactRef), args.Error(1)
}
