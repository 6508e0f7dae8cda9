package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crop-yield-service/internal/core/domain"
)

func TestModelRegistry_LatestTimestampWins(t *testing.T) {
	older := constantArtifact(punjabRidge, "20261017T235959Z", 4.0)
	newer := constantArtifact(punjabRidge, "20261018T101500Z", 4.4)

	for _, order := range [][]*domain.ModelArtifact{{older, newer}, {newer, older}} {
		r := NewModelRegistry(order)
		got, err := r.Select(domain.RegionPunjab, domain.AlgorithmRidge)
		require.NoError(t, err)
		assert.Equal(t, newer.ID, got.ID)
		assert.Equal(t, 1, r.Len())
	}
}

func TestModelRegistry_SelectAny(t *testing.T) {
	biharBoost := domain.ArtifactKey{Location: domain.RegionBihar, Algorithm: domain.AlgorithmGradientBoosting}
	r := NewModelRegistry([]*domain.ModelArtifact{
		constantArtifact(biharForest, "20261018T101500Z", 4.0),
		constantArtifact(biharBoost, "20261018T101500Z", 4.1),
		constantArtifact(punjabRidge, "20261018T101500Z", 4.2),
	})

	got, err := r.SelectAny(domain.RegionBihar, domain.AlgorithmGradientBoosting)
	require.NoError(t, err)
	assert.Equal(t, biharBoost, got.Key)

	// preferred absent: fixed algorithm order
	got, err = r.SelectAny(domain.RegionBihar, domain.AlgorithmRidge)
	require.NoError(t, err)
	assert.Equal(t, biharForest, got.Key)

	got, err = r.SelectAny(domain.RegionBihar, "")
	require.NoError(t, err)
	assert.Equal(t, biharForest, got.Key)

	_, err = r.SelectAny(domain.RegionHaryana, "")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	assert.False(t, r.HasCompatible(domain.RegionHaryana))
	assert.True(t, r.HasCompatible(domain.RegionPunjab))

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, biharBoost, list[0].Key)
	assert.Equal(t, punjabRidge, list[2].Key)
}

func TestModelRegistry_Empty(t *testing.T) {
	r := NewModelRegistry(nil)
	_, err := r.Select(domain.RegionPunjab, domain.AlgorithmRidge)
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	assert.Empty(t, r.List())
}
