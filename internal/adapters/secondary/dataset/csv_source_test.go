package dataset

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crop-yield-service/internal/core/domain"
)

func TestRead(t *testing.T) {
	doc := "ndvi,Location,temperature_mean,yield\n" +
		"0.61,Ludhiana,27.1,4.2\n" +
		"0.55, Patna ,,3.9\n" +
		"0.70,Indore,n/a,5.1\n"

	table, err := Read(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 3, table.Rows)
	assert.Equal(t, []string{"Ludhiana", "Patna", "Indore"}, table.Locations)
	assert.False(t, table.HasColumn("location"))
	assert.Equal(t, []float64{0.61, 0.55, 0.70}, table.Columns[domain.FeatureNDVI])
	assert.True(t, math.IsNaN(table.Columns[domain.FeatureTempMean][1]))
	assert.True(t, math.IsNaN(table.Columns[domain.FeatureTempMean][2]))
	assert.Equal(t, []int{1}, table.RowsFor(domain.RegionBihar))
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"header only", "ndvi,yield\n"},
		{"ragged row", "ndvi,yield\n0.5\n"},
		{"duplicate column", "ndvi,NDVI\n0.5,0.6\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.doc))
			assert.True(t, errors.Is(err, domain.ErrTrainingData), "got %v", err)
		})
	}
}

func TestCSVSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.csv")
	require.NoError(t, os.WriteFile(path, []byte("ndvi,yield\n0.5,4\n0.6,4.5\n"), 0o644))

	table, err := NewCSVSource(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, table.Rows)
	assert.Empty(t, table.Locations)

	_, err = NewCSVSource(filepath.Join(t.TempDir(), "missing.csv")).Load(context.Background())
	assert.True(t, errors.Is(err, domain.ErrTrainingData))
}
