package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"crop-yield-service/internal/core/domain"
	ports "crop-yield-service/internal/core/ports/output"
)

type csvSource struct {
	path string
}

// NewCSVSource loads the training table from a headered CSV file. Blank or
// non-numeric cells become missing values; a "location" column is kept as text.
func NewCSVSource(path string) ports.TrainingSource {
	return &csvSource{path: path}
}

func (s *csvSource) Load(ctx context.Context) (*domain.TrainingTable, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrTrainingData, s.path, err)
	}
	defer f.Close()

	table, err := Read(f)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"path":    s.path,
		"rows":    table.Rows,
		"columns": len(table.Columns),
	}).Info("training table loaded")
	return table, nil
}

// Read parses CSV from r into a column-major table.
func Read(r io.Reader) (*domain.TrainingTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", domain.ErrTrainingData)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrTrainingData, err)
	}

	names := make([]string, len(header))
	locationCol := -1
	table := &domain.TrainingTable{Columns: make(map[string][]float64)}
	for i, h := range header {
		names[i] = strings.ToLower(strings.TrimSpace(h))
		if names[i] == domain.ColumnLocation {
			locationCol = i
			continue
		}
		if _, dup := table.Columns[names[i]]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", domain.ErrTrainingData, names[i])
		}
		table.Columns[names[i]] = nil
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", domain.ErrTrainingData, table.Rows+1, err)
		}
		for i, cell := range record {
			if i == locationCol {
				table.Locations = append(table.Locations, strings.TrimSpace(cell))
				continue
			}
			table.Columns[names[i]] = append(table.Columns[names[i]], parseCell(cell))
		}
		table.Rows++
	}

	if table.Rows == 0 {
		return nil, fmt.Errorf("%w: no data rows", domain.ErrTrainingData)
	}
	return table, nil
}

func parseCell(cell string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}
