package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crop-yield-service/internal/core/domain"
	ports "crop-yield-service/internal/core/ports/output"
)

type varietyCatalog struct {
	pool *pgxpool.Pool
}

// NewVarietyCatalog creates a variety catalog backed by the crop_variety table
func NewVarietyCatalog(pool *pgxpool.Pool) ports.VarietyCatalog {
	return &varietyCatalog{pool: pool}
}

const varietyColumns = `crop_type, variety_name, yield_potential, maturity_days, drought_tolerance, region_prevalence`

func (r *varietyCatalog) GetCropVarieties(ctx context.Context, cropType string, region *domain.Region) ([]domain.CropVariety, error) {
	query := `SELECT ` + varietyColumns + `
		FROM crop_variety
		WHERE lower(crop_type) = lower($1)`
	args := []interface{}{cropType}
	if region != nil {
		query += ` AND $2 = ANY(region_prevalence)`
		args = append(args, string(*region))
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list crop_variety: %w", err)
	}
	defer rows.Close()

	var varieties []domain.CropVariety
	for rows.Next() {
		v, err := scanVariety(rows)
		if err != nil {
			return nil, fmt.Errorf("scan crop_variety: %w", err)
		}
		varieties = append(varieties, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crop_variety: %w", err)
	}
	return varieties, nil
}

func (r *varietyCatalog) GetVarietyByName(ctx context.Context, cropType, name string) (*domain.CropVariety, error) {
	query := `SELECT ` + varietyColumns + `
		FROM crop_variety
		WHERE lower(crop_type) = lower($1) AND variety_name = $2`
	v, err := scanVariety(r.pool.QueryRow(ctx, query, cropType, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", domain.ErrVarietyNotFound, cropType, name)
		}
		return nil, fmt.Errorf("get crop_variety by name: %w", err)
	}
	return v, nil
}

// UpsertVarieties loads seed rows, keyed by (crop_type, variety_name).
func UpsertVarieties(ctx context.Context, pool *pgxpool.Pool, varieties []domain.CropVariety) (int, error) {
	query := `
		INSERT INTO crop_variety (crop_type, variety_name, yield_potential, maturity_days, drought_tolerance, region_prevalence)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (crop_type, variety_name) DO UPDATE
		SET yield_potential = EXCLUDED.yield_potential,
			maturity_days = EXCLUDED.maturity_days,
			drought_tolerance = EXCLUDED.drought_tolerance,
			region_prevalence = EXCLUDED.region_prevalence
	`
	batch := &pgx.Batch{}
	for _, v := range varieties {
		regions := make([]string, len(v.RegionPrevalence))
		for i, r := range v.RegionPrevalence {
			regions[i] = string(r)
		}
		batch.Queue(query, v.CropType, v.VarietyName, v.YieldPotential, v.MaturityDays, v.DroughtTolerance, regions)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := range varieties {
		if _, err := results.Exec(); err != nil {
			return i, fmt.Errorf("upsert crop_variety %s: %w", varieties[i].VarietyName, err)
		}
	}
	return len(varieties), nil
}

func scanVariety(row pgx.Row) (*domain.CropVariety, error) {
	var v domain.CropVariety
	var regions []string
	if err := row.Scan(
		&v.CropType,
		&v.VarietyName,
		&v.YieldPotential,
		&v.MaturityDays,
		&v.DroughtTolerance,
		&regions,
	); err != nil {
		return nil, err
	}
	v.RegionPrevalence = make([]domain.Region, len(regions))
	for i, r := range regions {
		v.RegionPrevalence[i] = domain.Region(r)
	}
	return &v, nil
}

var _ ports.VarietyCatalog = (*varietyCatalog)(nil)
