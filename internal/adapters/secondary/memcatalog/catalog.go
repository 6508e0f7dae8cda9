package memcatalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"crop-yield-service/internal/core/domain"
	ports "crop-yield-service/internal/core/ports/output"
)

// seedFile is the on-disk layout of a catalog seed.
type seedFile struct {
	Varieties []domain.CropVariety `yaml:"varieties"`
}

type varietyCatalog struct {
	varieties []domain.CropVariety
}

// NewVarietyCatalog serves a fixed list of varieties. Query results keep the
// order of the list.
func NewVarietyCatalog(varieties []domain.CropVariety) ports.VarietyCatalog {
	return &varietyCatalog{varieties: append([]domain.CropVariety(nil), varieties...)}
}

// Load reads a YAML seed file into a catalog.
func Load(path string) (ports.VarietyCatalog, error) {
	varieties, err := LoadSeed(path)
	if err != nil {
		return nil, err
	}
	return NewVarietyCatalog(varieties), nil
}

func LoadSeed(path string) ([]domain.CropVariety, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed document. Unknown region names are rejected so a typo
// cannot silently hide a variety from its region.
func Parse(data []byte) ([]domain.CropVariety, error) {
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode catalog seed: %w", err)
	}
	for i := range seed.Varieties {
		v := &seed.Varieties[i]
		if strings.TrimSpace(v.CropType) == "" || strings.TrimSpace(v.VarietyName) == "" {
			return nil, fmt.Errorf("catalog seed entry %d: crop_type and variety_name are required", i)
		}
		for j, r := range v.RegionPrevalence {
			region, ok := domain.ParseRegion(string(r))
			if !ok {
				return nil, fmt.Errorf("catalog seed entry %d (%s): %w: %q", i, v.VarietyName, domain.ErrUnknownLocation, r)
			}
			v.RegionPrevalence[j] = region
		}
	}
	return seed.Varieties, nil
}

func (c *varietyCatalog) GetCropVarieties(ctx context.Context, cropType string, region *domain.Region) ([]domain.CropVariety, error) {
	var out []domain.CropVariety
	for _, v := range c.varieties {
		if !strings.EqualFold(v.CropType, cropType) {
			continue
		}
		if region != nil && !v.PrevalentIn(*region) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *varietyCatalog) GetVarietyByName(ctx context.Context, cropType, name string) (*domain.CropVariety, error) {
	for _, v := range c.varieties {
		if strings.EqualFold(v.CropType, cropType) && v.VarietyName == name {
			found := v
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", domain.ErrVarietyNotFound, cropType, name)
}
