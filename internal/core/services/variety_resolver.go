package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"crop-yield-service/internal/core/domain"
	ports "crop-yield-service/internal/core/ports/output"
)

// VarietyResolver fills in a crop variety when the caller omits one. It keeps
// no state between calls.
type VarietyResolver struct {
	catalog        ports.VarietyCatalog
	globalDefaults map[string]string
	metrics        ports.MetricsRecorder
	logger         log.FieldLogger
	now            func() time.Time
}

func NewVarietyResolver(catalog ports.VarietyCatalog, globalDefaults map[string]string) *VarietyResolver {
	if globalDefaults == nil {
		globalDefaults = domain.GlobalDefaultVarieties
	}
	return &VarietyResolver{
		catalog:        catalog,
		globalDefaults: globalDefaults,
		metrics:        noopMetrics{},
		logger:         log.StandardLogger(),
		now:            time.Now,
	}
}

func (r *VarietyResolver) SetMetrics(m ports.MetricsRecorder) {
	if m != nil {
		r.metrics = m
	}
}

// resolution tracks one walk down the escalation ladder.
type resolution struct {
	cropType string
	location string
	region   domain.Region
	trail    []string
	start    time.Time
}

// SelectDefaultVariety resolves a validated variety for the crop at the
// location. A nil location or blank crop type is ErrInvalidInput; a blank
// location resolves through the default region.
func (r *VarietyResolver) SelectDefaultVariety(ctx context.Context, cropType string, location *string) (*domain.VarietySelectionResult, error) {
	start := r.now()

	if location == nil {
		return nil, domain.ErrInvalidLocation
	}
	crop := strings.TrimSpace(cropType)
	if crop == "" {
		return nil, domain.ErrInvalidCropType
	}

	res := &resolution{
		cropType: crop,
		location: strings.TrimSpace(*location),
		region:   domain.MapLocationToRegion(*location),
		start:    start,
	}

	// a. highest-yield variety of the resolved region
	res.trail = append(res.trail, "regional:"+string(res.region))
	if top, ok := topByYield(r.GetRegionalVarieties(ctx, crop, res.region)); ok {
		return r.confirm(ctx, res, top.VarietyName, domain.SelectionMetadata{
			Region: res.region,
			Reason: domain.ReasonRegionalHighestYield,
		})
	}

	// b. umbrella region
	if res.region != domain.RegionAllNorthIndia {
		r.logger.Warn(pipeKV("variety_fallback",
			"crop_type", crop,
			"region", res.region,
			"next", "regional:"+string(domain.RegionAllNorthIndia),
			"cause", "no_regional_varieties",
		))
		res.trail = append(res.trail, "regional:"+string(domain.RegionAllNorthIndia))
		if top, ok := topByYield(r.GetRegionalVarieties(ctx, crop, domain.RegionAllNorthIndia)); ok {
			return r.confirm(ctx, res, top.VarietyName, domain.SelectionMetadata{
				Region:         domain.RegionAllNorthIndia,
				OriginalRegion: res.region,
				Reason:         domain.ReasonRegionalFallback,
			})
		}
	}

	// c. fixed per-crop default
	r.logger.Warn(pipeKV("variety_fallback",
		"crop_type", crop,
		"region", res.region,
		"next", "global_default",
		"cause", "no_umbrella_varieties",
	))
	res.trail = append(res.trail, "global_default")
	if name, ok := r.GetGlobalDefault(crop); ok {
		return r.confirm(ctx, res, name, domain.SelectionMetadata{
			Region: res.region,
			Reason: domain.ReasonGlobalDefault,
		})
	}

	return nil, r.fail(res, "no_global_default")
}

// confirm runs the final existence check. A name the catalog cannot confirm is
// never returned.
func (r *VarietyResolver) confirm(ctx context.Context, res *resolution, name string, meta domain.SelectionMetadata) (*domain.VarietySelectionResult, error) {
	if _, err := r.catalog.GetVarietyByName(ctx, res.cropType, name); err != nil {
		if !errors.Is(err, domain.ErrVarietyNotFound) {
			r.logger.WithError(err).WithFields(log.Fields{
				"operation": "get_variety_by_name",
				"crop_type": res.cropType,
				"variety":   name,
			}).Warn("variety existence check failed")
		}
		return nil, r.fail(res, "unconfirmed:"+name)
	}

	elapsed := r.now().Sub(res.start)
	meta.SelectionTimeMs = durationMs(elapsed)
	r.metrics.ObserveVarietySelection(meta.Reason, elapsed)

	kv := []interface{}{
		"crop_type", res.cropType,
		"location", res.location,
		"region", meta.Region,
	}
	if meta.OriginalRegion != "" {
		kv = append(kv, "original_region", meta.OriginalRegion)
	}
	kv = append(kv,
		"variety", name,
		"reason", meta.Reason,
		"selection_time_ms", fmt.Sprintf("%.3f", meta.SelectionTimeMs),
	)
	r.logger.Info(pipeKV("variety_selected", kv...))

	return &domain.VarietySelectionResult{
		VarietyName:       name,
		VarietyAssumed:    true,
		SelectionMetadata: meta,
	}, nil
}

func (r *VarietyResolver) fail(res *resolution, cause string) error {
	res.trail = append(res.trail, cause)
	elapsed := r.now().Sub(res.start)
	r.metrics.IncVarietyFailure()
	r.logger.Error(pipeKV("variety_unavailable",
		"crop_type", res.cropType,
		"location", res.location,
		"region", res.region,
		"attempted", strings.Join(res.trail, ">"),
		"selection_time_ms", fmt.Sprintf("%.3f", durationMs(elapsed)),
	))
	return &domain.NoVarietyAvailableError{
		CropType: res.cropType,
		Location: res.location,
		Region:   res.region,
		Trail:    res.trail,
	}
}

// GetRegionalVarieties queries the catalog for one region. Catalog failures are
// logged and read as an empty result.
func (r *VarietyResolver) GetRegionalVarieties(ctx context.Context, cropType string, region domain.Region) []domain.CropVariety {
	varieties, err := r.catalog.GetCropVarieties(ctx, cropType, &region)
	if err != nil {
		r.logger.WithError(fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)).WithFields(log.Fields{
			"operation": "get_crop_varieties",
			"crop_type": cropType,
			"region":    region,
		}).Warn("variety catalog query failed, treating as empty")
		return nil
	}
	return varieties
}

// GetGlobalDefault returns the fixed default variety name for a crop.
func (r *VarietyResolver) GetGlobalDefault(cropType string) (string, bool) {
	if name, ok := r.globalDefaults[cropType]; ok {
		return name, true
	}
	for crop, name := range r.globalDefaults {
		if strings.EqualFold(crop, cropType) {
			return name, true
		}
	}
	return "", false
}

// MapLocationToRegion is exposed for callers that only need the region.
func (r *VarietyResolver) MapLocationToRegion(location string) domain.Region {
	return domain.MapLocationToRegion(location)
}

// topByYield picks the highest yield potential; ties keep catalog order.
func topByYield(varieties []domain.CropVariety) (domain.CropVariety, bool) {
	var best domain.CropVariety
	found := false
	for _, v := range varieties {
		if strings.TrimSpace(v.VarietyName) == "" {
			continue
		}
		if !found || v.YieldPotential > best.YieldPotential {
			best = v
			found = true
		}
	}
	return best, found
}

// pipeKV renders "event | k1=v1 | k2=v2".
func pipeKV(event string, kv ...interface{}) string {
	var b strings.Builder
	b.WriteString(event)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " | %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
