package services

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"crop-yield-service/internal/core/domain"
	ports "crop-yield-service/internal/core/ports/output"
)

const yieldUnit = "t/ha"

// PredictionService is the request path: resolve a variety, select a model,
// run inference or the heuristic.
type PredictionService struct {
	resolver   *VarietyResolver
	catalog    ports.VarietyCatalog
	heuristic  *HeuristicPredictor
	runtime    *RuntimeContext
	yieldRange domain.YieldRange
	metrics    ports.MetricsRecorder
	logger     log.FieldLogger
}

func NewPredictionService(
	resolver *VarietyResolver,
	catalog ports.VarietyCatalog,
	heuristic *HeuristicPredictor,
	runtime *RuntimeContext,
	yieldRange domain.YieldRange,
) *PredictionService {
	return &PredictionService{
		resolver:   resolver,
		catalog:    catalog,
		heuristic:  heuristic,
		runtime:    runtime,
		yieldRange: yieldRange,
		metrics:    noopMetrics{},
		logger:     log.StandardLogger(),
	}
}

func (s *PredictionService) SetMetrics(m ports.MetricsRecorder) {
	if m != nil {
		s.metrics = m
	}
}

func (s *PredictionService) Runtime() *RuntimeContext {
	return s.runtime
}

func (s *PredictionService) Predict(ctx context.Context, req domain.PredictionRequest) (*domain.PredictionResult, error) {
	crop := strings.TrimSpace(req.CropType)
	if crop == "" {
		return nil, domain.ErrInvalidCropType
	}
	if req.Location == nil {
		return nil, domain.ErrInvalidLocation
	}
	if req.Algorithm != "" {
		algo, err := domain.ParseAlgorithm(string(req.Algorithm))
		if err != nil {
			return nil, err
		}
		req.Algorithm = algo
	}

	region := domain.MapLocationToRegion(*req.Location)
	result := &domain.PredictionResult{CropType: crop, Region: region, Unit: yieldUnit}

	variety, err := s.resolveVariety(ctx, crop, req, result)
	if err != nil {
		return nil, err
	}

	if yield, artifact, ok := s.inferModel(region, req); ok {
		result.PredictedYield = round2(yield)
		result.ModelSource = domain.ModelSourceML
		result.Algorithm = artifact.Key.Algorithm
		result.ArtifactID = artifact.ID
	} else {
		result.PredictedYield = s.heuristic.Predict(crop, variety, req.Features)
		result.ModelSource = domain.ModelSourceHeuristic
	}
	s.metrics.IncPrediction(result.ModelSource)
	return result, nil
}

// resolveVariety keeps a caller-supplied variety the catalog knows and falls
// back to the resolver otherwise.
func (s *PredictionService) resolveVariety(ctx context.Context, crop string, req domain.PredictionRequest, result *domain.PredictionResult) (*domain.CropVariety, error) {
	if name := strings.TrimSpace(req.Variety); name != "" {
		v, err := s.catalog.GetVarietyByName(ctx, crop, name)
		if err == nil {
			result.Variety = v.VarietyName
			return v, nil
		}
		if !errors.Is(err, domain.ErrVarietyNotFound) {
			s.logger.WithError(err).WithFields(log.Fields{
				"operation": "get_variety_by_name",
				"crop_type": crop,
				"variety":   name,
			}).Warn("variety lookup failed, resolving default")
		}
	}

	sel, err := s.resolver.SelectDefaultVariety(ctx, crop, req.Location)
	if err != nil {
		return nil, err
	}
	result.Variety = sel.VarietyName
	result.VarietySelection = sel

	v, err := s.catalog.GetVarietyByName(ctx, crop, sel.VarietyName)
	if err != nil {
		// confirmed moments ago; the heuristic copes without characteristics
		return nil, nil
	}
	return v, nil
}

func (s *PredictionService) inferModel(region domain.Region, req domain.PredictionRequest) (float64, *domain.ModelArtifact, bool) {
	if s.runtime == nil || s.runtime.Registry == nil || !region.IsState() {
		return 0, nil, false
	}
	artifact, err := s.runtime.Registry.SelectAny(region, req.Algorithm)
	if err != nil {
		return 0, nil, false
	}

	x, err := req.Features.Ordered(artifact.FeatureOrder, SyntheticFeatureVector())
	if err == nil {
		var yield float64
		yield, err = artifact.Estimator.Predict(x)
		if err == nil && s.yieldRange.Contains(yield) {
			return yield, artifact, true
		}
		if err == nil {
			err = domain.ErrOutputOutOfRange
		}
	}
	s.logger.WithError(err).WithFields(log.Fields{
		"artifact": artifact.Name(),
		"region":   region,
	}).Warn("model inference failed, using heuristic")
	return 0, nil, false
}
