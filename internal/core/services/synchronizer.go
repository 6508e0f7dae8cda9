package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"crop-yield-service/internal/core/domain"
	ports "crop-yield-service/internal/core/ports/output"
	"crop-yield-service/internal/estimator"
)

type SyncConfig struct {
	Workers      int
	Seed         int64
	TestFraction float64
	// MinRegionRows is the smallest per-location subset trained on its own;
	// smaller subsets train on the whole table.
	MinRegionRows int
}

func DefaultSyncConfig() SyncConfig {
	return SyncConfig{Workers: 4, Seed: 42, TestFraction: 0.2, MinRegionRows: 30}
}

// TrainingSynchronizer retrains every (location, algorithm) artifact in place
// when validation reports fallback. It is a maintenance job and is never
// called from request handling.
type TrainingSynchronizer struct {
	validator     *CompatibilityValidator
	store         ports.ArtifactStore
	source        ports.TrainingSource
	fingerprinter *Fingerprinter
	cfg           SyncConfig
	logger        log.FieldLogger
	now           func() time.Time
}

func NewTrainingSynchronizer(
	validator *CompatibilityValidator,
	store ports.ArtifactStore,
	source ports.TrainingSource,
	fingerprinter *Fingerprinter,
	cfg SyncConfig,
) *TrainingSynchronizer {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		cfg.TestFraction = 0.2
	}
	return &TrainingSynchronizer{
		validator:     validator,
		store:         store,
		source:        source,
		fingerprinter: fingerprinter,
		cfg:           cfg,
		logger:        log.StandardLogger(),
		now:           time.Now,
	}
}

// preparedTable is the imputed training table with its chosen target.
type preparedTable struct {
	table    *domain.TrainingTable
	features []string
	target   []float64
	label    string
}

// SyncModels retrains when the validator reports fallback, or unconditionally
// with force. The outcome is OK only if a fresh validation no longer needs
// fallback.
func (s *TrainingSynchronizer) SyncModels(ctx context.Context, force bool) (domain.Outcome, *domain.CompatibilityReport) {
	_, before := s.validator.ValidateAllModels(ctx)
	if !before.FallbackActive && !force {
		return domain.Healthy("models compatible, sync not required"), before
	}

	runID := uuid.New()
	logger := s.logger.WithField("sync_run", runID.String())
	logger.WithFields(log.Fields{
		"fallback_active": before.FallbackActive,
		"forced":          force,
	}).Info("model sync started")

	prepared, err := s.prepare(ctx)
	if err != nil {
		logger.WithError(err).Error("model sync aborted")
		return domain.Failed("training data: " + err.Error()), before
	}
	if prepared.label == domain.TargetSyntheticYield {
		logger.Warn("training table has no yield column, using synthetic non-authoritative target")
	}

	trained, err := s.trainAll(ctx, prepared)
	if err != nil {
		logger.WithError(err).Error("model sync had failures")
	}
	logger.WithField("artifacts", trained).Info("model sync persisted artifacts")

	outcome, after := s.validator.ValidateAllModels(ctx)
	if after.FallbackActive {
		detail := fmt.Sprintf("retrained %d artifacts but fallback still required: %s", trained, outcome.Detail)
		if err != nil {
			detail += "; " + err.Error()
		}
		return domain.Failed(detail), after
	}
	return domain.Healthy(fmt.Sprintf("retrained %d artifacts, fallback cleared", trained)), after
}

func (s *TrainingSynchronizer) prepare(ctx context.Context) (*preparedTable, error) {
	table, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	if table.Rows == 0 {
		return nil, fmt.Errorf("%w: no rows", domain.ErrTrainingData)
	}

	var features []string
	for _, name := range domain.FeatureOrder {
		if table.HasColumn(name) {
			features = append(features, name)
		}
	}
	if len(features) < 3 {
		return nil, fmt.Errorf("%w: only %d known feature columns", domain.ErrTrainingData, len(features))
	}

	table.ImputeMedians()

	p := &preparedTable{table: table, features: features}
	if y, ok := table.Columns[domain.ColumnYield]; ok {
		p.target = y
		p.label = domain.TargetObservedYield
	} else {
		p.target = SyntheticTarget(table, s.cfg.Seed)
		p.label = domain.TargetSyntheticYield
	}
	return p, nil
}

func (s *TrainingSynchronizer) trainAll(ctx context.Context, p *preparedTable) (int, error) {
	fp := s.fingerprinter.Current()
	env := make(map[string]string, len(fp.LibraryVersions)+2)
	for k, v := range fp.LibraryVersions {
		env[k] = v
	}
	env["runtime"] = fp.RuntimeVersion
	env["fingerprint"] = fp.Digest

	now := s.now().UTC()
	timestamp := domain.FormatTimestamp(now)

	var (
		mu      sync.Mutex
		errs    *multierror.Error
		trained int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for _, key := range domain.ExpectedArtifactKeys() {
		key := key
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			artifact, err := s.trainOne(p, key)
			if err == nil {
				artifact.ID = uuid.NewString()
				artifact.Timestamp = timestamp
				artifact.TrainedAt = now
				artifact.Environment = env
				_, err = s.store.Save(gctx, artifact)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", key, err))
				return nil
			}
			trained++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return trained, errs.ErrorOrNil()
}

func (s *TrainingSynchronizer) trainOne(p *preparedTable, key domain.ArtifactKey) (*domain.ModelArtifact, error) {
	rows := p.table.RowsFor(key.Location)
	if len(rows) < s.cfg.MinRegionRows {
		rows = make([]int, p.table.Rows)
		for i := range rows {
			rows[i] = i
		}
	}

	data := estimator.Dataset{X: make([][]float64, len(rows)), Y: make([]float64, len(rows))}
	for i, row := range rows {
		x := make([]float64, len(p.features))
		for j, name := range p.features {
			x[j] = p.table.Columns[name][row]
		}
		data.X[i] = x
		data.Y[i] = p.target[row]
	}

	train, test := data.Split(s.cfg.TestFraction, s.cfg.Seed)
	est, err := estimator.Fit(key.Algorithm, train, s.cfg.Seed)
	if err != nil {
		return nil, err
	}
	metrics, err := estimator.Evaluate(est, test, train.Len())
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(log.Fields{
		"key":  key.String(),
		"rows": len(rows),
		"r2":   metrics.R2,
		"rmse": metrics.RMSE,
	}).Debug("trained artifact")

	return &domain.ModelArtifact{
		Key:           key,
		FeatureOrder:  append([]string(nil), p.features...),
		Target:        p.label,
		SchemaVersion: estimator.SchemaVersion,
		Metrics:       metrics,
		Estimator:     est,
	}, nil
}

// SyntheticTarget derives a placeholder yield when the table has none. It is a
// weighted sum of vegetation index, temperature, precipitation and soil pH with
// bounded Gaussian noise, clipped to [1, 10]. It is not a learned relationship
// and artifacts trained on it are labelled domain.TargetSyntheticYield.
func SyntheticTarget(table *domain.TrainingTable, seed int64) []float64 {
	nominal := SyntheticFeatureVector()
	col := func(name string, row int) float64 {
		if c, ok := table.Columns[name]; ok && !math.IsNaN(c[row]) {
			return c[row]
		}
		return nominal[name]
	}

	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, table.Rows)
	for i := range out {
		y := 2.5*col(domain.FeatureNDVI, i) +
			0.08*col(domain.FeatureTempMean, i) +
			0.01*col(domain.FeaturePrecipitation, i) +
			0.25*col(domain.FeatureSoilPH, i)
		noise := clamp(rng.NormFloat64()*0.3, -0.6, 0.6)
		out[i] = clamp(y+noise, 1, 10)
	}
	return out
}
