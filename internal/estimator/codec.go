package estimator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"crop-yield-service/internal/core/domain"
)

// SchemaVersion is the artifact document layout version. Documents with a
// different major are refused at decode time.
const SchemaVersion = "2.1"

// rawDocument is a bare serialized estimator.
type rawDocument struct {
	Kind         string          `json:"kind"`
	Params       json.RawMessage `json:"params"`
	FeatureNames []string        `json:"feature_names,omitempty"`
}

// wrapperDocument carries an estimator under "model" with its metadata.
type wrapperDocument struct {
	Model         json.RawMessage         `json:"model"`
	ID            string                  `json:"id,omitempty"`
	Location      string                  `json:"location,omitempty"`
	Algorithm     string                  `json:"algorithm,omitempty"`
	Timestamp     string                  `json:"timestamp,omitempty"`
	TrainedAt     time.Time               `json:"trained_at,omitempty"`
	FeatureOrder  []string                `json:"feature_order"`
	Target        string                  `json:"target,omitempty"`
	SchemaVersion string                  `json:"schema_version,omitempty"`
	Environment   map[string]string       `json:"environment,omitempty"`
	Metrics       *domain.TrainingMetrics `json:"metrics,omitempty"`
}

// Decode normalizes either document shape into one artifact. Key, Path and
// Timestamp are left for the caller when the document does not carry them.
func Decode(data []byte) (*domain.ModelArtifact, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	_, hasKind := top["kind"]
	_, hasModel := top["model"]

	switch {
	case hasKind && hasModel:
		return nil, fmt.Errorf("%w: document has both \"kind\" and \"model\"", domain.ErrAmbiguousArtifact)
	case hasKind:
		return decodeRaw(data)
	case hasModel:
		return decodeWrapper(data)
	default:
		return nil, fmt.Errorf("%w: document has neither \"kind\" nor \"model\"", domain.ErrAmbiguousArtifact)
	}
}

func decodeRaw(data []byte) (*domain.ModelArtifact, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode raw estimator: %w", err)
	}
	est, err := decodeEstimator(doc.Kind, doc.Params)
	if err != nil {
		return nil, err
	}

	order := doc.FeatureNames
	if len(order) == 0 {
		order = domain.FeatureOrder
	}
	if err := checkOrder(order, est); err != nil {
		return nil, err
	}
	return &domain.ModelArtifact{
		FeatureOrder: append([]string(nil), order...),
		Target:       domain.TargetObservedYield,
		Estimator:    est,
	}, nil
}

func decodeWrapper(data []byte) (*domain.ModelArtifact, error) {
	var doc wrapperDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode artifact wrapper: %w", err)
	}
	if doc.SchemaVersion != "" && major(doc.SchemaVersion) != major(SchemaVersion) {
		return nil, fmt.Errorf("%w: schema version %s, runtime reads %s",
			domain.ErrModelIncompatible, doc.SchemaVersion, SchemaVersion)
	}

	var inner rawDocument
	if err := json.Unmarshal(doc.Model, &inner); err != nil {
		return nil, fmt.Errorf("decode wrapped estimator: %w", err)
	}
	est, err := decodeEstimator(inner.Kind, inner.Params)
	if err != nil {
		return nil, err
	}

	order := doc.FeatureOrder
	if len(order) == 0 {
		order = inner.FeatureNames
	}
	if len(order) == 0 {
		order = domain.FeatureOrder
	}
	if err := checkOrder(order, est); err != nil {
		return nil, err
	}

	artifact := &domain.ModelArtifact{
		ID:            doc.ID,
		Timestamp:     doc.Timestamp,
		TrainedAt:     doc.TrainedAt,
		FeatureOrder:  append([]string(nil), order...),
		Target:        doc.Target,
		SchemaVersion: doc.SchemaVersion,
		Environment:   doc.Environment,
		Metrics:       doc.Metrics,
		Estimator:     est,
	}
	if doc.Location != "" && doc.Algorithm != "" {
		loc, ok := domain.ParseRegion(doc.Location)
		if !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownLocation, doc.Location)
		}
		algo, err := domain.ParseAlgorithm(doc.Algorithm)
		if err != nil {
			return nil, err
		}
		artifact.Key = domain.ArtifactKey{Location: loc, Algorithm: algo}
	}
	if artifact.Target == "" {
		artifact.Target = domain.TargetObservedYield
	}
	return artifact, nil
}

func decodeEstimator(kind string, params json.RawMessage) (domain.Estimator, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("estimator %q: missing params", kind)
	}
	switch kind {
	case KindRidge:
		var r Ridge
		if err := json.Unmarshal(params, &r); err != nil {
			return nil, fmt.Errorf("decode ridge: %w", err)
		}
		if err := r.validate(); err != nil {
			return nil, err
		}
		return &r, nil
	case KindRandomForest:
		var f RandomForest
		if err := json.Unmarshal(params, &f); err != nil {
			return nil, fmt.Errorf("decode random forest: %w", err)
		}
		if err := f.validate(); err != nil {
			return nil, err
		}
		return &f, nil
	case KindGradientBoosting:
		var g GradientBoosting
		if err := json.Unmarshal(params, &g); err != nil {
			return nil, fmt.Errorf("decode gradient boosting: %w", err)
		}
		if err := g.validate(); err != nil {
			return nil, err
		}
		return &g, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func checkOrder(order []string, est domain.Estimator) error {
	if len(order) != est.NumFeatures() {
		return fmt.Errorf("%w: feature order has %d names, estimator expects %d",
			ErrFeatureCount, len(order), est.NumFeatures())
	}
	return nil
}

// Encode always writes the wrapper shape.
func Encode(a *domain.ModelArtifact) ([]byte, error) {
	if a.Estimator == nil {
		return nil, fmt.Errorf("encode artifact %s: no estimator", a.Name())
	}
	params, err := json.Marshal(a.Estimator)
	if err != nil {
		return nil, fmt.Errorf("encode estimator: %w", err)
	}
	model, err := json.Marshal(rawDocument{Kind: a.Estimator.Kind(), Params: params})
	if err != nil {
		return nil, fmt.Errorf("encode estimator document: %w", err)
	}

	schema := a.SchemaVersion
	if schema == "" {
		schema = SchemaVersion
	}
	doc := wrapperDocument{
		Model:         model,
		ID:            a.ID,
		Location:      string(a.Key.Location),
		Algorithm:     string(a.Key.Algorithm),
		Timestamp:     a.Timestamp,
		TrainedAt:     a.TrainedAt,
		FeatureOrder:  a.FeatureOrder,
		Target:        a.Target,
		SchemaVersion: schema,
		Environment:   a.Environment,
		Metrics:       a.Metrics,
	}
	return json.MarshalIndent(doc, "", "  ")
}

func major(v string) string {
	if i := strings.IndexByte(v, '.'); i >= 0 {
		return v[:i]
	}
	return v
}
