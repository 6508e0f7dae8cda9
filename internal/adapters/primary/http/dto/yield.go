package dto

import (
	"crop-yield-service/internal/core/domain"
)

type PredictRequest struct {
	CropType  string             `json:"crop_type"`
	Location  *string            `json:"location"`
	Variety   string             `json:"variety"`
	Algorithm string             `json:"algorithm"`
	Features  map[string]float64 `json:"features"`
}

func (r PredictRequest) ToDomain() domain.PredictionRequest {
	return domain.PredictionRequest{
		CropType:  r.CropType,
		Location:  r.Location,
		Variety:   r.Variety,
		Algorithm: domain.Algorithm(r.Algorithm),
		Features:  domain.FeatureVector(r.Features),
	}
}

type SelectionMetadataResponse struct {
	Region          string  `json:"region"`
	OriginalRegion  string  `json:"original_region,omitempty"`
	Reason          string  `json:"reason"`
	SelectionTimeMs float64 `json:"selection_time_ms"`
}

type VarietySelectionResponse struct {
	VarietyName       string                    `json:"variety_name"`
	VarietyAssumed    bool                      `json:"variety_assumed"`
	SelectionMetadata SelectionMetadataResponse `json:"selection_metadata"`
}

func ToVarietySelectionResponse(s *domain.VarietySelectionResult) *VarietySelectionResponse {
	if s == nil {
		return nil
	}
	return &VarietySelectionResponse{
		VarietyName:    s.VarietyName,
		VarietyAssumed: s.VarietyAssumed,
		SelectionMetadata: SelectionMetadataResponse{
			Region:          string(s.SelectionMetadata.Region),
			OriginalRegion:  string(s.SelectionMetadata.OriginalRegion),
			Reason:          string(s.SelectionMetadata.Reason),
			SelectionTimeMs: s.SelectionMetadata.SelectionTimeMs,
		},
	}
}

type PredictionResponse struct {
	CropType         string                    `json:"crop_type"`
	Region           string                    `json:"region"`
	PredictedYield   float64                   `json:"predicted_yield"`
	Unit             string                    `json:"unit"`
	ModelSource      string                    `json:"model_source"`
	Algorithm        string                    `json:"algorithm,omitempty"`
	ArtifactID       string                    `json:"artifact_id,omitempty"`
	Variety          string                    `json:"variety"`
	VarietySelection *VarietySelectionResponse `json:"variety_selection,omitempty"`
}

func ToPredictionResponse(r *domain.PredictionResult) PredictionResponse {
	return PredictionResponse{
		CropType:         r.CropType,
		Region:           string(r.Region),
		PredictedYield:   r.PredictedYield,
		Unit:             r.Unit,
		ModelSource:      string(r.ModelSource),
		Algorithm:        string(r.Algorithm),
		ArtifactID:       r.ArtifactID,
		Variety:          r.Variety,
		VarietySelection: ToVarietySelectionResponse(r.VarietySelection),
	}
}
