package domain

// Engineered feature names, in the canonical order used for training.
const (
	FeatureNDVI             = "ndvi"
	FeatureEVI              = "evi"
	FeatureSAVI             = "savi"
	FeatureNDWI             = "ndwi"
	FeatureLAI              = "lai"
	FeatureTempMean         = "temperature_mean"
	FeatureTempMax          = "temperature_max"
	FeatureTempMin          = "temperature_min"
	FeaturePrecipitation    = "precipitation"
	FeatureHumidity         = "humidity"
	FeatureSolarRadiation   = "solar_radiation"
	FeatureSoilPH           = "soil_ph"
	FeatureSoilMoisture     = "soil_moisture"
	FeatureOrganicCarbon    = "soil_organic_carbon"
	FeatureNitrogen         = "soil_nitrogen"
	FeatureGDD              = "growing_degree_days"
	FeatureHeatStress       = "heat_stress_index"
	FeatureWaterStress      = "water_stress_index"
	FeaturePrecipDeficit    = "precipitation_deficit"
	FeatureVaporPressureDef = "vapor_pressure_deficit"
)

var FeatureOrder = []string{
	FeatureNDVI,
	FeatureEVI,
	FeatureSAVI,
	FeatureNDWI,
	FeatureLAI,
	FeatureTempMean,
	FeatureTempMax,
	FeatureTempMin,
	FeaturePrecipitation,
	FeatureHumidity,
	FeatureSolarRadiation,
	FeatureSoilPH,
	FeatureSoilMoisture,
	FeatureOrganicCarbon,
	FeatureNitrogen,
	FeatureGDD,
	FeatureHeatStress,
	FeatureWaterStress,
	FeaturePrecipDeficit,
	FeatureVaporPressureDef,
}

// FeatureVector maps feature names to values.
type FeatureVector map[string]float64

// Ordered lays the vector out in the given order. Unknown names are an error;
// absent known names take the supplied defaults.
func (v FeatureVector) Ordered(order []string, defaults FeatureVector) ([]float64, error) {
	out := make([]float64, len(order))
	for i, name := range order {
		if val, ok := v[name]; ok {
			out[i] = val
			continue
		}
		val, ok := defaults[name]
		if !ok {
			return nil, ErrFeatureOrder
		}
		out[i] = val
	}
	return out, nil
}

type PredictionRequest struct {
	CropType  string        `json:"crop_type"`
	Location  *string       `json:"location"`
	Variety   string        `json:"variety"`
	Algorithm Algorithm     `json:"algorithm"`
	Features  FeatureVector `json:"features"`
}

type ModelSource string

const (
	ModelSourceML        ModelSource = "ml_model"
	ModelSourceHeuristic ModelSource = "heuristic"
)

type PredictionResult struct {
	CropType         string                  `json:"crop_type"`
	Region           Region                  `json:"region"`
	PredictedYield   float64                 `json:"predicted_yield"`
	Unit             string                  `json:"unit"`
	ModelSource      ModelSource             `json:"model_source"`
	Algorithm        Algorithm               `json:"algorithm,omitempty"`
	ArtifactID       string                  `json:"artifact_id,omitempty"`
	Variety          string                  `json:"variety"`
	VarietySelection *VarietySelectionResult `json:"variety_selection,omitempty"`
}
