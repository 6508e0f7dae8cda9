package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// Input Errors
// ============================================================================

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidCropType = fmt.Errorf("%w: crop_type is required", ErrInvalidInput)
	ErrInvalidLocation = fmt.Errorf("%w: location is required", ErrInvalidInput)
	ErrUnknownLocation = fmt.Errorf("%w: unknown model location", ErrInvalidInput)
	ErrUnknownAlgo     = fmt.Errorf("%w: unknown algorithm", ErrInvalidInput)
)

// ============================================================================
// Variety Errors
// ============================================================================

var (
	ErrCatalogUnavailable = errors.New("variety catalog unavailable")
	ErrVarietyNotFound    = errors.New("variety not found")
	ErrNoVarietyAvailable = errors.New("no variety available")
)

// NoVarietyAvailableError is returned once the escalation ladder is exhausted.
type NoVarietyAvailableError struct {
	CropType string
	Location string
	Region   Region
	Trail    []string
}

func (e *NoVarietyAvailableError) Error() string {
	return fmt.Sprintf("no variety available for crop_type=%q location=%q (region=%s, attempted=%s)",
		e.CropType, e.Location, e.Region, strings.Join(e.Trail, ">"))
}

func (e *NoVarietyAvailableError) Unwrap() error {
	return ErrNoVarietyAvailable
}

// ============================================================================
// Model Errors
// ============================================================================

var (
	ErrArtifactNotFound    = errors.New("model artifact not found")
	ErrAmbiguousArtifact   = errors.New("ambiguous model artifact shape")
	ErrModelIncompatible   = errors.New("model artifact incompatible with runtime")
	ErrOutputOutOfRange    = errors.New("model output outside acceptable yield range")
	ErrFeatureOrder        = errors.New("artifact feature order references unknown feature")
	ErrEnvironmentMismatch = errors.New("runtime environment differs from cached fingerprint")
	ErrTrainingData        = errors.New("training data unusable")
)
