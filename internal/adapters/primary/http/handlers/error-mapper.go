package handlers

import (
	"errors"
	"net/http"

	"crop-yield-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func mapDomainError(c *gin.Context, err error) {
	var noVariety *domain.NoVarietyAvailableError

	switch {
	// Ladder exhausted: report what was tried
	case errors.As(err, &noVariety):
		c.JSON(http.StatusNotFound, gin.H{
			"error":     err.Error(),
			"crop_type": noVariety.CropType,
			"location":  noVariety.Location,
			"region":    noVariety.Region,
			"attempted": noVariety.Trail,
		})

	// Not found errors
	case errors.Is(err, domain.ErrArtifactNotFound),
		errors.Is(err, domain.ErrVarietyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Service unavailable errors
	case errors.Is(err, domain.ErrCatalogUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
