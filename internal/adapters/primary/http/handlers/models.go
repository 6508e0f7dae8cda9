package handlers

import (
	"fmt"
	"net/http"

	"crop-yield-service/internal/adapters/primary/http/dto"
	"crop-yield-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetCompatibility(c *gin.Context) {
	rc := h.runtime
	served := make([]dto.ModelArtifactResponse, 0, rc.Registry.Len())
	for _, a := range rc.Registry.List() {
		served = append(served, dto.ToModelArtifactResponse(a))
	}

	resp := dto.CompatibilityResponse{
		Status:           rc.Outcome.Status(),
		Detail:           rc.Outcome.Detail,
		EnvironmentDiffs: rc.Drift.Diffs,
		Report:           rc.Report,
		ServedArtifacts:  served,
	}
	if rc.Fingerprint != nil {
		resp.FingerprintDigest = rc.Fingerprint.Digest
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetModel(c *gin.Context) {
	location, ok := domain.ParseRegion(c.Param("location"))
	if !ok || !location.IsState() {
		mapDomainError(c, fmt.Errorf("%w: %q", domain.ErrUnknownLocation, c.Param("location")))
		return
	}
	algo, err := domain.ParseAlgorithm(c.Param("algorithm"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	artifact, err := h.runtime.Registry.Select(location, algo)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToModelArtifactResponse(artifact))
}

// Health stays 200 under fallback: the service still answers with the heuristic.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:         h.runtime.Outcome.Status(),
		FallbackActive: h.runtime.Report != nil && h.runtime.Report.FallbackActive,
		Detail:         h.runtime.Outcome.Detail,
	})
}
