package handlers

import (
	"net/http"

	"crop-yield-service/internal/adapters/primary/http/dto"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) Predict(c *gin.Context) {
	var req dto.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.predictionSvc.Predict(c.Request.Context(), req.ToDomain())
	if err != nil {
		log.WithError(err).WithField("crop_type", req.CropType).Warn("predict failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPredictionResponse(result))
}

func (h *Handler) GetDefaultVariety(c *gin.Context) {
	var location *string
	if loc, ok := c.GetQuery("location"); ok {
		location = &loc
	}

	sel, err := h.resolver.SelectDefaultVariety(c.Request.Context(), c.Query("crop_type"), location)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToVarietySelectionResponse(sel))
}
