package handlers

import (
	"crop-yield-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	predictionSvc *services.PredictionService
	resolver      *services.VarietyResolver
	runtime       *services.RuntimeContext
}

func New(
	predictionSvc *services.PredictionService,
	resolver *services.VarietyResolver,
	runtime *services.RuntimeContext,
) *Handler {
	return &Handler{
		predictionSvc: predictionSvc,
		resolver:      resolver,
		runtime:       runtime,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Prediction
	r.POST("/predict", h.Predict)

	// Varieties
	r.GET("/varieties/default", h.GetDefaultVariety)

	// Models
	r.GET("/models/compatibility", h.GetCompatibility)
	r.GET("/models/:location/:algorithm", h.GetModel)
}
