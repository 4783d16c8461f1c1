// Package dashboard serves carbon intelligence data to the web dashboard
// and hosts the admin CRI weight endpoints.
package dashboard

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PranavNaik-adage/CarbonReady/internal/cri"
	"github.com/PranavNaik-adage/CarbonReady/internal/engine"
)

// Handler exposes dashboard read endpoints over persisted calculation
// results plus the admin weight configuration endpoints.
type Handler struct {
	calculations engine.CalculationReader
	weights      *cri.WeightManager
	logger       *zap.Logger
}

// NewHandler creates a dashboard handler.
func NewHandler(calculations engine.CalculationReader, weights *cri.WeightManager, logger *zap.Logger) *Handler {
	return &Handler{calculations: calculations, weights: weights, logger: logger}
}

// RegisterRoutes mounts the dashboard endpoints on the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/farms/:farmId/carbon-position", h.CarbonPosition)
	r.GET("/farms/:farmId/carbon-readiness-index", h.CarbonReadinessIndex)
	r.GET("/farms/:farmId/historical-trends", h.HistoricalTrends)

	r.GET("/admin/cri-weights", h.GetWeights)
	r.PUT("/admin/cri-weights", h.UpdateWeights)
}

// CarbonPosition returns the latest net carbon position for a farm.
func (h *Handler) CarbonPosition(c *gin.Context) {
	farmID := c.Param("farmId")

	result, err := h.calculations.GetLatest(c.Request.Context(), farmID)
	if errors.Is(err, engine.ErrNoCalculations) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no calculations for farm"})
		return
	}
	if err != nil {
		h.logger.Error("failed to load carbon position", zap.String("farm_id", farmID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"farmId":              result.FarmID,
		"calculatedAt":        result.CalculatedAt,
		"netCarbonPosition":   result.NetCarbonPosition,
		"annualSequestration": result.AnnualSequestration,
		"emissions":           result.Emissions,
	})
}

// CarbonReadinessIndex returns the latest CRI with its component
// breakdown.
func (h *Handler) CarbonReadinessIndex(c *gin.Context) {
	farmID := c.Param("farmId")

	result, err := h.calculations.GetLatest(c.Request.Context(), farmID)
	if errors.Is(err, engine.ErrNoCalculations) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no calculations for farm"})
		return
	}
	if err != nil {
		h.logger.Error("failed to load CRI", zap.String("farm_id", farmID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"farmId":       result.FarmID,
		"calculatedAt": result.CalculatedAt,
		"cri":          result.CRI,
		"socTrend":     result.SOCTrend,
	})
}

// HistoricalTrends returns the calculation history for a farm over the
// requested window (?days=N, default 365).
func (h *Handler) HistoricalTrends(c *gin.Context) {
	farmID := c.Param("farmId")

	days := 365
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	results, err := h.calculations.ListSince(c.Request.Context(), farmID, since)
	if err != nil {
		h.logger.Error("failed to load historical trends", zap.String("farm_id", farmID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"farmId":  farmID,
		"days":    days,
		"count":   len(results),
		"results": results,
	})
}

// GetWeights returns the effective CRI weight configuration.
func (h *Handler) GetWeights(c *gin.Context) {
	c.JSON(http.StatusOK, h.weights.Latest(c.Request.Context()))
}

// UpdateWeights stores a new CRI weight version. The requestor role and
// identity come from headers resolved by the API gateway in front of
// this service.
func (h *Handler) UpdateWeights(c *gin.Context) {
	var payload cri.Weights
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	role := c.GetHeader("X-Requestor-Role")
	author := c.GetHeader("X-Requestor-Id")
	if author == "" {
		author = "unknown"
	}

	record, err := h.weights.Set(c.Request.Context(), payload, role, author)
	if err != nil {
		var validationErr *cri.WeightValidationError
		switch {
		case errors.Is(err, cri.ErrPermissionDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("failed to update CRI weights", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, record)
}
