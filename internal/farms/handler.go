// Package farms exposes versioned farm metadata CRUD. Every write appends
// a new version; the engine and the dashboard only ever read the latest.
package farms

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PranavNaik-adage/CarbonReady/internal/carbon"
	"github.com/PranavNaik-adage/CarbonReady/internal/engine"
)

// ProfileStore is the slice of the metadata store this handler needs.
type ProfileStore interface {
	GetLatest(ctx context.Context, farmID string) (*carbon.FarmProfile, error)
	Put(ctx context.Context, profile *carbon.FarmProfile) error
}

// Handler serves farm metadata endpoints.
type Handler struct {
	store  ProfileStore
	logger *zap.Logger
}

// NewHandler creates a farm metadata handler.
func NewHandler(store ProfileStore, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes mounts the metadata endpoints on the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/farms/:farmId/metadata", h.GetMetadata)
	r.POST("/farms/:farmId/metadata", h.CreateMetadata)
	r.PUT("/farms/:farmId/metadata", h.UpdateMetadata)
}

// GetMetadata returns the latest metadata version for a farm.
func (h *Handler) GetMetadata(c *gin.Context) {
	farmID := c.Param("farmId")

	profile, err := h.store.GetLatest(c.Request.Context(), farmID)
	if errors.Is(err, engine.ErrProfileNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "farm not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to load farm metadata", zap.String("farm_id", farmID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// CreateMetadata stores version 1 of a farm's metadata.
func (h *Handler) CreateMetadata(c *gin.Context) {
	h.putMetadata(c, 1, http.StatusCreated)
}

// UpdateMetadata appends the next metadata version for a farm.
func (h *Handler) UpdateMetadata(c *gin.Context) {
	farmID := c.Param("farmId")

	latestVersion := 0
	if current, err := h.store.GetLatest(c.Request.Context(), farmID); err == nil {
		latestVersion = current.Version
	} else if !errors.Is(err, engine.ErrProfileNotFound) {
		h.logger.Error("failed to load farm metadata", zap.String("farm_id", farmID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	h.putMetadata(c, latestVersion+1, http.StatusOK)
}

func (h *Handler) putMetadata(c *gin.Context, version int, successStatus int) {
	farmID := c.Param("farmId")

	var profile carbon.FarmProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile.FarmID = farmID
	profile.Version = version
	profile.UpdatedAt = time.Now().UTC()

	if err := profile.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": err.Error(),
		})
		return
	}

	if err := h.store.Put(c.Request.Context(), &profile); err != nil {
		h.logger.Error("failed to store farm metadata", zap.String("farm_id", farmID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(successStatus, profile)
}
