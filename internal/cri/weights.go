package cri

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// Weights are the blend fractions for the three CRI components. A valid
// triple is non-negative and sums to 1.0 within the tolerance.
type Weights struct {
	NetCarbonPosition   float64 `json:"netCarbonPosition" dynamodbav:"netCarbonPosition"`
	SOCTrend            float64 `json:"socTrend" dynamodbav:"socTrend"`
	ManagementPractices float64 `json:"managementPractices" dynamodbav:"managementPractices"`
}

// WeightSumTolerance is the accepted deviation of a weight triple's sum
// from 1.0.
const WeightSumTolerance = 0.001

// DefaultWeights returns the built-in CRI weight configuration used when
// no stored version exists or a stored/supplied triple is invalid.
func DefaultWeights() Weights {
	return Weights{
		NetCarbonPosition:   0.5,
		SOCTrend:            0.3,
		ManagementPractices: 0.2,
	}
}

// Sum returns the total of the three weights.
func (w Weights) Sum() float64 {
	return w.NetCarbonPosition + w.SOCTrend + w.ManagementPractices
}

// Valid reports whether the triple is non-negative and sums to 1.0 within
// tolerance.
func (w Weights) Valid() bool {
	if w.NetCarbonPosition < 0 || w.SOCTrend < 0 || w.ManagementPractices < 0 {
		return false
	}
	return math.Abs(w.Sum()-1.0) <= WeightSumTolerance
}

// WeightRecord is one stored, versioned weight configuration. Records are
// append-only; version numbers increase monotonically.
type WeightRecord struct {
	Version   int       `json:"version"`
	Weights   Weights   `json:"weights"`
	UpdatedBy string    `json:"updatedBy"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ErrWeightsNotFound is returned by weight stores when no version has been
// stored yet.
var ErrWeightsNotFound = errors.New("no stored CRI weights")

// ErrPermissionDenied is returned when a non-admin requestor attempts a
// weight mutation.
var ErrPermissionDenied = errors.New("permission denied: CRI weight updates require admin role")

// WeightValidationError reports an invalid weight triple on the write path.
type WeightValidationError struct {
	Sum float64
}

func (e *WeightValidationError) Error() string {
	return fmt.Sprintf("CRI weights must sum to 1.0 within %.3f, got %.4f", WeightSumTolerance, e.Sum)
}

// RoleAdmin is the only role allowed to mutate CRI weights.
const RoleAdmin = "admin"

// WeightStore persists versioned CRI weight configurations.
type WeightStore interface {
	GetLatest(ctx context.Context) (*WeightRecord, error)
	Put(ctx context.Context, record *WeightRecord) error
}

// WeightManager serves the effective CRI weights and gates mutations.
// Reads never fail: store absence or errors fall back to the defaults,
// with the fallback logged so persistent misconfiguration stays visible.
type WeightManager struct {
	store  WeightStore
	logger *zap.Logger
}

// NewWeightManager creates a weight manager backed by the given store.
func NewWeightManager(store WeightStore, logger *zap.Logger) *WeightManager {
	return &WeightManager{store: store, logger: logger}
}

// Get returns the effective weights: the latest stored version, or the
// defaults when none exists, the store fails, or the stored triple is
// invalid.
func (m *WeightManager) Get(ctx context.Context) Weights {
	return m.Latest(ctx).Weights
}

// Latest returns the latest stored weight record, or a synthetic
// version-0 defaults record when the store has nothing usable.
func (m *WeightManager) Latest(ctx context.Context) *WeightRecord {
	record, err := m.store.GetLatest(ctx)
	switch {
	case errors.Is(err, ErrWeightsNotFound):
		m.logger.Info("no CRI weights stored, using default weights", zap.Int("version", 0))
		return defaultRecord()
	case err != nil:
		m.logger.Warn("CRI weight lookup failed, using default weights", zap.Error(err))
		return defaultRecord()
	case !record.Weights.Valid():
		m.logger.Warn("stored CRI weights invalid, using default weights",
			zap.Int("version", record.Version),
			zap.Float64("sum", record.Weights.Sum()))
		return defaultRecord()
	}
	return record
}

// Set validates and persists a new weight version. Only admins may write;
// an invalid triple fails the request and nothing is stored.
func (m *WeightManager) Set(ctx context.Context, weights Weights, requestorRole, author string) (*WeightRecord, error) {
	if requestorRole != RoleAdmin {
		return nil, ErrPermissionDenied
	}
	if !weights.Valid() {
		return nil, &WeightValidationError{Sum: weights.Sum()}
	}

	latestVersion := 0
	if record, err := m.store.GetLatest(ctx); err == nil {
		latestVersion = record.Version
	} else if !errors.Is(err, ErrWeightsNotFound) {
		return nil, fmt.Errorf("failed to read current CRI weight version: %w", err)
	}

	record := &WeightRecord{
		Version:   latestVersion + 1,
		Weights:   weights,
		UpdatedBy: author,
		UpdatedAt: time.Now().UTC(),
	}

	if err := m.store.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store CRI weights: %w", err)
	}

	m.logger.Info("CRI weights updated",
		zap.Int("version", record.Version),
		zap.String("updated_by", author))

	return record, nil
}

func defaultRecord() *WeightRecord {
	return &WeightRecord{
		Version:   0,
		Weights:   DefaultWeights(),
		UpdatedBy: "system-default",
	}
}
