package carbon

import (
	"context"
	"math"

	"go.uber.org/zap"
)

// Sequestration estimation methods.
const (
	MethodHistorical  = "historical"
	MethodGrowthCurve = "growth_curve"
)

// UnitKgCO2ePerYear is the unit attached to all annual flow quantities.
const UnitKgCO2ePerYear = "kg CO2e/year"

// SequestrationEstimate is the annual carbon uptake estimate for a farm.
type SequestrationEstimate struct {
	BiomassIncrementKg  float64 `json:"biomassIncrementKg"`
	CO2eSequestrationKg float64 `json:"co2eSequestrationKg"`
	Method              string  `json:"method"`
	Unit                string  `json:"unit"`
}

// SequestrationEstimator derives the annual biomass increment for a farm,
// preferring the historical delta against the previous calculation and
// falling back to the growth curve model when no history exists.
type SequestrationEstimator struct {
	growth    *GrowthCurveModel
	converter *CO2eConverter
	logger    *zap.Logger
}

// NewSequestrationEstimator creates a sequestration estimator.
func NewSequestrationEstimator(growth *GrowthCurveModel, converter *CO2eConverter, logger *zap.Logger) *SequestrationEstimator {
	return &SequestrationEstimator{growth: growth, converter: converter, logger: logger}
}

// Estimate produces the annual sequestration for a farm. priorBiomassKg is
// the farm biomass from the previous calculation period, nil when none is
// recorded. The increment is floored at 0 before CO2e conversion.
func (e *SequestrationEstimator) Estimate(ctx context.Context, profile *FarmProfile, currentBiomassKg float64, priorBiomassKg *float64) (*SequestrationEstimate, error) {
	var (
		increment float64
		method    string
	)

	if priorBiomassKg != nil && *priorBiomassKg > 0 {
		increment = currentBiomassKg - *priorBiomassKg
		method = MethodHistorical
	} else {
		perTree, err := e.growth.AnnualTreeIncrement(ctx, profile.CropType, profile.GrowthRegion(), profile.TreeAge)
		if err != nil {
			return nil, err
		}
		increment = perTree * profile.TreeCount()
		method = MethodGrowthCurve
	}

	increment = math.Max(0, increment)

	e.logger.Debug("estimated annual sequestration",
		zap.String("farm_id", profile.FarmID),
		zap.String("method", method),
		zap.Float64("biomass_increment_kg", increment))

	return &SequestrationEstimate{
		BiomassIncrementKg:  round2(increment),
		CO2eSequestrationKg: e.converter.ToCO2e(increment),
		Method:              method,
		Unit:                UnitKgCO2ePerYear,
	}, nil
}
