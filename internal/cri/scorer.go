package cri

import (
	"context"
	"math"

	"go.uber.org/zap"
)

// CRI classifications by score threshold.
const (
	ClassificationNeedsImprovement = "Needs Improvement"
	ClassificationModerate         = "Moderate"
	ClassificationExcellent        = "Excellent"
)

// Net position normalization bounds in kg CO2e/ha/yr. Values outside the
// band are clamped before mapping to [0,100].
const (
	netPositionFloor   = -1000.0
	netPositionCeiling = 1000.0
)

// Management practice target bands. Usage inside the band scores 100;
// below ramps up linearly, above decays linearly.
const (
	fertilizerBandLow   = 50.0    // kg/ha/yr
	fertilizerBandHigh  = 150.0   // kg/ha/yr
	irrigationBandLow   = 5000.0  // L/ha/yr
	irrigationBandHigh  = 15000.0 // L/ha/yr
	fertilizerBlend     = 0.6
	irrigationBlend     = 0.4
)

// ScoreInput carries everything the scorer needs for one farm.
type ScoreInput struct {
	NetPositionKg      float64
	AreaHectares       float64
	SOCStatus          SOCStatus
	FertilizerUsage    float64 // kg/ha/yr
	IrrigationActivity float64 // L/ha/yr

	// Weights optionally overrides the stored configuration. An invalid
	// triple is ignored and the weight manager's value is used instead.
	Weights *Weights
}

// Components are the three normalized CRI component scores, each in [0,100].
type Components struct {
	NetCarbonPosition   float64 `json:"netCarbonPosition"`
	SOCTrend            float64 `json:"socTrend"`
	ManagementPractices float64 `json:"managementPractices"`
}

// Score is the Carbon Readiness Index result. WeightsUsed records the
// triple actually applied, for audit transparency.
type Score struct {
	Score          float64    `json:"score"`
	Classification string     `json:"classification"`
	Components     Components `json:"components"`
	WeightsUsed    Weights    `json:"weightsUsed"`
}

// Scorer blends the net-position, SOC-trend and management-practice
// components into the composite CRI.
type Scorer struct {
	weights *WeightManager
	logger  *zap.Logger
}

// NewScorer creates a CRI scorer that resolves weights through the given
// manager.
func NewScorer(weights *WeightManager, logger *zap.Logger) *Scorer {
	return &Scorer{weights: weights, logger: logger}
}

// Score computes the CRI for one farm.
func (s *Scorer) Score(ctx context.Context, in ScoreInput) Score {
	components := Components{
		NetCarbonPosition:   netPositionComponent(in.NetPositionKg, in.AreaHectares),
		SOCTrend:            socComponent(in.SOCStatus),
		ManagementPractices: managementComponent(in.FertilizerUsage, in.IrrigationActivity),
	}

	weights := s.resolveWeights(ctx, in.Weights)

	// Classification must agree with the persisted score, so both come
	// from the rounded value.
	score := round2(components.NetCarbonPosition*weights.NetCarbonPosition +
		components.SOCTrend*weights.SOCTrend +
		components.ManagementPractices*weights.ManagementPractices)

	return Score{
		Score:          score,
		Classification: Classify(score),
		Components:     components,
		WeightsUsed:    weights,
	}
}

// Classify maps a CRI score to its dashboard classification.
func Classify(score float64) string {
	switch {
	case score < 40:
		return ClassificationNeedsImprovement
	case score < 70:
		return ClassificationModerate
	default:
		return ClassificationExcellent
	}
}

func (s *Scorer) resolveWeights(ctx context.Context, supplied *Weights) Weights {
	if supplied != nil {
		if supplied.Valid() {
			return *supplied
		}
		s.logger.Warn("supplied CRI weights invalid, resolving through weight manager",
			zap.Float64("sum", supplied.Sum()))
	}
	return s.weights.Get(ctx)
}

// netPositionComponent normalizes the net position to per-hectare, clamps
// it to the scoring band, and maps it linearly to [0,100]: the floor maps
// to 0, zero to 50, the ceiling to 100.
func netPositionComponent(netKg, areaHa float64) float64 {
	perHa := 0.0
	if areaHa > 0 {
		perHa = netKg / areaHa
	}
	perHa = math.Max(netPositionFloor, math.Min(netPositionCeiling, perHa))
	return round2((perHa - netPositionFloor) / (netPositionCeiling - netPositionFloor) * 100)
}

func socComponent(status SOCStatus) float64 {
	switch status {
	case SOCImproving:
		return 100
	case SOCStable:
		return 60
	case SOCDeclining:
		return 20
	default:
		// InsufficientData and anything unrecognized score neutral.
		return 50
	}
}

func managementComponent(fertilizerUsage, irrigationActivity float64) float64 {
	fertilizer := bandScore(fertilizerUsage, fertilizerBandLow, fertilizerBandHigh, 10)
	irrigation := bandScore(irrigationActivity, irrigationBandLow, irrigationBandHigh, 1000)
	return round2(fertilizer*fertilizerBlend + irrigation*irrigationBlend)
}

// bandScore scores usage against a target band: 100 inside, a linear ramp
// from 0 below, and a linear decay above losing one point per excessScale
// units of overuse.
func bandScore(usage, low, high, excessScale float64) float64 {
	switch {
	case usage >= low && usage <= high:
		return 100
	case usage < low:
		return usage / low * 100
	default:
		return math.Max(0, 100-(usage-high)/excessScale)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
