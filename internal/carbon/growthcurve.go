package carbon

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"
)

// GrowthCurveParameters are the Chapman-Richards coefficients for a
// (cropType, region) pair: biomass(t) = a * (1 - exp(-b*t))^c.
type GrowthCurveParameters struct {
	A float64 `json:"a" dynamodbav:"a"` // maximum biomass asymptote, kg
	B float64 `json:"b" dynamodbav:"b"` // growth rate
	C float64 `json:"c" dynamodbav:"c"` // shape
}

func (p GrowthCurveParameters) valid() bool {
	return p.A > 0 && p.B > 0 && p.C > 0
}

// ErrGrowthCurveNotFound is returned by growth curve stores when no entry
// exists for a (cropType, region) pair.
var ErrGrowthCurveNotFound = errors.New("growth curve parameters not found")

// GrowthCurveStore provides regional Chapman-Richards calibration data.
type GrowthCurveStore interface {
	Get(ctx context.Context, cropType CropType, region string) (*GrowthCurveParameters, error)
}

// Built-in fallback parameters calibrated for the Goa region, used whenever
// the store has no usable entry.
var defaultGrowthParameters = map[CropType]GrowthCurveParameters{
	CropCashew:  {A: 250.0, B: 0.08, C: 1.5},
	CropCoconut: {A: 350.0, B: 0.06, C: 1.8},
}

// GrowthCurveModel estimates biomass-vs-age using Chapman-Richards curves
// with regional parameters. Lookups never fail: a missing, malformed, or
// unreachable store entry substitutes the built-in defaults. Every
// substitution is logged, since recurring fallback usage indicates a
// data-quality problem upstream.
type GrowthCurveModel struct {
	store  GrowthCurveStore
	logger *zap.Logger
}

// NewGrowthCurveModel creates a growth curve model backed by the given
// parameter store.
func NewGrowthCurveModel(store GrowthCurveStore, logger *zap.Logger) *GrowthCurveModel {
	return &GrowthCurveModel{store: store, logger: logger}
}

// Parameters resolves the Chapman-Richards parameters for a crop and
// region, falling back to built-in defaults on any lookup problem.
// The returned parameters are always usable; the error is non-nil only
// for crop types without built-in calibration.
func (m *GrowthCurveModel) Parameters(ctx context.Context, cropType CropType, region string) (GrowthCurveParameters, error) {
	defaults, ok := defaultGrowthParameters[cropType]
	if !ok {
		return GrowthCurveParameters{}, &UnsupportedCropTypeError{CropType: cropType}
	}

	params, err := m.store.Get(ctx, cropType, region)
	switch {
	case err != nil:
		m.logger.Warn("growth curve lookup failed, substituting default parameters",
			zap.String("crop_type", string(cropType)),
			zap.String("region", region),
			zap.Error(err))
		return defaults, nil
	case params == nil || !params.valid():
		m.logger.Warn("growth curve entry malformed, substituting default parameters",
			zap.String("crop_type", string(cropType)),
			zap.String("region", region))
		return defaults, nil
	}

	return *params, nil
}

// ChapmanRichardsBiomass evaluates the growth curve at the given age in
// years. Returns 0 for age <= 0.
func ChapmanRichardsBiomass(age int, p GrowthCurveParameters) float64 {
	if age <= 0 {
		return 0
	}
	return p.A * math.Pow(1-math.Exp(-p.B*float64(age)), p.C)
}

// AnnualTreeIncrement returns the expected per-tree biomass gain in kg
// between age-1 and age, floored at 0.
func (m *GrowthCurveModel) AnnualTreeIncrement(ctx context.Context, cropType CropType, region string, age int) (float64, error) {
	params, err := m.Parameters(ctx, cropType, region)
	if err != nil {
		return 0, err
	}

	increment := ChapmanRichardsBiomass(age, params) - ChapmanRichardsBiomass(age-1, params)
	return math.Max(0, increment), nil
}
