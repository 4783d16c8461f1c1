package carbon

// EmissionFactors are the fixed IPCC Tier-1 factors used for emissions
// accounting. They are configuration injected at construction, never
// derived at runtime.
type EmissionFactors struct {
	UreaNitrogenContent    float64 // N fraction of applied urea fertilizer
	N2ODirectFactor        float64 // IPCC Tier-1 direct emission factor
	N2ONitrogenMassRatio   float64 // N2O / N2O-N mass ratio (44/28)
	N2OWarmingPotential    float64 // N2O global warming potential
	IrrigationEnergyFactor float64 // kg CO2 per 1000 L pumped
}

// DefaultEmissionFactors returns the standard IPCC Tier-1 factor set.
func DefaultEmissionFactors() EmissionFactors {
	return EmissionFactors{
		UreaNitrogenContent:    0.46,
		N2ODirectFactor:        0.01,
		N2ONitrogenMassRatio:   44.0 / 28.0,
		N2OWarmingPotential:    298,
		IrrigationEnergyFactor: 0.5,
	}
}

// EmissionsEstimate is the annual farm emissions breakdown in kg CO2e.
type EmissionsEstimate struct {
	FertilizerKg float64 `json:"fertilizerKg"`
	IrrigationKg float64 `json:"irrigationKg"`
	TotalKg      float64 `json:"totalKg"`
	Unit         string  `json:"unit"`
}

// EmissionsEstimator computes IPCC Tier-1 emissions from fertilizer
// application and irrigation pump energy.
type EmissionsEstimator struct {
	factors EmissionFactors
}

// NewEmissionsEstimator creates an emissions estimator with the given
// factor set.
func NewEmissionsEstimator(factors EmissionFactors) *EmissionsEstimator {
	return &EmissionsEstimator{factors: factors}
}

// Estimate computes annual emissions for a farm. fertilizerUsage is in
// kg/ha/yr, irrigationActivity in L/ha/yr. Missing inputs are treated as 0.
//
// Components are rounded to 2 decimals independently; the total is rounded
// from the unrounded component sum, so it can differ from the sum of the
// rounded components by up to 0.01.
func (e *EmissionsEstimator) Estimate(fertilizerUsage, irrigationActivity, areaHa float64) EmissionsEstimate {
	totalFertilizerKg := fertilizerUsage * areaHa
	nitrogenKg := totalFertilizerKg * e.factors.UreaNitrogenContent
	n2oNKg := nitrogenKg * e.factors.N2ODirectFactor
	n2oKg := n2oNKg * e.factors.N2ONitrogenMassRatio
	fertilizerCO2e := n2oKg * e.factors.N2OWarmingPotential

	totalIrrigationL := irrigationActivity * areaHa
	irrigationCO2e := (totalIrrigationL / 1000) * e.factors.IrrigationEnergyFactor

	return EmissionsEstimate{
		FertilizerKg: round2(fertilizerCO2e),
		IrrigationKg: round2(irrigationCO2e),
		TotalKg:      round2(fertilizerCO2e + irrigationCO2e),
		Unit:         UnitKgCO2ePerYear,
	}
}
