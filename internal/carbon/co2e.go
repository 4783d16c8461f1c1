package carbon

import "math"

// Conversion constants for the biomass -> carbon -> CO2e chain. They are
// applied in this file and nowhere else; every component that needs a CO2e
// value goes through the converter so the conversion chain has a single
// source of truth for auditing.
const (
	carbonFraction = 0.5   // fraction of dry biomass that is carbon
	co2CarbonRatio = 3.667 // mass ratio of CO2 to carbon (44/12)
)

// CO2eConverter converts biomass quantities to carbon stock and
// CO2-equivalent mass.
type CO2eConverter struct{}

// NewCO2eConverter creates the shared biomass-to-CO2e converter.
func NewCO2eConverter() *CO2eConverter {
	return &CO2eConverter{}
}

// CarbonStockKg returns the carbon stock in kg held in the given biomass.
func (c *CO2eConverter) CarbonStockKg(biomassKg float64) float64 {
	return biomassKg * carbonFraction
}

// ToCO2e converts a biomass quantity in kg to its CO2-equivalent in kg,
// rounded to 2 decimal places.
func (c *CO2eConverter) ToCO2e(biomassKg float64) float64 {
	return round2(biomassKg * carbonFraction * co2CarbonRatio)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
