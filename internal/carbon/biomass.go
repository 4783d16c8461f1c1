package carbon

import (
	"fmt"
	"math"
)

// AllometricCoefficients parameterize a per-tree biomass equation of the
// form scale * measurement^exponent * (1 + ageRate*age).
type AllometricCoefficients struct {
	Scale    float64
	Exponent float64
	AgeRate  float64
}

// Allometric coefficients calibrated for Goa-region plantations.
var (
	cashewCoefficients  = AllometricCoefficients{Scale: 0.28, Exponent: 2.15, AgeRate: 0.02}
	coconutCoefficients = AllometricCoefficients{Scale: 15.3, Exponent: 1.85, AgeRate: 0.015}
)

// BiomassEstimator computes per-tree and whole-farm aboveground biomass
// from species-specific allometric equations.
type BiomassEstimator struct {
	cashew  AllometricCoefficients
	coconut AllometricCoefficients
}

// NewBiomassEstimator creates a biomass estimator with the built-in
// regional coefficients.
func NewBiomassEstimator() *BiomassEstimator {
	return &BiomassEstimator{
		cashew:  cashewCoefficients,
		coconut: coconutCoefficients,
	}
}

// CashewTreeBiomass returns the aboveground biomass in kg of a single
// cashew tree from its diameter at breast height (cm) and age (years).
func (e *BiomassEstimator) CashewTreeBiomass(dbhCm float64, ageYears int) float64 {
	return treeBiomass(e.cashew, dbhCm, ageYears)
}

// CoconutTreeBiomass returns the aboveground biomass in kg of a single
// coconut tree from its height (m) and age (years).
func (e *BiomassEstimator) CoconutTreeBiomass(heightM float64, ageYears int) float64 {
	return treeBiomass(e.coconut, heightM, ageYears)
}

func treeBiomass(c AllometricCoefficients, measurement float64, ageYears int) float64 {
	ageFactor := 1 + c.AgeRate*float64(ageYears)
	return c.Scale * math.Pow(measurement, c.Exponent) * ageFactor
}

// FarmBiomass returns the total aboveground biomass in kg for the farm
// described by the profile: per-tree biomass scaled by density and area.
func (e *BiomassEstimator) FarmBiomass(profile *FarmProfile) (float64, error) {
	var perTree float64

	switch profile.CropType {
	case CropCashew:
		if profile.DBHCm == nil {
			return 0, fmt.Errorf("farm %s: cashew profile missing dbhCm", profile.FarmID)
		}
		perTree = e.CashewTreeBiomass(*profile.DBHCm, profile.TreeAge)
	case CropCoconut:
		if profile.TreeHeightM == nil {
			return 0, fmt.Errorf("farm %s: coconut profile missing treeHeightM", profile.FarmID)
		}
		perTree = e.CoconutTreeBiomass(*profile.TreeHeightM, profile.TreeAge)
	default:
		return 0, &UnsupportedCropTypeError{CropType: profile.CropType}
	}

	return perTree * profile.TreeCount(), nil
}
