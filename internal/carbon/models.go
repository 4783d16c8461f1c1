package carbon

import (
	"errors"
	"fmt"
	"time"
)

// CropType identifies the plantation crop a farm grows
type CropType string

const (
	CropCashew  CropType = "cashew"
	CropCoconut CropType = "coconut"
)

// DefaultRegion is used for growth curve lookups when a profile does not
// specify one. Calibration data currently exists for Goa only.
const DefaultRegion = "Goa"

// FarmProfile represents the latest version of a farm's metadata.
// Profiles are append-only: every update writes version+1, the engine
// only ever reads the newest version.
type FarmProfile struct {
	FarmID             string   `json:"farmId" dynamodbav:"farmId"`
	CropType           CropType `json:"cropType" dynamodbav:"cropType"`
	FarmSizeHectares   float64  `json:"farmSizeHectares" dynamodbav:"farmSizeHectares"`
	TreeAge            int      `json:"treeAge" dynamodbav:"treeAge"`
	PlantationDensity  float64  `json:"plantationDensity" dynamodbav:"plantationDensity"`
	DBHCm              *float64 `json:"dbhCm,omitempty" dynamodbav:"dbhCm,omitempty"`
	TreeHeightM        *float64 `json:"treeHeightM,omitempty" dynamodbav:"treeHeightM,omitempty"`
	FertilizerUsage    float64  `json:"fertilizerUsage" dynamodbav:"fertilizerUsage"`
	IrrigationActivity float64  `json:"irrigationActivity" dynamodbav:"irrigationActivity"`
	Region             string   `json:"region,omitempty" dynamodbav:"region,omitempty"`
	Version            int      `json:"version" dynamodbav:"version"`

	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
}

// TreeCount returns the total number of trees on the farm.
func (p *FarmProfile) TreeCount() float64 {
	return p.PlantationDensity * p.FarmSizeHectares
}

// GrowthRegion returns the region used for growth curve lookups.
func (p *FarmProfile) GrowthRegion() string {
	if p.Region == "" {
		return DefaultRegion
	}
	return p.Region
}

// Validate checks the profile against the documented measurement tolerances.
// All violations are reported, not just the first one.
func (p *FarmProfile) Validate() error {
	var errs []error

	switch p.CropType {
	case CropCashew:
		if p.DBHCm == nil {
			errs = append(errs, errors.New("dbhCm is required for cashew farms"))
		} else if *p.DBHCm < 1 || *p.DBHCm > 200 {
			errs = append(errs, errors.New("dbhCm must be between 1 and 200 cm"))
		}
	case CropCoconut:
		if p.TreeHeightM == nil {
			errs = append(errs, errors.New("treeHeightM is required for coconut farms"))
		} else if *p.TreeHeightM < 1 || *p.TreeHeightM > 40 {
			errs = append(errs, errors.New("treeHeightM must be between 1 and 40 meters"))
		}
	default:
		errs = append(errs, &UnsupportedCropTypeError{CropType: p.CropType})
	}

	if p.FarmSizeHectares <= 0 {
		errs = append(errs, errors.New("farmSizeHectares must be greater than 0"))
	}
	if p.TreeAge < 1 || p.TreeAge > 100 {
		errs = append(errs, errors.New("treeAge must be between 1 and 100 years"))
	}
	if p.PlantationDensity <= 0 {
		errs = append(errs, errors.New("plantationDensity must be greater than 0"))
	}
	if p.FertilizerUsage < 0 {
		errs = append(errs, errors.New("fertilizerUsage must be >= 0"))
	}
	if p.IrrigationActivity < 0 {
		errs = append(errs, errors.New("irrigationActivity must be >= 0"))
	}

	return errors.Join(errs...)
}

// UnsupportedCropTypeError is returned when a profile carries a crop type
// the calculation models have no coefficients for. It is fatal for that
// farm's run only, never for the batch.
type UnsupportedCropTypeError struct {
	CropType CropType
}

func (e *UnsupportedCropTypeError) Error() string {
	return fmt.Sprintf("unsupported crop type: %q", e.CropType)
}
