package engine

import (
	"time"

	"github.com/PranavNaik-adage/CarbonReady/internal/carbon"
	"github.com/PranavNaik-adage/CarbonReady/internal/cri"
)

// RetentionYears is how long calculation results are kept after creation.
const RetentionYears = 10

// AnnualSequestration is the persisted sequestration block of a
// calculation result.
type AnnualSequestration struct {
	AmountKg float64 `json:"amountKg" dynamodbav:"amountKg"`
	Method   string  `json:"method" dynamodbav:"method"`
	Unit     string  `json:"unit" dynamodbav:"unit"`
}

// SOCTrendStatus is the persisted SOC block of a calculation result. Only
// the status survives persistence; the analyzer's raw score does not feed
// any downstream consumer.
type SOCTrendStatus struct {
	Status cri.SOCStatus `json:"status" dynamodbav:"status"`
}

// CalculationResult is the append-only, persisted output of one engine run
// for one farm. Field names and units are consumed by the dashboard and
// must stay stable.
type CalculationResult struct {
	CalculationID        string                   `json:"calculationId" dynamodbav:"calculationId"`
	FarmID               string                   `json:"farmId" dynamodbav:"farmId"`
	CalculatedAt         time.Time                `json:"calculatedAt" dynamodbav:"calculatedAt"`
	BiomassKg            float64                  `json:"biomassKg" dynamodbav:"biomassKg"`
	CarbonStockKg        float64                  `json:"carbonStockKg" dynamodbav:"carbonStockKg"`
	CO2EquivalentStockKg float64                  `json:"co2EquivalentStockKg" dynamodbav:"co2EquivalentStockKg"`
	AnnualSequestration  AnnualSequestration      `json:"annualSequestration" dynamodbav:"annualSequestration"`
	Emissions            carbon.EmissionsEstimate `json:"emissions" dynamodbav:"emissions"`
	NetCarbonPosition    carbon.NetPosition       `json:"netCarbonPosition" dynamodbav:"netCarbonPosition"`
	SOCTrend             SOCTrendStatus           `json:"socTrend" dynamodbav:"socTrend"`
	CRI                  cri.Score                `json:"cri" dynamodbav:"cri"`
	ModelVersions        map[string]string        `json:"modelVersions" dynamodbav:"modelVersions"`
	RetentionUntil       time.Time                `json:"retentionUntil" dynamodbav:"retentionUntil"`
}

// DefaultModelVersions tags the sub-models that produced a result, for
// provenance on the persisted record.
func DefaultModelVersions() map[string]string {
	return map[string]string{
		"biomass":     "allometric-goa-v1",
		"growthCurve": "chapman-richards-v1",
		"emissions":   "ipcc-tier1-v1",
		"socTrend":    "stub-v0",
		"cri":         "cri-v1",
	}
}

// FarmError captures one farm's processing failure without aborting the
// batch.
type FarmError struct {
	FarmID    string `json:"farmId"`
	ErrorType string `json:"errorType"`
	Message   string `json:"message"`
}

// BatchSummary reports the outcome of one engine run.
type BatchSummary struct {
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Processed int           `json:"processed"`
	Succeeded int           `json:"succeeded"`
	Errors    []FarmError   `json:"errors,omitempty"`
}
