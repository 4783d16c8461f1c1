package cri

// SOCStatus is the soil-organic-carbon trend status produced by the
// external trend analyzer. The scorer consumes it, it never computes it.
type SOCStatus string

const (
	SOCImproving        SOCStatus = "Improving"
	SOCStable           SOCStatus = "Stable"
	SOCDeclining        SOCStatus = "Declining"
	SOCInsufficientData SOCStatus = "InsufficientData"
)

// SOCTrend is the output contract of the SOC trend analyzer.
type SOCTrend struct {
	Status       SOCStatus `json:"status"`
	Score        float64   `json:"score"`
	DataSpanDays int       `json:"dataSpanDays"`
}
