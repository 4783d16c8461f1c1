package carbon

// Net carbon position classifications.
const (
	ClassificationNetSink   = "Net Carbon Sink"
	ClassificationNetSource = "Net Carbon Source"
)

// NetPosition is a farm's signed annual carbon balance in kg CO2e.
type NetPosition struct {
	ValueKg        float64 `json:"valueKg"`
	Classification string  `json:"classification"`
}

// CalculateNetPosition returns sequestration minus emissions, rounded to
// 2 decimals. An exactly zero balance classifies as a sink: zero means the
// farm is not a source, and the dashboard convention treats it as a
// neutral sink.
func CalculateNetPosition(sequestrationCO2e, emissionsCO2e float64) NetPosition {
	net := round2(sequestrationCO2e - emissionsCO2e)

	classification := ClassificationNetSink
	if net < 0 {
		classification = ClassificationNetSource
	}

	return NetPosition{ValueKg: net, Classification: classification}
}
