package carbon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateNetPosition(t *testing.T) {
	sink := CalculateNetPosition(1000, 400)
	assert.Equal(t, 600.0, sink.ValueKg)
	assert.Equal(t, ClassificationNetSink, sink.Classification)

	source := CalculateNetPosition(400, 1000)
	assert.Equal(t, -600.0, source.ValueKg)
	assert.Equal(t, ClassificationNetSource, source.Classification)
}

func TestCalculateNetPositionZeroIsSink(t *testing.T) {
	neutral := CalculateNetPosition(500, 500)
	assert.Equal(t, 0.0, neutral.ValueKg)
	assert.Equal(t, ClassificationNetSink, neutral.Classification)
}

func TestCalculateNetPositionRounding(t *testing.T) {
	p := CalculateNetPosition(100.456, 50.123)
	assert.Equal(t, 50.33, p.ValueKg)
}
