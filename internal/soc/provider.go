// Package soc stubs the soil-organic-carbon trend analyzer. The real
// analyzer needs a multi-season sensor history that the platform is still
// accumulating; until it ships, every farm reports InsufficientData so the
// CRI's SOC component scores neutral.
package soc

import (
	"context"

	"github.com/PranavNaik-adage/CarbonReady/internal/carbon"
	"github.com/PranavNaik-adage/CarbonReady/internal/cri"
)

// Provider is the stub SOC trend analyzer.
type Provider struct{}

// NewProvider creates the stub provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Analyze returns the SOC trend for a farm. The stub always reports
// InsufficientData with a neutral score.
func (p *Provider) Analyze(ctx context.Context, farmID string, profile *carbon.FarmProfile) (*cri.SOCTrend, error) {
	return &cri.SOCTrend{
		Status:       cri.SOCInsufficientData,
		Score:        50,
		DataSpanDays: 0,
	}, nil
}
