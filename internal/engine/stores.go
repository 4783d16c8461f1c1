package engine

import (
	"context"
	"errors"
	"time"

	"github.com/PranavNaik-adage/CarbonReady/internal/carbon"
	"github.com/PranavNaik-adage/CarbonReady/internal/cri"
)

// ErrProfileNotFound is returned by profile stores when a farm has no
// metadata.
var ErrProfileNotFound = errors.New("farm profile not found")

// ErrNoCalculations is returned by result stores when a farm has no
// calculation history.
var ErrNoCalculations = errors.New("no calculation results for farm")

// FarmProfileStore serves farm metadata. The engine only reads the latest
// version of each profile.
type FarmProfileStore interface {
	ListFarmIDs(ctx context.Context) ([]string, error)
	GetLatest(ctx context.Context, farmID string) (*carbon.FarmProfile, error)
}

// CalculationHistoryStore serves prior calculation data for the
// historical sequestration method. GetLatestBiomass returns nil when the
// farm has no recorded calculation.
type CalculationHistoryStore interface {
	GetLatestBiomass(ctx context.Context, farmID string) (*float64, error)
}

// CalculationResultStore persists engine output. Results are append-only,
// keyed by (farmId, calculatedAt).
type CalculationResultStore interface {
	Put(ctx context.Context, result *CalculationResult) error
}

// CalculationReader serves persisted results to the dashboard.
type CalculationReader interface {
	GetLatest(ctx context.Context, farmID string) (*CalculationResult, error)
	ListSince(ctx context.Context, farmID string, since time.Time) ([]CalculationResult, error)
}

// SOCTrendProvider analyzes the soil-organic-carbon trend for a farm.
type SOCTrendProvider interface {
	Analyze(ctx context.Context, farmID string, profile *carbon.FarmProfile) (*cri.SOCTrend, error)
}

// Notifier delivers operational alerts.
type Notifier interface {
	Alert(ctx context.Context, channel, subject, message string) error
}
