package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PranavNaik-adage/CarbonReady/internal/carbon"
	"github.com/PranavNaik-adage/CarbonReady/internal/cri"
)

// OrchestratorConfig bounds one batch run.
type OrchestratorConfig struct {
	MaxConcurrent int
	AlertChannel  string
	ModelVersions map[string]string
}

// DefaultOrchestratorConfig returns the standard batch configuration.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		MaxConcurrent: 8,
		AlertChannel:  "alerts",
		ModelVersions: DefaultModelVersions(),
	}
}

// Orchestrator sequences the calculation pipeline per farm and isolates
// per-farm failures: one broken profile never stops the rest of the batch.
type Orchestrator struct {
	profiles FarmProfileStore
	history  CalculationHistoryStore
	results  CalculationResultStore
	soc      SOCTrendProvider
	notifier Notifier

	biomass       *carbon.BiomassEstimator
	converter     *carbon.CO2eConverter
	sequestration *carbon.SequestrationEstimator
	emissions     *carbon.EmissionsEstimator
	scorer        *cri.Scorer

	config OrchestratorConfig
	logger *zap.Logger
}

// NewOrchestrator wires the calculation pipeline to its collaborators.
func NewOrchestrator(
	profiles FarmProfileStore,
	history CalculationHistoryStore,
	results CalculationResultStore,
	socProvider SOCTrendProvider,
	notifier Notifier,
	biomass *carbon.BiomassEstimator,
	converter *carbon.CO2eConverter,
	sequestration *carbon.SequestrationEstimator,
	emissions *carbon.EmissionsEstimator,
	scorer *cri.Scorer,
	config OrchestratorConfig,
	logger *zap.Logger,
) *Orchestrator {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = DefaultOrchestratorConfig().MaxConcurrent
	}
	if config.ModelVersions == nil {
		config.ModelVersions = DefaultModelVersions()
	}
	return &Orchestrator{
		profiles:      profiles,
		history:       history,
		results:       results,
		soc:           socProvider,
		notifier:      notifier,
		biomass:       biomass,
		converter:     converter,
		sequestration: sequestration,
		emissions:     emissions,
		scorer:        scorer,
		config:        config,
		logger:        logger,
	}
}

// RunBatch processes every known farm. The only batch-level failure is
// being unable to list the farms; everything after that is captured
// per-farm. If any farm failed, one aggregated alert is raised at the end.
func (o *Orchestrator) RunBatch(ctx context.Context) (*BatchSummary, error) {
	startedAt := time.Now().UTC()

	farmIDs, err := o.profiles.ListFarmIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list farms: %w", err)
	}

	o.logger.Info("starting carbon calculation batch",
		zap.Int("farms", len(farmIDs)),
		zap.Int("max_concurrent", o.config.MaxConcurrent))

	var (
		mu        sync.Mutex
		succeeded int
		farmErrs  []FarmError
	)

	sem := make(chan struct{}, o.config.MaxConcurrent)
	var wg sync.WaitGroup

	dispatched := 0
	for _, farmID := range farmIDs {
		// Cancellation stops dispatch; in-flight farms finish, skipped
		// farms are not counted as failures.
		if ctx.Err() != nil {
			o.logger.Warn("batch cancelled, skipping remaining farms",
				zap.Int("skipped", len(farmIDs)-dispatched))
			break
		}

		dispatched++
		sem <- struct{}{}
		wg.Add(1)

		go func(farmID string) {
			defer wg.Done()
			defer func() { <-sem }()

			if _, err := o.ProcessFarm(ctx, farmID); err != nil {
				o.logger.Error("farm calculation failed",
					zap.String("farm_id", farmID),
					zap.Error(err))
				mu.Lock()
				farmErrs = append(farmErrs, FarmError{
					FarmID:    farmID,
					ErrorType: classifyError(err),
					Message:   err.Error(),
				})
				mu.Unlock()
				return
			}

			mu.Lock()
			succeeded++
			mu.Unlock()
		}(farmID)
	}

	wg.Wait()

	summary := &BatchSummary{
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Processed: dispatched,
		Succeeded: succeeded,
		Errors:    farmErrs,
	}

	if len(farmErrs) > 0 {
		o.raiseBatchAlert(ctx, summary)
	}

	o.logger.Info("carbon calculation batch finished",
		zap.Int("processed", summary.Processed),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", len(summary.Errors)),
		zap.Duration("duration", summary.Duration))

	return summary, nil
}

// ProcessFarm runs the full calculation pipeline for one farm and
// persists the result.
func (o *Orchestrator) ProcessFarm(ctx context.Context, farmID string) (*CalculationResult, error) {
	profile, err := o.profiles.GetLatest(ctx, farmID)
	if err != nil {
		return nil, fmt.Errorf("farm %s: %w", farmID, err)
	}

	biomassKg, err := o.biomass.FarmBiomass(profile)
	if err != nil {
		return nil, err
	}

	priorBiomass, err := o.history.GetLatestBiomass(ctx, farmID)
	if err != nil {
		return nil, fmt.Errorf("farm %s: failed to read calculation history: %w", farmID, err)
	}

	sequestration, err := o.sequestration.Estimate(ctx, profile, biomassKg, priorBiomass)
	if err != nil {
		return nil, err
	}

	socTrend, err := o.soc.Analyze(ctx, farmID, profile)
	if err != nil {
		return nil, fmt.Errorf("farm %s: SOC trend analysis failed: %w", farmID, err)
	}

	emissions := o.emissions.Estimate(profile.FertilizerUsage, profile.IrrigationActivity, profile.FarmSizeHectares)
	netPosition := carbon.CalculateNetPosition(sequestration.CO2eSequestrationKg, emissions.TotalKg)

	score := o.scorer.Score(ctx, cri.ScoreInput{
		NetPositionKg:      netPosition.ValueKg,
		AreaHectares:       profile.FarmSizeHectares,
		SOCStatus:          socTrend.Status,
		FertilizerUsage:    profile.FertilizerUsage,
		IrrigationActivity: profile.IrrigationActivity,
	})

	calculatedAt := time.Now().UTC()
	result := &CalculationResult{
		CalculationID:        uuid.NewString(),
		FarmID:               farmID,
		CalculatedAt:         calculatedAt,
		BiomassKg:            round2(biomassKg),
		CarbonStockKg:        round2(o.converter.CarbonStockKg(biomassKg)),
		CO2EquivalentStockKg: o.converter.ToCO2e(biomassKg),
		AnnualSequestration: AnnualSequestration{
			AmountKg: sequestration.CO2eSequestrationKg,
			Method:   sequestration.Method,
			Unit:     sequestration.Unit,
		},
		Emissions:         emissions,
		NetCarbonPosition: netPosition,
		SOCTrend:          SOCTrendStatus{Status: socTrend.Status},
		CRI:               score,
		ModelVersions:     o.config.ModelVersions,
		RetentionUntil:    calculatedAt.AddDate(RetentionYears, 0, 0),
	}

	if err := o.results.Put(ctx, result); err != nil {
		return nil, fmt.Errorf("farm %s: failed to persist calculation result: %w", farmID, err)
	}

	o.logger.Debug("farm calculation complete",
		zap.String("farm_id", farmID),
		zap.Float64("net_position_kg", netPosition.ValueKg),
		zap.Float64("cri_score", score.Score),
		zap.String("sequestration_method", sequestration.Method))

	return result, nil
}

func (o *Orchestrator) raiseBatchAlert(ctx context.Context, summary *BatchSummary) {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d farms failed during the carbon calculation batch started at %s.\n\n",
		len(summary.Errors), summary.Processed, summary.StartedAt.Format(time.RFC3339))
	for _, farmErr := range summary.Errors {
		fmt.Fprintf(&b, "- %s [%s]: %s\n", farmErr.FarmID, farmErr.ErrorType, farmErr.Message)
	}

	subject := fmt.Sprintf("Carbon calculation batch: %d farm failure(s)", len(summary.Errors))
	if err := o.notifier.Alert(ctx, o.config.AlertChannel, subject, b.String()); err != nil {
		o.logger.Error("failed to deliver batch failure alert", zap.Error(err))
	}
}

func classifyError(err error) string {
	var unsupportedCrop *carbon.UnsupportedCropTypeError
	switch {
	case errors.As(err, &unsupportedCrop):
		return "UnsupportedCropType"
	case errors.Is(err, ErrProfileNotFound):
		return "ProfileNotFound"
	default:
		return "ProcessingFailure"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
