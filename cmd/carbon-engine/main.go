// carbon-engine runs one carbon calculation batch over every registered
// farm and exits. An external scheduler invokes it once per run.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/PranavNaik-adage/CarbonReady/internal/carbon"
	"github.com/PranavNaik-adage/CarbonReady/internal/config"
	"github.com/PranavNaik-adage/CarbonReady/internal/cri"
	"github.com/PranavNaik-adage/CarbonReady/internal/engine"
	"github.com/PranavNaik-adage/CarbonReady/internal/notify"
	"github.com/PranavNaik-adage/CarbonReady/internal/soc"
	"github.com/PranavNaik-adage/CarbonReady/internal/storage/dynamo"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Cancel the batch on SIGINT/SIGTERM; in-flight farms finish, the
	// rest are skipped.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		cancel()
	}()

	client, err := dynamo.NewClient(ctx, cfg.AWS.Region)
	if err != nil {
		logger.Fatal("Failed to create DynamoDB client", zap.Error(err))
	}

	profileStore := dynamo.NewFarmProfileStore(client, cfg.Tables.FarmMetadata)
	calculationStore := dynamo.NewCalculationStore(client, cfg.Tables.CarbonCalculations)
	growthCurveStore := dynamo.NewGrowthCurveStore(client, cfg.Tables.GrowthCurves)
	weightStore := dynamo.NewWeightStore(client, cfg.Tables.CRIWeights)

	notifier, err := notify.NewSNSNotifier(ctx, cfg.AWS.Region, map[string]string{
		cfg.Engine.AlertChannel: cfg.AWS.AlertsTopicARN,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create SNS notifier", zap.Error(err))
	}

	converter := carbon.NewCO2eConverter()
	growthModel := carbon.NewGrowthCurveModel(growthCurveStore, logger)
	weightManager := cri.NewWeightManager(weightStore, logger)

	orchestrator := engine.NewOrchestrator(
		profileStore,
		calculationStore,
		calculationStore,
		soc.NewProvider(),
		notifier,
		carbon.NewBiomassEstimator(),
		converter,
		carbon.NewSequestrationEstimator(growthModel, converter, logger),
		carbon.NewEmissionsEstimator(carbon.DefaultEmissionFactors()),
		cri.NewScorer(weightManager, logger),
		engine.OrchestratorConfig{
			MaxConcurrent: cfg.Engine.MaxConcurrent,
			AlertChannel:  cfg.Engine.AlertChannel,
			ModelVersions: engine.DefaultModelVersions(),
		},
		logger,
	)

	summary, err := orchestrator.RunBatch(ctx)
	if err != nil {
		logger.Fatal("Batch run failed", zap.Error(err))
	}

	if len(summary.Errors) > 0 {
		logger.Warn("Batch finished with farm failures",
			zap.Int("failed", len(summary.Errors)),
			zap.Int("succeeded", summary.Succeeded))
		os.Exit(1)
	}

	logger.Info("Batch finished",
		zap.Int("processed", summary.Processed),
		zap.Duration("duration", summary.Duration))
}
