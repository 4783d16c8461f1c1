package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PranavNaik-adage/CarbonReady/internal/carbon"
	"github.com/PranavNaik-adage/CarbonReady/internal/cri"
	"github.com/PranavNaik-adage/CarbonReady/internal/soc"
)

type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) ListFarmIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProfileStore) GetLatest(ctx context.Context, farmID string) (*carbon.FarmProfile, error) {
	args := m.Called(ctx, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*carbon.FarmProfile), args.Error(1)
}

type MockHistoryStore struct {
	mock.Mock
}

func (m *MockHistoryStore) GetLatestBiomass(ctx context.Context, farmID string) (*float64, error) {
	args := m.Called(ctx, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*float64), args.Error(1)
}

type MockResultStore struct {
	mock.Mock

	saved []*CalculationResult
}

func (m *MockResultStore) Put(ctx context.Context, result *CalculationResult) error {
	args := m.Called(ctx, result)
	if args.Error(0) == nil {
		m.saved = append(m.saved, result)
	}
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Alert(ctx context.Context, channel, subject, message string) error {
	args := m.Called(ctx, channel, subject, message)
	return args.Error(0)
}

type emptyGrowthCurveStore struct{}

func (emptyGrowthCurveStore) Get(_ context.Context, _ carbon.CropType, _ string) (*carbon.GrowthCurveParameters, error) {
	return nil, carbon.ErrGrowthCurveNotFound
}

type emptyWeightStore struct{}

func (emptyWeightStore) GetLatest(_ context.Context) (*cri.WeightRecord, error) {
	return nil, cri.ErrWeightsNotFound
}

func (emptyWeightStore) Put(_ context.Context, _ *cri.WeightRecord) error {
	return nil
}

func f64(v float64) *float64 { return &v }

func cashewProfile(farmID string) *carbon.FarmProfile {
	return &carbon.FarmProfile{
		FarmID:             farmID,
		CropType:           carbon.CropCashew,
		FarmSizeHectares:   2,
		TreeAge:            10,
		PlantationDensity:  200,
		DBHCm:              f64(20),
		FertilizerUsage:    100,
		IrrigationActivity: 10000,
		Version:            1,
	}
}

func newTestOrchestrator(profiles *MockProfileStore, history *MockHistoryStore, results *MockResultStore, notifier *MockNotifier) *Orchestrator {
	logger := zap.NewNop()
	converter := carbon.NewCO2eConverter()
	growth := carbon.NewGrowthCurveModel(emptyGrowthCurveStore{}, logger)
	weights := cri.NewWeightManager(emptyWeightStore{}, logger)

	return NewOrchestrator(
		profiles,
		history,
		results,
		soc.NewProvider(),
		notifier,
		carbon.NewBiomassEstimator(),
		converter,
		carbon.NewSequestrationEstimator(growth, converter, logger),
		carbon.NewEmissionsEstimator(carbon.DefaultEmissionFactors()),
		cri.NewScorer(weights, logger),
		OrchestratorConfig{MaxConcurrent: 4, AlertChannel: "alerts"},
		logger,
	)
}

func TestProcessFarmPersistsResult(t *testing.T) {
	profiles := new(MockProfileStore)
	history := new(MockHistoryStore)
	results := new(MockResultStore)
	notifier := new(MockNotifier)

	profiles.On("GetLatest", mock.Anything, "farm-001").Return(cashewProfile("farm-001"), nil)
	history.On("GetLatestBiomass", mock.Anything, "farm-001").Return(f64(80000), nil)
	results.On("Put", mock.Anything, mock.AnythingOfType("*engine.CalculationResult")).Return(nil)

	o := newTestOrchestrator(profiles, history, results, notifier)

	result, err := o.ProcessFarm(context.Background(), "farm-001")
	require.NoError(t, err)
	require.Len(t, results.saved, 1)
	assert.Equal(t, result, results.saved[0])

	assert.NotEmpty(t, result.CalculationID)
	assert.Equal(t, "farm-001", result.FarmID)
	assert.InDelta(t, 84320, result.BiomassKg, 100)
	assert.InDelta(t, result.BiomassKg*0.5, result.CarbonStockKg, 0.01)
	assert.InDelta(t, result.BiomassKg*0.5*3.667, result.CO2EquivalentStockKg, 0.5)

	// Prior biomass exists, so the historical method applies.
	assert.Equal(t, carbon.MethodHistorical, result.AnnualSequestration.Method)
	assert.Greater(t, result.AnnualSequestration.AmountKg, 0.0)
	assert.Equal(t, carbon.UnitKgCO2ePerYear, result.AnnualSequestration.Unit)

	assert.InDelta(t, 440.82, result.Emissions.TotalKg, 0.01)
	assert.Equal(t, carbon.ClassificationNetSink, result.NetCarbonPosition.Classification)

	assert.Equal(t, cri.SOCInsufficientData, result.SOCTrend.Status)
	assert.Equal(t, cri.DefaultWeights(), result.CRI.WeightsUsed)
	assert.GreaterOrEqual(t, result.CRI.Score, 0.0)
	assert.LessOrEqual(t, result.CRI.Score, 100.0)

	assert.Equal(t, DefaultModelVersions(), result.ModelVersions)
	assert.Equal(t, result.CalculatedAt.AddDate(RetentionYears, 0, 0), result.RetentionUntil)
}

func TestProcessFarmGrowthCurveWhenNoHistory(t *testing.T) {
	profiles := new(MockProfileStore)
	history := new(MockHistoryStore)
	results := new(MockResultStore)
	notifier := new(MockNotifier)

	profiles.On("GetLatest", mock.Anything, "farm-001").Return(cashewProfile("farm-001"), nil)
	history.On("GetLatestBiomass", mock.Anything, "farm-001").Return(nil, nil)
	results.On("Put", mock.Anything, mock.Anything).Return(nil)

	o := newTestOrchestrator(profiles, history, results, notifier)

	result, err := o.ProcessFarm(context.Background(), "farm-001")
	require.NoError(t, err)
	assert.Equal(t, carbon.MethodGrowthCurve, result.AnnualSequestration.Method)
}

func TestProcessFarmProfileNotFound(t *testing.T) {
	profiles := new(MockProfileStore)
	profiles.On("GetLatest", mock.Anything, "ghost").Return(nil, ErrProfileNotFound)

	o := newTestOrchestrator(profiles, new(MockHistoryStore), new(MockResultStore), new(MockNotifier))

	_, err := o.ProcessFarm(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrProfileNotFound)
	assert.Equal(t, "ProfileNotFound", classifyError(err))
}

func TestProcessFarmResultStoreFailure(t *testing.T) {
	profiles := new(MockProfileStore)
	history := new(MockHistoryStore)
	results := new(MockResultStore)

	profiles.On("GetLatest", mock.Anything, "farm-001").Return(cashewProfile("farm-001"), nil)
	history.On("GetLatestBiomass", mock.Anything, "farm-001").Return(nil, nil)
	results.On("Put", mock.Anything, mock.Anything).Return(errors.New("dynamodb write throttled"))

	o := newTestOrchestrator(profiles, history, results, new(MockNotifier))

	_, err := o.ProcessFarm(context.Background(), "farm-001")
	require.Error(t, err)
	assert.Equal(t, "ProcessingFailure", classifyError(err))
}

func TestRunBatchIsolatesFarmFailures(t *testing.T) {
	profiles := new(MockProfileStore)
	history := new(MockHistoryStore)
	results := new(MockResultStore)
	notifier := new(MockNotifier)

	badProfile := cashewProfile("farm-bad")
	badProfile.CropType = "mango"

	profiles.On("ListFarmIDs", mock.Anything).Return([]string{"farm-001", "farm-bad"}, nil)
	profiles.On("GetLatest", mock.Anything, "farm-001").Return(cashewProfile("farm-001"), nil)
	profiles.On("GetLatest", mock.Anything, "farm-bad").Return(badProfile, nil)
	history.On("GetLatestBiomass", mock.Anything, "farm-001").Return(nil, nil)
	results.On("Put", mock.Anything, mock.Anything).Return(nil)
	notifier.On("Alert", mock.Anything, "alerts", mock.Anything, mock.MatchedBy(func(message string) bool {
		return strings.Contains(message, "farm-bad") && strings.Contains(message, "UnsupportedCropType")
	})).Return(nil)

	o := newTestOrchestrator(profiles, history, results, notifier)

	summary, err := o.RunBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Succeeded)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "farm-bad", summary.Errors[0].FarmID)
	assert.Equal(t, "UnsupportedCropType", summary.Errors[0].ErrorType)

	require.Len(t, results.saved, 1)
	assert.Equal(t, "farm-001", results.saved[0].FarmID)
	notifier.AssertNumberOfCalls(t, "Alert", 1)
}

func TestRunBatchNoAlertWhenClean(t *testing.T) {
	profiles := new(MockProfileStore)
	history := new(MockHistoryStore)
	results := new(MockResultStore)
	notifier := new(MockNotifier)

	profiles.On("ListFarmIDs", mock.Anything).Return([]string{"farm-001"}, nil)
	profiles.On("GetLatest", mock.Anything, "farm-001").Return(cashewProfile("farm-001"), nil)
	history.On("GetLatestBiomass", mock.Anything, "farm-001").Return(nil, nil)
	results.On("Put", mock.Anything, mock.Anything).Return(nil)

	o := newTestOrchestrator(profiles, history, results, notifier)

	summary, err := o.RunBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Empty(t, summary.Errors)
	notifier.AssertNotCalled(t, "Alert")
}

func TestRunBatchStopsDispatchOnCancel(t *testing.T) {
	profiles := new(MockProfileStore)
	notifier := new(MockNotifier)

	profiles.On("ListFarmIDs", mock.Anything).Return([]string{"farm-001", "farm-002"}, nil)

	o := newTestOrchestrator(profiles, new(MockHistoryStore), new(MockResultStore), notifier)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := o.RunBatch(ctx)
	require.NoError(t, err)

	// Skipped farms are neither processed nor failures, so no alert fires.
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Empty(t, summary.Errors)
	profiles.AssertNotCalled(t, "GetLatest")
	notifier.AssertNotCalled(t, "Alert")
}

func TestRunBatchListFailure(t *testing.T) {
	profiles := new(MockProfileStore)
	profiles.On("ListFarmIDs", mock.Anything).Return(nil, errors.New("dynamodb scan failed"))

	o := newTestOrchestrator(profiles, new(MockHistoryStore), new(MockResultStore), new(MockNotifier))

	summary, err := o.RunBatch(context.Background())
	require.Error(t, err)
	assert.Nil(t, summary)
}

func TestClassifyError(t *testing.T) {
	cropErr := &carbon.UnsupportedCropTypeError{CropType: "mango"}
	assert.Equal(t, "UnsupportedCropType", classifyError(cropErr))

	wrapped := errors.Join(errors.New("farm farm-001"), ErrProfileNotFound)
	assert.Equal(t, "ProfileNotFound", classifyError(wrapped))

	assert.Equal(t, "ProcessingFailure", classifyError(errors.New("boom")))
}
