package cri

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubWeightStore struct {
	record  *WeightRecord
	err     error
	putErr  error
	lastPut *WeightRecord
}

func (s *stubWeightStore) GetLatest(_ context.Context) (*WeightRecord, error) {
	return s.record, s.err
}

func (s *stubWeightStore) Put(_ context.Context, record *WeightRecord) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.lastPut = record
	return nil
}

func TestWeightsValid(t *testing.T) {
	assert.True(t, DefaultWeights().Valid())
	assert.True(t, Weights{NetCarbonPosition: 0.4, SOCTrend: 0.4, ManagementPractices: 0.2}.Valid())

	assert.False(t, Weights{NetCarbonPosition: 0.6, SOCTrend: 0.3, ManagementPractices: 0.2}.Valid())
	assert.False(t, Weights{NetCarbonPosition: -0.1, SOCTrend: 0.9, ManagementPractices: 0.2}.Valid())

	// Deviation inside the tolerance is accepted.
	assert.True(t, Weights{NetCarbonPosition: 0.5005, SOCTrend: 0.3, ManagementPractices: 0.2}.Valid())
}

func TestGetDefaultsWhenStoreEmpty(t *testing.T) {
	m := NewWeightManager(&stubWeightStore{err: ErrWeightsNotFound}, zap.NewNop())

	assert.Equal(t, DefaultWeights(), m.Get(context.Background()))
}

func TestGetDefaultsOnStoreError(t *testing.T) {
	m := NewWeightManager(&stubWeightStore{err: errors.New("dynamodb unavailable")}, zap.NewNop())

	assert.Equal(t, DefaultWeights(), m.Get(context.Background()))
}

func TestGetDefaultsWhenStoredWeightsInvalid(t *testing.T) {
	store := &stubWeightStore{record: &WeightRecord{
		Version: 3,
		Weights: Weights{NetCarbonPosition: 0.7, SOCTrend: 0.3, ManagementPractices: 0.2},
	}}
	m := NewWeightManager(store, zap.NewNop())

	assert.Equal(t, DefaultWeights(), m.Get(context.Background()))
}

func TestGetReturnsStoredWeights(t *testing.T) {
	stored := Weights{NetCarbonPosition: 0.4, SOCTrend: 0.4, ManagementPractices: 0.2}
	m := NewWeightManager(&stubWeightStore{record: &WeightRecord{Version: 2, Weights: stored}}, zap.NewNop())

	assert.Equal(t, stored, m.Get(context.Background()))
}

func TestGetLogsFallbackWhenStoreEmpty(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewWeightManager(&stubWeightStore{err: ErrWeightsNotFound}, zap.New(core))

	assert.Equal(t, DefaultWeights(), m.Get(context.Background()))

	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "default weights")
}

func TestGetLogsFallbackOnStoreError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	m := NewWeightManager(&stubWeightStore{err: errors.New("dynamodb unavailable")}, zap.New(core))

	assert.Equal(t, DefaultWeights(), m.Get(context.Background()))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zap.WarnLevel, logs.All()[0].Level)
}

func TestGetLogsFallbackOnInvalidStoredWeights(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := &stubWeightStore{record: &WeightRecord{
		Version: 2,
		Weights: Weights{NetCarbonPosition: 0.7, SOCTrend: 0.3, ManagementPractices: 0.2},
	}}
	m := NewWeightManager(store, zap.New(core))

	assert.Equal(t, DefaultWeights(), m.Get(context.Background()))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(2), logs.All()[0].ContextMap()["version"])
}

func TestLatestSyntheticDefaultRecord(t *testing.T) {
	m := NewWeightManager(&stubWeightStore{err: ErrWeightsNotFound}, zap.NewNop())

	record := m.Latest(context.Background())
	assert.Equal(t, 0, record.Version)
	assert.Equal(t, "system-default", record.UpdatedBy)
	assert.Equal(t, DefaultWeights(), record.Weights)
}

func TestSetRequiresAdminRole(t *testing.T) {
	store := &stubWeightStore{err: ErrWeightsNotFound}
	m := NewWeightManager(store, zap.NewNop())

	_, err := m.Set(context.Background(), DefaultWeights(), "viewer", "user-1")
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Nil(t, store.lastPut)
}

func TestSetRejectsInvalidWeights(t *testing.T) {
	store := &stubWeightStore{err: ErrWeightsNotFound}
	m := NewWeightManager(store, zap.NewNop())

	_, err := m.Set(context.Background(), Weights{NetCarbonPosition: 0.6, SOCTrend: 0.3, ManagementPractices: 0.2}, RoleAdmin, "admin-1")

	var validationErr *WeightValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.InDelta(t, 1.1, validationErr.Sum, 1e-9)
	assert.Nil(t, store.lastPut)
}

func TestSetStoresFirstVersion(t *testing.T) {
	store := &stubWeightStore{err: ErrWeightsNotFound}
	m := NewWeightManager(store, zap.NewNop())

	weights := Weights{NetCarbonPosition: 0.4, SOCTrend: 0.4, ManagementPractices: 0.2}
	record, err := m.Set(context.Background(), weights, RoleAdmin, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 1, record.Version)
	assert.Equal(t, weights, record.Weights)
	assert.Equal(t, "admin-1", record.UpdatedBy)
	assert.WithinDuration(t, time.Now().UTC(), record.UpdatedAt, time.Minute)
	assert.Equal(t, record, store.lastPut)
}

func TestSetIncrementsVersion(t *testing.T) {
	store := &stubWeightStore{record: &WeightRecord{Version: 3, Weights: DefaultWeights()}}
	m := NewWeightManager(store, zap.NewNop())

	record, err := m.Set(context.Background(), DefaultWeights(), RoleAdmin, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 4, record.Version)
}
