package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"horror-tracker/core/reconcile"
	"horror-tracker/feature/movies/models"
	"horror-tracker/feature/pipeline"
	"horror-tracker/feature/pipeline/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func plan(inserts, deletes int) *reconcile.Plan[int64] {
	return &reconcile.Plan[int64]{Summary: reconcile.Summary{Inserts: inserts, Deletes: deletes}}
}

func TestReconcileTheaters_ContinuesPastFailures(t *testing.T) {
	store := new(mocks.Store)
	ctx := context.Background()

	store.On("TheaterIDs", mock.Anything).Return(map[string]int64{"CGV": 1, "롯데시네마": 3}, nil).Once()
	store.On("ReconcileTheater", mock.Anything, int64(1), []string{"B"}).Return(plan(1, 1), nil)
	store.On("ReconcileTheater", mock.Anything, int64(3), []string{"C"}).Return(nil, errors.New("deadlock"))

	engine := pipeline.NewEngine(store, reconcile.NewCache(), zap.NewNop())
	out := engine.ReconcileTheaters(ctx, map[string][]string{
		"CGV":      {"B"},
		"롯데시네마":    {"C"},
		"Imaginary": {"D"},
	})

	require.Len(t, out, 3)
	assert.Equal(t, "CGV", out[0].Theater)
	assert.NoError(t, out[0].Err)
	assert.Equal(t, 1, out[0].Added)
	assert.Equal(t, 1, out[0].Ended)

	var unknown *pipeline.UnknownTheaterError
	assert.Equal(t, "Imaginary", out[1].Theater)
	require.ErrorAs(t, out[1].Err, &unknown)
	assert.Equal(t, "Imaginary", unknown.Name)

	assert.EqualError(t, out[2].Err, "deadlock")

	// theater ids are looked up once per run
	store.AssertNumberOfCalls(t, "TheaterIDs", 1)
	store.AssertExpectations(t)
}

func TestReconcileTheaters_FreshCachePerRun(t *testing.T) {
	store := new(mocks.Store)
	ctx := context.Background()

	store.On("TheaterIDs", mock.Anything).Return(map[string]int64{}, nil).Once()
	store.On("TheaterIDs", mock.Anything).Return(map[string]int64{"CGV": 1}, nil).Once()
	store.On("ReconcileTheater", mock.Anything, int64(1), []string{"A"}).Return(plan(1, 0), nil)

	first := pipeline.NewEngine(store, reconcile.NewCache(), zap.NewNop()).
		ReconcileTheaters(ctx, map[string][]string{"CGV": {"A"}})
	second := pipeline.NewEngine(store, reconcile.NewCache(), zap.NewNop()).
		ReconcileTheaters(ctx, map[string][]string{"CGV": {"A"}})

	assert.Error(t, first[0].Err)
	assert.NoError(t, second[0].Err)
	store.AssertExpectations(t)
}

func TestReconcileExpiring(t *testing.T) {
	store := new(mocks.Store)
	ctx := context.Background()
	day := time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC)

	store.On("ReferenceMovies", mock.Anything).Return([]models.ReferenceMovie{
		{ExternalID: 100, Title: "The Ring"},
		{ExternalID: 200, Title: "Hereditary"},
		{ExternalID: 300, Title: "It Follows"},
	}, nil)
	store.On("ExpiringIDs", mock.Anything).Return([]int64{200}, nil)
	store.On("UpsertExpiring", mock.Anything, []models.ExpiringMovie{
		{ExternalID: 100, Title: "The Ring", ExpiredDate: day},
	}).Return(1, nil)

	engine := pipeline.NewEngine(store, reconcile.NewCache(), zap.NewNop())
	out, err := engine.ReconcileExpiring(ctx, []models.ExpiringCandidate{
		{Title: "ring", ExpiredDate: day},
		{Title: "HEREDITARY", ExpiredDate: day},
		{Title: "Smile", ExpiredDate: day},
	})

	require.NoError(t, err)
	assert.Equal(t, pipeline.ExpiringOutcome{Candidates: 3, Matched: 2, Written: 1}, out)
	store.AssertExpectations(t)
}

func TestReconcileExpiring_ReferenceFailure(t *testing.T) {
	store := new(mocks.Store)
	store.On("ReferenceMovies", mock.Anything).Return(nil, errors.New("timeout"))

	engine := pipeline.NewEngine(store, reconcile.NewCache(), zap.NewNop())
	_, err := engine.ReconcileExpiring(context.Background(), nil)

	assert.EqualError(t, err, "timeout")
	store.AssertNotCalled(t, "UpsertExpiring", mock.Anything, mock.Anything)
}

func TestMatchExpiring(t *testing.T) {
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	refs := []models.ReferenceMovie{
		{ExternalID: 1, Title: "Saw"},
		{ExternalID: 2, Title: "Saw II"},
	}

	got := pipeline.MatchExpiring([]models.ExpiringCandidate{
		{Title: "saw", ExpiredDate: day},
		{Title: "Saw", ExpiredDate: day},
		{Title: " ", ExpiredDate: day},
	}, refs)

	assert.Equal(t, []models.ExpiringMovie{{ExternalID: 1, Title: "Saw", ExpiredDate: day}}, got)
}
