package mocks

import (
	"context"

	"horror-tracker/core/reconcile"
	"horror-tracker/feature/movies/models"
	"horror-tracker/feature/store"

	"github.com/stretchr/testify/mock"
)

// Store is a mock implementation of pipeline.Store
type Store struct {
	mock.Mock
}

func (m *Store) UpsertMovies(ctx context.Context, records []models.MovieRecord) ([]models.PersistedMovie, error) {
	args := m.Called(ctx, records)
	out, _ := args.Get(0).([]models.PersistedMovie)
	return out, args.Error(1)
}

func (m *Store) TheaterIDs(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).(map[string]int64)
	return out, args.Error(1)
}

func (m *Store) ReconcileTheater(ctx context.Context, theaterID int64, titles []string) (*reconcile.Plan[int64], error) {
	args := m.Called(ctx, theaterID, titles)
	out, _ := args.Get(0).(*reconcile.Plan[int64])
	return out, args.Error(1)
}

func (m *Store) SyncProviders(ctx context.Context, observed map[int][]models.MovieRecord) (store.ProviderDelta, error) {
	args := m.Called(ctx, observed)
	out, _ := args.Get(0).(store.ProviderDelta)
	return out, args.Error(1)
}

func (m *Store) ReferenceMovies(ctx context.Context) ([]models.ReferenceMovie, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.ReferenceMovie)
	return out, args.Error(1)
}

func (m *Store) ExpiringIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]int64)
	return out, args.Error(1)
}

func (m *Store) UpsertExpiring(ctx context.Context, movies []models.ExpiringMovie) (int, error) {
	args := m.Called(ctx, movies)
	return args.Int(0), args.Error(1)
}
