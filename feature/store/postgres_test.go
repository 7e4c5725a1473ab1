package store

import (
	"context"
	"io"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"horror-tracker/core/database"
	"horror-tracker/feature/movies/models"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupPostgresStore starts a throwaway Postgres server and returns a
// migrated store on it.
func setupPostgresStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("embedded postgres skipped in short mode")
	}

	base := t.TempDir()
	port := 41000 + rand.New(rand.NewSource(time.Now().UnixNano())).Intn(2000)
	pg := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		Username("postgres").
		Password("postgres").
		Database("horror_test").
		Port(uint32(port)).
		DataPath(filepath.Join(base, "data")).
		RuntimePath(filepath.Join(base, "runtime")).
		CachePath(filepath.Join(base, "cache")).
		Logger(io.Discard))
	require.NoError(t, pg.Start())
	t.Cleanup(func() { _ = pg.Stop() })

	db, err := database.Connect(database.Config{
		Driver:   database.DriverPostgres,
		Host:     "localhost",
		Port:     port,
		User:     "postgres",
		Password: "postgres",
		Name:     "horror_test",
		SSLMode:  "disable",
		PoolSize: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	s := New(db, zap.NewNop(), Options{})
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestPostgres_Pipeline(t *testing.T) {
	s := setupPostgresStore(t)
	ctx := context.Background()
	release := time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC)

	a := record(1, "A")
	a.ReleaseDate = &release
	batch := []models.MovieRecord{a, record(2, "B")}

	first, err := s.UpsertMovies(ctx, batch)
	require.NoError(t, err)
	second, err := s.UpsertMovies(ctx, batch)
	require.NoError(t, err)
	assert.ElementsMatch(t, first, second)

	var count int64
	require.NoError(t, s.db.Model(&models.Movie{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	ids := externalToID(t, s)
	theaters, err := s.TheaterIDs(ctx)
	require.NoError(t, err)
	mega := theaters[models.TheaterMegabox]
	require.NoError(t, s.db.Create(&models.MovieTheater{MovieID: ids[1], TheatersID: mega}).Error)

	_, err = s.ReconcileTheater(ctx, mega, []string{"B"})
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[2]}, listings(t, s.db, mega))

	_, err = s.SyncProviders(ctx, map[int][]models.MovieRecord{1: {record(1, "A")}, 2: {record(2, "B")}})
	require.NoError(t, err)
	delta, err := s.SyncProviders(ctx, map[int][]models.MovieRecord{1: {record(2, "B")}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), delta.Added)
	assert.Equal(t, int64(1), delta.Removed)

	pairs, err := s.ProviderPairs(ctx, []int{1, 2})
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.ProviderPair{
		{MovieID: ids[2], ProviderID: 1},
		{MovieID: ids[2], ProviderID: 2},
	}, pairs)
}

func TestPostgres_StagingTableDroppedAfterFailure(t *testing.T) {
	s := setupPostgresStore(t)
	ctx := context.Background()

	require.NoError(t, s.db.Exec("ALTER TABLE movie ADD CONSTRAINT title_required CHECK (title <> '')").Error)

	_, err := s.UpsertMovies(ctx, []models.MovieRecord{record(1, "")})
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "23514", pe.Code)

	_, err = s.UpsertMovies(ctx, []models.MovieRecord{record(1, "A")})
	assert.NoError(t, err, "a failed upsert leaves no staging table behind")
}
