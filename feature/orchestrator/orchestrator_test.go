package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"horror-tracker/feature/movies/models"
	"horror-tracker/feature/scraper"
	"horror-tracker/feature/tmdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func theaterID(t *testing.T, db *gorm.DB, name string) int64 {
	t.Helper()
	var th models.Theater
	require.NoError(t, db.Where("name = ?", name).Take(&th).Error)
	return th.ID
}

func movieID(t *testing.T, db *gorm.DB, title string) int64 {
	t.Helper()
	var m models.Movie
	require.NoError(t, db.Where("title = ?", title).Take(&m).Error)
	return m.ID
}

func listed(t *testing.T, db *gorm.DB, theater int64) []int64 {
	t.Helper()
	var ids []int64
	require.NoError(t, db.Model(&models.MovieTheater{}).Where("theaters_id = ?", theater).Order("movie_id").Pluck("movie_id", &ids).Error)
	return ids
}

func TestRunOnce_Success(t *testing.T) {
	s, db := setupStore(t)
	o := New(Config{}, baseDeps(s), zap.NewNop())

	report, err := o.RunOnce(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.False(t, report.Failed())
	require.Len(t, report.Tasks, len(Tasks))
	for i, name := range Tasks {
		assert.Equal(t, name, report.Tasks[i].Name)
		assert.Equal(t, StatusOK, report.Tasks[i].Status, name)
	}
	assert.Equal(t, 2, report.Task(TaskUpcoming).Details["horror"])

	assert.Equal(t, []int64{movieID(t, db, "A")}, listed(t, db, theaterID(t, db, "CGV")))
	assert.Equal(t, []int64{movieID(t, db, "B")}, listed(t, db, theaterID(t, db, "메가박스")))

	var pairs []models.MovieProvider
	require.NoError(t, db.Find(&pairs).Error)
	require.Len(t, pairs, 1)
	assert.Equal(t, movieID(t, db, "C"), pairs[0].MovieID)
	assert.Equal(t, 1, pairs[0].TheProviderID)

	assert.Same(t, report, o.Latest())
}

func TestRunOnce_ChainFailureIsIsolated(t *testing.T) {
	s, db := setupStore(t)
	deps := baseDeps(s)
	deps.Chains[1] = &fakeChain{name: "메가박스", err: errors.New("fetch 메가박스/now_showing failed after 3 attempt(s)")}

	// An existing listing of the failing chain must survive the run.
	_, err := s.UpsertMovies(context.Background(), []models.MovieRecord{{ExternalID: 50, Title: "Old"}})
	require.NoError(t, err)
	mega := theaterID(t, db, "메가박스")
	require.NoError(t, db.Create(&models.MovieTheater{MovieID: movieID(t, db, "Old"), TheatersID: mega}).Error)

	report, err := New(Config{}, deps, zap.NewNop()).RunOnce(context.Background(), RunOptions{})
	require.NoError(t, err)

	listings := report.Task(TaskTheaterListings)
	assert.Equal(t, StatusPartial, listings.Status)
	require.Len(t, listings.Sub, 2)
	assert.Equal(t, StatusOK, listings.Sub[0].Status)
	assert.Equal(t, StatusFailed, listings.Sub[1].Status)
	assert.Contains(t, listings.Sub[1].Error, "after 3 attempt")

	rec := report.Task(TaskTheaterReconcile)
	assert.Equal(t, StatusOK, rec.Status)
	require.Len(t, rec.Sub, 1)
	assert.Equal(t, "CGV", rec.Sub[0].Name)

	assert.Equal(t, []int64{movieID(t, db, "A")}, listed(t, db, theaterID(t, db, "CGV")))
	assert.Equal(t, []int64{movieID(t, db, "Old")}, listed(t, db, mega))
	assert.True(t, report.Failed())
}

type panicChain struct{ name string }

func (p panicChain) Name() string { return p.name }

func (p panicChain) Fetch(context.Context) (scraper.ChainListing, error) {
	panic("selector table missing")
}

func TestRunOnce_ChainPanicIsIsolated(t *testing.T) {
	s, db := setupStore(t)
	deps := baseDeps(s)
	deps.Chains[1] = panicChain{name: "메가박스"}

	report, err := New(Config{}, deps, zap.NewNop()).RunOnce(context.Background(), RunOptions{})
	require.NoError(t, err)

	listings := report.Task(TaskTheaterListings)
	assert.Equal(t, StatusPartial, listings.Status)
	require.Len(t, listings.Sub, 2)
	assert.Equal(t, StatusFailed, listings.Sub[1].Status)
	assert.Contains(t, listings.Sub[1].Error, "selector table missing")

	rec := report.Task(TaskTheaterReconcile)
	require.Len(t, rec.Sub, 1)
	assert.Equal(t, []int64{movieID(t, db, "A")}, listed(t, db, theaterID(t, db, "CGV")))
}

func TestRunOnce_NoChainsSkipsReconcile(t *testing.T) {
	s, _ := setupStore(t)
	deps := baseDeps(s)
	for i := range deps.Chains {
		deps.Chains[i] = &fakeChain{name: deps.Chains[i].Name(), err: errors.New("down")}
	}

	report, err := New(Config{}, deps, zap.NewNop()).RunOnce(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, report.Task(TaskTheaterListings).Status)
	assert.Equal(t, StatusSkipped, report.Task(TaskTheaterReconcile).Status)
	assert.Equal(t, StatusOK, report.Task(TaskUpcoming).Status, "other tasks still complete")
}

func TestRunOnce_ProviderFailureKeepsPairs(t *testing.T) {
	s, db := setupStore(t)
	deps := baseDeps(s)
	deps.Providers = map[int]int{8: 1, 337: 2}
	o := New(Config{}, deps, zap.NewNop())

	deps.Movies.(*fakeMovies).byProvider[337] = []tmdb.Result{horror(4, "D")}
	_, err := o.RunOnce(context.Background(), RunOptions{Tasks: []string{TaskProviderListings}})
	require.NoError(t, err)

	deps.Movies.(*fakeMovies).providerErr = map[int]error{337: errors.New("429")}
	report, err := o.RunOnce(context.Background(), RunOptions{Tasks: []string{TaskProviderListings}})
	require.NoError(t, err)

	assert.Equal(t, StatusPartial, report.Task(TaskProviderListings).Status)
	var count int64
	require.NoError(t, db.Model(&models.MovieProvider{}).Where("the_provider_id = ?", 2).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRunOnce_TaskSelection(t *testing.T) {
	s, _ := setupStore(t)
	report, err := New(Config{}, baseDeps(s), zap.NewNop()).RunOnce(context.Background(), RunOptions{Tasks: []string{TaskUpcoming}})
	require.NoError(t, err)

	assert.Equal(t, StatusOK, report.Task(TaskUpcoming).Status)
	for _, name := range []string{TaskExpiring, TaskTheaterListings, TaskProviderListings, TaskTheaterReconcile} {
		assert.Equal(t, StatusSkipped, report.Task(name).Status, name)
	}
	assert.False(t, report.Failed())
}

func TestRunOnce_TheaterTaskSelection(t *testing.T) {
	t.Run("Listings Alone Do Not Write", func(t *testing.T) {
		s, db := setupStore(t)
		_, err := s.UpsertMovies(context.Background(), []models.MovieRecord{{ExternalID: 1, Title: "A"}})
		require.NoError(t, err)

		report, err := New(Config{}, baseDeps(s), zap.NewNop()).RunOnce(context.Background(), RunOptions{Tasks: []string{TaskTheaterListings}})
		require.NoError(t, err)

		assert.Equal(t, StatusOK, report.Task(TaskTheaterListings).Status)
		assert.Equal(t, StatusSkipped, report.Task(TaskTheaterReconcile).Status)
		assert.Empty(t, listed(t, db, theaterID(t, db, "CGV")))
	})

	t.Run("Reconcile Fetches Its Listings", func(t *testing.T) {
		s, db := setupStore(t)
		_, err := s.UpsertMovies(context.Background(), []models.MovieRecord{{ExternalID: 1, Title: "A"}})
		require.NoError(t, err)

		report, err := New(Config{}, baseDeps(s), zap.NewNop()).RunOnce(context.Background(), RunOptions{Tasks: []string{TaskTheaterReconcile}})
		require.NoError(t, err)

		assert.Equal(t, StatusOK, report.Task(TaskTheaterListings).Status)
		assert.Equal(t, StatusOK, report.Task(TaskTheaterReconcile).Status)
		assert.Equal(t, StatusSkipped, report.Task(TaskUpcoming).Status)
		assert.Equal(t, []int64{movieID(t, db, "A")}, listed(t, db, theaterID(t, db, "CGV")))
	})
}

func TestRunOnce_ConcurrencyCap(t *testing.T) {
	s, _ := setupStore(t)
	g := &gauge{hold: 20 * time.Millisecond}
	deps := baseDeps(s)
	deps.Movies.(*fakeMovies).gauge = g
	deps.Expiring.(*fakeExpiring).gauge = g
	for _, c := range deps.Chains {
		c.(*fakeChain).gauge = g
	}

	_, err := New(Config{MaxConcurrentTasks: 2, MaxConcurrentChains: 1}, deps, zap.NewNop()).
		RunOnce(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.LessOrEqual(t, g.peak.Load(), int32(2))
	assert.GreaterOrEqual(t, g.peak.Load(), int32(1))
}

func TestRunOnce_ArchivesAndPublishes(t *testing.T) {
	s, _ := setupStore(t)
	deps := baseDeps(s)
	arch, pub := &fakeArchiver{}, &fakePublisher{}
	deps.Archiver, deps.Publisher = arch, pub

	report, err := New(Config{}, deps, zap.NewNop()).RunOnce(context.Background(), RunOptions{})
	require.NoError(t, err)

	id := report.RunID
	assert.ElementsMatch(t, []string{
		id + "/expiring", id + "/providers", id + "/theater-CGV", id + "/theater-메가박스",
		id + "/upcoming", id + "/report",
	}, arch.saved)
	assert.Equal(t, 1, arch.pruned)
	assert.Equal(t, []*Report{report}, pub.published)
	assert.False(t, report.Failed(), "archive failures do not fail the run")
}

func TestRunOnce_Overlap(t *testing.T) {
	s, _ := setupStore(t)
	o := New(Config{}, baseDeps(s), zap.NewNop())
	o.running.Lock()
	defer o.running.Unlock()

	_, err := o.RunOnce(context.Background(), RunOptions{})
	assert.ErrorIs(t, err, ErrRunInProgress)
}

func TestRunOnce_TaskPanic(t *testing.T) {
	s, _ := setupStore(t)
	deps := baseDeps(s)
	deps.Expiring = nil

	report, err := New(Config{}, deps, zap.NewNop()).RunOnce(context.Background(), RunOptions{})
	require.NoError(t, err)

	exp := report.Task(TaskExpiring)
	assert.Equal(t, StatusFailed, exp.Status)
	assert.Contains(t, exp.Error, "panic")
	assert.Equal(t, StatusOK, report.Task(TaskUpcoming).Status)
}

func TestLoop_RecoversAndReschedules(t *testing.T) {
	s, _ := setupStore(t)
	deps := baseDeps(s)
	pub := &fakePublisher{panics: 1}
	deps.Publisher = pub

	o := New(Config{Interval: 168 * time.Hour, RecoveryInterval: time.Hour}, deps, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var waits []time.Duration
	o.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		if len(waits) == 3 {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	err := o.Loop(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []time.Duration{time.Hour, 168 * time.Hour, 168 * time.Hour}, waits)
	assert.Len(t, pub.published, 2)
}

func TestReport_JSON(t *testing.T) {
	r := Report{RunID: "r1", Tasks: []TaskReport{{Name: TaskUpcoming, Status: StatusOK, Duration: 1500 * time.Millisecond}}}

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"duration":"1.5s"`)
	assert.Contains(t, string(b), `"status":"ok"`)
}
