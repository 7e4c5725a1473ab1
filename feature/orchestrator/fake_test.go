package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"horror-tracker/core/database"
	"horror-tracker/feature/normalize"
	"horror-tracker/feature/scraper"
	"horror-tracker/feature/store"
	"horror-tracker/feature/tmdb"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// gauge tracks how many fake calls are in flight at once.
type gauge struct {
	active atomic.Int32
	peak   atomic.Int32
	hold   time.Duration
}

func (g *gauge) enter() func() {
	if g == nil {
		return func() {}
	}
	n := g.active.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(g.hold)
	return func() { g.active.Add(-1) }
}

type fakeMovies struct {
	gauge       *gauge
	theatrical  []tmdb.Result
	err         error
	byProvider  map[int][]tmdb.Result
	providerErr map[int]error
}

func (f *fakeMovies) Theatrical(context.Context) ([]tmdb.Result, error) {
	defer f.gauge.enter()()
	return f.theatrical, f.err
}

func (f *fakeMovies) ByProvider(_ context.Context, id int) ([]tmdb.Result, error) {
	defer f.gauge.enter()()
	return f.byProvider[id], f.providerErr[id]
}

type fakeChain struct {
	gauge  *gauge
	name   string
	titles []string
	err    error
}

func (f *fakeChain) Name() string { return f.name }

func (f *fakeChain) Fetch(context.Context) (scraper.ChainListing, error) {
	defer f.gauge.enter()()
	if f.err != nil {
		return scraper.ChainListing{Theater: f.name}, f.err
	}
	return scraper.ChainListing{Theater: f.name, NowShowing: f.titles}, nil
}

type fakeExpiring struct {
	gauge *gauge
	rows  []scraper.ExpiringRow
	err   error
}

func (f *fakeExpiring) Fetch(context.Context) ([]scraper.ExpiringRow, error) {
	defer f.gauge.enter()()
	return f.rows, f.err
}

type fakeArchiver struct {
	mu     sync.Mutex
	saved  []string
	pruned int
}

func (f *fakeArchiver) Save(_ context.Context, runID, name string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, runID+"/"+name)
	return nil
}

func (f *fakeArchiver) Prune(context.Context) error {
	f.pruned++
	return errors.New("bucket unavailable")
}

type fakePublisher struct {
	panics    int
	published []*Report
}

func (f *fakePublisher) PublishRun(_ context.Context, r *Report) error {
	if f.panics > 0 {
		f.panics--
		panic("broker exploded")
	}
	f.published = append(f.published, r)
	return nil
}

func horror(id int64, title string) tmdb.Result {
	return tmdb.Result{ID: id, Title: title, GenreIDs: []int{27}}
}

// setupStore returns a migrated in-memory store and its pool.
func setupStore(t *testing.T) (*store.Store, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	s := store.New(db, zap.NewNop(), store.Options{})
	require.NoError(t, s.Migrate(context.Background()))
	return s, db
}

func baseDeps(s *store.Store) Deps {
	return Deps{
		Movies: &fakeMovies{
			theatrical: []tmdb.Result{horror(1, "A"), horror(2, "B"), {ID: 9, Title: "Comedy", GenreIDs: []int{35}}},
			byProvider: map[int][]tmdb.Result{8: {horror(3, "C")}},
		},
		Chains: []ChainSource{
			&fakeChain{name: "CGV", titles: []string{"A"}},
			&fakeChain{name: "메가박스", titles: []string{"B"}},
		},
		Expiring:   &fakeExpiring{rows: []scraper.ExpiringRow{{Title: "C", ExpiredDate: "2026-11-01"}}},
		Store:      s,
		Normalizer: normalize.New(27, zap.NewNop()),
		Providers:  map[int]int{8: 1},
	}
}
