package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"horror-tracker/core/reconcile"
	"horror-tracker/feature/movies/models"
	"horror-tracker/feature/store"

	"go.uber.org/zap"
)

// Store is the persistence the engine drives.
type Store interface {
	UpsertMovies(ctx context.Context, records []models.MovieRecord) ([]models.PersistedMovie, error)
	TheaterIDs(ctx context.Context) (map[string]int64, error)
	ReconcileTheater(ctx context.Context, theaterID int64, titles []string) (*reconcile.Plan[int64], error)
	SyncProviders(ctx context.Context, observed map[int][]models.MovieRecord) (store.ProviderDelta, error)
	ReferenceMovies(ctx context.Context) ([]models.ReferenceMovie, error)
	ExpiringIDs(ctx context.Context) ([]int64, error)
	UpsertExpiring(ctx context.Context, movies []models.ExpiringMovie) (int, error)
}

// UnknownTheaterError reports a theater name with no row in the theaters table.
type UnknownTheaterError struct {
	Name string
}

func (e *UnknownTheaterError) Error() string {
	return fmt.Sprintf("unknown theater %q", e.Name)
}

// TheaterOutcome is the result of reconciling one theater.
type TheaterOutcome struct {
	Theater string `json:"theater"`
	Titles  int    `json:"titles"`
	Added   int    `json:"added"`
	Ended   int    `json:"ended"`
	Err     error  `json:"-"`
}

// ExpiringOutcome is the result of reconciling the expiring list.
type ExpiringOutcome struct {
	Candidates int `json:"candidates"`
	Matched    int `json:"matched"`
	Written    int `json:"written"`
}

// Engine reconciles normalized source data into the store. An Engine lives
// for one run; its cache is dropped with it.
type Engine struct {
	store Store
	cache *reconcile.Cache
	log   *zap.Logger
}

// NewEngine creates an engine for one run.
func NewEngine(s Store, cache *reconcile.Cache, log *zap.Logger) *Engine {
	return &Engine{store: s, cache: cache, log: log}
}

// UpsertMovies writes records as one bulk operation.
func (e *Engine) UpsertMovies(ctx context.Context, records []models.MovieRecord) ([]models.PersistedMovie, error) {
	return e.store.UpsertMovies(ctx, records)
}

// ReconcileTheaters diffs every theater's current titles against its persisted
// listings. A failing theater is logged and recorded; the rest still run.
// Outcomes are ordered by theater name.
func (e *Engine) ReconcileTheaters(ctx context.Context, listings map[string][]string) []TheaterOutcome {
	names := make([]string, 0, len(listings))
	for name := range listings {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]TheaterOutcome, 0, len(names))
	for _, name := range names {
		res := e.reconcileTheater(ctx, name, listings[name])
		if res.Err != nil {
			e.log.Error("Theater reconcile failed", zap.String("theater", name), zap.Error(res.Err))
		}
		out = append(out, res)
	}
	return out
}

func (e *Engine) reconcileTheater(ctx context.Context, name string, titles []string) TheaterOutcome {
	res := TheaterOutcome{Theater: name, Titles: len(titles)}

	ids, err := reconcile.Load(ctx, e.cache, "theaters", e.store.TheaterIDs)
	if err != nil {
		res.Err = err
		return res
	}
	id, ok := ids[name]
	if !ok {
		res.Err = &UnknownTheaterError{Name: name}
		return res
	}

	plan, err := e.store.ReconcileTheater(ctx, id, titles)
	if err != nil {
		res.Err = err
		return res
	}
	res.Added = plan.Summary.Inserts
	res.Ended = plan.Summary.Deletes
	return res
}

// ReconcileProviders upserts the observed movies and replaces the pairs of
// every provider in observed. Providers missing from observed are untouched.
func (e *Engine) ReconcileProviders(ctx context.Context, observed map[int][]models.MovieRecord) (store.ProviderDelta, error) {
	return e.store.SyncProviders(ctx, observed)
}

// ReconcileExpiring matches candidates to reference titles, drops ids already
// recorded and upserts the rest.
func (e *Engine) ReconcileExpiring(ctx context.Context, candidates []models.ExpiringCandidate) (ExpiringOutcome, error) {
	res := ExpiringOutcome{Candidates: len(candidates)}

	refs, err := reconcile.Load(ctx, e.cache, "reference-movies", e.store.ReferenceMovies)
	if err != nil {
		return res, err
	}
	matched := MatchExpiring(candidates, refs)
	res.Matched = len(matched)

	recorded, err := e.store.ExpiringIDs(ctx)
	if err != nil {
		return res, err
	}
	known := reconcile.NewSet(recorded...)

	fresh := make([]models.ExpiringMovie, 0, len(matched))
	for _, m := range matched {
		if !known.Has(m.ExternalID) {
			fresh = append(fresh, m)
		}
	}

	res.Written, err = e.store.UpsertExpiring(ctx, fresh)
	if err != nil {
		return res, err
	}
	e.log.Info("Reconciled expiring movies",
		zap.Int("candidates", res.Candidates),
		zap.Int("matched", res.Matched),
		zap.Int("written", res.Written),
	)
	return res, nil
}

// MatchExpiring pairs each candidate with the first reference whose title
// contains the candidate's title, ignoring case. The reference title is kept.
// A reference id matched more than once is returned once.
func MatchExpiring(candidates []models.ExpiringCandidate, refs []models.ReferenceMovie) []models.ExpiringMovie {
	lowered := make([]string, len(refs))
	for i, r := range refs {
		lowered[i] = strings.ToLower(r.Title)
	}

	seen := make(reconcile.Set[int64])
	var out []models.ExpiringMovie
	for _, c := range candidates {
		needle := strings.ToLower(strings.TrimSpace(c.Title))
		if needle == "" {
			continue
		}
		for i, ref := range refs {
			if !strings.Contains(lowered[i], needle) {
				continue
			}
			if !seen.Has(ref.ExternalID) {
				seen.Add(ref.ExternalID)
				out = append(out, models.ExpiringMovie{
					ExternalID:  ref.ExternalID,
					Title:       ref.Title,
					ExpiredDate: c.ExpiredDate,
				})
			}
			break
		}
	}
	return out
}
