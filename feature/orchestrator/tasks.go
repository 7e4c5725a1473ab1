package orchestrator

import (
	"context"
	"fmt"
	"strconv"

	"horror-tracker/core/logger"
	"horror-tracker/feature/movies/models"
	"horror-tracker/feature/normalize"
	"horror-tracker/feature/tmdb"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// upcoming fetches the theatrical feed and upserts its horror titles.
func (o *Orchestrator) upcoming(ctx context.Context, r *run) TaskReport {
	rep := TaskReport{Status: StatusOK}
	log := logger.WithTask(r.log, TaskUpcoming)

	results, err := o.deps.Movies.Theatrical(ctx)
	if err != nil {
		log.Error("Theatrical feed fetch failed", zap.Error(err))
		rep.fail(err)
		return rep
	}
	r.snapshot("upcoming", results)

	movies := o.deps.Normalizer.Normalize(normalize.APIBatch{Feed: normalize.FeedTheatrical, Results: results}).Movies
	rep.detail("fetched", len(results))
	rep.detail("horror", len(movies))

	persisted, err := r.engine.UpsertMovies(ctx, movies)
	if err != nil {
		log.Error("Upsert failed", zap.Error(err))
		rep.fail(err)
		return rep
	}
	rep.detail("persisted", len(persisted))
	return rep
}

// expiring scrapes the catalog's expiring table and records matches.
func (o *Orchestrator) expiring(ctx context.Context, r *run) TaskReport {
	rep := TaskReport{Status: StatusOK}
	log := logger.WithTask(r.log, TaskExpiring)

	rows, err := o.deps.Expiring.Fetch(ctx)
	if err != nil {
		log.Error("Expiring scrape failed", zap.Error(err))
		rep.fail(err)
		return rep
	}
	r.snapshot("expiring", rows)

	candidates := o.deps.Normalizer.Normalize(normalize.ExpiringBatch{Rows: rows}).Expiring
	out, err := r.engine.ReconcileExpiring(ctx, candidates)
	if err != nil {
		log.Error("Expiring reconcile failed", zap.Error(err))
		rep.fail(err)
		return rep
	}
	rep.detail("rows", len(rows))
	rep.detail("matched", out.Matched)
	rep.detail("written", out.Written)
	return rep
}

// theaterListings scrapes every chain, at most MaxConcurrentChains at once.
// It returns the merged titles of the chains that succeeded; failed chains
// are absent so their listings are left as they are.
func (o *Orchestrator) theaterListings(ctx context.Context, r *run) (TaskReport, map[string][]string) {
	rep := TaskReport{Status: StatusOK}
	subs := make([]TaskReport, len(o.deps.Chains))
	titles := make([][]string, len(o.deps.Chains))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.MaxConcurrentChains)
	for i, chain := range o.deps.Chains {
		g.Go(func() error {
			name := chain.Name()
			sub := TaskReport{Name: name, Status: StatusOK}
			defer func() {
				if p := recover(); p != nil {
					r.log.Error("Theater chain panicked", zap.String("theater", name), zap.Any("panic", p))
					subs[i] = TaskReport{Name: name, Status: StatusFailed, Error: fmt.Sprintf("panic: %v", p)}
					titles[i] = nil
				}
			}()
			listing, err := chain.Fetch(gctx)
			if err != nil {
				r.log.Error("Theater chain fetch failed", zap.String("theater", name), zap.Error(err))
				sub.fail(err)
				subs[i] = sub
				return nil
			}
			r.snapshot("theater-"+name, listing)
			batch := o.deps.Normalizer.Normalize(normalize.FromChain(listing))
			sub.detail("titles", len(batch.Titles))
			subs[i] = sub
			titles[i] = batch.Titles
			return nil
		})
	}
	_ = g.Wait()

	listings := make(map[string][]string)
	for i, sub := range subs {
		if sub.Status == StatusOK {
			listings[sub.Name] = titles[i]
		}
	}
	rep.Sub = subs
	rep.settle()
	return rep, listings
}

// theaterReconcile diffs the fetched listings against the store per theater.
func (o *Orchestrator) theaterReconcile(ctx context.Context, r *run, listings map[string][]string) TaskReport {
	rep := TaskReport{Status: StatusOK}
	for _, out := range r.engine.ReconcileTheaters(ctx, listings) {
		sub := TaskReport{Name: out.Theater, Status: StatusOK}
		if out.Err != nil {
			sub.fail(out.Err)
		} else {
			sub.detail("titles", out.Titles)
			sub.detail("added", out.Added)
			sub.detail("ended", out.Ended)
		}
		rep.Sub = append(rep.Sub, sub)
	}
	rep.settle()
	return rep
}

// providerListings fetches each provider's catalog and set-replaces the pairs
// of the slots whose providers were all fetched and upserted.
func (o *Orchestrator) providerListings(ctx context.Context, r *run) TaskReport {
	rep := TaskReport{Status: StatusOK}
	log := logger.WithTask(r.log, TaskProviderListings)

	observed := make(map[int][]tmdb.Result)
	slots := make([]int, 0, len(o.deps.Providers))
	for _, ext := range tmdb.ProviderIDs(o.deps.Providers) {
		slot := o.deps.Providers[ext]
		slots = append(slots, slot)
		sub := TaskReport{Name: providerName(ext), Status: StatusOK}
		results, err := o.deps.Movies.ByProvider(ctx, ext)
		if err != nil {
			log.Error("Provider fetch failed", zap.Int("provider", ext), zap.Error(err))
			sub.fail(err)
		} else {
			observed[slot] = append(observed[slot], results...)
			sub.detail("results", len(results))
		}
		rep.Sub = append(rep.Sub, sub)
	}
	// A slot shared by several providers is replaced only when all of them
	// were read.
	for i, slot := range slots {
		if rep.Sub[i].Status == StatusFailed {
			delete(observed, slot)
		}
	}
	rep.settle()
	if len(observed) == 0 {
		return rep
	}
	r.snapshot("providers", observed)

	records := make(map[int][]models.MovieRecord, len(observed))
	for slot, results := range observed {
		batch := normalize.APIBatch{Feed: normalize.FeedProvider, Results: results}
		records[slot] = o.deps.Normalizer.Normalize(batch).Movies
	}

	delta, err := r.engine.ReconcileProviders(ctx, records)
	if err != nil {
		log.Error("Provider reconcile failed", zap.Error(err))
		rep.fail(err)
		return rep
	}
	for i, slot := range slots {
		if err, ok := delta.Failed[slot]; ok && rep.Sub[i].Status == StatusOK {
			rep.Sub[i].fail(err)
		}
	}
	rep.settle()
	rep.detail("movies", delta.Movies)
	rep.detail("added", delta.Added)
	rep.detail("removed", delta.Removed)
	return rep
}

func providerName(ext int) string {
	return "provider-" + strconv.Itoa(ext)
}
