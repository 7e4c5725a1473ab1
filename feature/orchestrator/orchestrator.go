package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"horror-tracker/core/logger"
	"horror-tracker/core/reconcile"
	"horror-tracker/feature/normalize"
	"horror-tracker/feature/pipeline"
	"horror-tracker/feature/scraper"
	"horror-tracker/feature/tmdb"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Task names.
const (
	TaskUpcoming         = "upcoming-api"
	TaskExpiring         = "expiring-scrape"
	TaskTheaterListings  = "theater-listings"
	TaskProviderListings = "provider-listings"
	TaskTheaterReconcile = "theater-reconcile"
)

// Tasks lists every task in report order.
var Tasks = []string{TaskUpcoming, TaskExpiring, TaskTheaterListings, TaskProviderListings, TaskTheaterReconcile}

// ErrRunInProgress is returned when a run is requested while one is active.
var ErrRunInProgress = errors.New("a run is already in progress")

// MovieSource is the metadata API.
type MovieSource interface {
	Theatrical(ctx context.Context) ([]tmdb.Result, error)
	ByProvider(ctx context.Context, providerID int) ([]tmdb.Result, error)
}

// ChainSource reads one theater chain.
type ChainSource interface {
	Name() string
	Fetch(ctx context.Context) (scraper.ChainListing, error)
}

// ExpiringSource reads the catalog's expiring table.
type ExpiringSource interface {
	Fetch(ctx context.Context) ([]scraper.ExpiringRow, error)
}

// Archiver keeps the raw data of a run.
type Archiver interface {
	Save(ctx context.Context, runID, name string, v any) error
	Prune(ctx context.Context) error
}

// Publisher announces finished runs.
type Publisher interface {
	PublishRun(ctx context.Context, report *Report) error
}

// Deps are the collaborators of an Orchestrator. Archiver and Publisher are optional.
type Deps struct {
	Movies     MovieSource
	Chains     []ChainSource
	Expiring   ExpiringSource
	Store      pipeline.Store
	Normalizer *normalize.Normalizer
	// Providers maps external provider ids to provider slots.
	Providers map[int]int
	Archiver  Archiver
	Publisher Publisher
}

// RunOptions narrow a single run.
type RunOptions struct {
	// Tasks limits the run to the named tasks; empty runs everything.
	Tasks  []string
	DryRun bool
}

func (o RunOptions) enabled(task string) bool {
	if len(o.Tasks) == 0 {
		return true
	}
	for _, t := range o.Tasks {
		if t == task {
			return true
		}
	}
	return false
}

// needs reports whether a task runs: selected itself, or feeding a selected
// task. Theater listings feed theater reconcile.
func (o RunOptions) needs(task string) bool {
	return o.enabled(task) || (task == TaskTheaterListings && o.enabled(TaskTheaterReconcile))
}

// Orchestrator runs the fetch tasks under a concurrency cap, then the
// reconciliation steps that depend on them, and repeats on a schedule.
type Orchestrator struct {
	cfg  Config
	deps Deps
	log  *zap.Logger

	running sync.Mutex

	mu     sync.RWMutex
	latest *Report

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an Orchestrator.
func New(cfg Config, deps Deps, log *zap.Logger) *Orchestrator {
	if cfg.MaxConcurrentTasks <= 0 {
		cfg.MaxConcurrentTasks = 3
	}
	if cfg.MaxConcurrentChains <= 0 {
		cfg.MaxConcurrentChains = 3
	}
	return &Orchestrator{
		cfg:   cfg,
		deps:  deps,
		log:   log,
		now:   time.Now,
		sleep: sleepContext,
	}
}

// Latest returns the report of the most recent finished run, or nil.
func (o *Orchestrator) Latest() *Report {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.latest
}

// run holds the state of one run.
type run struct {
	id     string
	opts   RunOptions
	log    *zap.Logger
	engine *pipeline.Engine

	mu        sync.Mutex
	snapshots map[string]any
}

func (r *run) snapshot(name string, v any) {
	r.mu.Lock()
	r.snapshots[name] = v
	r.mu.Unlock()
}

// RunOnce executes one full cycle and returns its report. Task failures are
// recorded in the report; the error is reserved for runs that could not start.
func (o *Orchestrator) RunOnce(ctx context.Context, opts RunOptions) (*Report, error) {
	if !o.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer o.running.Unlock()

	r := &run{
		id:        uuid.New().String(),
		opts:      opts,
		snapshots: make(map[string]any),
	}
	r.log = logger.WithRunID(o.log, r.id)
	// A fresh cache per run; nothing is memoized across cycles.
	r.engine = pipeline.NewEngine(o.deps.Store, reconcile.NewCache(), r.log)

	report := &Report{RunID: r.id, DryRun: opts.DryRun, StartedAt: o.now()}
	r.log.Info("Run started", zap.Bool("dry_run", opts.DryRun), zap.Strings("tasks", opts.Tasks))

	var listings map[string][]string
	fetches := []struct {
		name string
		fn   func(ctx context.Context, r *run) TaskReport
	}{
		{TaskUpcoming, o.upcoming},
		{TaskExpiring, o.expiring},
		{TaskTheaterListings, func(ctx context.Context, r *run) TaskReport {
			var rep TaskReport
			rep, listings = o.theaterListings(ctx, r)
			return rep
		}},
		{TaskProviderListings, o.providerListings},
	}

	results := make([]TaskReport, len(fetches))
	sem := semaphore.NewWeighted(int64(o.cfg.MaxConcurrentTasks))
	var wg sync.WaitGroup
	for i, f := range fetches {
		if !opts.needs(f.name) {
			results[i] = TaskReport{Name: f.name, Status: StatusSkipped, Error: "not selected"}
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = TaskReport{Name: f.name, Status: StatusFailed, Error: err.Error()}
				return
			}
			defer sem.Release(1)
			results[i] = o.runTask(ctx, r, f.name, f.fn)
		}()
	}
	wg.Wait()

	// Theater reconciliation depends on the listings fetch and runs after it settles.
	results = append(results, o.theaterReconcileStep(ctx, r, listings))
	report.Tasks = results
	report.FinishedAt = o.now()

	for _, t := range report.Tasks {
		fields := []zap.Field{zap.String("task", t.Name), zap.String("status", string(t.Status)), zap.Duration("duration", t.Duration)}
		if t.Error != "" {
			fields = append(fields, zap.String("error", t.Error))
		}
		r.log.Info("Task finished", fields...)
	}

	o.finish(ctx, r, report)
	return report, nil
}

func (o *Orchestrator) theaterReconcileStep(ctx context.Context, r *run, listings map[string][]string) TaskReport {
	if !r.opts.enabled(TaskTheaterReconcile) {
		return TaskReport{Name: TaskTheaterReconcile, Status: StatusSkipped, Error: "not selected"}
	}
	if len(listings) == 0 {
		r.log.Error("Skipping theater reconcile, no theater listings were fetched")
		return TaskReport{Name: TaskTheaterReconcile, Status: StatusSkipped, Error: "no theater listings"}
	}
	return o.runTask(ctx, r, TaskTheaterReconcile, func(ctx context.Context, r *run) TaskReport {
		return o.theaterReconcile(ctx, r, listings)
	})
}

// runTask times fn and turns a panic into a failed task.
func (o *Orchestrator) runTask(ctx context.Context, r *run, name string, fn func(context.Context, *run) TaskReport) (rep TaskReport) {
	start := o.now()
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Task panicked", zap.String("task", name), zap.Any("panic", p))
			rep = TaskReport{Name: name, Status: StatusFailed, Error: fmt.Sprintf("panic: %v", p)}
		}
		rep.Name = name
		rep.Duration = o.now().Sub(start)
	}()
	return fn(ctx, r)
}

// finish archives the run, publishes it and makes it the latest report.
// Failures here are logged and never change the report.
func (o *Orchestrator) finish(ctx context.Context, r *run, report *Report) {
	if o.deps.Archiver != nil {
		names := make([]string, 0, len(r.snapshots))
		for name := range r.snapshots {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := o.deps.Archiver.Save(ctx, r.id, name, r.snapshots[name]); err != nil {
				r.log.Warn("Failed to archive snapshot", zap.String("snapshot", name), zap.Error(err))
			}
		}
		if err := o.deps.Archiver.Save(ctx, r.id, "report", report); err != nil {
			r.log.Warn("Failed to archive report", zap.Error(err))
		}
		if err := o.deps.Archiver.Prune(ctx); err != nil {
			r.log.Warn("Failed to prune archive", zap.Error(err))
		}
	}

	if o.deps.Publisher != nil {
		if err := o.deps.Publisher.PublishRun(ctx, report); err != nil {
			r.log.Warn("Failed to publish run", zap.Error(err))
		}
	}

	o.mu.Lock()
	o.latest = report
	o.mu.Unlock()

	r.log.Info("Run finished",
		zap.Bool("failed", report.Failed()),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
}
