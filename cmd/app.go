package cmd

import (
	"context"
	"fmt"

	"horror-tracker/core/config"
	"horror-tracker/core/database"
	"horror-tracker/core/storage"
	"horror-tracker/feature/archive"
	"horror-tracker/feature/movies/models"
	"horror-tracker/feature/normalize"
	"horror-tracker/feature/notify"
	"horror-tracker/feature/orchestrator"
	"horror-tracker/feature/pipeline"
	"horror-tracker/feature/scraper"
	"horror-tracker/feature/store"
	"horror-tracker/feature/tmdb"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// application is everything a run needs, wired from the configuration.
type application struct {
	db        *gorm.DB
	store     *store.Store
	browser   *scraper.ChromeBrowser
	archiver  *archive.Archiver
	publisher *notify.Publisher
	orch      *orchestrator.Orchestrator
	log       *zap.Logger
}

// newApplication connects the database, browser, archive and event stream
// and builds the orchestrator over them.
func newApplication(ctx context.Context, cfg *config.Config, log *zap.Logger, dryRun bool) (*application, error) {
	providers, err := tmdb.ParseProviderMap(cfg.TMDB.ProviderMap)
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a := &application{db: db, log: log}

	a.store = store.New(db, log.Named("store"), store.Options{DryRun: dryRun})
	if err := a.store.Migrate(ctx); err != nil {
		a.Close()
		return nil, err
	}

	var client storage.Client
	if cfg.Archive.Enabled {
		client, err = storage.NewClient(cfg.Storage)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
	}
	a.archiver = archive.New(client, cfg.Storage.Bucket, cfg.Storage.Region, cfg.Archive, log.Named("archive"))

	a.publisher, err = notify.New(ctx, cfg.NATS, log.Named("notify"))
	if err != nil {
		a.Close()
		return nil, err
	}

	policy := cfg.Retry.Policy()
	a.browser = scraper.NewChromeBrowser(ctx, cfg.Browser)
	chains := []orchestrator.ChainSource{
		scraper.NewTheaterAdapter(a.browser, cfg.CGV.Chain(models.TheaterCGV), cfg.Browser, policy, log.Named("cgv")),
		scraper.NewTheaterAdapter(a.browser, cfg.Megabox.Chain(models.TheaterMegabox), cfg.Browser, policy, log.Named("megabox")),
		scraper.NewTheaterAdapter(a.browser, cfg.Lotte.Chain(models.TheaterLotte), cfg.Browser, policy, log.Named("lotte")),
	}

	a.orch = orchestrator.New(cfg.Scheduler, orchestrator.Deps{
		Movies:     tmdb.NewClient(cfg.TMDB, policy, log.Named("tmdb")),
		Chains:     chains,
		Expiring:   scraper.NewExpiringAdapter(a.browser, cfg.Unogs, cfg.Browser, policy, log.Named("unogs")),
		Store:      a.store,
		Normalizer: normalize.New(cfg.TMDB.HorrorGenreID, log.Named("normalize")),
		Providers:  providers,
		Archiver:   a.archiver,
		Publisher:  a.publisher,
	}, log)
	return a, nil
}

// Close releases the browser, the event connection and the database.
func (a *application) Close() {
	if a.browser != nil {
		a.browser.Close()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("Failed to close NATS connection", zap.Error(err))
		}
	}
	if err := database.Close(a.db); err != nil {
		a.log.Warn("Failed to close database", zap.Error(err))
	}
}

var _ pipeline.Store = (*store.Store)(nil)
