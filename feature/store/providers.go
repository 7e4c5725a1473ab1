package store

import (
	"context"
	"fmt"
	"slices"

	"horror-tracker/feature/movies/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const stagingProviders = "staged_providers"

type stagedProvider struct {
	MovieID       int64 `gorm:"column:movie_id"`
	TheProviderID int   `gorm:"column:the_provider_id"`
}

const createStagingProviders = `CREATE TEMP TABLE staged_providers (
	movie_id BIGINT NOT NULL,
	the_provider_id INTEGER NOT NULL
)`

const deleteUnobservedProviders = `DELETE FROM movie_providers
WHERE the_provider_id IN ?
AND NOT EXISTS (
	SELECT 1 FROM staged_providers s
	WHERE s.movie_id = movie_providers.movie_id
	AND s.the_provider_id = movie_providers.the_provider_id
)`

const insertObservedProviders = `INSERT INTO movie_providers (movie_id, the_provider_id)
SELECT DISTINCT s.movie_id, s.the_provider_id
FROM staged_providers s
LEFT JOIN movie_providers p ON p.movie_id = s.movie_id AND p.the_provider_id = s.the_provider_id
WHERE p.movie_id IS NULL
ON CONFLICT DO NOTHING`

// ProviderDelta counts the pair changes of one provider sync.
type ProviderDelta struct {
	Movies  int   `json:"movies"`
	Added   int64 `json:"added"`
	Removed int64 `json:"removed"`
	// Failed holds the providers whose movies could not be upserted. Their
	// pairs were left as they were.
	Failed map[int]error `json:"-"`
}

// SyncProviders upserts the observed movies of each provider under its own
// savepoint, then replaces the persisted (movie, provider) pairs of the
// providers that upserted cleanly with exactly their observed pairs. A
// provider whose upsert fails is recorded in Failed and keeps its pairs, as do
// providers absent from observed.
func (s *Store) SyncProviders(ctx context.Context, observed map[int][]models.MovieRecord) (ProviderDelta, error) {
	var delta ProviderDelta
	if len(observed) == 0 {
		return delta, nil
	}

	var (
		synced   []int
		accepted map[int][]models.MovieRecord
	)
	err := s.transaction(ctx, "sync providers", func(tx *gorm.DB) error {
		delta = ProviderDelta{}
		synced, accepted = nil, make(map[int][]models.MovieRecord, len(observed))
		ids := make(map[int64]int64)

		for _, provider := range sortedKeys(observed) {
			recs := observed[provider]
			err := tx.Transaction(func(ptx *gorm.DB) error {
				if len(recs) == 0 {
					return nil
				}
				persisted, err := s.upsertMovies(ptx, recs)
				if err != nil {
					return err
				}
				for _, p := range persisted {
					ids[p.ExternalID] = p.ID
				}
				return nil
			})
			if err != nil {
				perr := persistenceError(fmt.Sprintf("upsert provider %d", provider), err)
				s.log.Error("Provider upsert failed, keeping its pairs",
					zap.Int("provider", provider), zap.Error(perr))
				if delta.Failed == nil {
					delta.Failed = make(map[int]error)
				}
				delta.Failed[provider] = perr
				continue
			}
			synced = append(synced, provider)
			accepted[provider] = recs
		}
		delta.Movies = len(ids)
		if len(synced) == 0 {
			return nil
		}

		d, err := s.replaceProviders(tx, synced, providerPairs(accepted, ids))
		if err != nil {
			return err
		}
		delta.Added, delta.Removed = d.Added, d.Removed
		return nil
	})
	if err != nil {
		return ProviderDelta{}, err
	}

	s.log.Info("Synced provider listings",
		zap.Ints("providers", synced),
		zap.Int("failed", len(delta.Failed)),
		zap.Int("movies", delta.Movies),
		zap.Int64("added", delta.Added),
		zap.Int64("removed", delta.Removed),
	)
	return delta, nil
}

func sortedKeys(m map[int][]models.MovieRecord) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ProviderPairs returns the persisted pairs of the given providers.
func (s *Store) ProviderPairs(ctx context.Context, providers []int) ([]models.ProviderPair, error) {
	var rows []models.MovieProvider
	err := s.db.WithContext(ctx).
		Where("the_provider_id IN ?", providers).
		Order("the_provider_id, movie_id").
		Find(&rows).Error
	if err != nil {
		return nil, persistenceError("load provider pairs", err)
	}
	out := make([]models.ProviderPair, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ProviderPair{MovieID: r.MovieID, ProviderID: r.TheProviderID})
	}
	return out, nil
}

func providerPairs(observed map[int][]models.MovieRecord, ids map[int64]int64) []stagedProvider {
	var out []stagedProvider
	for provider, recs := range observed {
		for _, r := range recs {
			if id, ok := ids[r.ExternalID]; ok {
				out = append(out, stagedProvider{MovieID: id, TheProviderID: provider})
			}
		}
	}
	return out
}

// replaceProviders stages pairs and set-replaces the providers' rows against
// them with an anti-join delete and an anti-join insert.
func (s *Store) replaceProviders(tx *gorm.DB, providers []int, pairs []stagedProvider) (ProviderDelta, error) {
	var delta ProviderDelta

	if err := tx.Exec(createStagingProviders).Error; err != nil {
		return delta, fmt.Errorf("create staging table: %w", err)
	}
	if len(pairs) > 0 {
		if err := tx.Table(stagingProviders).CreateInBatches(&pairs, s.opts.BatchSize).Error; err != nil {
			return delta, fmt.Errorf("stage %d pairs: %w", len(pairs), err)
		}
	}

	res := tx.Exec(deleteUnobservedProviders, providers)
	if res.Error != nil {
		return delta, fmt.Errorf("delete unobserved pairs: %w", res.Error)
	}
	delta.Removed = res.RowsAffected

	res = tx.Exec(insertObservedProviders)
	if res.Error != nil {
		return delta, fmt.Errorf("insert observed pairs: %w", res.Error)
	}
	delta.Added = res.RowsAffected

	if err := tx.Exec("DROP TABLE " + stagingProviders).Error; err != nil {
		return delta, fmt.Errorf("drop staging table: %w", err)
	}
	return delta, nil
}
