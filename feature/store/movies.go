package store

import (
	"context"
	"fmt"
	"time"

	"horror-tracker/feature/movies/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const stagingMovies = "staged_movies"

type stagedMovie struct {
	TheMovieDBID        int64      `gorm:"column:the_movie_db_id"`
	Title               string     `gorm:"column:title"`
	ReleaseDate         *time.Time `gorm:"column:release_date"`
	Overview            string     `gorm:"column:overview"`
	PosterPath          string     `gorm:"column:poster_path"`
	IsTheatricalRelease bool       `gorm:"column:is_theatrical_release"`
}

const createStagingMovies = `CREATE TEMP TABLE staged_movies (
	the_movie_db_id BIGINT NOT NULL,
	title TEXT,
	release_date DATE,
	overview TEXT,
	poster_path TEXT,
	is_theatrical_release BOOLEAN
)`

const mergeStagedMovies = `INSERT INTO movie (the_movie_db_id, title, release_date, overview, poster_path, is_theatrical_release)
SELECT the_movie_db_id, title, release_date, overview, poster_path, is_theatrical_release
FROM staged_movies WHERE true
ON CONFLICT (the_movie_db_id) DO UPDATE SET
	title = excluded.title,
	release_date = excluded.release_date,
	overview = excluded.overview,
	poster_path = excluded.poster_path,
	is_theatrical_release = excluded.is_theatrical_release
RETURNING id, the_movie_db_id AS external_id, title`

// UpsertMovies inserts or overwrites records keyed by external id in one
// transaction and returns the persisted id of each distinct record.
func (s *Store) UpsertMovies(ctx context.Context, records []models.MovieRecord) ([]models.PersistedMovie, error) {
	if len(records) == 0 {
		return nil, nil
	}
	var out []models.PersistedMovie
	err := s.transaction(ctx, "upsert movies", func(tx *gorm.DB) error {
		var err error
		out, err = s.upsertMovies(tx, records)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Upserted movies", zap.Int("records", len(records)), zap.Int("persisted", len(out)))
	return out, nil
}

// upsertMovies stages the batch into a temp table, merges it into movie with
// one statement and drops the temp table. A failure anywhere aborts tx, which
// also discards the temp table.
func (s *Store) upsertMovies(tx *gorm.DB, records []models.MovieRecord) ([]models.PersistedMovie, error) {
	staged := dedupeMovies(records)

	if err := tx.Exec(createStagingMovies).Error; err != nil {
		return nil, fmt.Errorf("create staging table: %w", err)
	}
	if err := tx.Table(stagingMovies).CreateInBatches(&staged, s.opts.BatchSize).Error; err != nil {
		return nil, fmt.Errorf("stage %d movies: %w", len(staged), err)
	}

	var out []models.PersistedMovie
	if err := tx.Raw(mergeStagedMovies).Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("merge staged movies: %w", err)
	}

	if err := tx.Exec("DROP TABLE " + stagingMovies).Error; err != nil {
		return nil, fmt.Errorf("drop staging table: %w", err)
	}
	return out, nil
}

// dedupeMovies keeps the last record per external id, since one statement
// cannot update the same row twice.
func dedupeMovies(records []models.MovieRecord) []stagedMovie {
	index := make(map[int64]int, len(records))
	out := make([]stagedMovie, 0, len(records))
	for _, r := range records {
		row := stagedMovie{
			TheMovieDBID:        r.ExternalID,
			Title:               r.Title,
			ReleaseDate:         r.ReleaseDate,
			Overview:            r.Overview,
			PosterPath:          r.PosterPath,
			IsTheatricalRelease: r.IsTheatricalRelease,
		}
		if i, ok := index[r.ExternalID]; ok {
			out[i] = row
			continue
		}
		index[r.ExternalID] = len(out)
		out = append(out, row)
	}
	return out
}
