package store

import (
	"context"

	"horror-tracker/feature/movies/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReferenceMovies returns the reference list expiring rows are matched against.
func (s *Store) ReferenceMovies(ctx context.Context) ([]models.ReferenceMovie, error) {
	var rows []models.NetflixHorrorEN
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, persistenceError("load reference movies", err)
	}
	out := make([]models.ReferenceMovie, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ReferenceMovie{ExternalID: r.TheMovieDBID, Title: r.Title})
	}
	return out, nil
}

// ExpiringIDs returns the external ids already recorded as expiring.
func (s *Store) ExpiringIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.WithContext(ctx).Model(&models.NetflixHorrorExpiring{}).Pluck("the_movie_db_id", &ids).Error; err != nil {
		return nil, persistenceError("load expiring ids", err)
	}
	return ids, nil
}

// UpsertExpiring records departures keyed by external id, overwriting the
// title and date of existing rows.
func (s *Store) UpsertExpiring(ctx context.Context, movies []models.ExpiringMovie) (int, error) {
	if len(movies) == 0 {
		return 0, nil
	}
	rows := make([]models.NetflixHorrorExpiring, 0, len(movies))
	for _, m := range movies {
		date := m.ExpiredDate
		rows = append(rows, models.NetflixHorrorExpiring{
			TheMovieDBID: m.ExternalID,
			Title:        m.Title,
			ExpiredDate:  &date,
		})
	}

	err := s.transaction(ctx, "upsert expiring", func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "the_movie_db_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "expired_date"}),
		}).CreateInBatches(&rows, s.opts.BatchSize).Error
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
