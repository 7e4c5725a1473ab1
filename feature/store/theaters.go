package store

import (
	"context"
	"fmt"

	"horror-tracker/core/reconcile"
	"horror-tracker/feature/movies/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TheaterIDs maps every theater name to its id.
func (s *Store) TheaterIDs(ctx context.Context) (map[string]int64, error) {
	var rows []models.Theater
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, persistenceError("load theaters", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Name] = r.ID
	}
	return out, nil
}

// ReconcileTheater makes the listings of one theater equal to the persisted
// movies whose title is in titles. Ended listings are deleted and new ones
// inserted in the same transaction. The returned plan is keyed by movie id.
func (s *Store) ReconcileTheater(ctx context.Context, theaterID int64, titles []string) (*reconcile.Plan[int64], error) {
	var plan *reconcile.Plan[int64]
	op := fmt.Sprintf("reconcile theater %d", theaterID)

	err := s.transaction(ctx, op, func(tx *gorm.DB) error {
		observed, err := movieIDsByTitle(tx, titles)
		if err != nil {
			return err
		}
		persisted, err := listedMovieIDs(tx, theaterID)
		if err != nil {
			return err
		}

		plan = reconcile.PlanDiff(persisted, observed)
		_, err = reconcile.ApplyPlan(ctx, &theaterMutator{tx: tx, theaterID: theaterID}, plan)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Reconciled theater listings",
		zap.Int64("theater_id", theaterID),
		zap.Int("titles", len(titles)),
		zap.Int("added", plan.Summary.Inserts),
		zap.Int("ended", plan.Summary.Deletes),
	)
	return plan, nil
}

func movieIDsByTitle(tx *gorm.DB, titles []string) (reconcile.Set[int64], error) {
	out := make(reconcile.Set[int64])
	if len(titles) == 0 {
		return out, nil
	}
	var ids []int64
	if err := tx.Model(&models.Movie{}).Where("title IN ?", titles).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load movies by title: %w", err)
	}
	for _, id := range ids {
		out.Add(id)
	}
	return out, nil
}

func listedMovieIDs(tx *gorm.DB, theaterID int64) (reconcile.Set[int64], error) {
	var ids []int64
	if err := tx.Model(&models.MovieTheater{}).Where("theaters_id = ?", theaterID).Pluck("movie_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}
	return reconcile.NewSet(ids...), nil
}

// theaterMutator applies listing actions for one theater inside a transaction.
type theaterMutator struct {
	tx        *gorm.DB
	theaterID int64
}

func (m *theaterMutator) Insert(ctx context.Context, movieID int64) error {
	return m.InsertBatch(ctx, []int64{movieID})
}

func (m *theaterMutator) Delete(ctx context.Context, movieID int64) error {
	return m.DeleteBatch(ctx, []int64{movieID})
}

func (m *theaterMutator) InsertBatch(_ context.Context, movieIDs []int64) error {
	rows := make([]models.MovieTheater, 0, len(movieIDs))
	for _, id := range movieIDs {
		rows = append(rows, models.MovieTheater{MovieID: id, TheatersID: m.theaterID})
	}
	return m.tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (m *theaterMutator) DeleteBatch(_ context.Context, movieIDs []int64) error {
	return m.tx.
		Where("theaters_id = ? AND movie_id IN ?", m.theaterID, movieIDs).
		Delete(&models.MovieTheater{}).Error
}
