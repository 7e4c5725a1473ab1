package store

import (
	"context"
	"fmt"
	"sort"

	"horror-tracker/core/database"
	"horror-tracker/feature/movies/models"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

// Migrate creates the schema and seeds the theaters table. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(models.Tables()...); err != nil {
		return persistenceError("migrate", err)
	}

	theaters := make([]models.Theater, 0, len(models.DefaultTheaters))
	for _, name := range models.DefaultTheaters {
		theaters = append(theaters, models.Theater{Name: name})
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&theaters).Error
	if err != nil {
		return persistenceError("seed theaters", err)
	}

	s.log.Info("Schema migrated", zap.Int("tables", len(models.Tables())))
	return nil
}

// Verify checks every column the pipeline depends on exists. It returns the
// missing columns per table; an empty map means the schema is usable.
func (s *Store) Verify(ctx context.Context) (map[string][]string, error) {
	tables := make([]string, 0, len(models.RequiredColumns))
	for t := range models.RequiredColumns {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	out := make(map[string][]string)
	db := s.db.WithContext(ctx)
	for _, table := range tables {
		missing, err := database.MissingColumns(db, table, models.RequiredColumns[table])
		if err != nil {
			return nil, fmt.Errorf("inspect %s: %w", table, err)
		}
		if len(missing) > 0 {
			out[table] = missing
		}
	}
	return out, nil
}

