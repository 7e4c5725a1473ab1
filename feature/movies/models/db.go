package models

import "time"

// Movie represents the 'movie' table. the_movie_db_id is the persisted identity.
type Movie struct {
	ID                  int64      `gorm:"column:id;primaryKey"`
	TheMovieDBID        int64      `gorm:"column:the_movie_db_id;uniqueIndex;not null"`
	Title               string     `gorm:"column:title;index"`
	ReleaseDate         *time.Time `gorm:"column:release_date;type:date"`
	Overview            string     `gorm:"column:overview"`
	PosterPath          string     `gorm:"column:poster_path"`
	IsTheatricalRelease bool       `gorm:"column:is_theatrical_release"`
}

// TableName overrides the table name.
func (Movie) TableName() string { return "movie" }

// Theater represents the static 'theaters' reference table.
type Theater struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;uniqueIndex"`
}

// TableName overrides the table name.
func (Theater) TableName() string { return "theaters" }

// MovieTheater links a movie to a theater chain currently listing it.
type MovieTheater struct {
	ID         int64 `gorm:"column:id;primaryKey"`
	MovieID    int64 `gorm:"column:movie_id;uniqueIndex:idx_movie_theater"`
	TheatersID int64 `gorm:"column:theaters_id;uniqueIndex:idx_movie_theater"`
}

// TableName overrides the table name.
func (MovieTheater) TableName() string { return "movie_theaters" }

// MovieProvider links a movie to a streaming provider slot.
type MovieProvider struct {
	ID            int64 `gorm:"column:id;primaryKey"`
	MovieID       int64 `gorm:"column:movie_id;uniqueIndex:idx_movie_provider"`
	TheProviderID int   `gorm:"column:the_provider_id;uniqueIndex:idx_movie_provider"`
}

// TableName overrides the table name.
func (MovieProvider) TableName() string { return "movie_providers" }

// NetflixHorrorExpiring records a catalog departure. Rows are never removed
// by the pipeline.
type NetflixHorrorExpiring struct {
	ID           int64      `gorm:"column:id;primaryKey"`
	TheMovieDBID int64      `gorm:"column:the_movie_db_id;uniqueIndex;not null"`
	Title        string     `gorm:"column:title"`
	ExpiredDate  *time.Time `gorm:"column:expired_date;type:date"`
}

// TableName overrides the table name.
func (NetflixHorrorExpiring) TableName() string { return "netflix_horror_expiring" }

// NetflixHorrorEN is the reference list of catalog titles that expiring rows
// are matched against.
type NetflixHorrorEN struct {
	ID           int64      `gorm:"column:id;primaryKey"`
	TheMovieDBID int64      `gorm:"column:the_movie_db_id;uniqueIndex;not null"`
	Title        string     `gorm:"column:title"`
	ReleaseDate  *time.Time `gorm:"column:release_date;type:date"`
}

// TableName overrides the table name.
func (NetflixHorrorEN) TableName() string { return "netflix_horror_en" }

// Tables lists every model the pipeline reads or writes, in migration order.
func Tables() []any {
	return []any{
		&Movie{},
		&Theater{},
		&MovieTheater{},
		&MovieProvider{},
		&NetflixHorrorExpiring{},
		&NetflixHorrorEN{},
	}
}

// RequiredColumns maps each table to the columns the pipeline depends on.
var RequiredColumns = map[string][]string{
	"movie":                   {"id", "the_movie_db_id", "title", "release_date", "overview", "poster_path", "is_theatrical_release"},
	"theaters":                {"id", "name"},
	"movie_theaters":          {"movie_id", "theaters_id"},
	"movie_providers":         {"movie_id", "the_provider_id"},
	"netflix_horror_expiring": {"the_movie_db_id", "title", "expired_date"},
	"netflix_horror_en":       {"the_movie_db_id", "title", "release_date"},
}

// Theater chain names as stored in the theaters table.
const (
	TheaterCGV     = "CGV"
	TheaterMegabox = "메가박스"
	TheaterLotte   = "롯데시네마"
)

// DefaultTheaters is the seed content of the theaters table.
var DefaultTheaters = []string{TheaterCGV, TheaterMegabox, TheaterLotte}
