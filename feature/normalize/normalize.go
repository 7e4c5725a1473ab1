package normalize

import (
	"fmt"
	"strings"
	"time"

	"horror-tracker/core/reconcile"
	"horror-tracker/feature/movies/models"
	"horror-tracker/feature/tmdb"

	"go.uber.org/zap"
)

// Normalized is the canonical form of a batch. Only the field matching the
// batch variant is populated.
type Normalized struct {
	Movies   []models.MovieRecord       `json:"movies,omitempty"`
	Titles   []string                   `json:"titles,omitempty"`
	Expiring []models.ExpiringCandidate `json:"expiring,omitempty"`
}

// Normalizer maps raw batches to canonical records.
type Normalizer struct {
	genre int
	log   *zap.Logger
}

// New creates a normalizer that keeps API results tagged with genre.
func New(genre int, log *zap.Logger) *Normalizer {
	return &Normalizer{genre: genre, log: log}
}

// Normalize resolves the batch variant and converts it.
func (n *Normalizer) Normalize(b Batch) Normalized {
	switch b := b.(type) {
	case APIBatch:
		return Normalized{Movies: n.movies(b)}
	case TitleBatch:
		return Normalized{Titles: MergeTitles(b.Titles)}
	case ExpiringBatch:
		return Normalized{Expiring: n.expiring(b)}
	default:
		panic(fmt.Sprintf("normalize: unknown batch %T", b))
	}
}

// movies keeps horror results, one record per external id. A later duplicate
// replaces an earlier one.
func (n *Normalizer) movies(b APIBatch) []models.MovieRecord {
	theatrical := b.Feed == FeedTheatrical
	index := make(map[int64]int, len(b.Results))
	out := make([]models.MovieRecord, 0, len(b.Results))

	for _, r := range b.Results {
		if !r.HasGenre(n.genre) {
			continue
		}
		rec := models.MovieRecord{
			Title:               strings.TrimSpace(r.Title),
			ExternalID:          r.ID,
			ReleaseDate:         n.releaseDate(r),
			Overview:            r.Overview,
			PosterPath:          r.PosterPath,
			IsTheatricalRelease: theatrical,
		}
		if i, ok := index[r.ID]; ok {
			out[i] = rec
			continue
		}
		index[r.ID] = len(out)
		out = append(out, rec)
	}
	return out
}

func (n *Normalizer) releaseDate(r tmdb.Result) *time.Time {
	d, err := ParseReleaseDate(r.ReleaseDate)
	if err != nil {
		n.log.Warn("Malformed release date",
			zap.Int64("external_id", r.ID),
			zap.String("release_date", r.ReleaseDate),
			zap.Error(err),
		)
		return nil
	}
	return d
}

func (n *Normalizer) expiring(b ExpiringBatch) []models.ExpiringCandidate {
	out := make([]models.ExpiringCandidate, 0, len(b.Rows))
	for _, row := range b.Rows {
		title := strings.TrimSpace(row.Title)
		if title == "" {
			continue
		}
		date, err := ParseExpiryDate(row.ExpiredDate)
		if err != nil {
			n.log.Warn("Dropping expiring row",
				zap.String("title", title),
				zap.String("expired_date", row.ExpiredDate),
				zap.Error(err),
			)
			continue
		}
		out = append(out, models.ExpiringCandidate{Title: title, ExpiredDate: date})
	}
	return out
}

// MergeTitles unions title lists. Titles are trimmed, empties dropped, and
// the result is sorted.
func MergeTitles(lists ...[]string) []string {
	set := make(reconcile.Set[string])
	for _, l := range lists {
		for _, t := range l {
			if t = strings.TrimSpace(t); t != "" {
				set.Add(t)
			}
		}
	}
	return reconcile.Sorted(set)
}

// ParseReleaseDate parses a YYYY-MM-DD date. An empty string is a valid
// unknown date.
func ParseReleaseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

var expiryLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseExpiryDate accepts the date layouts the catalog has been seen to use.
func ParseExpiryDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
