package normalize

import (
	"horror-tracker/feature/scraper"
	"horror-tracker/feature/tmdb"
)

// Feed identifies which metadata endpoint produced an APIBatch.
type Feed string

const (
	// FeedTheatrical is the theatrical release feed.
	FeedTheatrical Feed = "theatrical"
	// FeedProvider is the per-provider discover feed.
	FeedProvider Feed = "provider"
)

// Batch is the raw output of one source. The set of variants is closed.
type Batch interface {
	batch()
}

// APIBatch holds metadata API results from one feed.
type APIBatch struct {
	Feed    Feed
	Results []tmdb.Result
}

// TitleBatch holds the titles scraped for one logical source, typically both
// listing pages of a theater chain.
type TitleBatch struct {
	Source string
	Titles []string
}

// ExpiringBatch holds the rows of the catalog's expiring table.
type ExpiringBatch struct {
	Rows []scraper.ExpiringRow
}

func (APIBatch) batch()      {}
func (TitleBatch) batch()    {}
func (ExpiringBatch) batch() {}

// FromChain merges a chain's listing pages into one title batch.
func FromChain(l scraper.ChainListing) TitleBatch {
	return TitleBatch{Source: l.Theater, Titles: MergeTitles(l.NowShowing, l.Upcoming)}
}
