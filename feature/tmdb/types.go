package tmdb

import "fmt"

// Page is one page of a paginated movie listing.
type Page struct {
	Page       int      `json:"page"`
	TotalPages int      `json:"total_pages"`
	Results    []Result `json:"results"`
}

// Result is a single movie entry.
type Result struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Overview    string `json:"overview"`
	PosterPath  string `json:"poster_path"`
	GenreIDs    []int  `json:"genre_ids"`
}

// HasGenre reports whether the result is tagged with genre.
func (r Result) HasGenre(genre int) bool {
	for _, g := range r.GenreIDs {
		if g == genre {
			return true
		}
	}
	return false
}

// ValidationError reports a response the client could not accept: a
// non-success status or a body of unexpected shape.
type ValidationError struct {
	Endpoint string
	Status   int
	Payload  string
	Err      error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tmdb %s: status %d: %v body=%q", e.Endpoint, e.Status, e.Err, e.Payload)
	}
	return fmt.Sprintf("tmdb %s: status %d body=%q", e.Endpoint, e.Status, e.Payload)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PartialError reports a paginated fetch that lost pages after retries. The
// results that were read are returned alongside it.
type PartialError struct {
	Source string
	Total  int
	Failed []int
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("fetch %s incomplete: %d of %d page(s) failed %v", e.Source, len(e.Failed), e.Total, e.Failed)
}

const maxPayload = 200

func truncate(b []byte) string {
	return string(b[:min(len(b), maxPayload)])
}
