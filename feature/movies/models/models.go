package models

import "time"

// MovieRecord is the canonical shape of a film produced by normalization.
type MovieRecord struct {
	Title               string     `json:"title"`
	ExternalID          int64      `json:"external_id"`
	ReleaseDate         *time.Time `json:"release_date"`
	Overview            string     `json:"overview"`
	PosterPath          string     `json:"poster_path"`
	IsTheatricalRelease bool       `json:"is_theatrical_release"`
}

// PersistedMovie is what an upsert hands back for each record.
type PersistedMovie struct {
	ID         int64  `json:"id"`
	ExternalID int64  `json:"external_id"`
	Title      string `json:"title"`
}

// ProviderPair is one (movie, provider slot) relationship.
type ProviderPair struct {
	MovieID    int64 `json:"movie_id"`
	ProviderID int   `json:"provider_id"`
}

// ExpiringCandidate is a row scraped from the catalog's expiring list.
type ExpiringCandidate struct {
	Title       string    `json:"title"`
	ExpiredDate time.Time `json:"expired_date"`
}

// ExpiringMovie is a candidate matched to a reference title.
type ExpiringMovie struct {
	ExternalID  int64     `json:"external_id"`
	Title       string    `json:"title"`
	ExpiredDate time.Time `json:"expired_date"`
}

// ReferenceMovie is one entry of the reference list.
type ReferenceMovie struct {
	ExternalID int64  `json:"external_id"`
	Title      string `json:"title"`
}
