// Package tmdb is the metadata provider adapter.
//
// It reads paginated JSON listings (the theatrical release feed and per-provider
// discovery) using bearer-token authentication. Page 1 is fetched first to learn
// total_pages; the remaining pages are fetched concurrently under a request cap.
// Every page request runs under the caller's retry policy.
package tmdb
