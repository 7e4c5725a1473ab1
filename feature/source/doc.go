// Package source holds the contract shared by every source adapter: a fetch is
// wrapped in an explicit retry policy at the call site, and exhausting that
// policy yields a FetchError naming the source.
package source
