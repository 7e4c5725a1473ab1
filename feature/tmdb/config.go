package tmdb

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config holds configuration for the metadata provider API.
type Config struct {
	// Token is the bearer token sent on every request.
	Token string `mapstructure:"token" default:""`
	// TheatricalURL lists upcoming theatrical releases.
	TheatricalURL string `mapstructure:"theatrical_url" default:"https://api.themoviedb.org/3/movie/upcoming?language=ko-KR&region=KR"`
	// DiscoverURL is queried once per streaming provider.
	DiscoverURL string `mapstructure:"discover_url" default:"https://api.themoviedb.org/3/discover/movie"`
	// HorrorGenreID is the genre tag kept by the normalizer.
	HorrorGenreID int `mapstructure:"horror_genre_id" default:"27"`
	// Language and WatchRegion scope provider discovery.
	Language    string `mapstructure:"language" default:"ko-KR"`
	WatchRegion string `mapstructure:"watch_region" default:"KR"`
	// MaxConcurrentRequests caps concurrent page fetches.
	MaxConcurrentRequests int `mapstructure:"max_concurrent_requests" default:"5"`
	// Timeout bounds a single HTTP request.
	Timeout time.Duration `mapstructure:"timeout" default:"30s"`
	// ProviderMap maps external provider ids to provider slots, as "external:slot" pairs.
	ProviderMap string `mapstructure:"provider_map" default:"8:1,337:2,356:3,96:4,3:5"`
}

// ParseProviderMap parses "8:1,337:2" into {8: 1, 337: 2}.
func ParseProviderMap(raw string) (map[int]int, error) {
	out := make(map[int]int)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ext, slot, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("provider map entry %q: want external:slot", part)
		}
		extID, err := strconv.Atoi(strings.TrimSpace(ext))
		if err != nil {
			return nil, fmt.Errorf("provider map entry %q: %w", part, err)
		}
		slotID, err := strconv.Atoi(strings.TrimSpace(slot))
		if err != nil {
			return nil, fmt.Errorf("provider map entry %q: %w", part, err)
		}
		if _, dup := out[extID]; dup {
			return nil, fmt.Errorf("provider map entry %q: duplicate external id", part)
		}
		out[extID] = slotID
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("provider map is empty")
	}
	return out, nil
}

// ProviderIDs returns the external provider ids of a map in ascending order.
func ProviderIDs(m map[int]int) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
