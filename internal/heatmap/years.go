package heatmap

import (
	"sort"
	"strconv"
	"strings"
)

// KeyPrefix namespaces persisted records in the key-value store.
const KeyPrefix = "heatmapData_"

// Selectable years. The range stays far inside what time.Time represents,
// so grid arithmetic never wraps.
const (
	MinYear = -1_000_000_000
	MaxYear = 1_000_000_000
)

// ValidYear reports whether year can be selected.
func ValidYear(year int) bool {
	return year >= MinYear && year <= MaxYear
}

// RecordKey returns the store key holding year's activity.
func RecordKey(year int) string {
	return KeyPrefix + strconv.Itoa(year)
}

// yearFromKey extracts the year from a record key. Keys outside the namespace,
// or whose suffix is not a selectable year, are rejected.
func yearFromKey(key string) (int, bool) {
	suffix, ok := strings.CutPrefix(key, KeyPrefix)
	if !ok {
		return 0, false
	}
	year, err := strconv.Atoi(suffix)
	if err != nil || !ValidYear(year) {
		return 0, false
	}
	return year, true
}

// AvailableYears merges the years found in keys with currentYear and currentYear+1
// and returns them most recent first, without duplicates.
func AvailableYears(keys []string, currentYear int) []int {
	seen := map[int]struct{}{
		currentYear:     {},
		currentYear + 1: {},
	}
	for _, k := range keys {
		if year, ok := yearFromKey(k); ok {
			seen[year] = struct{}{}
		}
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
