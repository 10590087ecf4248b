package heatmap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidYear is returned when a year selection is not an integer in MinYear..MaxYear.
	ErrInvalidYear = errors.New("invalid year")
	// ErrInvalidDate is returned when a date-key is not a valid YYYY-MM-DD calendar date.
	ErrInvalidDate = errors.New("invalid date")
)

// Level is the self-reported activity for one calendar day.
type Level int

const (
	LevelNone Level = iota
	LevelLight
	LevelModerate
	LevelProductive
	LevelVeryProductive
)

// NumLevels is the length of the click cycle.
const NumLevels = 5

// Valid reports whether l is within 0..4.
func (l Level) Valid() bool {
	return l >= LevelNone && l < NumLevels
}

// Next returns the level reached by one click.
func (l Level) Next() Level {
	if !l.Valid() {
		return LevelLight
	}
	return (l + 1) % NumLevels
}

// Color returns the fill color for a cell in the selected year.
func (l Level) Color() string {
	switch l {
	case LevelLight:
		return "#bbf7d0"
	case LevelModerate:
		return "#86efac"
	case LevelProductive:
		return "#4ade80"
	case LevelVeryProductive:
		return "#22c55e"
	default:
		return "#f3f4f6"
	}
}

// Meaning returns the legend text for the level.
func (l Level) Meaning() string {
	switch l {
	case LevelLight:
		return "Light work"
	case LevelModerate:
		return "Moderate work"
	case LevelProductive:
		return "Productive day"
	case LevelVeryProductive:
		return "Very productive"
	default:
		return "No work"
	}
}

// MutedColor is used for padding days that belong to an adjacent year.
const MutedColor = "#f9fafb"

// DateLayout is the canonical date-key layout.
const DateLayout = "2006-01-02"

// DateKey identifies a calendar day independent of time-of-day and timezone.
type DateKey string

// KeyOf returns the date-key of t's calendar date in t's own location.
func KeyOf(t time.Time) DateKey {
	return DateKey(t.Format(DateLayout))
}

// ParseDateKey validates s and returns it as a DateKey. Years outside
// 0000..9999 are accepted in the form KeyOf writes them, e.g. "10000-01-01"
// or "-0005-03-15".
func ParseDateKey(s string) (DateKey, error) {
	if _, ok := parseKey(s); !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateKey(s), nil
}

// Time returns midnight UTC of the key's date.
func (k DateKey) Time() (time.Time, error) {
	t, ok := parseKey(string(k))
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, string(k))
	}
	return t, nil
}

func parseKey(s string) (time.Time, bool) {
	sign, rest := 1, s
	if strings.HasPrefix(rest, "-") {
		sign, rest = -1, rest[1:]
	}

	parts := strings.Split(rest, "-")
	if len(parts) != 3 || len(parts[0]) < 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return time.Time{}, false
	}
	var nums [3]int
	for i, p := range parts {
		if strings.Trim(p, "0123456789") != "" {
			return time.Time{}, false
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}

	// time.Date normalizes overflowing months and days, so the round trip
	// rejects "2023-02-29" as well as zero-padded or signed-zero years.
	t := time.Date(sign*nums[0], time.Month(nums[1]), nums[2], 0, 0, 0, 0, time.UTC)
	if KeyOf(t) != DateKey(s) {
		return time.Time{}, false
	}
	return t, true
}

// ActivityMap maps a day to its level. Missing days are LevelNone.
type ActivityMap map[DateKey]Level

// Level returns the stored level for k, or LevelNone.
func (m ActivityMap) Level(k DateKey) Level {
	return m[k]
}

// Clone returns a copy safe to hand out of the widget.
func (m ActivityMap) Clone() ActivityMap {
	out := make(ActivityMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// withoutZeros drops LevelNone entries; used when serializing a record.
func (m ActivityMap) withoutZeros() ActivityMap {
	out := make(ActivityMap, len(m))
	for k, v := range m {
		if v != LevelNone {
			out[k] = v
		}
	}
	return out
}

// LegendEntry is one row of the static legend.
type LegendEntry struct {
	Level   Level  `json:"level"`
	Color   string `json:"color"`
	Meaning string `json:"meaning"`
}

// Legend lists every level with its color and meaning, lowest first.
func Legend() []LegendEntry {
	entries := make([]LegendEntry, 0, NumLevels)
	for l := LevelNone; l < NumLevels; l++ {
		entries = append(entries, LegendEntry{Level: l, Color: l.Color(), Meaning: l.Meaning()})
	}
	return entries
}
