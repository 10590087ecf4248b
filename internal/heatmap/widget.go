package heatmap

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Widget is one heatmap instance: the selected year, its activity, and the
// transient hover state. All methods are safe for concurrent use; calls are
// serialized so each one observes a consistent widget.
type Widget struct {
	mu sync.Mutex

	store *ActivityStore
	log   *zap.SugaredLogger
	now   func() time.Time
	loc   *time.Location

	onPersistError func(error)

	year     int
	activity ActivityMap
	hover    DateKey
	notice   string
}

// Option configures a Widget.
type Option func(*Widget)

// WithClock overrides the clock used for "today" and the current year.
func WithClock(now func() time.Time) Option {
	return func(w *Widget) { w.now = now }
}

// WithLocation sets the timezone in which "today" is determined.
func WithLocation(loc *time.Location) Option {
	return func(w *Widget) {
		if loc != nil {
			w.loc = loc
		}
	}
}

// WithPersistErrorHook registers fn to be told about swallowed store write failures.
func WithPersistErrorHook(fn func(error)) Option {
	return func(w *Widget) { w.onPersistError = fn }
}

// NewWidget creates a widget showing the current year with its persisted activity.
func NewWidget(store *ActivityStore, log *zap.SugaredLogger, opts ...Option) *Widget {
	w := &Widget{
		store: store,
		log:   log.Named("widget"),
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(w)
	}

	w.year = w.currentYear()
	w.activity = w.store.Load(w.year)
	return w
}

// Year returns the selected year.
func (w *Widget) Year() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.year
}

// SetYear selects year and replaces the in-memory activity with its record.
// Years outside MinYear..MaxYear return ErrInvalidYear and keep the selection.
func (w *Widget) SetYear(year int) error {
	if !ValidYear(year) {
		return fmt.Errorf("%w: %d is outside %d..%d", ErrInvalidYear, year, MinYear, MaxYear)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.switchYearLocked(year)
	return nil
}

// SelectYear parses raw as a year and selects it. On error the current
// selection is kept.
func (w *Widget) SelectYear(raw string) error {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidYear, raw)
	}
	return w.SetYear(year)
}

// PrevYear moves the selection back one year and returns it. At MinYear the
// selection stays put.
func (w *Widget) PrevYear() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.year > MinYear {
		w.switchYearLocked(w.year - 1)
	}
	return w.year
}

// NextYear moves the selection forward one year and returns it. At MaxYear
// the selection stays put.
func (w *Widget) NextYear() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.year < MaxYear {
		w.switchYearLocked(w.year + 1)
	}
	return w.year
}

func (w *Widget) switchYearLocked(year int) {
	w.year = year
	w.activity = w.store.Load(year)
	w.hover = ""
	w.log.Debugw("year selected", "year", year, "entries", len(w.activity))
}

// Level returns the level of date in the selected year's activity.
func (w *Widget) Level(date DateKey) Level {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activity.Level(date)
}

// Activity returns a copy of the selected year's activity.
func (w *Widget) Activity() ActivityMap {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activity.Clone()
}

// RecordClick advances date's level by one step of the cycle and persists the
// year. A failed write does not undo the click: the in-memory level stands and
// a notice is recorded.
func (w *Widget) RecordClick(date DateKey) Level {
	w.mu.Lock()
	defer w.mu.Unlock()

	level := w.activity.Level(date).Next()
	w.activity[date] = level
	w.persistLocked()
	return level
}

func (w *Widget) persistLocked() {
	if err := w.store.Persist(w.year, w.activity); err != nil {
		w.notice = "Changes are kept in memory only: " + err.Error()
		w.log.Errorw("failed to persist activity", "year", w.year, "error", err)
		if w.onPersistError != nil {
			w.onPersistError(err)
		}
		return
	}
	w.notice = ""
}

// Notice returns the message of the last swallowed write failure, or "".
func (w *Widget) Notice() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.notice
}

// Hover marks date as the single cell showing a tooltip.
func (w *Widget) Hover(date DateKey) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hover = date
}

// Leave clears the tooltip.
func (w *Widget) Leave() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hover = ""
}

// Hovered returns the cell currently showing a tooltip.
func (w *Widget) Hovered() (DateKey, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hover, w.hover != ""
}

// Today returns the date-key of the current day in the widget's timezone.
func (w *Widget) Today() DateKey {
	return KeyOf(w.now().In(w.loc))
}

func (w *Widget) currentYear() int {
	return w.now().In(w.loc).Year()
}

// AvailableYears lists the years with persisted records plus the current and
// next year, most recent first. It is recomputed on every call.
func (w *Widget) AvailableYears() []int {
	keys, err := w.store.Keys()
	if err != nil {
		w.log.Warnw("failed to list persisted years", "error", err)
		keys = nil
	}
	return AvailableYears(keys, w.currentYear())
}

// View renders the selected year.
func (w *Widget) View() View {
	years := w.AvailableYears()

	w.mu.Lock()
	defer w.mu.Unlock()

	return buildView(viewInput{
		year:     w.year,
		years:    years,
		activity: w.activity,
		today:    w.Today(),
		hover:    w.hover,
		notice:   w.notice,
	})
}
