package heatmap

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// KV is the string-keyed storage the activity records live in. The memory and
// file stores (and any future backend) must satisfy it.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Keys() ([]string, error)
}

// ActivityStore loads and persists one ActivityMap per year.
type ActivityStore struct {
	kv  KV
	log *zap.SugaredLogger
}

// NewActivityStore creates an ActivityStore on top of kv.
func NewActivityStore(kv KV, log *zap.SugaredLogger) *ActivityStore {
	return &ActivityStore{
		kv:  kv,
		log: log.Named("activity"),
	}
}

// Load returns the persisted map for year. A missing, unreadable or malformed
// record yields an empty map; the latter two are logged.
func (s *ActivityStore) Load(year int) ActivityMap {
	key := RecordKey(year)

	raw, ok, err := s.kv.Get(key)
	if err != nil {
		s.log.Warnw("failed to read activity record; starting empty", "key", key, "error", err)
		return ActivityMap{}
	}
	if !ok {
		return ActivityMap{}
	}

	var decoded map[string]int
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		s.log.Warnw("malformed activity record; starting empty", "key", key, "error", err)
		return ActivityMap{}
	}

	m := make(ActivityMap, len(decoded))
	for date, level := range decoded {
		k, err := ParseDateKey(date)
		if err != nil || !Level(level).Valid() {
			s.log.Warnw("dropping invalid activity entry", "key", key, "date", date, "level", level)
			continue
		}
		m[k] = Level(level)
	}
	return m
}

// Persist writes m under year's key. Zero levels are not serialized. When
// nothing non-zero remains an existing record is removed, and a year that never
// had a record is left unwritten.
func (s *ActivityStore) Persist(year int, m ActivityMap) error {
	key := RecordKey(year)
	record := m.withoutZeros()

	if len(record) == 0 {
		_, exists, err := s.kv.Get(key)
		if err != nil {
			return fmt.Errorf("check record %s: %w", key, err)
		}
		if !exists {
			return nil
		}
		if err := s.kv.Delete(key); err != nil {
			return fmt.Errorf("delete record %s: %w", key, err)
		}
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", key, err)
	}
	if err := s.kv.Set(key, string(data)); err != nil {
		return fmt.Errorf("write record %s: %w", key, err)
	}
	return nil
}

// Keys lists every key in the underlying store.
func (s *ActivityStore) Keys() ([]string, error) {
	return s.kv.Keys()
}
