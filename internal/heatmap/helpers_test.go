package heatmap_test

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/activity-heatmap/internal/heatmap"
	"github.com/i474232898/activity-heatmap/internal/logger"
	"github.com/i474232898/activity-heatmap/internal/store"
)

var errDiskFull = errors.New("write heatmap_data.json: no space left on device")

// recordingKV counts writes on top of a memory store and can be told to fail them.
type recordingKV struct {
	*store.MemoryStore
	sets    int
	deletes int
	failing bool
}

func newRecordingKV() *recordingKV {
	return &recordingKV{MemoryStore: store.NewMemoryStore()}
}

func (r *recordingKV) Set(key, value string) error {
	r.sets++
	if r.failing {
		return errDiskFull
	}
	return r.MemoryStore.Set(key, value)
}

func (r *recordingKV) Delete(key string) error {
	r.deletes++
	if r.failing {
		return errDiskFull
	}
	return r.MemoryStore.Delete(key)
}

// fixedClock is noon UTC on 2024-06-15.
func fixedClock() time.Time {
	return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func newTestWidget(t *testing.T, kv heatmap.KV, opts ...heatmap.Option) *heatmap.Widget {
	t.Helper()
	lggr := logger.Test(t)
	opts = append([]heatmap.Option{heatmap.WithClock(fixedClock), heatmap.WithLocation(time.UTC)}, opts...)
	return heatmap.NewWidget(heatmap.NewActivityStore(kv, lggr), lggr, opts...)
}
