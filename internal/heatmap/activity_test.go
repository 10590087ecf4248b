package heatmap_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/i474232898/activity-heatmap/internal/heatmap"
	"github.com/i474232898/activity-heatmap/internal/logger"
)

func TestActivityStoreLoadMissing(t *testing.T) {
	s := heatmap.NewActivityStore(newRecordingKV(), logger.Test(t))

	m := s.Load(2024)
	assert.NotNil(t, m)
	assert.Empty(t, m)
}

func TestActivityStorePersistAndLoad(t *testing.T) {
	kv := newRecordingKV()
	s := heatmap.NewActivityStore(kv, logger.Test(t))

	in := heatmap.ActivityMap{"2024-02-29": 3, "2024-07-04": 1}
	require.NoError(t, s.Persist(2024, in))

	raw, ok, err := kv.Get("heatmapData_2024")
	require.NoError(t, err)
	require.True(t, ok)

	var decoded map[string]int
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, map[string]int{"2024-02-29": 3, "2024-07-04": 1}, decoded)

	assert.Equal(t, in, s.Load(2024))
	assert.Empty(t, s.Load(2025))
}

func TestActivityStoreNeverWritesEmptyRecord(t *testing.T) {
	kv := newRecordingKV()
	s := heatmap.NewActivityStore(kv, logger.Test(t))

	require.NoError(t, s.Persist(2024, heatmap.ActivityMap{}))
	require.NoError(t, s.Persist(2024, heatmap.ActivityMap{"2024-01-01": 0}))

	assert.Zero(t, kv.sets)
	assert.Zero(t, kv.deletes)
	keys, err := kv.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestActivityStoreClearingLastEntryDeletesRecord(t *testing.T) {
	kv := newRecordingKV()
	s := heatmap.NewActivityStore(kv, logger.Test(t))

	require.NoError(t, s.Persist(2024, heatmap.ActivityMap{"2024-01-01": 4}))
	require.NoError(t, s.Persist(2024, heatmap.ActivityMap{"2024-01-01": 0}))

	_, ok, err := kv.Get("heatmapData_2024")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, kv.deletes)
}

func TestActivityStorePrunesZeroEntries(t *testing.T) {
	kv := newRecordingKV()
	s := heatmap.NewActivityStore(kv, logger.Test(t))

	require.NoError(t, s.Persist(2024, heatmap.ActivityMap{"2024-01-01": 0, "2024-01-02": 2}))

	raw, _, err := kv.Get("heatmapData_2024")
	require.NoError(t, err)
	assert.JSONEq(t, `{"2024-01-02":2}`, raw)
}

func TestActivityStoreMalformedRecord(t *testing.T) {
	kv := newRecordingKV()
	require.NoError(t, kv.MemoryStore.Set("heatmapData_2024", "{not json"))

	lggr, logs := logger.TestObserved(t, zapcore.WarnLevel)
	s := heatmap.NewActivityStore(kv, lggr)

	m := s.Load(2024)
	assert.Empty(t, m)
	assert.Equal(t, 1, logs.FilterMessageSnippet("malformed activity record").Len())
}

func TestActivityStoreLoadDropsInvalidEntries(t *testing.T) {
	kv := newRecordingKV()
	require.NoError(t, kv.MemoryStore.Set("heatmapData_2024",
		`{"2024-03-01":0,"2024-03-02":4,"2024-03-03":7,"yesterday":2,"2024-02-30":1}`))

	lggr, logs := logger.TestObserved(t, zapcore.WarnLevel)
	s := heatmap.NewActivityStore(kv, lggr)

	m := s.Load(2024)
	assert.Equal(t, heatmap.ActivityMap{"2024-03-01": 0, "2024-03-02": 4}, m)
	assert.Equal(t, 3, logs.FilterMessageSnippet("dropping invalid activity entry").Len())
}

func TestActivityStorePersistWriteFailure(t *testing.T) {
	kv := newRecordingKV()
	kv.failing = true
	s := heatmap.NewActivityStore(kv, logger.Test(t))

	err := s.Persist(2024, heatmap.ActivityMap{"2024-01-01": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, errDiskFull)
}
