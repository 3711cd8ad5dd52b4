package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleArtifact struct {
	LectureID string    `json:"lecture_id"`
	SampleSec float64   `json:"sample_sec"`
	Values    []float64 `json:"values"`
}

func TestMetricsStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "metrics")
	store, err := NewMetricsStore(dir)
	require.NoError(t, err)

	in := sampleArtifact{LectureID: "lec-1", SampleSec: 1, Values: []float64{0.25, 0.5}}
	path, err := store.WriteJSON("lec-1_20260101-120000.json", in)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "lec-1_20260101-120000.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"lecture_id\": \"lec-1\"")

	var out sampleArtifact
	require.NoError(t, store.ReadJSON(path, &out))
	assert.Equal(t, in, out)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMetricsStoreRejectsEscapingNames(t *testing.T) {
	store, err := NewMetricsStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.WriteJSON("../outside.json", sampleArtifact{})
	assert.ErrorIs(t, err, ErrInvalidPath)

	var out sampleArtifact
	assert.ErrorIs(t, store.ReadJSON("/etc/passwd", &out), ErrInvalidPath)
}

func TestMetricsStoreRemove(t *testing.T) {
	store, err := NewMetricsStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.WriteJSON("lec-2_20260101-120000.json", sampleArtifact{LectureID: "lec-2"})
	require.NoError(t, err)

	require.NoError(t, store.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Remove(path))

	assert.ErrorIs(t, store.Remove("/etc/passwd"), ErrInvalidPath)
}
