package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRelevant(t *testing.T) {
	w := &Watcher{names: map[string]struct{}{"collection.json": {}}}

	tests := []struct {
		name     string
		event    fsnotify.Event
		expected bool
	}{
		{"create watched file", fsnotify.Event{Name: "/d/collection.json", Op: fsnotify.Create}, true},
		{"write watched file", fsnotify.Event{Name: "/d/collection.json", Op: fsnotify.Write}, true},
		{"rename watched file", fsnotify.Event{Name: "/d/collection.json", Op: fsnotify.Rename}, true},
		{"remove watched file", fsnotify.Event{Name: "/d/collection.json", Op: fsnotify.Remove}, true},
		{"chmod ignored", fsnotify.Event{Name: "/d/collection.json", Op: fsnotify.Chmod}, false},
		{"temp file ignored", fsnotify.Event{Name: "/d/collection.json.tmp", Op: fsnotify.Write}, false},
		{"lock file ignored", fsnotify.Event{Name: "/d/collection.lock", Op: fsnotify.Create}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, w.relevant(tt.event))
		})
	}
}

func TestRelevant_NoNamesMatchesAll(t *testing.T) {
	w := &Watcher{names: map[string]struct{}{}}
	assert.True(t, w.relevant(fsnotify.Event{Name: "/d/000001.vlog", Op: fsnotify.Write}))
}

func TestWatch_ReportsRenameOverTarget(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, "collection.json")
	require.NoError(t, err)
	defer w.Close()
	w.SetDebounce(10 * time.Millisecond)

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, func() { calls.Add(1) }) }()

	tmp := filepath.Join(dir, "collection.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("{}"), 0o600))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, "collection.json")))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, "collection.json")
	require.NoError(t, err)
	defer w.Close()
	w.SetDebounce(10 * time.Millisecond)

	var calls atomic.Int32
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	go func() {
		_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600)
	}()

	err = w.Watch(ctx, func() { calls.Add(1) })

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, calls.Load())
}

func TestWatch_StopsWhenClosed(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Watch(context.Background(), func() {}) }()

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after Close")
	}
}
