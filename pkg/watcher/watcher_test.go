package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "path.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	fw, err := NewFileWatcher(50*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)
	defer fw.Close()

	var calls atomic.Int32
	var got atomic.Value
	require.NoError(t, fw.Watch([]string{path}, func(changed string) {
		calls.Add(1)
		got.Store(changed)
	}))
	fw.Start()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`[{"x":1,"y":2,"z":3}]`), 0o644))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	abs, _ := filepath.Abs(path)
	assert.Equal(t, abs, got.Load())
}

func TestFileWatcher_FollowsRenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "path.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	fw, err := NewFileWatcher(20*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)
	defer fw.Close()

	var calls atomic.Int32
	require.NoError(t, fw.Watch([]string{path}, func(string) { calls.Add(1) }))
	fw.Start()

	tmp := filepath.Join(dir, "path.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("[]"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "path.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	fw, err := NewFileWatcher(10*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)
	defer fw.Close()

	var calls atomic.Int32
	require.NoError(t, fw.Watch([]string{path}, func(string) { calls.Add(1) }))
	fw.Start()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("[]"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestFileWatcher_CloseStopsLoop(t *testing.T) {
	fw, err := NewFileWatcher(10*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)
	fw.Start()
	require.NoError(t, fw.Close())
	require.NoError(t, fw.Close())

	select {
	case <-fw.Done():
	case <-time.After(time.Second):
		t.Fatal("event loop did not exit")
	}
}

func TestFileWatcher_RemoveAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "path.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	fw, err := NewFileWatcher(10*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)
	defer fw.Close()

	var calls atomic.Int32
	require.NoError(t, fw.Watch([]string{path}, func(string) { calls.Add(1) }))
	fw.Start()
	require.NoError(t, fw.RemoveAll())

	require.NoError(t, os.WriteFile(path, []byte("[1]"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, calls.Load())
}
