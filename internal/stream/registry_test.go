package stream

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempHandle(t *testing.T) TempFileHandle {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "handle-*.mp3")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return TempFileHandle{Path: f.Name(), CreatedAt: time.Now()}
}

func TestRegistryRegisterIdempotent(t *testing.T) {
	reg := NewRegistry()
	h := tempHandle(t)

	reg.Register(h)
	reg.Register(h)

	assert.Equal(t, 1, reg.Len())
	assert.True(t, reg.Tracked(h.Path))
}

func TestRegistryReleaseDeletesFile(t *testing.T) {
	reg := NewRegistry()
	h := tempHandle(t)
	reg.Register(h)

	reg.Release(h)

	assert.NoFileExists(t, h.Path)
	assert.False(t, reg.Tracked(h.Path))
}

func TestRegistryReleaseOfMissingFileUntracks(t *testing.T) {
	reg := NewRegistry()
	h := tempHandle(t)
	reg.Register(h)
	require.NoError(t, os.Remove(h.Path))

	reg.Release(h)

	assert.False(t, reg.Tracked(h.Path))
}

func TestRegistryReleaseFailureKeepsHandleTracked(t *testing.T) {
	reg := NewRegistry()

	// A non-empty directory cannot be removed with os.Remove, standing in
	// for a deletion failure.
	dir := filepath.Join(t.TempDir(), "stuck")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "child"), 0o755))

	h := TempFileHandle{Path: dir, CreatedAt: time.Now()}
	reg.Register(h)
	reg.Release(h)

	assert.True(t, reg.Tracked(h.Path), "failed release must stay registered for the sweep")
}

func TestRegistrySweepAll(t *testing.T) {
	reg := NewRegistry()
	h1 := tempHandle(t)
	h2 := tempHandle(t)
	reg.Register(h1)
	reg.Register(h2)

	reg.SweepAll()

	assert.NoFileExists(t, h1.Path)
	assert.NoFileExists(t, h2.Path)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryConcurrentRegisterRelease(t *testing.T) {
	reg := NewRegistry()
	dir := t.TempDir()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			f, err := os.CreateTemp(dir, "concurrent-*.mp3")
			if err != nil {
				t.Error(err)
				return
			}
			f.Close()
			h := TempFileHandle{Path: f.Name(), CreatedAt: time.Now()}
			reg.Register(h)
			if n%2 == 0 {
				reg.Release(h)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, reg.Len())
	reg.SweepAll()
	assert.Equal(t, 0, reg.Len())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
