package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigWatcherDebouncesReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notionsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\n"), 0o600))

	var reloads atomic.Int32
	cw, err := NewConfigWatcher(path, func(context.Context) error {
		reloads.Add(1)
		return nil
	})
	require.NoError(t, err)
	cw.debounceTime = 200 * time.Millisecond
	require.NoError(t, cw.Start(t.Context()))
	t.Cleanup(cw.Stop)

	for i := range 3 {
		require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\n# edit "+string(rune('a'+i))+"\n"), 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o600))

	require.Eventually(t, func() bool { return reloads.Load() == 1 }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(500 * time.Millisecond)
	require.Equal(t, int32(1), reloads.Load())
}

func TestConfigWatcherStopIsIdempotent(t *testing.T) {
	cw, err := NewConfigWatcher(filepath.Join(t.TempDir(), "c.yaml"), func(context.Context) error { return nil })
	require.NoError(t, err)
	cw.Stop()
	cw.Stop()
}
