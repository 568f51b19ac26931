package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/transition/internal/watcher"
)

func startWatcher(t *testing.T, cfg watcher.Config) (*watcher.Watcher, <-chan struct{}) {
	t.Helper()
	w, err := watcher.New(cfg)
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")
	return w, onChange
}

func expectSignal(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal(msg)
	}
}

func expectQuiet(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatal(msg)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	root := t.TempDir()
	appDir := filepath.Join(root, "alpha")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	mainPath := filepath.Join(appDir, "main.py")
	require.NoError(t, os.WriteFile(mainPath, []byte("v0"), 0o644))

	_, onChange := startWatcher(t, watcher.Config{
		Roots:       []string{root},
		DebounceDur: 50 * time.Millisecond,
	})

	// Rapid writes should coalesce into single notification
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(mainPath, []byte(fmt.Sprintf("v%d", i)), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	expectSignal(t, onChange, "expected notification but got timeout")
	expectQuiet(t, onChange, "unexpected second notification")
}

func TestWatcher_IgnoresHiddenAndExcluded(t *testing.T) {
	root := t.TempDir()
	appDir := filepath.Join(root, "alpha")
	require.NoError(t, os.MkdirAll(filepath.Join(appDir, "__pycache__"), 0o755))
	hidden := filepath.Join(appDir, ".swp")
	require.NoError(t, os.WriteFile(hidden, []byte("x"), 0o644))

	_, onChange := startWatcher(t, watcher.Config{
		Roots:       []string{root},
		ExcludeDirs: []string{"__pycache__"},
		DebounceDur: 50 * time.Millisecond,
	})

	require.NoError(t, os.WriteFile(hidden, []byte("y"), 0o644))
	require.NoError(t, os.Chtimes(filepath.Join(appDir, "__pycache__"), time.Now(), time.Now()))

	expectQuiet(t, onChange, "should not notify for hidden or excluded entries")
}

func TestWatcher_TracksNewAppDirectory(t *testing.T) {
	root := t.TempDir()

	w, onChange := startWatcher(t, watcher.Config{
		Roots:       []string{root},
		DebounceDur: 50 * time.Millisecond,
	})

	appDir := filepath.Join(root, "beta")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	expectSignal(t, onChange, "expected notification for new app directory")

	require.Eventually(t, func() bool {
		for _, d := range w.WatchList() {
			if d == appDir {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond, "new app directory should be watched")

	require.NoError(t, os.WriteFile(filepath.Join(appDir, "main.py"), []byte("x"), 0o644))
	expectSignal(t, onChange, "expected notification for write inside new app directory")
}

func TestWatcher_SkipsMissingRoot(t *testing.T) {
	root := t.TempDir()
	missing := filepath.Join(root, "nope")

	w, _ := startWatcher(t, watcher.Config{
		Roots:       []string{root, missing},
		DebounceDur: 50 * time.Millisecond,
	})
	assert.Equal(t, []string{root}, w.WatchList())
}

func TestWatcher_Stop(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(t.TempDir()))
	require.NoError(t, err, "failed to create watcher")

	_, err = w.Start()
	require.NoError(t, err, "failed to start watcher")

	// Stop should not hang or panic
	done := make(chan struct{})
	go func() {
		err := w.Stop()
		assert.NoError(t, err, "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/a", "/b")

	assert.Equal(t, []string{"/a", "/b"}, cfg.Roots)
	assert.Equal(t, 1*time.Second, cfg.DebounceDur)
}
