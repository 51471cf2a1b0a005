package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastui/internal/config"
)

func TestConfigWatcher_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toastui.toml")
	require.NoError(t, os.WriteFile(path, []byte("[defaults]\nposition = \"top-left\"\n"), 0644))

	w, err := NewConfigWatcher(path, discardLogger())
	require.NoError(t, err)
	w.SetDelay(50 * time.Millisecond)

	reloaded := make(chan *config.Config, 4)
	failed := make(chan error, 4)
	w.SetReloadCallback(func(cfg *config.Config) { reloaded <- cfg })
	w.SetErrorCallback(func(err error) { failed <- err })

	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(func() { _ = w.Stop() })

	// unrelated files in the directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1\n"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("[defaults]\nposition = \"bottom-right\"\n"), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "bottom-right", cfg.Defaults.Position)
	case err := <-failed:
		t.Fatalf("unexpected reload error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	require.NoError(t, os.WriteFile(path, []byte("[defaults]\nposition = \"middle\"\n"), 0644))
	select {
	case err := <-failed:
		var verr *config.ValidationError
		assert.ErrorAs(t, err, &verr)
	case <-time.After(5 * time.Second):
		t.Fatal("invalid config was not reported")
	}
}

func TestConfigWatcher_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toastui.toml")
	w, err := NewConfigWatcher(path, nil)
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
