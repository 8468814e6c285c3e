package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/attrlock/guard"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatcher_InitialLoadAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attrlock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
types:
  Account:
    locks:
      - attributes: [owner_id]
`), 0644))

	registries := make(chan *guard.Registry, 4)
	w, err := NewWatcher(path, 20*time.Millisecond, func(r *guard.Registry) {
		registries <- r
	}, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	initial := waitForRegistry(t, registries)
	assert.Equal(t, []string{"owner_id"}, initial.LockedAttributeNames("Account"))

	require.NoError(t, os.WriteFile(path, []byte(`
types:
  Account:
    locks:
      - attributes: [owner_id, currency]
`), 0644))

	reloaded := waitForRegistry(t, registries)
	assert.Equal(t, []string{"owner_id", "currency"}, reloaded.LockedAttributeNames("Account"))
}

func TestWatcher_KeepsRegistryOnBrokenReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attrlock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
types:
  Account:
    locks:
      - attributes: [owner_id]
`), 0644))

	registries := make(chan *guard.Registry, 4)
	w, err := NewWatcher(path, 20*time.Millisecond, func(r *guard.Registry) {
		registries <- r
	}, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	waitForRegistry(t, registries)

	// A broken config must not be applied.
	require.NoError(t, os.WriteFile(path, []byte("types: ["), 0644))

	select {
	case r := <-registries:
		t.Fatalf("broken config was applied: %v", r.Types())
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StartFailsOnMissingFile(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "nope.yaml"), 0, func(*guard.Registry) {}, discardLogger())
	require.NoError(t, err)
	defer w.Stop()

	require.Error(t, w.Start(context.Background()))
}

func TestNewWatcher_RequiresApply(t *testing.T) {
	_, err := NewWatcher("attrlock.yaml", 0, nil, discardLogger())
	require.Error(t, err)
}

func waitForRegistry(t *testing.T, ch <-chan *guard.Registry) *guard.Registry {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for registry")
		return nil
	}
}
