package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+), which is unavailable on the
// Go 1.21 toolchain used to build this module.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})
}

func writeUserConfig(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, UserConfigDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, UserConfigFile), []byte(content), 0644))
}

func TestLoaderLoad(t *testing.T) {
	t.Run("empty when nothing exists", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		chdir(t, t.TempDir())

		cfg, err := NewLoader(nil).Load()
		require.NoError(t, err)
		assert.Empty(t, cfg.Types)
	})

	t.Run("user config only", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		writeUserConfig(t, home, `
types:
  Base:
    locks:
      - attributes: [created_at]
`)
		chdir(t, t.TempDir())

		cfg, err := NewLoader(nil).Load()
		require.NoError(t, err)
		require.Contains(t, cfg.Types, "Base")
		assert.Equal(t, []string{"created_at"}, cfg.Types["Base"].Locks[0].Attributes)
	})

	t.Run("project config replaces same-named user types", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		writeUserConfig(t, home, `
types:
  Base:
    locks:
      - attributes: [created_at]
  Account:
    locks:
      - attributes: [owner_id]
`)

		project := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte(`
types:
  Account:
    locks:
      - attributes: [currency]
        mode: fatal
`), 0644))
		chdir(t, project)

		cfg, err := NewLoader(nil).Load()
		require.NoError(t, err)

		// User-only types survive the merge.
		require.Contains(t, cfg.Types, "Base")
		// Project declaration wins wholesale for Account.
		account := cfg.Types["Account"]
		require.Len(t, account.Locks, 1)
		assert.Equal(t, []string{"currency"}, account.Locks[0].Attributes)
		assert.Equal(t, "fatal", account.Locks[0].Mode)
	})

	t.Run("broken user config is skipped", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		writeUserConfig(t, home, "types: [not a map")

		project := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte(`
types:
  Account:
    locks:
      - attributes: [owner_id]
`), 0644))
		chdir(t, project)

		cfg, err := NewLoader(nil).Load()
		require.NoError(t, err)
		assert.Contains(t, cfg.Types, "Account")
		assert.Len(t, cfg.Types, 1)
	})

	t.Run("invalid merged config fails validation", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		project := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte(`
types:
  Account:
    extends: Ghost
    locks:
      - attributes: [owner_id]
`), 0644))
		chdir(t, project)

		_, err := NewLoader(nil).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extends unknown type Ghost")
	})
}
