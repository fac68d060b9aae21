package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphtile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: ":6000"
store:
  kind: pebble
  path: /var/lib/graphtile
compressed: false
cache:
  max_cost: 1024
workers: 3
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":6000", cfg.ListenAddr)
	assert.Equal(t, StoreConfig{Kind: StorePebble, Path: "/var/lib/graphtile"}, cfg.Store)
	assert.False(t, cfg.Compressed)
	assert.Equal(t, int64(1024), cfg.Cache.MaxCost)
	assert.Equal(t, Default().Cache.NumCounters, cfg.Cache.NumCounters)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, Default().TileDir, cfg.TileDir)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"kind":    "store:\n  kind: bolt\n",
		"workers": "workers: 0\n",
		"cache":   "cache:\n  max_cost: -1\n",
		"syntax":  "store: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
