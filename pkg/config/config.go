package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	StoreBadger = "badger"
	StorePebble = "pebble"
	StoreDisk   = "disk"
)

type Config struct {
	ListenAddr string      `yaml:"listen_addr"`
	Store      StoreConfig `yaml:"store"`
	TileDir    string      `yaml:"tile_dir"`
	Compressed bool        `yaml:"compressed"`
	Cache      CacheConfig `yaml:"cache"`
	Workers    int         `yaml:"workers"`
}

type StoreConfig struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`
}

type CacheConfig struct {
	MaxCost     int64 `yaml:"max_cost"`
	NumCounters int64 `yaml:"num_counters"`
}

func Default() Config {
	return Config{
		ListenAddr: ":5000",
		Store:      StoreConfig{Kind: StoreBadger, Path: "./graphtile-db"},
		TileDir:    "./tiles",
		Compressed: true,
		Cache:      CacheConfig{MaxCost: 512 << 20, NumCounters: 100_000},
		Workers:    runtime.NumCPU(),
	}
}

// Load. defaults overlaid with the yaml file at path. empty path means defaults only.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %v: %w", path, err, ErrInvalidConfig)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Store.Kind {
	case StoreBadger, StorePebble:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is empty: %w", ErrInvalidConfig)
		}
	case StoreDisk:
		if c.TileDir == "" {
			return fmt.Errorf("tile_dir is empty: %w", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("store.kind %q: %w", c.Store.Kind, ErrInvalidConfig)
	}
	if c.Cache.MaxCost <= 0 || c.Cache.NumCounters <= 0 {
		return fmt.Errorf("cache sizes must be positive: %w", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers %d: %w", c.Workers, ErrInvalidConfig)
	}
	return nil
}
