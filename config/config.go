/*
Package config loads the engine configuration from ini file.

	[storage]
	data_dir = data
	block_size = 4096
	pool_capacity = 50
	layout_cache_size = 1024

	[log]
	level = info

Every key is optional. the key which is missing or cannot be parsed takes the default value.
*/
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"

	"github.com/HayatoShiba/ppheap/am"
	"github.com/HayatoShiba/ppheap/storage/buffer"
	"github.com/HayatoShiba/ppheap/storage/page"
	"github.com/HayatoShiba/ppheap/storage/tuple"
)

const (
	sectionStorage = "storage"
	sectionLog     = "log"

	// minPoolCapacity is 2 because the first page of the table stays pinned during insert
	minPoolCapacity = 2
	// minBlockSize holds the free list head and one slot of flag + next pointer
	minBlockSize = tuple.PointerSize + tuple.FlagSize + tuple.PointerSize
)

// ErrInvalidConfig is returned when the config cannot run the engine
var ErrInvalidConfig = errors.New("invalid config")

// Config is the engine configuration
type Config struct {
	// DataDir is the directory where table files are
	DataDir string
	// BlockSize is the byte size of page. this must not change after tables are created
	BlockSize int
	// PoolCapacity is the number of pages buffer pool caches
	PoolCapacity int
	// LayoutCacheSize is the number of tables whose layout is cached
	LayoutCacheSize int
	// LogLevel is the name of logrus level
	LogLevel string
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		DataDir:         "data",
		BlockSize:       page.DefaultBlockSize,
		PoolCapacity:    buffer.DefaultCapacity,
		LayoutCacheSize: am.DefaultLayoutCacheSize,
		LogLevel:        "info",
	}
}

// Load reads the ini file at path. when the file doesn't exist, the default configuration is returned
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	f, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "ini.Load failed")
	}
	cfg.parse(f)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Validate failed")
	}
	return cfg, nil
}

// Parse reads the configuration from ini source (file name, []byte or io.Reader)
func Parse(source interface{}) (*Config, error) {
	f, err := ini.Load(source)
	if err != nil {
		return nil, errors.Wrap(err, "ini.Load failed")
	}
	cfg := Default()
	cfg.parse(f)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Validate failed")
	}
	return cfg, nil
}

func (cfg *Config) parse(f *ini.File) {
	storage := f.Section(sectionStorage)
	cfg.DataDir = storage.Key("data_dir").MustString(cfg.DataDir)
	cfg.BlockSize = storage.Key("block_size").MustInt(cfg.BlockSize)
	cfg.PoolCapacity = storage.Key("pool_capacity").MustInt(cfg.PoolCapacity)
	cfg.LayoutCacheSize = storage.Key("layout_cache_size").MustInt(cfg.LayoutCacheSize)

	cfg.LogLevel = f.Section(sectionLog).Key("level").MustString(cfg.LogLevel)
}

// Validate checks whether the engine can run with the configuration
func (cfg *Config) Validate() error {
	if cfg.DataDir == "" {
		return errors.Wrap(ErrInvalidConfig, "data_dir is empty")
	}
	if cfg.BlockSize < minBlockSize {
		return errors.Wrapf(ErrInvalidConfig, "block_size %d is smaller than %d", cfg.BlockSize, minBlockSize)
	}
	if cfg.PoolCapacity < minPoolCapacity {
		return errors.Wrapf(ErrInvalidConfig, "pool_capacity %d is smaller than %d", cfg.PoolCapacity, minPoolCapacity)
	}
	if cfg.LayoutCacheSize < 0 {
		return errors.Wrapf(ErrInvalidConfig, "layout_cache_size %d is negative", cfg.LayoutCacheSize)
	}
	return nil
}
