/*
Package engine wires the storage components together.

The engine owns one disk manager, one buffer pool and one heap access method manager.
There is no global engine: every caller opens its own engine from the config and shuts it down.
Two engines must not share the same data directory.
*/
package engine

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/HayatoShiba/ppheap/am"
	"github.com/HayatoShiba/ppheap/catalog"
	"github.com/HayatoShiba/ppheap/config"
	"github.com/HayatoShiba/ppheap/logger"
	"github.com/HayatoShiba/ppheap/storage/buffer"
	"github.com/HayatoShiba/ppheap/storage/disk"
)

// ErrClosed is returned when the engine has already been shut down
var ErrClosed = errors.New("engine is closed")

// Engine is the storage engine
type Engine struct {
	cfg *config.Config
	log *logrus.Logger

	dm    *disk.Manager
	bp    *buffer.Pool
	store *am.Manager

	mu     sync.Mutex
	closed bool
}

// Open initializes the engine. logs are written to logOut
func Open(cfg *config.Config, cat catalog.Catalog, logOut io.Writer) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "cfg.Validate failed")
	}
	log := logger.New(cfg.LogLevel, logOut)

	dm, err := disk.NewManager(cfg.DataDir)
	if err != nil {
		return nil, errors.Wrap(err, "disk.NewManager failed")
	}
	bp := buffer.NewPool(dm, cfg.PoolCapacity, cfg.BlockSize, log)
	store, err := am.NewManager(dm, bp, cat, cfg.LayoutCacheSize, log)
	if err != nil {
		_ = dm.Close()
		return nil, errors.Wrap(err, "am.NewManager failed")
	}

	log.WithFields(logrus.Fields{
		"data_dir":      cfg.DataDir,
		"block_size":    cfg.BlockSize,
		"pool_capacity": cfg.PoolCapacity,
	}).Info("engine opened")
	return &Engine{
		cfg:   cfg,
		log:   log,
		dm:    dm,
		bp:    bp,
		store: store,
	}, nil
}

// Store returns the heap access method manager
func (e *Engine) Store() *am.Manager {
	return e.store
}

// Stats returns the buffer pool statistics
func (e *Engine) Stats() buffer.Stats {
	return e.bp.Stats()
}

// Config returns the configuration the engine was opened with
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Shutdown writes out all dirty pages, syncs and closes table files.
// when writing out fails, the files stay open and Shutdown can be called again
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if err := e.store.Shutdown(); err != nil {
		return errors.Wrap(err, "store.Shutdown failed")
	}
	if err := e.dm.Sync(); err != nil {
		return errors.Wrap(err, "dm.Sync failed")
	}
	e.store.Close()
	e.closed = true
	if err := e.dm.Close(); err != nil {
		return errors.Wrap(err, "dm.Close failed")
	}
	e.log.Info("engine shut down")
	return nil
}
