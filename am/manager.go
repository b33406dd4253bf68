/*
Access method
Currently in ppheap, only heap access method is supported. (index is not supported)

The heap access method stores the tuples of a table as fixed-length slots in the table file.
See layout.go for where each tuple is, and free_list.go for how deleted slots are reused.

The operations provided are:
- create/drop table
- insert tuple
- select/delete tuples which satisfy conditions (sequential scan)
- select/delete tuples at the addresses
- project rows onto attributes
- shutdown (write out all dirty pages)

The row count of the table is read from the catalog and never updated here.
The caller has to update the catalog after insert/delete.

Only one operation runs at a time. the manager lock is held during each operation
so that the read-modify-write of the free list head is not interleaved.
*/
package am

import (
	"sync"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/HayatoShiba/ppheap/catalog"
	"github.com/HayatoShiba/ppheap/common"
	"github.com/HayatoShiba/ppheap/storage/buffer"
	"github.com/HayatoShiba/ppheap/storage/disk"
	"github.com/HayatoShiba/ppheap/storage/page"
	"github.com/HayatoShiba/ppheap/storage/tuple"
)

// DefaultLayoutCacheSize is the default number of tables whose layout is cached
const DefaultLayoutCacheSize = 1024

// tableLayout is layout and schema of table. this is resolved from catalog once and cached
type tableLayout struct {
	layout Layout
	schema tuple.Schema
}

// Manager is heap access method manager
type Manager struct {
	dm  *disk.Manager
	bp  *buffer.Pool
	cat catalog.Catalog

	// layouts caches tableLayout by table name
	layouts *ristretto.Cache[string, *tableLayout]

	log logrus.FieldLogger

	sync.Mutex
}

// NewManager initializes access method manager
func NewManager(dm *disk.Manager, bp *buffer.Pool, cat catalog.Catalog, layoutCacheSize int, log logrus.FieldLogger) (*Manager, error) {
	if layoutCacheSize <= 0 {
		layoutCacheSize = DefaultLayoutCacheSize
	}
	layouts, err := ristretto.NewCache(&ristretto.Config[string, *tableLayout]{
		NumCounters: int64(layoutCacheSize) * 10,
		MaxCost:     int64(layoutCacheSize),
		BufferItems: 64,
		// every entry costs 1 so that MaxCost is the number of entries
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "ristretto.NewCache failed")
	}
	return &Manager{
		dm:      dm,
		bp:      bp,
		cat:     cat,
		layouts: layouts,
		log:     log.WithField("component", "heap"),
	}, nil
}

// ErrRowLength is returned when the row length in catalog is shorter than the attributes need
var ErrRowLength = errors.New("row length is shorter than the attributes")

// layoutOf returns layout and schema of the table.
// the slot size follows the row length in catalog, which may be longer than the attributes
func (m *Manager) layoutOf(rel common.Relation) (*tableLayout, error) {
	if tl, ok := m.layouts.Get(rel.String()); ok {
		return tl, nil
	}
	schema := tuple.NewSchema(m.cat, rel)
	rowLength := m.cat.RowLength(rel)
	if rowLength < schema.RowLength() {
		return nil, errors.Wrapf(ErrRowLength, "%s: row length %d, attributes %d", rel, rowLength, schema.RowLength())
	}
	layout, err := NewLayout(rowLength, m.bp.BlockSize())
	if err != nil {
		return nil, errors.Wrap(err, "NewLayout failed")
	}
	tl := &tableLayout{layout: layout, schema: schema}
	// the cache may drop the entry. then it is just resolved again next time
	m.layouts.Set(rel.String(), tl, 1)
	m.layouts.Wait()
	return tl, nil
}

// forgetLayout removes the cached layout of the table
func (m *Manager) forgetLayout(rel common.Relation) {
	m.layouts.Del(rel.String())
}

// fetchOrAllocate fetches the page. when the page doesn't exist on disk yet, new page is allocated
// this is used when the tuple is appended at the end of the table
func (m *Manager) fetchOrAllocate(rel common.Relation, pageID page.PageID) (*page.Page, error) {
	pg, err := m.bp.Fetch(rel, pageID)
	if err == nil {
		return pg, nil
	}
	if !errors.Is(err, disk.ErrPageNotFound) {
		return nil, errors.Wrap(err, "bp.Fetch failed")
	}
	pg, err = m.bp.Allocate(rel, pageID)
	if err != nil {
		return nil, errors.Wrap(err, "bp.Allocate failed")
	}
	return pg, nil
}

// Shutdown writes out all dirty pages
func (m *Manager) Shutdown() error {
	m.Lock()
	defer m.Unlock()
	if err := m.bp.FlushAll(); err != nil {
		return errors.Wrap(err, "bp.FlushAll failed")
	}
	m.log.Info("all pages flushed")
	return nil
}

// Close releases the layout cache. the manager cannot be used afterwards
func (m *Manager) Close() {
	m.layouts.Close()
}
