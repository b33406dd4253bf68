/*
Buffer pool caches pages of table files in memory.
Disk IO is expensive so pages should be cached on memory and buffer pool is responsible for this.

The pool is a fixed number of page slots allocated at construction. Slots are never freed,
they are just invalidated and reused for other pages.

the flow when the caller fetches a page:
  - search slots for the valid page with the same (file, page id). if found, update lru count and return it
  - if not found, select victim slot with lru (see lru.go). the slot which has not been used is selected first
    and pinned slot is never selected. if the victim is dirty, it is written out to disk before reuse (see flush.go)
  - read the page from disk into the slot, mark it valid and update lru count

Pin/unpin is only a guard against eviction. there is no reference count:
the caller pins the page through Pool.Pin while it is going to fetch other pages and still use this page.

The caller marks the page dirty through page accessors. Dirty pages are written out when they are evicted
or when FlushAll is called (on shutdown). Nothing is written through on every write.
*/
package buffer

import (
	"sync"

	"github.com/HayatoShiba/ppheap/common"
	"github.com/HayatoShiba/ppheap/storage/disk"
	"github.com/HayatoShiba/ppheap/storage/page"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultCapacity is the default number of slots in the pool
const DefaultCapacity = 50

// ErrPoolExhausted is returned when every slot is pinned and no victim can be selected
var ErrPoolExhausted = errors.New("all buffers are pinned")

// slotID is the index of slot
type slotID int

const invalidSlotID slotID = -1

// Pool is buffer pool
type Pool struct {
	dm        *disk.Manager
	blockSize int
	slots     []*page.Page

	// lru is information used for lru
	lru lruInfo
	// stats counts hits/misses/evictions
	stats counters

	log logrus.FieldLogger

	// lock for the whole pool
	sync.Mutex
}

// NewPool initializes buffer pool with capacity slots of blockSize bytes
func NewPool(dm *disk.Manager, capacity, blockSize int, log logrus.FieldLogger) *Pool {
	slots := make([]*page.Page, capacity)
	for i := range slots {
		slots[i] = page.NewPage(blockSize)
	}
	return &Pool{
		dm:        dm,
		blockSize: blockSize,
		slots:     slots,
		lru: lruInfo{
			currLRUCount: firstLRUCount,
		},
		log: log.WithField("component", "buffer"),
	}
}

// Capacity returns the number of slots
func (p *Pool) Capacity() int {
	return len(p.slots)
}

// BlockSize returns the byte size of page
func (p *Pool) BlockSize() int {
	return p.blockSize
}

// Fetch returns the page of the file.
// when the page is already cached, just return it.
// when it is not, then select victim slot and read the page from disk into it.
// ErrPoolExhausted is returned when all slots are pinned.
// disk.ErrPageNotFound/disk.ErrFileNotFound is returned when the page doesn't exist on disk.
func (p *Pool) Fetch(rel common.Relation, pageID page.PageID) (*page.Page, error) {
	p.Lock()
	defer p.Unlock()

	if id := p.searchPage(rel, pageID); id != invalidSlotID {
		p.stats.hits++
		p.updateLRUcount(id)
		return p.slots[id], nil
	}
	p.stats.misses++

	victimID, err := p.evictVictim()
	if err != nil {
		return nil, errors.Wrap(err, "evictVictim failed")
	}
	if err := p.load(rel, pageID, victimID); err != nil {
		return nil, errors.Wrap(err, "load failed")
	}
	p.updateLRUcount(victimID)
	p.log.WithFields(logrus.Fields{"file": rel, "page": pageID, "slot": victimID}).Debug("page loaded")
	return p.slots[victimID], nil
}

// Allocate returns the page of the file which doesn't exist on disk yet.
// the page is 0-filled and marked dirty so that it is written out (and the file is extended) later.
// when the page is already cached, just return it as Fetch does.
func (p *Pool) Allocate(rel common.Relation, pageID page.PageID) (*page.Page, error) {
	p.Lock()
	defer p.Unlock()

	if id := p.searchPage(rel, pageID); id != invalidSlotID {
		p.stats.hits++
		p.updateLRUcount(id)
		return p.slots[id], nil
	}

	victimID, err := p.evictVictim()
	if err != nil {
		return nil, errors.Wrap(err, "evictVictim failed")
	}
	pg := p.slots[victimID]
	pg.ResetMetadata()
	pg.Zero()
	pg.SetTag(rel.String(), pageID)
	pg.SetValid(true)
	pg.MarkDirty()
	p.updateLRUcount(victimID)
	p.log.WithFields(logrus.Fields{"file": rel, "page": pageID, "slot": victimID}).Debug("page allocated")
	return pg, nil
}

// Pin pins the page so that it is not evicted until Unpin is called
func (p *Pool) Pin(pg *page.Page) {
	p.Lock()
	defer p.Unlock()
	pg.Pin()
}

// Unpin unpins the page
func (p *Pool) Unpin(pg *page.Page) {
	p.Lock()
	defer p.Unlock()
	pg.Unpin()
}

// searchPage searches slots for the valid page
// this is linear search, the number of slots is small
func (p *Pool) searchPage(rel common.Relation, pageID page.PageID) slotID {
	for i, pg := range p.slots {
		if pg.IsValid() && pg.FileName() == rel.String() && pg.PageID() == pageID {
			return slotID(i)
		}
	}
	return invalidSlotID
}

// load reads the page from disk into the slot
// the slot is reset before read so that it stays invalid when read fails
func (p *Pool) load(rel common.Relation, pageID page.PageID, id slotID) error {
	pg := p.slots[id]
	pg.ResetMetadata()
	if err := p.dm.ReadPage(rel, pageID, pg.Data()); err != nil {
		return errors.Wrap(err, "dm.ReadPage failed")
	}
	pg.SetTag(rel.String(), pageID)
	pg.SetValid(true)
	return nil
}

// InvalidateAll invalidates every slot holding a page of the file without writing it out.
// this is expected to be called after the file is removed
func (p *Pool) InvalidateAll(rel common.Relation) {
	p.Lock()
	defer p.Unlock()

	n := 0
	for _, pg := range p.slots {
		if pg.IsValid() && pg.FileName() == rel.String() {
			pg.ResetMetadata()
			n++
		}
	}
	p.log.WithFields(logrus.Fields{"file": rel, "slots": n}).Debug("pages invalidated")
}
