package buffer

import (
	"github.com/HayatoShiba/ppheap/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// flush writes the page in the slot out to disk and invalidates the slot.
// when the page is not dirty, the slot is just invalidated.
// pinned page is still held by the caller, so it is written out but stays valid.
// when the write fails, the slot stays valid and dirty so that the change is not lost.
// the pool lock is expected to be held when this function is called.
func (p *Pool) flush(id slotID) error {
	pg := p.slots[id]
	if !pg.IsDirty() {
		if !pg.IsPinned() {
			pg.SetValid(false)
		}
		return nil
	}
	rel := common.Relation(pg.FileName())
	if err := p.dm.WritePage(rel, pg.PageID(), pg.Data()); err != nil {
		p.log.WithFields(logrus.Fields{"file": rel, "page": pg.PageID(), "slot": id}).WithError(err).Warn("write back failed")
		return errors.Wrap(err, "dm.WritePage failed")
	}
	pg.ClearDirty()
	if !pg.IsPinned() {
		pg.SetValid(false)
	}
	p.stats.writes++
	return nil
}

// FlushAll flushes every valid slot. dirty pages are written out and unpinned slots become invalid.
// this is expected to be called on shutdown. calling it twice writes nothing the second time.
// when some write fails, the rest is still flushed and the first error is returned.
func (p *Pool) FlushAll() error {
	p.Lock()
	defer p.Unlock()

	var firstErr error
	failed := 0
	for i, pg := range p.slots {
		if !pg.IsValid() {
			continue
		}
		if err := p.flush(slotID(i)); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return errors.Wrapf(firstErr, "flush failed for %d pages", failed)
	}
	return nil
}
