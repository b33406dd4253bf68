package buffer

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type lruInfo struct {
	// currLRUCount is lru count lastly allocated
	// this is used as kind of timestamp
	currLRUCount uint64
}

const (
	firstLRUCount uint64 = 1
)

// selectVictimSlot returns victim slot id
// pinned slot is never returned, even when it is invalid.
// the slot which has not been used is returned first.
// otherwise, the unpinned slot with the smallest lru count is returned. ties are broken by the lowest slot id.
// invalidSlotID is returned when every slot is pinned.
func (p *Pool) selectVictimSlot() slotID {
	victimID := invalidSlotID
	var victimLRUCount uint64
	for i, pg := range p.slots {
		id := slotID(i)
		if pg.IsPinned() {
			continue
		}
		// if the slot has not been used, return it
		if !pg.IsValid() {
			return id
		}
		if victimID == invalidSlotID || pg.Recency() < victimLRUCount {
			victimID = id
			victimLRUCount = pg.Recency()
		}
	}
	return victimID
}

// evictVictim selects victim slot and makes it reusable.
// if the victim is dirty, it is written out to disk before reuse.
// when the write fails, the victim stays valid and dirty and the error is returned
func (p *Pool) evictVictim() (slotID, error) {
	id := p.selectVictimSlot()
	if id == invalidSlotID {
		return invalidSlotID, ErrPoolExhausted
	}
	pg := p.slots[id]
	if !pg.IsValid() {
		return id, nil
	}
	if err := p.flush(id); err != nil {
		return invalidSlotID, errors.Wrap(err, "flush failed")
	}
	p.stats.evictions++
	p.log.WithFields(logrus.Fields{"file": pg.FileName(), "page": pg.PageID(), "slot": id}).Debug("page evicted")
	return id, nil
}

// updateLRUcount updates lru count of the slot
func (p *Pool) updateLRUcount(id slotID) {
	// there are often many consecutive accesses to the same page (particularly the free list head page)
	// so when the slot already has the latest count, don't advance it
	if p.slots[id].Recency() == p.lru.currLRUCount {
		return
	}
	p.lru.currLRUCount++
	p.slots[id].Touch(p.lru.currLRUCount)
}
