package am

import (
	"github.com/HayatoShiba/ppheap/common"
	"github.com/HayatoShiba/ppheap/storage/page"
	"github.com/HayatoShiba/ppheap/storage/tuple"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

/*
Insert inserts the row into the table and returns where it is stored.

the logic to insert tuple
  - validate the row against the schema. nothing is changed when the row is invalid
  - fetch the first page and pin it. the first page holds the free list head
  - decide the tuple index. if the free list is not empty, pop the head.
    otherwise, append at the tuple index equal to the row count
  - fetch the page of the tuple index (allocate it when it is beyond the end of the file)
  - when the slot is popped from the free list, the next free slot becomes the head
  - unpin the first page
  - write the flag and the attributes into the slot

the caller is expected to increment the row count in the catalog afterwards.
*/
func (m *Manager) Insert(rel common.Relation, row tuple.TableRow) (tuple.Address, error) {
	m.Lock()
	defer m.Unlock()

	tl, err := m.layoutOf(rel)
	if err != nil {
		return tuple.Address{}, errors.Wrap(err, "layoutOf failed")
	}
	if err := tl.schema.Validate(row); err != nil {
		return tuple.Address{}, errors.Wrap(err, "Validate failed")
	}

	// the first page must not be evicted while the target page is fetched
	head, err := m.bp.Fetch(rel, page.FirstPageID)
	if err != nil {
		return tuple.Address{}, errors.Wrap(err, "bp.Fetch failed")
	}
	m.bp.Pin(head)
	h := readFreeListHead(head)

	index := m.cat.RowCount(rel)
	if h.ok {
		index = h.index
	}
	pageID := tl.layout.PageOf(index)
	offset := tl.layout.OffsetOf(index)

	var target *page.Page
	if h.ok {
		target, err = m.bp.Fetch(rel, pageID)
	} else {
		target, err = m.fetchOrAllocate(rel, pageID)
	}
	if err != nil {
		m.bp.Unpin(head)
		return tuple.Address{}, errors.Wrap(err, "fetch target page failed")
	}
	if h.ok {
		next, ok := tuple.NextFree(target, offset)
		writeFreeListHead(head, freeListHead{index: next, ok: ok})
	}
	m.bp.Unpin(head)

	if err := tl.schema.Encode(target, offset, row); err != nil {
		return tuple.Address{}, errors.Wrap(err, "Encode failed")
	}
	m.log.WithFields(logrus.Fields{"table": rel, "index": index, "reused": h.ok}).Debug("tuple inserted")
	return tuple.NewAddress(rel, pageID, offset), nil
}
