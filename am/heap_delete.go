package am

import (
	"github.com/HayatoShiba/ppheap/common"
	"github.com/HayatoShiba/ppheap/storage/page"
	"github.com/HayatoShiba/ppheap/storage/tuple"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

/*
the logic to delete tuple
  - fetch the first page and pin it during the whole deletion. the first page holds the free list head
  - for each tuple to delete, set the slot free and link it to the current head.
    then the slot becomes the new head

Delete deletes the rows which satisfy all the conditions and returns how many rows are deleted.
all rows are deleted when no condition is passed.
when the scan fails partway, the rows deleted before it stay deleted and their count is returned with the error.
the caller is expected to decrement the row count in the catalog afterwards.
*/
func (m *Manager) Delete(rel common.Relation, conds ...Condition) (int, error) {
	m.Lock()
	defer m.Unlock()

	tl, err := m.layoutOf(rel)
	if err != nil {
		return 0, errors.Wrap(err, "layoutOf failed")
	}
	head, err := m.bp.Fetch(rel, page.FirstPageID)
	if err != nil {
		return 0, errors.Wrap(err, "bp.Fetch failed")
	}
	m.bp.Pin(head)
	defer m.bp.Unpin(head)

	deleted := 0
	err = m.scan(rel, tl, func(pg *page.Page, index, offset int) error {
		row := tl.schema.Decode(pg, offset)
		if !satisfyAll(rel, row, conds) {
			return nil
		}
		pushFreeSlot(head, pg, index, offset)
		deleted++
		return nil
	})
	if err != nil {
		return deleted, errors.Wrap(err, "scan failed")
	}
	m.log.WithFields(logrus.Fields{"table": rel, "deleted": deleted}).Debug("tuples deleted")
	return deleted, nil
}

// DeleteAt deletes the rows at the addresses and returns how many rows are deleted.
// the slot which is already free is skipped and not counted, so passing the same addresses twice is harmless.
// when fetching a page fails partway, the slots freed before it stay freed
// and their count is returned with the error, so the caller can still update the row count.
func (m *Manager) DeleteAt(addrs []tuple.Address) (int, error) {
	if len(addrs) == 0 {
		return 0, nil
	}

	m.Lock()
	defer m.Unlock()

	rel, tl, sorted, err := m.prepareAddresses(addrs)
	if err != nil {
		return 0, err
	}
	head, err := m.bp.Fetch(rel, page.FirstPageID)
	if err != nil {
		return 0, errors.Wrap(err, "bp.Fetch failed")
	}
	m.bp.Pin(head)
	defer m.bp.Unpin(head)

	deleted := 0
	var pg *page.Page
	curr := page.InvalidPageID
	for _, a := range sorted {
		if a.PageID() != curr {
			pg, err = m.bp.Fetch(rel, a.PageID())
			if err != nil {
				return deleted, errors.Wrap(err, "bp.Fetch failed")
			}
			curr = a.PageID()
		}
		if tuple.ReadSlotState(pg, a.Offset()) != tuple.SlotOccupied {
			m.log.WithFields(logrus.Fields{"table": rel, "address": a}).Debug("slot already free")
			continue
		}
		pushFreeSlot(head, pg, tl.layout.IndexOf(a.PageID(), a.Offset()), a.Offset())
		deleted++
	}
	m.log.WithFields(logrus.Fields{"table": rel, "deleted": deleted}).Debug("tuples deleted")
	return deleted, nil
}

// pushFreeSlot sets the slot free and makes it the head of the free list
func pushFreeSlot(head, pg *page.Page, index, offset int) {
	h := readFreeListHead(head)
	tuple.MarkFree(pg, offset, h.next())
	writeFreeListHead(head, freeListHead{index: index, ok: true})
}
