package am

import (
	"github.com/HayatoShiba/ppheap/common"
	"github.com/HayatoShiba/ppheap/storage/page"
	"github.com/HayatoShiba/ppheap/storage/tuple"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

var (
	// ErrMixedTables is returned when the addresses point at more than one table
	ErrMixedTables = errors.New("addresses belong to different tables")
	// ErrInvalidAddress is returned when the address does not point at a slot
	ErrInvalidAddress = errors.New("address does not point at a slot")
)

// scanFunc is called for each occupied slot in address order
type scanFunc func(pg *page.Page, index, offset int) error

// scan visits occupied slots from the first tuple index.
// it stops when as many occupied slots as the row count in catalog have been visited,
// so free slots after the last occupied one are never read.
func (m *Manager) scan(rel common.Relation, tl *tableLayout, fn scanFunc) error {
	remaining := m.cat.RowCount(rel)
	var pg *page.Page
	curr := page.InvalidPageID
	for index := 0; remaining > 0; index++ {
		pageID := tl.layout.PageOf(index)
		offset := tl.layout.OffsetOf(index)
		if pageID != curr {
			var err error
			pg, err = m.bp.Fetch(rel, pageID)
			if err != nil {
				return errors.Wrap(err, "bp.Fetch failed")
			}
			curr = pageID
		}
		if tuple.ReadSlotState(pg, offset) != tuple.SlotOccupied {
			continue
		}
		remaining--
		if err := fn(pg, index, offset); err != nil {
			return err
		}
	}
	return nil
}

// Select returns the rows which satisfy all the conditions, in address order
// all rows are returned when no condition is passed
func (m *Manager) Select(rel common.Relation, conds ...Condition) ([]tuple.TableRow, error) {
	m.Lock()
	defer m.Unlock()

	tl, err := m.layoutOf(rel)
	if err != nil {
		return nil, errors.Wrap(err, "layoutOf failed")
	}
	rows := make([]tuple.TableRow, 0)
	err = m.scan(rel, tl, func(pg *page.Page, _, offset int) error {
		row := tl.schema.Decode(pg, offset)
		if satisfyAll(rel, row, conds) {
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "scan failed")
	}
	return rows, nil
}

// SelectAt returns the rows at the addresses, in address order (not in the order passed)
// the slots are decoded without checking whether they are occupied
func (m *Manager) SelectAt(addrs []tuple.Address) ([]tuple.TableRow, error) {
	rows := make([]tuple.TableRow, 0, len(addrs))
	if len(addrs) == 0 {
		return rows, nil
	}

	m.Lock()
	defer m.Unlock()

	rel, tl, sorted, err := m.prepareAddresses(addrs)
	if err != nil {
		return nil, err
	}
	var pg *page.Page
	curr := page.InvalidPageID
	for _, a := range sorted {
		if a.PageID() != curr {
			pg, err = m.bp.Fetch(rel, a.PageID())
			if err != nil {
				return nil, errors.Wrap(err, "bp.Fetch failed")
			}
			curr = a.PageID()
		}
		rows = append(rows, tl.schema.Decode(pg, a.Offset()))
	}
	return rows, nil
}

// prepareAddresses checks the addresses and returns their sorted copy
// the caller's slice is not reordered
func (m *Manager) prepareAddresses(addrs []tuple.Address) (common.Relation, *tableLayout, []tuple.Address, error) {
	rel := addrs[0].Relation()
	tl, err := m.layoutOf(rel)
	if err != nil {
		return rel, nil, nil, errors.Wrap(err, "layoutOf failed")
	}
	for _, a := range addrs {
		if a.Relation() != rel {
			return rel, nil, nil, errors.Wrapf(ErrMixedTables, "%s and %s", rel, a.Relation())
		}
		if !tl.layout.isSlotAddress(a) {
			return rel, nil, nil, errors.Wrapf(ErrInvalidAddress, "%s", a)
		}
	}
	sorted := slices.Clone(addrs)
	slices.SortFunc(sorted, tuple.Less)
	return rel, tl, sorted, nil
}
