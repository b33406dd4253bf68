package am

import (
	"github.com/HayatoShiba/ppheap/common"
	"github.com/HayatoShiba/ppheap/storage/page"
	"github.com/HayatoShiba/ppheap/storage/tuple"
	"github.com/pkg/errors"
)

// ErrRowTooWide is returned when one slot doesn't fit in the header page
var ErrRowTooWide = errors.New("row is too wide for the block size")

// headerSize is the byte size reserved at the beginning of the first page for the free list head
const headerSize = tuple.PointerSize

/*
Layout calculates where the tuple is in the table file.

Tuples are numbered by tuple index from 0. Tuple index i is stored in the slot:
- the first page (header page) holds the free list head and then (block size - header size) / slot size slots
- other pages hold only slots. block size / slot size slots per page

The slot is at least as large as flag + next pointer so that a free slot can hold the free list link.
The remainder at the end of each page is unused.
*/
type Layout struct {
	blockSize     int
	slotSize      int
	slotsInHeader int
	slotsInOther  int
}

// NewLayout returns the layout of the table whose row is rowLength bytes
func NewLayout(rowLength, blockSize int) (Layout, error) {
	if rowLength <= 0 {
		return Layout{}, errors.Errorf("row length must be positive: %d", rowLength)
	}
	slotSize := rowLength + tuple.FlagSize
	if rowLength <= tuple.PointerSize {
		slotSize = tuple.PointerSize + tuple.FlagSize
	}
	if slotSize > blockSize-headerSize {
		return Layout{}, errors.Wrapf(ErrRowTooWide, "slot size %d, block size %d", slotSize, blockSize)
	}
	return Layout{
		blockSize:     blockSize,
		slotSize:      slotSize,
		slotsInHeader: (blockSize - headerSize) / slotSize,
		slotsInOther:  blockSize / slotSize,
	}, nil
}

// SlotSize returns the byte size of one slot
func (l Layout) SlotSize() int {
	return l.slotSize
}

// SlotsInHeaderPage returns how many slots the first page holds
func (l Layout) SlotsInHeaderPage() int {
	return l.slotsInHeader
}

// SlotsInOtherPage returns how many slots the page other than the first one holds
func (l Layout) SlotsInOtherPage() int {
	return l.slotsInOther
}

// PageOf returns the page where the tuple index is
func (l Layout) PageOf(index int) page.PageID {
	if index < l.slotsInHeader {
		return page.FirstPageID
	}
	return page.PageID(1 + (index-l.slotsInHeader)/l.slotsInOther)
}

// OffsetOf returns the byte offset of the slot within its page
func (l Layout) OffsetOf(index int) int {
	if index < l.slotsInHeader {
		return headerSize + index*l.slotSize
	}
	return ((index - l.slotsInHeader) % l.slotsInOther) * l.slotSize
}

// IndexOf returns the tuple index of the slot. this is the inverse of PageOf/OffsetOf
func (l Layout) IndexOf(pageID page.PageID, offset int) int {
	if pageID == page.FirstPageID {
		return (offset - headerSize) / l.slotSize
	}
	return l.slotsInHeader + (int(pageID)-1)*l.slotsInOther + offset/l.slotSize
}

// AddressOf returns the address of the tuple index
func (l Layout) AddressOf(rel common.Relation, index int) tuple.Address {
	return tuple.NewAddress(rel, l.PageOf(index), l.OffsetOf(index))
}

// isSlotAddress checks whether the address points at the beginning of a slot
func (l Layout) isSlotAddress(a tuple.Address) bool {
	if a.PageID() == page.InvalidPageID || a.Offset() < 0 {
		return false
	}
	if a.PageID() == page.FirstPageID && a.Offset() < headerSize {
		return false
	}
	index := l.IndexOf(a.PageID(), a.Offset())
	return l.PageOf(index) == a.PageID() && l.OffsetOf(index) == a.Offset()
}
