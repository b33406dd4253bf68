/*
Slot is where one tuple is stored in table file.
All slots of a table have the same size.

slot layout:
- flag: 4 byte. occupied is -1 (any negative value is read as occupied) and free is 0
- occupied slot: attribute bytes follow the flag
- free slot: the tuple index of the next free slot follows the flag (-1 at the end of the free list)
*/
package tuple

import (
	"github.com/HayatoShiba/ppheap/storage/page"
)

const (
	// FlagSize is the byte size of the slot flag
	FlagSize = page.IntSize
	// PointerSize is the byte size of the next free slot pointer
	PointerSize = page.IntSize
)

const (
	flagOccupied int32 = -1
	flagFree     int32 = 0

	// noNextFree is written as the next pointer at the end of the free list
	noNextFree int32 = -1
)

// SlotState is whether the slot holds a tuple
type SlotState int

const (
	SlotFree SlotState = iota
	SlotOccupied
)

func (s SlotState) String() string {
	if s == SlotOccupied {
		return "occupied"
	}
	return "free"
}

// ReadSlotState reads the flag of the slot at offset
func ReadSlotState(p *page.Page, offset int) SlotState {
	if p.ReadInt(offset) < 0 {
		return SlotOccupied
	}
	return SlotFree
}

// MarkFree sets the slot free and links it to next
// next is the tuple index of the next free slot. negative next means the end of the free list
func MarkFree(p *page.Page, offset int, next int) {
	p.WriteInt(offset, flagFree)
	if next < 0 {
		p.WriteInt(offset+FlagSize, noNextFree)
		return
	}
	p.WriteInt(offset+FlagSize, int32(next))
}

// NextFree reads the next free slot of the free slot at offset
// false is returned at the end of the free list
func NextFree(p *page.Page, offset int) (int, bool) {
	next := p.ReadInt(offset + FlagSize)
	if next < 0 {
		return 0, false
	}
	return int(next), true
}
