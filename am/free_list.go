/*
Free slots of the table are linked as a stack (free list).
The head is stored at the beginning of the first page and each free slot stores the next one.

- delete pushes the slot: slot.next = head, head = slot
- insert pops the slot: head = slot.next

So the slot freed lastly is reused first.
When the free list is empty, insert appends the tuple at the tuple index equal to the row count.
*/
package am

import (
	"github.com/HayatoShiba/ppheap/storage/page"
)

const (
	// freeListHeadOffset is where the free list head is stored in the first page
	freeListHeadOffset = 0
	// noFreeSlot is written as the head when the free list is empty
	noFreeSlot int32 = -1
)

// freeListHead is the first free slot of the table
type freeListHead struct {
	index int
	// ok is false when the free list is empty
	ok bool
}

// emptyFreeList is the head of empty free list
var emptyFreeList = freeListHead{}

// next returns the tuple index to be linked from a newly freed slot. -1 means the end of the list
func (h freeListHead) next() int {
	if !h.ok {
		return -1
	}
	return h.index
}

// readFreeListHead reads the head from the first page
func readFreeListHead(p *page.Page) freeListHead {
	v := p.ReadInt(freeListHeadOffset)
	if v < 0 {
		return emptyFreeList
	}
	return freeListHead{index: int(v), ok: true}
}

// writeFreeListHead writes the head into the first page
func writeFreeListHead(p *page.Page, h freeListHead) {
	if !h.ok {
		p.WriteInt(freeListHeadOffset, noFreeSlot)
		return
	}
	p.WriteInt(freeListHeadOffset, int32(h.index))
}
