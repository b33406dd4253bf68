package tuple

import (
	"fmt"

	"github.com/HayatoShiba/ppheap/common"
	"github.com/HayatoShiba/ppheap/storage/page"
)

// Address consists of relation, page id and byte offset within the page
// so, with address, the tuple can be located
type Address struct {
	rel    common.Relation
	pageID page.PageID
	offset int
}

// NewAddress initializes address
func NewAddress(rel common.Relation, pid page.PageID, offset int) Address {
	return Address{
		rel:    rel,
		pageID: pid,
		offset: offset,
	}
}

// Relation returns what table the tuple belongs to
func (a Address) Relation() common.Relation {
	return a.rel
}

// PageID returns page id
func (a Address) PageID() page.PageID {
	return a.pageID
}

// Offset returns byte offset of the slot within the page
func (a Address) Offset() int {
	return a.offset
}

func (a Address) String() string {
	return fmt.Sprintf("%s(%d,%d)", a.rel, a.pageID, a.offset)
}

// Compare orders addresses by page id, then by byte offset
// it returns -1 if a is before b, 1 if a is after b, otherwise 0
func Compare(a, b Address) int {
	switch {
	case a.pageID < b.pageID:
		return -1
	case a.pageID > b.pageID:
		return 1
	case a.offset < b.offset:
		return -1
	case a.offset > b.offset:
		return 1
	}
	return 0
}

// Less reports whether a is before b
func Less(a, b Address) bool {
	return Compare(a, b) < 0
}
