/*
Page is the unit of I/O in ppheap.
Disk manager organizes table file as a collection of fixed-size pages and
buffer pool caches pages in memory. Page in ppheap may be called `block`.

A page carries two things:
  - the page content: byte slice whose length is the block size
  - metadata which is used by buffer pool: which page of which file the content is,
    whether the content is valid/dirty, whether the page is pinned, and when the page was used lastly

The typed accessors (int/float/string) read and write the content only. they never touch disk.
Every write marks the page dirty so that buffer pool writes it back before the page is reused.

integers are 4-byte signed and floats are 4-byte IEEE-754. both are stored in little endian.
*/
package page

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

// DefaultBlockSize is the default byte size of page.
const DefaultBlockSize = 4096

const (
	// IntSize is the byte size of integer stored in page
	IntSize = 4
	// FloatSize is the byte size of float stored in page
	FloatSize = 4
)

// PageID is the page offset within a file, in page units
type PageID uint32

const (
	// first page id in file. in table file, this page holds the free list head
	FirstPageID PageID = 0
	// invalid page id
	InvalidPageID PageID = math.MaxUint32
)

// CalculateFileOffset calculates the page's byte offset within the file
// the page size is fixed so that it is easy to calculate the offset
func CalculateFileOffset(pageID PageID, blockSize int) int64 {
	return int64(pageID) * int64(blockSize)
}

// Page is page content and its metadata
type Page struct {
	// data is the page content. the length is block size
	data []byte

	// fileName is what file the page belongs to
	fileName string
	// pageID is where the page is in the file
	pageID PageID
	// valid indicates the content corresponds to (fileName, pageID)
	valid bool
	// dirty indicates the content has been written since it was read from disk.
	// the content is written without the buffer pool lock, so dirty is atomic
	dirty atomic.Bool
	// pinned page must not be evicted
	pinned atomic.Bool
	// recency is lru count lastly allocated to this page. bigger means more recently used
	recency uint64
}

// NewPage returns 0-filled invalid page
func NewPage(blockSize int) *Page {
	return &Page{
		data:   make([]byte, blockSize),
		pageID: InvalidPageID,
	}
}

// Data returns the page content
// the caller must call MarkDirty when it modifies the returned slice directly
func (p *Page) Data() []byte {
	return p.data
}

// Size returns the block size
func (p *Page) Size() int {
	return len(p.data)
}

// ReadInt reads integer at offset
func (p *Page) ReadInt(offset int) int32 {
	return int32(binary.LittleEndian.Uint32(p.data[offset : offset+IntSize]))
}

// WriteInt writes integer at offset
func (p *Page) WriteInt(offset int, v int32) {
	binary.LittleEndian.PutUint32(p.data[offset:offset+IntSize], uint32(v))
	p.dirty.Store(true)
}

// ReadFloat reads float at offset
func (p *Page) ReadFloat(offset int) float32 {
	bits := binary.LittleEndian.Uint32(p.data[offset : offset+FloatSize])
	return math.Float32frombits(bits)
}

// WriteFloat writes float at offset
func (p *Page) WriteFloat(offset int, v float32) {
	binary.LittleEndian.PutUint32(p.data[offset:offset+FloatSize], math.Float32bits(v))
	p.dirty.Store(true)
}

// ReadString reads length bytes at offset as string
// 0-byte padding at the end is stripped
func (p *Page) ReadString(offset, length int) string {
	b := p.data[offset : offset+length]
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}

// WriteString writes the bytes of v at offset
// padding is the caller's responsibility
func (p *Page) WriteString(offset int, v string) {
	copy(p.data[offset:offset+len(v)], v)
	p.dirty.Store(true)
}

// Zero fills the content with 0
func (p *Page) Zero() {
	for i := range p.data {
		p.data[i] = 0
	}
}

// FileName returns what file the page belongs to
func (p *Page) FileName() string {
	return p.fileName
}

// PageID returns the page offset within the file
func (p *Page) PageID() PageID {
	return p.pageID
}

// SetTag sets which page of which file the content is
func (p *Page) SetTag(fileName string, pageID PageID) {
	p.fileName = fileName
	p.pageID = pageID
}

// IsValid returns whether the content is valid
func (p *Page) IsValid() bool {
	return p.valid
}

// SetValid sets valid flag
func (p *Page) SetValid(valid bool) {
	p.valid = valid
}

// IsDirty returns whether the content has been written
func (p *Page) IsDirty() bool {
	return p.dirty.Load()
}

// MarkDirty turns on the dirty bit
func (p *Page) MarkDirty() {
	p.dirty.Store(true)
}

// ClearDirty turns off the dirty bit. this is expected to be called after the page is written out
func (p *Page) ClearDirty() {
	p.dirty.Store(false)
}

// IsPinned returns whether the page is pinned
func (p *Page) IsPinned() bool {
	return p.pinned.Load()
}

// Pin pins the page. pinned page is not evicted
func (p *Page) Pin() {
	p.pinned.Store(true)
}

// Unpin unpins the page
func (p *Page) Unpin() {
	p.pinned.Store(false)
}

// Recency returns lru count of the page
func (p *Page) Recency() uint64 {
	return p.recency
}

// Touch sets lru count of the page
func (p *Page) Touch(recency uint64) {
	p.recency = recency
}

// ResetMetadata clears dirty/valid/pinned and recency
// this is called before the page is reused for another content
func (p *Page) ResetMetadata() {
	p.valid = false
	p.dirty.Store(false)
	p.pinned.Store(false)
	p.recency = 0
}
