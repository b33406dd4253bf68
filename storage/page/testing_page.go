package page

// TestingNewRandomPage returns the page whose content is filled with some bytes
// the metadata is not set so the page is invalid and clean
func TestingNewRandomPage(blockSize int) *Page {
	p := NewPage(blockSize)
	for i := 0; i < blockSize; i++ {
		p.data[i] = byte(i%251 + 1)
	}
	return p
}
