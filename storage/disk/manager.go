/*
Disk manager deals with the table files under data directory.
One table is stored in one file, and the file is organized as a sequence of fixed-size pages.
Page N of a file lives at byte offset N * block size. There is no file header.

The block size is not fixed in disk manager. The caller passes the page buffer
and the length of the buffer is used as the block size.

Disk manager caches file descriptors after opening the files. Close() releases them.
*/
package disk

import (
	"io"
	"os"
	"sync"

	"github.com/HayatoShiba/ppheap/common"
	"github.com/HayatoShiba/ppheap/storage/page"
	"github.com/pkg/errors"
)

var (
	// ErrFileNotFound is returned when the table file does not exist
	ErrFileNotFound = errors.New("file not found")
	// ErrFileExists is returned when creating the table file which already exists
	ErrFileExists = errors.New("file already exists")
	// ErrPageNotFound is returned when the page is beyond the end of the file
	ErrPageNotFound = errors.New("page not found")
)

// Manager manages disk
type Manager struct {
	opener opener
	sync.Mutex
}

// NewManager initializes disk manager. the data directory is created if it doesn't exist
func NewManager(dataDir string) (*Manager, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, errors.Wrap(err, "os.MkdirAll failed")
	}
	return &Manager{
		opener: newFileOpener(dataDir),
	}, nil
}

// Exists checks whether the table file exists
func (m *Manager) Exists(rel common.Relation) (bool, error) {
	m.Lock()
	defer m.Unlock()
	return m.opener.exists(rel)
}

// Create creates empty table file
func (m *Manager) Create(rel common.Relation) error {
	m.Lock()
	defer m.Unlock()

	ok, err := m.opener.exists(rel)
	if err != nil {
		return errors.Wrap(err, "exists failed")
	}
	if ok {
		return errors.Wrapf(ErrFileExists, "create %s", rel)
	}
	if _, err := m.opener.open(rel, true); err != nil {
		return errors.Wrap(err, "open failed")
	}
	return nil
}

// Remove removes table file
func (m *Manager) Remove(rel common.Relation) error {
	m.Lock()
	defer m.Unlock()
	return m.opener.remove(rel)
}

// ReadPage reads the page from disk into p. the length of p is used as the block size
// ErrFileNotFound is returned when the file doesn't exist,
// and ErrPageNotFound is returned when the page is beyond the end of the file
func (m *Manager) ReadPage(rel common.Relation, pageID page.PageID, p []byte) error {
	m.Lock()
	defer m.Unlock()

	st, err := m.opener.open(rel, false)
	if err != nil {
		return errors.Wrap(err, "open failed")
	}
	size, err := st.Size()
	if err != nil {
		return errors.Wrap(err, "Size failed")
	}
	offset := page.CalculateFileOffset(pageID, len(p))
	if offset+int64(len(p)) > size {
		return errors.Wrapf(ErrPageNotFound, "page %d of %s (file size %d)", pageID, rel, size)
	}
	if _, err := st.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrap(err, "Seek failed")
	}
	if _, err := io.ReadFull(st, p); err != nil {
		return errors.Wrap(err, "ReadFull failed")
	}
	return nil
}

// WritePage writes p out to the page of the table file. the length of p is used as the block size
// the file is created if it doesn't exist. writing beyond the end of the file extends it
func (m *Manager) WritePage(rel common.Relation, pageID page.PageID, p []byte) error {
	m.Lock()
	defer m.Unlock()

	st, err := m.opener.open(rel, true)
	if err != nil {
		return errors.Wrap(err, "open failed")
	}
	offset := page.CalculateFileOffset(pageID, len(p))
	if _, err := st.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrap(err, "Seek failed")
	}
	n, err := st.Write(p)
	if err != nil {
		return errors.Wrap(err, "Write failed")
	}
	if n != len(p) {
		return errors.Errorf("Write failed to write the whole page: %d", n)
	}
	return nil
}

// NPages returns how many pages the table file has
func (m *Manager) NPages(rel common.Relation, blockSize int) (int, error) {
	m.Lock()
	defer m.Unlock()

	st, err := m.opener.open(rel, false)
	if err != nil {
		return 0, errors.Wrap(err, "open failed")
	}
	size, err := st.Size()
	if err != nil {
		return 0, errors.Wrap(err, "Size failed")
	}
	return int(size / int64(blockSize)), nil
}

// Sync flushes the opened files to stable storage
func (m *Manager) Sync() error {
	m.Lock()
	defer m.Unlock()
	return m.opener.sync()
}

// Close closes the opened files
func (m *Manager) Close() error {
	m.Lock()
	defer m.Unlock()
	return m.opener.close()
}
