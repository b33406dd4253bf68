package disk

import (
	"testing"

	"github.com/HayatoShiba/ppheap/common"
	"github.com/pkg/errors"
)

// TestingNewFileManager initializes disk manager with file storage.
// the data directory is t.TempDir() so that the generated files are removed after test is completed
func TestingNewFileManager(t *testing.T) (*Manager, error) {
	return NewManager(t.TempDir())
}

// TestingNewBufferManager initializes disk manager with buffer storage instead of file storage. This prevents unnecessary disk I/O.
func TestingNewBufferManager() (*Manager, error) {
	return &Manager{opener: newBufferOpener()}, nil
}

// ErrInjected is returned from the storage when a fault is injected
var ErrInjected = errors.New("injected disk failure")

// Faults switches disk failures on and off
type Faults struct {
	FailRead  bool
	FailWrite bool
}

// TestingNewFaultyManager initializes disk manager with buffer storage whose read/write fails when Faults says so
func TestingNewFaultyManager() (*Manager, *Faults) {
	f := &Faults{}
	return &Manager{opener: faultyOpener{opener: newBufferOpener(), faults: f}}, f
}

type faultyOpener struct {
	opener
	faults *Faults
}

func (fo faultyOpener) open(rel common.Relation, create bool) (storage, error) {
	st, err := fo.opener.open(rel, create)
	if err != nil {
		return nil, err
	}
	return faultyStorage{storage: st, faults: fo.faults}, nil
}

type faultyStorage struct {
	storage
	faults *Faults
}

func (fs faultyStorage) Read(p []byte) (int, error) {
	if fs.faults.FailRead {
		return 0, ErrInjected
	}
	return fs.storage.Read(p)
}

func (fs faultyStorage) Write(p []byte) (int, error) {
	if fs.faults.FailWrite {
		return 0, ErrInjected
	}
	return fs.storage.Write(p)
}
