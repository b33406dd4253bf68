package buffer

import (
	"io"

	"github.com/HayatoShiba/ppheap/storage/disk"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// TestingNewLogger returns logger which discards everything
func TestingNewLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// TestingNewPool initializes the buffer pool on buffer storage
func TestingNewPool(capacity, blockSize int) (*Pool, error) {
	dm, err := disk.TestingNewBufferManager()
	if err != nil {
		return nil, errors.Wrap(err, "disk.TestingNewBufferManager failed")
	}
	return NewPool(dm, capacity, blockSize, TestingNewLogger()), nil
}

// TestingNewFaultyPool initializes the buffer pool on buffer storage whose read/write can be failed
func TestingNewFaultyPool(capacity, blockSize int) (*Pool, *disk.Faults) {
	dm, faults := disk.TestingNewFaultyManager()
	return NewPool(dm, capacity, blockSize, TestingNewLogger()), faults
}
