/*
This file defines opener interface and its implementations.
We don't want to execute disk I/O in test, so it's better to use byte slice instead of actual file in test.
For this reason, opener interface is defined. Opener opens, removes and syncs its storages. The implementations are:
- fileOpener: open and return file under data directory.
- bufferOpener: open and return byte slice. this is intended to be used in test.
*/
package disk

import (
	"os"

	"github.com/HayatoShiba/ppheap/common"
	"github.com/pkg/errors"
)

// opener opens storage
type opener interface {
	// open returns the storage of the relation.
	// when create is false and the storage does not exist, ErrFileNotFound is returned
	open(rel common.Relation, create bool) (storage, error)
	exists(rel common.Relation) (bool, error)
	// remove removes the storage. ErrFileNotFound is returned when it does not exist
	remove(rel common.Relation) error
	// sync syncs all storages opened
	sync() error
	// close closes all storages opened
	close() error
}

// fileOpener opens file
type fileOpener struct {
	dataDir string
	// cache file descriptors after open the files
	st map[string]*os.File
}

// newFileOpener initializes fileOpener
func newFileOpener(dataDir string) *fileOpener {
	return &fileOpener{
		dataDir: dataDir,
		st:      make(map[string]*os.File),
	}
}

// open opens and returns specified table file under data directory
func (fo *fileOpener) open(rel common.Relation, create bool) (storage, error) {
	filePath := getRelationFilePath(fo.dataDir, rel)
	// when file descriptor is cached, just return it
	if fd, ok := fo.st[filePath]; ok {
		return fileStorage{fd}, nil
	}
	flag := os.O_RDWR
	if create {
		flag |= os.O_CREATE
	}
	fd, err := os.OpenFile(filePath, flag, 0600)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrFileNotFound, "open %s", filePath)
		}
		return nil, errors.Wrap(err, "os.OpenFile failed")
	}
	// cache file descriptor when open the file
	fo.st[filePath] = fd
	return fileStorage{fd}, nil
}

// exists checks whether the table file exists
func (fo *fileOpener) exists(rel common.Relation) (bool, error) {
	filePath := getRelationFilePath(fo.dataDir, rel)
	if _, ok := fo.st[filePath]; ok {
		return true, nil
	}
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "os.Stat failed")
	}
	return true, nil
}

// remove closes the cached file descriptor and removes the table file
func (fo *fileOpener) remove(rel common.Relation) error {
	filePath := getRelationFilePath(fo.dataDir, rel)
	if fd, ok := fo.st[filePath]; ok {
		delete(fo.st, filePath)
		if err := fd.Close(); err != nil {
			return errors.Wrap(err, "Close failed")
		}
	}
	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrFileNotFound, "remove %s", filePath)
		}
		return errors.Wrap(err, "os.Remove failed")
	}
	return nil
}

// sync flushes the cached files to stable storage
func (fo *fileOpener) sync() error {
	for _, fd := range fo.st {
		if err := fd.Sync(); err != nil {
			return errors.Wrap(err, "Sync failed")
		}
	}
	return nil
}

// close closes all the cached file descriptors
func (fo *fileOpener) close() error {
	var firstErr error
	for path, fd := range fo.st {
		if err := fd.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "Close failed")
		}
		delete(fo.st, path)
	}
	return firstErr
}

// bufferOpener opens buffer
type bufferOpener struct {
	st map[common.Relation]*bufferStorage
}

// newBufferOpener initializes bufferOpener
func newBufferOpener() *bufferOpener {
	return &bufferOpener{
		st: make(map[common.Relation]*bufferStorage),
	}
}

// open returns specified buffer
func (bo *bufferOpener) open(rel common.Relation, create bool) (storage, error) {
	buf, ok := bo.st[rel]
	if ok {
		return buf, nil
	}
	if !create {
		return nil, errors.Wrapf(ErrFileNotFound, "open %s", rel)
	}
	buf = newBufferStorage()
	bo.st[rel] = buf
	return buf, nil
}

func (bo *bufferOpener) exists(rel common.Relation) (bool, error) {
	_, ok := bo.st[rel]
	return ok, nil
}

func (bo *bufferOpener) remove(rel common.Relation) error {
	if _, ok := bo.st[rel]; !ok {
		return errors.Wrapf(ErrFileNotFound, "remove %s", rel)
	}
	delete(bo.st, rel)
	return nil
}

func (bo *bufferOpener) sync() error {
	return nil
}

func (bo *bufferOpener) close() error {
	return nil
}
