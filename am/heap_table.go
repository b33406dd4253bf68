package am

import (
	"github.com/HayatoShiba/ppheap/common"
	"github.com/HayatoShiba/ppheap/storage/page"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CreateTable creates the table file and initializes the first page with an empty free list.
// disk.ErrFileExists is returned when the table file already exists,
// and ErrRowTooWide is returned when one row of the table doesn't fit in the first page.
// the first page is created through the buffer pool, so it reaches disk when it is written out.
func (m *Manager) CreateTable(rel common.Relation) error {
	m.Lock()
	defer m.Unlock()

	// the table with the same name may have been dropped and re-defined
	m.forgetLayout(rel)
	// reject the table whose row cannot be stored before the file is created
	if _, err := m.layoutOf(rel); err != nil {
		return errors.Wrap(err, "layoutOf failed")
	}
	if err := m.dm.Create(rel); err != nil {
		return errors.Wrap(err, "dm.Create failed")
	}

	pg, err := m.bp.Allocate(rel, page.FirstPageID)
	if err != nil {
		return errors.Wrap(err, "bp.Allocate failed")
	}
	writeFreeListHead(pg, emptyFreeList)
	m.log.WithFields(logrus.Fields{"table": rel}).Info("table created")
	return nil
}

// DropTable removes the table file and discards its cached pages without writing them out.
// when the file cannot be removed (disk.ErrFileNotFound), cached pages are left as they are.
func (m *Manager) DropTable(rel common.Relation) error {
	m.Lock()
	defer m.Unlock()

	if err := m.dm.Remove(rel); err != nil {
		return errors.Wrap(err, "dm.Remove failed")
	}
	m.bp.InvalidateAll(rel)
	m.forgetLayout(rel)
	m.log.WithFields(logrus.Fields{"table": rel}).Info("table dropped")
	return nil
}
