package am

import (
	"github.com/HayatoShiba/ppheap/catalog"
	"github.com/HayatoShiba/ppheap/common"
	"github.com/HayatoShiba/ppheap/storage/buffer"
	"github.com/HayatoShiba/ppheap/storage/disk"
	"github.com/HayatoShiba/ppheap/storage/tuple"
	"github.com/pkg/errors"
)

// TestingNewManager initializes the access method manager on buffer storage
func TestingNewManager(cat catalog.Catalog, capacity, blockSize int) (*Manager, error) {
	dm, err := disk.TestingNewBufferManager()
	if err != nil {
		return nil, errors.Wrap(err, "disk.TestingNewBufferManager failed")
	}
	log := buffer.TestingNewLogger()
	bp := buffer.NewPool(dm, capacity, blockSize, log)
	return NewManager(dm, bp, cat, 16, log)
}

// TestingAttributeEquals returns condition which is satisfied when the i-th value is v
func TestingAttributeEquals(i int, v string) Condition {
	return ConditionFunc(func(_ common.Relation, row tuple.TableRow) bool {
		return row[i] == v
	})
}
