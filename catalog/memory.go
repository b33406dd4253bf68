package catalog

import (
	"sync"

	"github.com/HayatoShiba/ppheap/common"
	"github.com/pkg/errors"
)

var (
	// ErrTableExists is returned when the table is already registered
	ErrTableExists = errors.New("table already exists in catalog")
	// ErrTableNotFound is returned when the table is not registered
	ErrTableNotFound = errors.New("table not found in catalog")
)

type tableInfo struct {
	attrs    []Attribute
	rowCount int
}

// Memory is in-memory catalog
type Memory struct {
	tables map[common.Relation]*tableInfo
	sync.RWMutex
}

// NewMemory initializes empty in-memory catalog
func NewMemory() *Memory {
	return &Memory{
		tables: make(map[common.Relation]*tableInfo),
	}
}

// AddTable registers the table with its attributes
func (m *Memory) AddTable(rel common.Relation, attrs ...Attribute) error {
	if len(attrs) == 0 {
		return errors.Errorf("table %s has no attribute", rel)
	}
	for _, attr := range attrs {
		if attr.Length <= 0 {
			return errors.Errorf("attribute %s has invalid length %d", attr.Name, attr.Length)
		}
	}
	m.Lock()
	defer m.Unlock()
	if _, ok := m.tables[rel]; ok {
		return errors.Wrapf(ErrTableExists, "add %s", rel)
	}
	copied := make([]Attribute, len(attrs))
	copy(copied, attrs)
	m.tables[rel] = &tableInfo{attrs: copied}
	return nil
}

// DropTable unregisters the table
func (m *Memory) DropTable(rel common.Relation) error {
	m.Lock()
	defer m.Unlock()
	if _, ok := m.tables[rel]; !ok {
		return errors.Wrapf(ErrTableNotFound, "drop %s", rel)
	}
	delete(m.tables, rel)
	return nil
}

// AddRows adds delta to the row count. delta can be negative
func (m *Memory) AddRows(rel common.Relation, delta int) error {
	m.Lock()
	defer m.Unlock()
	t, ok := m.tables[rel]
	if !ok {
		return errors.Wrapf(ErrTableNotFound, "add rows to %s", rel)
	}
	if t.rowCount+delta < 0 {
		return errors.Errorf("row count of %s becomes negative: %d%+d", rel, t.rowCount, delta)
	}
	t.rowCount += delta
	return nil
}

// SetRowCount sets the row count
func (m *Memory) SetRowCount(rel common.Relation, n int) error {
	if n < 0 {
		return errors.Errorf("row count of %s is negative: %d", rel, n)
	}
	m.Lock()
	defer m.Unlock()
	t, ok := m.tables[rel]
	if !ok {
		return errors.Wrapf(ErrTableNotFound, "set row count of %s", rel)
	}
	t.rowCount = n
	return nil
}

// HasTable checks whether the table is registered
func (m *Memory) HasTable(rel common.Relation) bool {
	m.RLock()
	defer m.RUnlock()
	_, ok := m.tables[rel]
	return ok
}

func (m *Memory) table(rel common.Relation) *tableInfo {
	m.RLock()
	defer m.RUnlock()
	if t, ok := m.tables[rel]; ok {
		return t
	}
	return &tableInfo{}
}

// RowCount returns the number of rows in the table. 0 for unknown table
func (m *Memory) RowCount(rel common.Relation) int {
	m.RLock()
	defer m.RUnlock()
	if t, ok := m.tables[rel]; ok {
		return t.rowCount
	}
	return 0
}

// RowLength returns the sum of the attribute lengths
func (m *Memory) RowLength(rel common.Relation) int {
	n := 0
	for _, attr := range m.table(rel).attrs {
		n += attr.Length
	}
	return n
}

// AttributeCount returns the number of attributes
func (m *Memory) AttributeCount(rel common.Relation) int {
	return len(m.table(rel).attrs)
}

// AttributeType returns the kind of the i-th attribute
func (m *Memory) AttributeType(rel common.Relation, i int) Kind {
	return m.table(rel).attrs[i].Kind
}

// AttributeLength returns the byte length of the i-th attribute
func (m *Memory) AttributeLength(rel common.Relation, i int) int {
	return m.table(rel).attrs[i].Length
}

// AttributeIndex returns the position of the attribute. -1 when there is no such attribute
func (m *Memory) AttributeIndex(rel common.Relation, name string) int {
	for i, attr := range m.table(rel).attrs {
		if attr.Name == name {
			return i
		}
	}
	return -1
}
