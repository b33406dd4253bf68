package am

import (
	"sync"
	"testing"

	"github.com/HayatoShiba/ppheap/catalog"
	"github.com/HayatoShiba/ppheap/common"
	"github.com/HayatoShiba/ppheap/storage/disk"
	"github.com/HayatoShiba/ppheap/storage/tuple"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// paddedCatalog reports the row length longer (or shorter) than the attributes by padding bytes
type paddedCatalog struct {
	*catalog.Memory
	padding int
}

func (c paddedCatalog) RowLength(rel common.Relation) int {
	return c.Memory.RowLength(rel) + c.padding
}

func TestLayoutFollowsCatalogRowLength(t *testing.T) {
	mem := catalog.NewMemory()
	require.NoError(t, mem.AddTable(student, catalog.Int("id"), catalog.Float("score"), catalog.Char("name", 12)))
	cat := paddedCatalog{Memory: mem, padding: 8}
	m, err := TestingNewManager(cat, 2, testBlockSize)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	require.NoError(t, m.CreateTable(student))

	tl, err := m.layoutOf(student)
	require.NoError(t, err)
	// row is 20 + 8 bytes, so the slot is 32 bytes and the header page holds 15 slots
	assert.Equal(t, 32, tl.layout.SlotSize())
	assert.Equal(t, 15, tl.layout.SlotsInHeaderPage())

	addrs := insertRows(t, m, mem, 0, 16)
	assert.Equal(t, tuple.NewAddress(student, 0, 4), addrs[0])
	assert.Equal(t, tuple.NewAddress(student, 0, 4+32), addrs[1])
	assert.Equal(t, tuple.NewAddress(student, 1, 0), addrs[15])

	rows, err := m.Select(student)
	assert.Nil(t, err)
	require.Len(t, rows, 16)
	for i, row := range rows {
		assert.Equal(t, studentRow(i), row)
	}
}

func TestCatalogRowLengthShorterThanAttributes(t *testing.T) {
	mem := catalog.NewMemory()
	require.NoError(t, mem.AddTable(student, catalog.Int("id"), catalog.Char("name", 12)))
	m, err := TestingNewManager(paddedCatalog{Memory: mem, padding: -1}, 2, testBlockSize)
	require.NoError(t, err)
	t.Cleanup(m.Close)

	err = m.CreateTable(student)
	assert.True(t, errors.Is(err, ErrRowLength))
	ok, err := m.dm.Exists(student)
	assert.Nil(t, err)
	assert.False(t, ok)
}

func TestDeleteAtReturnsPartialCount(t *testing.T) {
	m, cat := setupStudent(t, 2)
	addrs := insertRows(t, m, cat, 0, 5)

	// page 5 doesn't exist, so the batch fails after the first page
	missing := tuple.NewAddress(student, 5, 0)
	n, err := m.DeleteAt([]tuple.Address{missing, addrs[1]})
	assert.True(t, errors.Is(err, disk.ErrPageNotFound))
	assert.Equal(t, 1, n)
	require.NoError(t, cat.AddRows(student, -n))

	rows, err := m.Select(student)
	assert.Nil(t, err)
	assert.Equal(t, []string{"0", "2", "3", "4"}, ids(rows))
}

// pool statistics can be read while the manager is modifying pages
func TestStatsWhileInserting(t *testing.T) {
	m, cat := setupStudent(t, 2)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				st := m.bp.Stats()
				assert.LessOrEqual(t, st.Pinned, st.Capacity)
			}
		}
	}()

	insertRows(t, m, cat, 0, 50)
	_, err := m.Delete(student, idIn("3", "30"))
	close(done)
	wg.Wait()
	assert.Nil(t, err)
	assert.Equal(t, 0, m.bp.Stats().Pinned)
}
