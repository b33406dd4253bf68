package am

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/HayatoShiba/ppheap/catalog"
	"github.com/HayatoShiba/ppheap/common"
	"github.com/HayatoShiba/ppheap/storage/buffer"
	"github.com/HayatoShiba/ppheap/storage/disk"
	"github.com/HayatoShiba/ppheap/storage/page"
	"github.com/HayatoShiba/ppheap/storage/tuple"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
)

const testBlockSize = 512

var student = common.Relation("student")

// setupStudent creates student table (id int, score float, name char(12)). the row is 20 bytes and the slot is 24 bytes
func setupStudent(t *testing.T, capacity int) (*Manager, *catalog.Memory) {
	cat := catalog.NewMemory()
	require.NoError(t, cat.AddTable(student, catalog.Int("id"), catalog.Float("score"), catalog.Char("name", 12)))
	m, err := TestingNewManager(cat, capacity, testBlockSize)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	require.NoError(t, m.CreateTable(student))
	return m, cat
}

func studentRow(i int) tuple.TableRow {
	return tuple.TableRow{strconv.Itoa(i), fmt.Sprintf("%d.5", i), fmt.Sprintf("student%d", i)}
}

// insertRows inserts rows with id from..to-1 and updates the row count like the caller of the manager does
func insertRows(t *testing.T, m *Manager, cat *catalog.Memory, from, to int) []tuple.Address {
	addrs := make([]tuple.Address, 0, to-from)
	for i := from; i < to; i++ {
		addr, err := m.Insert(student, studentRow(i))
		require.NoError(t, err)
		require.NoError(t, cat.AddRows(student, 1))
		addrs = append(addrs, addr)
	}
	return addrs
}

func ids(rows []tuple.TableRow) []string {
	res := make([]string, 0, len(rows))
	for _, row := range rows {
		res = append(res, row[0])
	}
	return res
}

func idIn(values ...string) Condition {
	return ConditionFunc(func(_ common.Relation, row tuple.TableRow) bool {
		return slices.Contains(values, row[0])
	})
}

func TestCreateTable(t *testing.T) {
	m, _ := setupStudent(t, 4)

	err := m.CreateTable(student)
	assert.True(t, errors.Is(err, disk.ErrFileExists))

	head, err := m.bp.Fetch(student, page.FirstPageID)
	require.NoError(t, err)
	assert.Equal(t, emptyFreeList, readFreeListHead(head))
	assert.Equal(t, noFreeSlot, head.ReadInt(freeListHeadOffset))

	rows, err := m.Select(student)
	assert.Nil(t, err)
	assert.Empty(t, rows)

	// the first page reaches disk on shutdown
	require.NoError(t, m.Shutdown())
	n, err := m.dm.NPages(student, testBlockSize)
	assert.Nil(t, err)
	assert.Equal(t, 1, n)
}

func TestDropTable(t *testing.T) {
	t.Run("cached pages are discarded", func(t *testing.T) {
		m, cat := setupStudent(t, 4)
		insertRows(t, m, cat, 0, 3)

		err := m.DropTable(student)
		assert.Nil(t, err)
		assert.Equal(t, 0, m.bp.Stats().Valid)

		_, err = m.Insert(student, studentRow(3))
		assert.True(t, errors.Is(err, disk.ErrFileNotFound))

		// nothing is written out for the dropped table
		require.NoError(t, m.Shutdown())
		ok, err := m.dm.Exists(student)
		assert.Nil(t, err)
		assert.False(t, ok)
	})

	t.Run("table file does not exist", func(t *testing.T) {
		m, cat := setupStudent(t, 4)
		insertRows(t, m, cat, 0, 3)
		valid := m.bp.Stats().Valid

		err := m.DropTable(common.Relation("missing"))
		assert.True(t, errors.Is(err, disk.ErrFileNotFound))
		assert.Equal(t, valid, m.bp.Stats().Valid)
	})

	t.Run("table is re-created after dropped", func(t *testing.T) {
		m, cat := setupStudent(t, 4)
		insertRows(t, m, cat, 0, 3)
		require.NoError(t, m.DropTable(student))
		require.NoError(t, cat.SetRowCount(student, 0))

		err := m.CreateTable(student)
		assert.Nil(t, err)
		rows, err := m.Select(student)
		assert.Nil(t, err)
		assert.Empty(t, rows)
	})
}

func TestInsertSelect(t *testing.T) {
	// 50 rows span three pages (21 + 21 + 8)
	m, cat := setupStudent(t, 2)
	addrs := insertRows(t, m, cat, 0, 50)

	assert.Equal(t, tuple.NewAddress(student, 0, 4), addrs[0])
	assert.Equal(t, tuple.NewAddress(student, 1, 0), addrs[21])
	assert.Equal(t, tuple.NewAddress(student, 2, 24*7), addrs[49])

	rows, err := m.Select(student)
	assert.Nil(t, err)
	require.Len(t, rows, 50)
	for i, row := range rows {
		assert.Equal(t, studentRow(i), row)
	}

	rows, err = m.Select(student, idIn("3", "30", "49"))
	assert.Nil(t, err)
	assert.Equal(t, []string{"3", "30", "49"}, ids(rows))
}

func TestInsertInvalidRow(t *testing.T) {
	m, cat := setupStudent(t, 4)
	insertRows(t, m, cat, 0, 2)
	_, err := m.Delete(student, idIn("0"))
	require.NoError(t, err)
	require.NoError(t, cat.AddRows(student, -1))

	_, err = m.Insert(student, tuple.TableRow{"x", "1.0", "alice"})
	assert.True(t, errors.Is(err, tuple.ErrInvalidValue))

	// the free list is not consumed by the failed insert
	head, err := m.bp.Fetch(student, page.FirstPageID)
	require.NoError(t, err)
	assert.Equal(t, freeListHead{index: 0, ok: true}, readFreeListHead(head))
}

func TestFreeListIsLIFO(t *testing.T) {
	m, cat := setupStudent(t, 4)
	addrs := insertRows(t, m, cat, 0, 10)

	n, err := m.DeleteAt([]tuple.Address{addrs[3]})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	n, err = m.DeleteAt([]tuple.Address{addrs[7]})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.NoError(t, cat.AddRows(student, -2))

	// the slot freed lastly is reused first
	got := insertRows(t, m, cat, 100, 103)
	assert.Equal(t, addrs[7], got[0])
	assert.Equal(t, addrs[3], got[1])
	// free list is empty so the tuple is appended
	assert.Equal(t, tuple.NewAddress(student, 0, 4+24*10), got[2])

	head, err := m.bp.Fetch(student, page.FirstPageID)
	require.NoError(t, err)
	assert.Equal(t, emptyFreeList, readFreeListHead(head))
}

func TestDelete(t *testing.T) {
	m, cat := setupStudent(t, 4)
	addrs := insertRows(t, m, cat, 0, 10)

	n, err := m.Delete(student, idIn("2", "5"))
	assert.Nil(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, cat.AddRows(student, -n))

	rows, err := m.Select(student)
	assert.Nil(t, err)
	assert.Equal(t, []string{"0", "1", "3", "4", "6", "7", "8", "9"}, ids(rows))

	// scan deletes 2 then 5, so 5 is the head of the free list
	addr, err := m.Insert(student, studentRow(10))
	assert.Nil(t, err)
	assert.Equal(t, addrs[5], addr)
	assert.Equal(t, tuple.NewAddress(student, 0, 4+24*5), addr)
}

func TestDeleteAll(t *testing.T) {
	m, cat := setupStudent(t, 3)
	insertRows(t, m, cat, 0, 30)

	n, err := m.Delete(student)
	assert.Nil(t, err)
	assert.Equal(t, 30, n)
	require.NoError(t, cat.AddRows(student, -n))

	rows, err := m.Select(student)
	assert.Nil(t, err)
	assert.Empty(t, rows)

	// every slot is reused before the table grows. the last deleted (index 29) comes first
	got := insertRows(t, m, cat, 0, 30)
	assert.Equal(t, tuple.NewAddress(student, 1, 24*8), got[0])
	assert.Equal(t, tuple.NewAddress(student, 0, 4), got[29])
	npages, err := m.dm.NPages(student, testBlockSize)
	require.NoError(t, err)
	require.NoError(t, m.Shutdown())
	npagesAfter, err := m.dm.NPages(student, testBlockSize)
	require.NoError(t, err)
	assert.LessOrEqual(t, npages, npagesAfter)
	assert.Equal(t, 2, npagesAfter)
}

func TestDeleteAtIsIdempotent(t *testing.T) {
	m, cat := setupStudent(t, 4)
	addrs := insertRows(t, m, cat, 0, 30)
	target := []tuple.Address{addrs[25], addrs[1], addrs[12]}

	n, err := m.DeleteAt(target)
	assert.Nil(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, cat.AddRows(student, -n))

	head, err := m.bp.Fetch(student, page.FirstPageID)
	require.NoError(t, err)
	before := readFreeListHead(head)
	// addresses are processed in address order, so index 25 is pushed lastly
	assert.Equal(t, freeListHead{index: 25, ok: true}, before)

	n, err = m.DeleteAt(target)
	assert.Nil(t, err)
	assert.Equal(t, 0, n)
	head, err = m.bp.Fetch(student, page.FirstPageID)
	require.NoError(t, err)
	assert.Equal(t, before, readFreeListHead(head))

	rows, err := m.Select(student)
	assert.Nil(t, err)
	assert.Len(t, rows, 27)
	// the caller's slice is not reordered
	assert.Equal(t, []tuple.Address{addrs[25], addrs[1], addrs[12]}, target)
}

func TestSelectAt(t *testing.T) {
	m, cat := setupStudent(t, 2)
	addrs := insertRows(t, m, cat, 0, 45)

	t.Run("rows are returned in address order", func(t *testing.T) {
		rows, err := m.SelectAt([]tuple.Address{addrs[44], addrs[0], addrs[22], addrs[21]})
		assert.Nil(t, err)
		assert.Equal(t, []string{"0", "21", "22", "44"}, ids(rows))
	})

	t.Run("empty addresses", func(t *testing.T) {
		rows, err := m.SelectAt(nil)
		assert.Nil(t, err)
		assert.Empty(t, rows)
	})

	t.Run("addresses of different tables", func(t *testing.T) {
		other := tuple.NewAddress(common.Relation("course"), 0, 4)
		_, err := m.SelectAt([]tuple.Address{addrs[0], other})
		assert.True(t, errors.Is(err, ErrMixedTables))
	})

	t.Run("address in the middle of slot", func(t *testing.T) {
		_, err := m.SelectAt([]tuple.Address{tuple.NewAddress(student, 0, 5)})
		assert.True(t, errors.Is(err, ErrInvalidAddress))
		_, err = m.DeleteAt([]tuple.Address{tuple.NewAddress(student, 0, 5)})
		assert.True(t, errors.Is(err, ErrInvalidAddress))
	})
}

func TestConditionsShortCircuit(t *testing.T) {
	m, cat := setupStudent(t, 4)
	insertRows(t, m, cat, 0, 5)

	called := 0
	never := ConditionFunc(func(common.Relation, tuple.TableRow) bool { return false })
	counter := ConditionFunc(func(common.Relation, tuple.TableRow) bool {
		called++
		return true
	})

	rows, err := m.Select(student, never, counter)
	assert.Nil(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 0, called)

	rows, err = m.Select(student, counter, TestingAttributeEquals(2, "student4"))
	assert.Nil(t, err)
	assert.Equal(t, []string{"4"}, ids(rows))
	assert.Equal(t, 5, called)
}

func TestProject(t *testing.T) {
	m, _ := setupStudent(t, 4)
	rows := []tuple.TableRow{studentRow(1), studentRow(2)}

	got, err := m.Project(student, rows, []string{"name", "id"})
	assert.Nil(t, err)
	assert.Equal(t, []tuple.TableRow{{"student1", "1"}, {"student2", "2"}}, got)

	got, err = m.Project(student, nil, []string{"id"})
	assert.Nil(t, err)
	assert.Empty(t, got)

	_, err = m.Project(student, rows, []string{"age"})
	assert.True(t, errors.Is(err, ErrUnknownAttribute))
}

func TestRowCountAfterInsertsAndDeletes(t *testing.T) {
	m, cat := setupStudent(t, 3)
	inserted, deleted := 0, 0
	next := 0
	for round := 0; round < 5; round++ {
		addrs := insertRows(t, m, cat, next, next+17)
		next += 17
		inserted += 17

		// delete every third address of this round
		var victims []tuple.Address
		for i := 0; i < len(addrs); i += 3 {
			victims = append(victims, addrs[i])
		}
		n, err := m.DeleteAt(victims)
		require.NoError(t, err)
		require.NoError(t, cat.AddRows(student, -n))
		deleted += n

		rows, err := m.Select(student)
		require.NoError(t, err)
		assert.Len(t, rows, inserted-deleted)
	}
}

func TestWideRowTable(t *testing.T) {
	cat := catalog.NewMemory()
	wide := common.Relation("wide")
	require.NoError(t, cat.AddTable(wide, catalog.Char("body", testBlockSize)))
	m, err := TestingNewManager(cat, 4, testBlockSize)
	require.NoError(t, err)
	t.Cleanup(m.Close)

	err = m.CreateTable(wide)
	assert.True(t, errors.Is(err, ErrRowTooWide))
	ok, err := m.dm.Exists(wide)
	assert.Nil(t, err)
	assert.False(t, ok)

	_, err = m.Insert(wide, tuple.TableRow{"x"})
	assert.True(t, errors.Is(err, ErrRowTooWide))
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	cat := catalog.NewMemory()
	require.NoError(t, cat.AddTable(student, catalog.Int("id"), catalog.Float("score"), catalog.Char("name", 12)))

	open := func() *Manager {
		dm, err := disk.NewManager(dir)
		require.NoError(t, err)
		log := buffer.TestingNewLogger()
		m, err := NewManager(dm, buffer.NewPool(dm, 3, testBlockSize, log), cat, 16, log)
		require.NoError(t, err)
		t.Cleanup(m.Close)
		return m
	}

	m := open()
	require.NoError(t, m.CreateTable(student))
	insertRows(t, m, cat, 0, 40)
	n, err := m.Delete(student, idIn("7", "33"))
	require.NoError(t, err)
	require.NoError(t, cat.AddRows(student, -n))
	require.NoError(t, m.Shutdown())
	require.NoError(t, m.dm.Close())

	m = open()
	rows, err := m.Select(student)
	assert.Nil(t, err)
	assert.Len(t, rows, 38)
	assert.Equal(t, studentRow(39), rows[len(rows)-1])

	// the free list survives too
	addr, err := m.Insert(student, studentRow(40))
	assert.Nil(t, err)
	assert.Equal(t, tuple.NewAddress(student, 1, 24*(33-21)), addr)
}
