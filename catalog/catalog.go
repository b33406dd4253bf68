/*
Catalog holds the metadata of tables: the attributes of each table and how many rows it has.
The heap access method only reads the catalog. Keeping the row count up to date
after insert/delete is the responsibility of whoever owns the catalog.
*/
package catalog

import (
	"github.com/HayatoShiba/ppheap/common"
	"github.com/HayatoShiba/ppheap/storage/page"
)

// Kind is the data type of attribute
// the set is closed: int, float and fixed-length char
type Kind int

const (
	// KindInt is 4-byte signed integer
	KindInt Kind = iota
	// KindFloat is 4-byte float
	KindFloat
	// KindChar is fixed-length string
	KindChar
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindChar:
		return "char"
	}
	return "unknown"
}

// Attribute is a column of table
type Attribute struct {
	Name string
	Kind Kind
	// Length is the byte size of the attribute on disk
	Length int
}

// Int returns integer attribute
func Int(name string) Attribute {
	return Attribute{Name: name, Kind: KindInt, Length: page.IntSize}
}

// Float returns float attribute
func Float(name string) Attribute {
	return Attribute{Name: name, Kind: KindFloat, Length: page.FloatSize}
}

// Char returns char attribute whose length is n bytes
func Char(name string, n int) Attribute {
	return Attribute{Name: name, Kind: KindChar, Length: n}
}

// Catalog is read-only view of table metadata
// the table is expected to exist. the result for unknown table is undefined.
type Catalog interface {
	// RowCount returns how many occupied rows the table has
	RowCount(rel common.Relation) int
	// RowLength returns the byte size of one row (sum of attribute lengths)
	RowLength(rel common.Relation) int
	// AttributeCount returns the number of attributes
	AttributeCount(rel common.Relation) int
	// AttributeType returns the kind of the i-th attribute
	AttributeType(rel common.Relation, i int) Kind
	// AttributeLength returns the byte size of the i-th attribute
	AttributeLength(rel common.Relation, i int) int
	// AttributeIndex returns the position of the attribute. -1 is returned when not found
	AttributeIndex(rel common.Relation, name string) int
}
