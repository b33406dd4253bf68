/*
Schema encodes TableRow into slot bytes and decodes them back.

The attribute kinds are looked up from the catalog once when the schema is built,
so encode/decode doesn't ask the catalog for each value.

on-disk representation of each kind:
- int: 4-byte signed integer
- float: 4-byte float
- char(n): n bytes. shorter string is 0-padded and the padding is stripped when decoded

text representation of each kind in TableRow:
- int: base 10
- float: the shortest decimal which reads back to the same float
- char: as it is
*/
package tuple

import (
	"strconv"

	"github.com/HayatoShiba/ppheap/catalog"
	"github.com/HayatoShiba/ppheap/common"
	"github.com/HayatoShiba/ppheap/storage/page"
	"github.com/pkg/errors"
)

var (
	// ErrAttributeCount is returned when the row doesn't have as many values as attributes
	ErrAttributeCount = errors.New("attribute count mismatch")
	// ErrInvalidValue is returned when the text cannot be parsed as the attribute kind
	ErrInvalidValue = errors.New("invalid value")
	// ErrValueTooLong is returned when the string is longer than the char attribute
	ErrValueTooLong = errors.New("value too long")
)

// field is one attribute resolved from catalog
type field struct {
	kind   catalog.Kind
	length int
	// offset is where the attribute starts, relative to the end of the slot flag
	offset int
}

// Schema is the attributes of table
type Schema struct {
	fields    []field
	rowLength int
}

// NewSchema resolves the attributes of the table from catalog
func NewSchema(c catalog.Catalog, rel common.Relation) Schema {
	n := c.AttributeCount(rel)
	s := Schema{fields: make([]field, 0, n)}
	for i := 0; i < n; i++ {
		f := field{
			kind:   c.AttributeType(rel, i),
			length: c.AttributeLength(rel, i),
			offset: s.rowLength,
		}
		s.fields = append(s.fields, f)
		s.rowLength += f.length
	}
	return s
}

// RowLength returns the byte size of attributes
func (s Schema) RowLength() int {
	return s.rowLength
}

// AttributeCount returns the number of attributes
func (s Schema) AttributeCount() int {
	return len(s.fields)
}

// Validate checks whether the row can be encoded
func (s Schema) Validate(row TableRow) error {
	if len(row) != len(s.fields) {
		return errors.Wrapf(ErrAttributeCount, "got %d values for %d attributes", len(row), len(s.fields))
	}
	for i, f := range s.fields {
		v := row[i]
		switch f.kind {
		case catalog.KindInt:
			if _, err := strconv.ParseInt(v, 10, 32); err != nil {
				return errors.Wrapf(ErrInvalidValue, "attribute %d: %q is not int", i, v)
			}
		case catalog.KindFloat:
			if _, err := strconv.ParseFloat(v, 32); err != nil {
				return errors.Wrapf(ErrInvalidValue, "attribute %d: %q is not float", i, v)
			}
		case catalog.KindChar:
			if len(v) > f.length {
				return errors.Wrapf(ErrValueTooLong, "attribute %d: %d bytes for char(%d)", i, len(v), f.length)
			}
		default:
			return errors.Errorf("attribute %d: unknown kind %d", i, f.kind)
		}
	}
	return nil
}

// Encode writes the row into the slot at offset and marks the slot occupied
// the row is validated before any byte is written
func (s Schema) Encode(p *page.Page, offset int, row TableRow) error {
	if err := s.Validate(row); err != nil {
		return errors.Wrap(err, "Validate failed")
	}
	p.WriteInt(offset, flagOccupied)
	base := offset + FlagSize
	for i, f := range s.fields {
		off := base + f.offset
		switch f.kind {
		case catalog.KindInt:
			v, _ := strconv.ParseInt(row[i], 10, 32)
			p.WriteInt(off, int32(v))
		case catalog.KindFloat:
			v, _ := strconv.ParseFloat(row[i], 32)
			p.WriteFloat(off, float32(v))
		case catalog.KindChar:
			padded := make([]byte, f.length)
			copy(padded, row[i])
			p.WriteString(off, string(padded))
		}
	}
	return nil
}

// Decode reads the row from the slot at offset
// the slot flag is not checked
func (s Schema) Decode(p *page.Page, offset int) TableRow {
	row := make(TableRow, len(s.fields))
	base := offset + FlagSize
	for i, f := range s.fields {
		off := base + f.offset
		switch f.kind {
		case catalog.KindInt:
			row[i] = strconv.FormatInt(int64(p.ReadInt(off)), 10)
		case catalog.KindFloat:
			row[i] = strconv.FormatFloat(float64(p.ReadFloat(off)), 'f', -1, 32)
		case catalog.KindChar:
			row[i] = p.ReadString(off, f.length)
		}
	}
	return row
}
