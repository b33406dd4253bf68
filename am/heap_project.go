package am

import (
	"github.com/HayatoShiba/ppheap/common"
	"github.com/HayatoShiba/ppheap/storage/tuple"
	"github.com/pkg/errors"
)

// ErrUnknownAttribute is returned when the attribute name is not in the table
var ErrUnknownAttribute = errors.New("unknown attribute")

// Project returns the rows which have only the attributes named, in the order of names.
// this doesn't touch the table file.
func (m *Manager) Project(rel common.Relation, rows []tuple.TableRow, names []string) ([]tuple.TableRow, error) {
	indexes := make([]int, len(names))
	for i, name := range names {
		idx := m.cat.AttributeIndex(rel, name)
		if idx < 0 {
			return nil, errors.Wrapf(ErrUnknownAttribute, "%s.%s", rel, name)
		}
		indexes[i] = idx
	}

	projected := make([]tuple.TableRow, 0, len(rows))
	for _, row := range rows {
		pr := make(tuple.TableRow, len(indexes))
		for i, idx := range indexes {
			if idx >= len(row) {
				return nil, errors.Wrapf(tuple.ErrAttributeCount, "row has %d values, attribute %s is at %d", len(row), names[i], idx)
			}
			pr[i] = row[idx]
		}
		projected = append(projected, pr)
	}
	return projected, nil
}
