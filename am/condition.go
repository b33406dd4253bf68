package am

import (
	"github.com/HayatoShiba/ppheap/common"
	"github.com/HayatoShiba/ppheap/storage/tuple"
)

// Condition is a predicate on a decoded row
type Condition interface {
	Satisfy(rel common.Relation, row tuple.TableRow) bool
}

// ConditionFunc adapts a function to Condition
type ConditionFunc func(rel common.Relation, row tuple.TableRow) bool

// Satisfy calls f
func (f ConditionFunc) Satisfy(rel common.Relation, row tuple.TableRow) bool {
	return f(rel, row)
}

// satisfyAll checks the conditions in order and stops at the first one which is not satisfied
// the row satisfies an empty list of conditions
func satisfyAll(rel common.Relation, row tuple.TableRow, conds []Condition) bool {
	for _, c := range conds {
		if !c.Satisfy(rel, row) {
			return false
		}
	}
	return true
}
