package tuple

import (
	"github.com/HayatoShiba/ppheap/catalog"
	"github.com/HayatoShiba/ppheap/common"
)

// TestingNewSchema builds schema from the attributes through in-memory catalog
func TestingNewSchema(attrs ...catalog.Attribute) (Schema, error) {
	c := catalog.NewMemory()
	rel := common.Relation("testing")
	if err := c.AddTable(rel, attrs...); err != nil {
		return Schema{}, err
	}
	return NewSchema(c, rel), nil
}
