package common

// Relation is the name of a table.
// the table is stored in exactly one file and the file is named after the relation,
// so the relation is also used as the file name under the data directory.
// schema information (attributes, row count) is not stored with the relation but in the catalog.
type Relation string

// String returns the relation name
func (r Relation) String() string {
	return string(r)
}
