package tuple

// TableRow is one row of table in text form
// the i-th element is the value of the i-th attribute
type TableRow []string
