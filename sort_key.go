package sortagg

import (
	"fmt"
	"strings"
)

// Direction encodes the sort direction of a column
type Direction int

const (
	// Ascending sorts smaller values first
	Ascending Direction = 1
	// Descending sorts larger values first
	Descending Direction = -1
)

// String returns the name of this Direction
func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// ParseDirection translates "ascending"/"asc" or "descending"/"desc" into a Direction
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "ascending", "asc":
		return Ascending, nil
	case "descending", "desc":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("Unknown sort direction %q", s)
	}
}

// SortColumn is a single (column name, direction) entry of a SortKey
type SortColumn struct {
	Name      string
	Direction Direction
}

// Asc produces an ascending SortColumn
func Asc(name string) SortColumn {
	return SortColumn{Name: name, Direction: Ascending}
}

// Desc produces a descending SortColumn
func Desc(name string) SortColumn {
	return SortColumn{Name: name, Direction: Descending}
}

// SortKey is an ordered, non-empty sequence of SortColumns. The first
// entry is the primary sort column.
type SortKey []SortColumn

// Validate returns an error iff this SortKey is empty or malformed
func (k SortKey) Validate() error {
	if len(k) == 0 {
		return fmt.Errorf("SortKey must contain at least one column")
	}
	for i, c := range k {
		if len(c.Name) == 0 {
			return fmt.Errorf("SortKey column %d has no name", i)
		}
		if c.Direction != Ascending && c.Direction != Descending {
			return fmt.Errorf("SortKey column %s has an unknown direction %d", c.Name, c.Direction)
		}
	}
	return nil
}

// ColumnNames returns the names of the columns in this SortKey, in order
func (k SortKey) ColumnNames() []string {
	names := make([]string, len(k))
	for i, c := range k {
		names[i] = c.Name
	}
	return names
}

// CompareRows orders row i of columns a against row j of columns b, where a and b
// hold the columns of this SortKey in order
func (k SortKey) CompareRows(a []Column, i int, b []Column, j int) (int, error) {
	for c := range k {
		res, err := CompareDirected(a[c].Value(i), b[c].Value(j), k[c].Direction)
		if err != nil || res != 0 {
			return res, err
		}
	}
	return 0, nil
}

// String returns a textual representation of this SortKey
func (k SortKey) String() string {
	parts := make([]string, len(k))
	for i, c := range k {
		parts[i] = fmt.Sprintf("(%s, %s)", c.Name, c.Direction)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// KeyColumns fetches the Columns of a SortKey from a Block, in SortKey order
func KeyColumns(b Block, k SortKey) ([]Column, error) {
	cols := make([]Column, len(k))
	for i, c := range k {
		col, err := b.Column(c.Name)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return cols, nil
}
