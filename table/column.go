package table

import "github.com/go-sif/sortagg"

// column is a Column backed by a slice of normalized values
type column struct {
	name      string
	colType   sortagg.ColumnType
	values    []interface{}
	nullCount int
}

func newColumn(name string, colType sortagg.ColumnType, values []interface{}) *column {
	nulls := 0
	for _, v := range values {
		if v == nil {
			nulls++
		}
	}
	return &column{name: name, colType: colType, values: values, nullCount: nulls}
}

// Name returns the name of this Column
func (c *column) Name() string {
	return c.name
}

// Type returns the ColumnType of this Column
func (c *column) Type() sortagg.ColumnType {
	return c.colType
}

// Len returns the number of values in this Column
func (c *column) Len() int {
	return len(c.values)
}

// IsNil returns true iff the value at row i is null
func (c *column) IsNil(i int) bool {
	return c.values[i] == nil
}

// Value returns the value at row i
func (c *column) Value(i int) interface{} {
	return c.values[i]
}

// Values returns the values of this Column. The slice is shared with the
// Block and must not be modified; its capacity is clipped so that appending
// to it copies.
func (c *column) Values() []interface{} {
	return c.values[:len(c.values):len(c.values)]
}

// NullCount returns the number of null values in this Column
func (c *column) NullCount() int {
	return c.nullCount
}

func (c *column) slice(start int, end int) *column {
	return newColumn(c.name, c.colType, c.values[start:end:end])
}
