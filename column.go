package sortagg

// Column is a single, named, typed sequence of values within a Block.
// All Columns of a Block share the same length. A nil value denotes null.
type Column interface {
	Name() string            // Name returns the name of this Column
	Type() ColumnType        // Type returns the ColumnType of this Column
	Len() int                // Len returns the number of values in this Column
	IsNil(i int) bool        // IsNil returns true iff the value at row i is null
	Value(i int) interface{} // Value returns the value at row i, or nil if it is null
	Values() []interface{}   // Values returns the native sequence of values in this Column. It must not be modified.
	NullCount() int          // NullCount returns the number of null values in this Column
}

// AllNull returns true iff every value in a Column is null
func AllNull(col Column) bool {
	return col.NullCount() == col.Len()
}
