package sortagg

import "time"

// A Block is an immutable, columnar table: an ordered sequence of named Columns
// which all share the same number of rows. Blocks are created by BlockBuilders
// and are never mutated after construction.
type Block interface {
	ID() string                              // ID retrieves the ID of this Block
	Schema() Schema                          // Schema retrieves the Schema of this Block. Empty Blocks may have no columns.
	NumRows() int                            // NumRows retrieves the number of rows in this Block
	Column(name string) (Column, error)      // Column retrieves a Column by name, or a MissingColumnError
	Row(rowNum int) Row                      // Row retrieves a specific row from this Block
	Slice(start int, end int) Block          // Slice returns the rows [start, end) of this Block, sharing storage with it
	Select(colNames []string) (Block, error) // Select returns a Block containing only the named columns, in the given order
}

// A Row is a read-only view of a single row within a Block
type Row interface {
	Schema() Schema                                   // Schema returns the Schema of this Row
	Get(colName string) (interface{}, error)          // Get returns the raw stored value of a column (nil for null)
	IsNil(colName string) (bool, error)               // IsNil returns true iff the named column is null in this Row
	GetInt64(colName string) (int64, bool, error)     // GetInt64 returns the int64 value of a column. The bool is false iff the value is null.
	GetFloat64(colName string) (float64, bool, error) // GetFloat64 returns the float64 value of a column, widening int64 values. The bool is false iff the value is null.
	GetString(colName string) (string, bool, error)   // GetString returns the string value of a column. The bool is false iff the value is null.
	GetBool(colName string) (bool, bool, error)       // GetBool returns the bool value of a column. The bool is false iff the value is null.
	GetTime(colName string) (time.Time, bool, error)  // GetTime returns the time.Time value of a column. The bool is false iff the value is null.
	Values() []interface{}                            // Values returns the stored values of this Row, in Schema order
	ToString() string                                 // ToString returns a string representation of this Row
}

// A BlockBuilder accumulates rows for a new Block
type BlockBuilder interface {
	Append(values ...interface{}) error // Append adds a row, with one value per Schema column, normalizing values according to column types
	NumRows() int                       // NumRows returns the number of rows appended so far
	Build() Block                       // Build produces an immutable Block. The BlockBuilder must not be used afterwards.
}
