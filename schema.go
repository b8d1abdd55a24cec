package sortagg

// Schema is an ordered mapping from column names to column indices and types.
// It allows one to obtain indices by name, define new columns, project columns, etc.
type Schema interface {
	Equals(otherSchema Schema) error                                                  // Equals returns nil iff this and another Schema have identically named and typed columns in the same order
	Clone() Schema                                                                    // Clone returns a copy of this Schema
	NumColumns() int                                                                  // NumColumns returns the number of columns in this Schema
	GetIndex(colName string) (int, error)                                             // GetIndex returns the position of a column, or a MissingColumnError
	GetType(colName string) (ColumnType, error)                                       // GetType returns the ColumnType of a column, or a MissingColumnError
	HasColumn(colName string) bool                                                    // HasColumn returns true iff this Schema contains the named column
	CreateColumn(colName string, columnType ColumnType) (newSchema Schema, err error) // CreateColumn appends a new column to the Schema
	RenameColumn(oldName string, newName string) (newSchema Schema, err error)        // RenameColumn renames a column within the Schema
	Project(colNames []string) (newSchema Schema, err error)                          // Project produces a new Schema containing only the named columns, in the given order
	ColumnNames() []string                                                            // ColumnNames returns the column names, in index order
	ColumnTypes() []ColumnType                                                        // ColumnTypes returns the column types, in index order
	ForEachColumn(fn func(name string, idx int, colType ColumnType) error) error      // ForEachColumn iterates over the columns in index order
}
