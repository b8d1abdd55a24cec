package schema

import (
	"fmt"
	"reflect"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/errors"
)

// column describes the position and type of a column within a Schema
type column struct {
	idx     int
	colType sortagg.ColumnType
}

// Clone returns a copy of this column
func (c *column) Clone() *column {
	return &column{c.idx, c.colType}
}

// Schema is an ordered mapping from column names to column
// indices and types. It allows one to obtain indices by name,
// define new columns, project columns, etc.
type schema struct {
	schema map[string]*column
	names  []string
}

// CreateSchema is a factory for Schemas
func CreateSchema() sortagg.Schema {
	return &schema{
		schema: make(map[string]*column),
		names:  make([]string, 0),
	}
}

// Of builds a Schema from alternating column names and ColumnTypes, panicking
// if they are malformed. It is intended for literal Schemas in code and tests.
func Of(nameTypePairs ...interface{}) sortagg.Schema {
	if len(nameTypePairs)%2 != 0 {
		panic(fmt.Errorf("Arguments to schema.Of must be name/type pairs, got %d arguments", len(nameTypePairs)))
	}
	s := CreateSchema()
	for i := 0; i < len(nameTypePairs); i += 2 {
		name, ok := nameTypePairs[i].(string)
		if !ok {
			panic(errors.InvalidColumnNameError{Name: nameTypePairs[i]})
		}
		colType, ok := nameTypePairs[i+1].(sortagg.ColumnType)
		if !ok {
			panic(fmt.Errorf("Argument %d to schema.Of is not a ColumnType: %T", i+1, nameTypePairs[i+1]))
		}
		if _, err := s.CreateColumn(name, colType); err != nil {
			panic(err)
		}
	}
	return s
}

// Equals returns nil iff this and another Schema are equivalent
func (s *schema) Equals(otherSchema sortagg.Schema) error {
	if s.NumColumns() != otherSchema.NumColumns() {
		return fmt.Errorf("Schemas have unequal numbers of columns")
	}
	return s.ForEachColumn(func(name string, idx int, colType sortagg.ColumnType) error {
		otherIdx, err := otherSchema.GetIndex(name)
		if err != nil {
			return err
		}
		if idx != otherIdx {
			return fmt.Errorf("Column %s indices do not match", name)
		}
		otherType, _ := otherSchema.GetType(name)
		if reflect.TypeOf(colType) != reflect.TypeOf(otherType) {
			return fmt.Errorf("Column %s types do not match", name)
		}
		return nil
	})
}

// Clone returns a copy of this Schema
func (s *schema) Clone() sortagg.Schema {
	newSchema := make(map[string]*column, len(s.schema))
	for k, v := range s.schema {
		newSchema[k] = v.Clone()
	}
	names := make([]string, len(s.names))
	copy(names, s.names)
	return &schema{schema: newSchema, names: names}
}

// NumColumns returns the number of columns in this Schema
func (s *schema) NumColumns() int {
	return len(s.names)
}

// GetIndex returns the position of a particular column within a row
func (s *schema) GetIndex(colName string) (int, error) {
	col, ok := s.schema[colName]
	if !ok {
		return -1, errors.MissingColumnError{Name: colName, Available: s.ColumnNames()}
	}
	return col.idx, nil
}

// GetType returns the ColumnType of a particular column
func (s *schema) GetType(colName string) (sortagg.ColumnType, error) {
	col, ok := s.schema[colName]
	if !ok {
		return nil, errors.MissingColumnError{Name: colName, Available: s.ColumnNames()}
	}
	return col.colType, nil
}

// HasColumn returns true iff this schema contains a column with the given name
func (s *schema) HasColumn(colName string) bool {
	_, ok := s.schema[colName]
	return ok
}

// CreateColumn defines a new column at the end of the Schema
func (s *schema) CreateColumn(colName string, columnType sortagg.ColumnType) (newSchema sortagg.Schema, err error) {
	if len(colName) == 0 {
		return nil, errors.InvalidColumnNameError{Name: colName}
	}
	_, containsColumn := s.schema[colName]
	if containsColumn {
		err = fmt.Errorf("Schema already contains column with name %s", colName)
	} else {
		s.schema[colName] = &column{len(s.names), columnType}
		s.names = append(s.names, colName)
		newSchema = s
	}
	return
}

// RenameColumn renames a column within the Schema
func (s *schema) RenameColumn(oldName string, newName string) (newSchema sortagg.Schema, err error) {
	if s.HasColumn(newName) {
		return nil, fmt.Errorf("Schema already contains column with name %s", newName)
	}
	col, ok := s.schema[oldName]
	if !ok {
		return nil, errors.MissingColumnError{Name: oldName, Available: s.ColumnNames()}
	}
	s.schema[newName] = col
	delete(s.schema, oldName)
	s.names[col.idx] = newName
	return s, nil
}

// Project produces a new Schema containing only the named columns, in the given order
func (s *schema) Project(colNames []string) (sortagg.Schema, error) {
	projected := CreateSchema()
	for _, name := range colNames {
		colType, err := s.GetType(name)
		if err != nil {
			return nil, err
		}
		if _, err = projected.CreateColumn(name, colType); err != nil {
			return nil, err
		}
	}
	return projected, nil
}

// ColumnNames returns the names in the schema, in index order
func (s *schema) ColumnNames() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

// ColumnTypes returns the types in the schema, in index order
func (s *schema) ColumnTypes() []sortagg.ColumnType {
	types := make([]sortagg.ColumnType, len(s.names))
	for i, name := range s.names {
		types[i] = s.schema[name].colType
	}
	return types
}

// ForEachColumn iterates over the columns in this Schema, in index order
func (s *schema) ForEachColumn(fn func(name string, idx int, colType sortagg.ColumnType) error) error {
	for i, name := range s.names {
		err := fn(name, i, s.schema[name].colType)
		if err != nil {
			return err
		}
	}
	return nil
}
