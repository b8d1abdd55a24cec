package errors

import (
	"fmt"
	"strings"
)

// MissingColumnError occurs when a requested column does not exist in a Block
type MissingColumnError struct {
	Name      string
	Available []string
}

// Error returns a textual representation of this MissingColumnError
func (e MissingColumnError) Error() string {
	return fmt.Sprintf("Cannot find column %s, available columns: [%s]", e.Name, strings.Join(e.Available, ", "))
}

// InvalidKeyError occurs when a grouping key is neither absent, a column name, nor a list of column names
type InvalidKeyError struct{ Key interface{} }

// Error returns a textual representation of this InvalidKeyError
func (e InvalidKeyError) Error() string {
	return fmt.Sprintf("key must be a string, nil or a list of column names when aggregating, but got: %T (%v)", e.Key, e.Key)
}

// InvalidColumnNameError occurs when a column selection is given something other than a column name
type InvalidColumnNameError struct{ Name interface{} }

// Error returns a textual representation of this InvalidColumnNameError
func (e InvalidColumnNameError) Error() string {
	return fmt.Sprintf("on must be a non-empty column name when aggregating, but got: %T (%v)", e.Name, e.Name)
}

// BoundaryArityError occurs when a boundary tuple does not fit the SortKey it is located against
type BoundaryArityError struct {
	Boundary int
	Key      int
}

// Error returns a textual representation of this BoundaryArityError
func (e BoundaryArityError) Error() string {
	return fmt.Sprintf("Boundary has %d values, but must have between 1 and %d (the number of sort key columns)", e.Boundary, e.Key)
}

// UnsortedBoundariesError occurs when boundaries are not ordered consistently with a SortKey
type UnsortedBoundariesError struct {
	Position int
	Index    int
	Previous int
}

// Error returns a textual representation of this UnsortedBoundariesError
func (e UnsortedBoundariesError) Error() string {
	return fmt.Sprintf("Boundary %d was located at row %d, before the previous boundary (row %d). Boundaries must be sorted by the sort key", e.Position, e.Index, e.Previous)
}

// NumericTypeError occurs when a column cannot be converted to a native numeric sequence
type NumericTypeError struct {
	Column string
	Type   string
	Value  interface{}
}

// Error returns a textual representation of this NumericTypeError
func (e NumericTypeError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("Column %s of type %s has no numeric representation", e.Column, e.Type)
	}
	return fmt.Sprintf("Column %s of type %s contains non-numeric value %v (%T)", e.Column, e.Type, e.Value, e.Value)
}

// IncomparableValuesError occurs when two values cannot be ordered relative to one another
type IncomparableValuesError struct {
	Left  interface{}
	Right interface{}
}

// Error returns a textual representation of this IncomparableValuesError
func (e IncomparableValuesError) Error() string {
	return fmt.Sprintf("Cannot compare %v (%T) with %v (%T)", e.Left, e.Left, e.Right, e.Right)
}

// IncompatibleValueError occurs when a value cannot be stored in a column of a given type
type IncompatibleValueError struct {
	Column string
	Type   string
	Value  interface{}
}

// Error returns a textual representation of this IncompatibleValueError
func (e IncompatibleValueError) Error() string {
	return fmt.Sprintf("Value %v (%T) is not compatible with column %s of type %s", e.Value, e.Value, e.Column, e.Type)
}

// IncompatibleRowError occurs when a Row's width does not match an expected Schema
type IncompatibleRowError struct {
	Width    int
	Expected int
}

// Error returns a textual representation of this IncompatibleRowError
func (e IncompatibleRowError) Error() string {
	return fmt.Sprintf("Row width %d is not compatible with Schema of width %d", e.Width, e.Expected)
}

// IncompatibleSchemaError occurs when Blocks with different Schemas are combined
type IncompatibleSchemaError struct{ Reason string }

// Error returns a textual representation of this IncompatibleSchemaError
func (e IncompatibleSchemaError) Error() string {
	return fmt.Sprintf("Schemas are not compatible: %s", e.Reason)
}

// MissingBackendError occurs when a configured table backend has not been registered
type MissingBackendError struct {
	Name     string
	Fallback string
}

// Error returns a textual representation of this MissingBackendError
func (e MissingBackendError) Error() string {
	return fmt.Sprintf("table backend %q is not registered. Import its package, or set `backend: %s` (or $SORTAGG_BACKEND=%s) to fall back to the built-in backend", e.Name, e.Fallback, e.Fallback)
}

// DispatchError occurs when one or more dispatched units of work fail
type DispatchError struct {
	Operation string
	Err       error
}

// Error returns a textual representation of this DispatchError
func (e DispatchError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying cause of this DispatchError
func (e DispatchError) Unwrap() error {
	return e.Err
}

// UnsupportedUnitError occurs when a Dispatcher is handed a unit of work it cannot execute
type UnsupportedUnitError struct{ Unit interface{} }

// Error returns a textual representation of this UnsupportedUnitError
func (e UnsupportedUnitError) Error() string {
	return fmt.Sprintf("Dispatcher cannot execute units of type %T", e.Unit)
}
