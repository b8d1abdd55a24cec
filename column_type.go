package sortagg

import (
	"fmt"
	"time"
)

// ColumnType is an interface which is implemented to define a supported column type.
// Values are stored in their normalized form (see Normalize).
type ColumnType interface {
	Name() string                             // Name returns a stable name for this ColumnType, used when serializing Schemas
	Accept(v interface{}) (interface{}, bool) // Accept normalizes v, returning false iff it cannot be stored in a column of this type
	ToString(v interface{}) string            // ToString produces a string representation of a value of this type
}

// Int64ColumnType is a column type which stores an int64 value
type Int64ColumnType struct{}

// Name returns the name of this ColumnType
func (c *Int64ColumnType) Name() string {
	return "int64"
}

// Accept normalizes v for storage in an Int64ColumnType column
func (c *Int64ColumnType) Accept(v interface{}) (interface{}, bool) {
	v = Normalize(v)
	if v == nil {
		return nil, true
	}
	_, ok := v.(int64)
	return v, ok
}

// ToString produces a string representation of a value of an Int64ColumnType value
func (c *Int64ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%d", v.(int64))
}

// Float64ColumnType is a column type which stores a float64 value
type Float64ColumnType struct{}

// Name returns the name of this ColumnType
func (c *Float64ColumnType) Name() string {
	return "float64"
}

// Accept normalizes v for storage in a Float64ColumnType column. int64 values are widened.
func (c *Float64ColumnType) Accept(v interface{}) (interface{}, bool) {
	v = Normalize(v)
	switch tv := v.(type) {
	case nil:
		return nil, true
	case float64:
		return tv, true
	case int64:
		return float64(tv), true
	default:
		return v, false
	}
}

// ToString produces a string representation of a value of a Float64ColumnType value
func (c *Float64ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%g", v.(float64))
}

// StringColumnType is a column type which stores a string value
type StringColumnType struct{}

// Name returns the name of this ColumnType
func (c *StringColumnType) Name() string {
	return "string"
}

// Accept normalizes v for storage in a StringColumnType column
func (c *StringColumnType) Accept(v interface{}) (interface{}, bool) {
	if v == nil {
		return nil, true
	}
	_, ok := v.(string)
	return v, ok
}

// ToString produces a string representation of a value of a StringColumnType value
func (c *StringColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%q", v.(string))
}

// BoolColumnType is a column type which stores a boolean value
type BoolColumnType struct{}

// Name returns the name of this ColumnType
func (c *BoolColumnType) Name() string {
	return "bool"
}

// Accept normalizes v for storage in a BoolColumnType column
func (c *BoolColumnType) Accept(v interface{}) (interface{}, bool) {
	if v == nil {
		return nil, true
	}
	_, ok := v.(bool)
	return v, ok
}

// ToString produces a string representation of a value of a BoolColumnType value
func (c *BoolColumnType) ToString(v interface{}) string {
	if v.(bool) {
		return "true"
	}
	return "false"
}

// TimeColumnType is a column type which stores a time.Time value
type TimeColumnType struct {
	Format string // Format is the format used by ToString. Defaults to time.RFC3339Nano.
}

// Name returns the name of this ColumnType
func (c *TimeColumnType) Name() string {
	return "time"
}

// Accept normalizes v for storage in a TimeColumnType column
func (c *TimeColumnType) Accept(v interface{}) (interface{}, bool) {
	if v == nil {
		return nil, true
	}
	_, ok := v.(time.Time)
	return v, ok
}

// ToString produces a string representation of a value of a TimeColumnType value
func (c *TimeColumnType) ToString(v interface{}) string {
	format := c.Format
	if len(format) == 0 {
		format = time.RFC3339Nano
	}
	return v.(time.Time).Format(format)
}

// AnyColumnType is an untyped column type, which stores any value. Aggregate columns
// holding opaque accumulators use this type.
type AnyColumnType struct{}

// Name returns the name of this ColumnType
func (c *AnyColumnType) Name() string {
	return "any"
}

// Accept normalizes v for storage in an AnyColumnType column. Every value is accepted.
func (c *AnyColumnType) Accept(v interface{}) (interface{}, bool) {
	return Normalize(v), true
}

// ToString produces a string representation of a value of an AnyColumnType value
func (c *AnyColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%v", v)
}

// ColumnTypeByName returns a fresh instance of the built-in ColumnType with the given name
func ColumnTypeByName(name string) (ColumnType, error) {
	switch name {
	case "int64":
		return &Int64ColumnType{}, nil
	case "float64":
		return &Float64ColumnType{}, nil
	case "string":
		return &StringColumnType{}, nil
	case "bool":
		return &BoolColumnType{}, nil
	case "time":
		return &TimeColumnType{}, nil
	case "any":
		return &AnyColumnType{}, nil
	default:
		return nil, fmt.Errorf("Unknown column type %q", name)
	}
}

// IsUntyped returns true iff colType carries no type information (an AnyColumnType)
func IsUntyped(colType ColumnType) bool {
	_, ok := colType.(*AnyColumnType)
	return ok
}
