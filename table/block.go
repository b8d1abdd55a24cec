package table

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/errors"
	"github.com/go-sif/sortagg/schema"
	"github.com/gofrs/uuid"
)

// block is an immutable, in-memory columnar Block
type block struct {
	id      string
	schema  sortagg.Schema
	columns []*column
	numRows int
}

func newBlock(s sortagg.Schema, columns []*column, numRows int) *block {
	return &block{
		id:      uuid.Must(uuid.NewV4()).String(),
		schema:  s,
		columns: columns,
		numRows: numRows,
	}
}

// emptyBlock produces a Block with no rows and no columns
func emptyBlock() *block {
	return newBlock(schema.CreateSchema(), []*column{}, 0)
}

// ID retrieves the ID of this Block
func (b *block) ID() string {
	return b.id
}

// Schema retrieves the Schema of this Block
func (b *block) Schema() sortagg.Schema {
	return b.schema
}

// NumRows retrieves the number of rows in this Block
func (b *block) NumRows() int {
	return b.numRows
}

// Column retrieves a Column by name
func (b *block) Column(name string) (sortagg.Column, error) {
	idx, err := b.schema.GetIndex(name)
	if err != nil {
		return nil, err
	}
	return b.columns[idx], nil
}

// Row retrieves a specific row from this Block
func (b *block) Row(rowNum int) sortagg.Row {
	if rowNum < 0 || rowNum >= b.numRows {
		panic(fmt.Errorf("Row index %d out of range [0, %d)", rowNum, b.numRows))
	}
	return &row{b: b, idx: rowNum}
}

// Slice returns the rows [start, end) of this Block. Bounds are clamped to the Block.
func (b *block) Slice(start int, end int) sortagg.Block {
	if start < 0 {
		start = 0
	}
	if end > b.numRows {
		end = b.numRows
	}
	if start > end {
		start = end
	}
	cols := make([]*column, len(b.columns))
	for i, c := range b.columns {
		cols[i] = c.slice(start, end)
	}
	return newBlock(b.schema, cols, end-start)
}

// Select returns a Block containing only the named columns, in the given order
func (b *block) Select(colNames []string) (sortagg.Block, error) {
	projected, err := b.schema.Project(colNames)
	if err != nil {
		return nil, err
	}
	cols := make([]*column, len(colNames))
	for i, name := range colNames {
		idx, _ := b.schema.GetIndex(name)
		cols[i] = b.columns[idx]
	}
	return newBlock(projected, cols, b.numRows), nil
}

// ToString returns a tabular representation of this Block, for debugging
func (b *block) ToString() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(b.schema.ColumnNames(), "\t"))
	sb.WriteString("\n")
	for i := 0; i < b.numRows; i++ {
		sb.WriteString(b.Row(i).ToString())
		sb.WriteString("\n")
	}
	return sb.String()
}

// row is a view of a single row of a block
type row struct {
	b   *block
	idx int
}

// Schema returns the Schema of this Row
func (r *row) Schema() sortagg.Schema {
	return r.b.schema
}

// Get returns the stored value of a column
func (r *row) Get(colName string) (interface{}, error) {
	idx, err := r.b.schema.GetIndex(colName)
	if err != nil {
		return nil, err
	}
	return r.b.columns[idx].values[r.idx], nil
}

// IsNil returns true iff the named column is null in this Row
func (r *row) IsNil(colName string) (bool, error) {
	v, err := r.Get(colName)
	return v == nil, err
}

// GetInt64 returns the int64 value of a column
func (r *row) GetInt64(colName string) (int64, bool, error) {
	v, err := r.Get(colName)
	if err != nil {
		return 0, false, err
	}
	res, ok, err := sortagg.AsInt64(v)
	return res, ok, withColumn(err, colName)
}

// GetFloat64 returns the float64 value of a column, widening int64 values
func (r *row) GetFloat64(colName string) (float64, bool, error) {
	v, err := r.Get(colName)
	if err != nil {
		return 0, false, err
	}
	res, ok, err := sortagg.AsFloat64(v)
	return res, ok, withColumn(err, colName)
}

// GetString returns the string value of a column
func (r *row) GetString(colName string) (string, bool, error) {
	v, err := r.Get(colName)
	if err != nil {
		return "", false, err
	}
	res, ok, err := sortagg.AsString(v)
	return res, ok, withColumn(err, colName)
}

// GetBool returns the bool value of a column
func (r *row) GetBool(colName string) (bool, bool, error) {
	v, err := r.Get(colName)
	if err != nil {
		return false, false, err
	}
	res, ok, err := sortagg.AsBool(v)
	return res, ok, withColumn(err, colName)
}

// GetTime returns the time.Time value of a column
func (r *row) GetTime(colName string) (res time.Time, ok bool, err error) {
	v, err := r.Get(colName)
	if err != nil {
		return res, false, err
	}
	res, ok, err = sortagg.AsTime(v)
	return res, ok, withColumn(err, colName)
}

// Values returns the stored values of this Row, in Schema order
func (r *row) Values() []interface{} {
	values := make([]interface{}, len(r.b.columns))
	for i, c := range r.b.columns {
		values[i] = c.values[r.idx]
	}
	return values
}

// ToString returns a string representation of this Row
func (r *row) ToString() string {
	parts := make([]string, len(r.b.columns))
	for i, c := range r.b.columns {
		v := c.values[r.idx]
		if v == nil {
			parts[i] = "nil"
		} else {
			parts[i] = c.colType.ToString(v)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// withColumn attaches a column name to a conversion error
func withColumn(err error, colName string) error {
	switch e := err.(type) {
	case errors.NumericTypeError:
		e.Column = colName
		return e
	case errors.IncompatibleValueError:
		e.Column = colName
		return e
	default:
		return err
	}
}
