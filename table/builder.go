package table

import (
	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/errors"
)

// builder accumulates rows, column by column, for a new block
type builder struct {
	schema sortagg.Schema
	types  []sortagg.ColumnType
	values [][]interface{}
	rows   int
	built  bool
}

func newBuilder(s sortagg.Schema) *builder {
	return &builder{
		schema: s,
		types:  s.ColumnTypes(),
		values: make([][]interface{}, s.NumColumns()),
	}
}

// Append adds a row, with one value per Schema column
func (b *builder) Append(values ...interface{}) error {
	if b.built {
		panic("Cannot Append to a BlockBuilder after Build")
	}
	if len(values) != len(b.types) {
		return errors.IncompatibleRowError{Width: len(values), Expected: len(b.types)}
	}
	normalized := make([]interface{}, len(values))
	for i, v := range values {
		nv, ok := b.types[i].Accept(v)
		if !ok {
			return errors.IncompatibleValueError{
				Column: b.schema.ColumnNames()[i],
				Type:   b.types[i].Name(),
				Value:  v,
			}
		}
		normalized[i] = nv
	}
	for i, v := range normalized {
		b.values[i] = append(b.values[i], v)
	}
	b.rows++
	return nil
}

// NumRows returns the number of rows appended so far
func (b *builder) NumRows() int {
	return b.rows
}

// Build produces an immutable Block
func (b *builder) Build() sortagg.Block {
	b.built = true
	names := b.schema.ColumnNames()
	cols := make([]*column, len(names))
	for i, name := range names {
		vals := b.values[i]
		if vals == nil {
			vals = []interface{}{}
		}
		cols[i] = newColumn(name, b.types[i], vals)
	}
	return newBlock(b.schema.Clone(), cols, b.rows)
}
