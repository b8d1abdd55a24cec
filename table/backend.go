package table

import (
	"fmt"
	"reflect"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/errors"
	"github.com/go-sif/sortagg/schema"
	"golang.org/x/exp/slices"
)

func init() {
	sortagg.RegisterBackend(NewBackend())
}

// Backend is the built-in, in-memory table backend
type Backend struct{}

// NewBackend produces the built-in table backend. It is registered under
// sortagg.DefaultBackendName when this package is imported.
func NewBackend() *Backend {
	return &Backend{}
}

// Name returns the name this Backend is registered under
func (nb *Backend) Name() string {
	return sortagg.DefaultBackendName
}

// EmptyBlock produces a Block with no rows and no columns
func (nb *Backend) EmptyBlock() sortagg.Block {
	return emptyBlock()
}

// NewBuilder produces a BlockBuilder for the given Schema
func (nb *Backend) NewBuilder(s sortagg.Schema) sortagg.BlockBuilder {
	return newBuilder(s)
}

// Sort produces a stable sort of a Block according to a SortKey
func (nb *Backend) Sort(b sortagg.Block, key sortagg.SortKey) (sortagg.Block, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	src, err := nb.asNative(b)
	if err != nil {
		return nil, err
	}
	keyCols, err := sortagg.KeyColumns(src, key)
	if err != nil {
		return nil, err
	}
	perm := make([]int, src.numRows)
	for i := range perm {
		perm[i] = i
	}
	var sortErr error
	slices.SortStableFunc(perm, func(i, j int) int {
		res, err := key.CompareRows(keyCols, i, keyCols, j)
		if err != nil && sortErr == nil {
			sortErr = err
		}
		return res
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return src.permute(perm), nil
}

// Concat produces a Block containing the rows of all given Blocks, in order.
// Blocks without columns are skipped. The remaining Blocks must share column
// names; columns whose types disagree become untyped.
func (nb *Backend) Concat(blocks []sortagg.Block) (sortagg.Block, error) {
	var parts []*block
	for _, b := range blocks {
		if b == nil || b.Schema().NumColumns() == 0 {
			continue
		}
		nblock, err := nb.asNative(b)
		if err != nil {
			return nil, err
		}
		parts = append(parts, nblock)
	}
	if len(parts) == 0 {
		return emptyBlock(), nil
	}
	first := parts[0]
	names := first.schema.ColumnNames()
	types := first.schema.ColumnTypes()
	total := 0
	for _, p := range parts {
		if !slices.Equal(names, p.schema.ColumnNames()) {
			return nil, errors.IncompatibleSchemaError{
				Reason: fmt.Sprintf("columns %v do not match %v", p.schema.ColumnNames(), names),
			}
		}
		for i, t := range p.schema.ColumnTypes() {
			if reflect.TypeOf(t) != reflect.TypeOf(types[i]) {
				types[i] = &sortagg.AnyColumnType{}
			}
		}
		total += p.numRows
	}
	s := schema.CreateSchema()
	cols := make([]*column, len(names))
	for i, name := range names {
		if _, err := s.CreateColumn(name, types[i]); err != nil {
			return nil, err
		}
		values := make([]interface{}, 0, total)
		for _, p := range parts {
			values = append(values, p.columns[i].values...)
		}
		cols[i] = newColumn(name, types[i], values)
	}
	return newBlock(s, cols, total), nil
}

// asNative converts a Block from any Backend into a native block
func (nb *Backend) asNative(b sortagg.Block) (*block, error) {
	if nblock, ok := b.(*block); ok {
		return nblock, nil
	}
	s := b.Schema()
	cols := make([]*column, 0, s.NumColumns())
	err := s.ForEachColumn(func(name string, idx int, colType sortagg.ColumnType) error {
		col, err := b.Column(name)
		if err != nil {
			return err
		}
		values := make([]interface{}, col.Len())
		copy(values, col.Values())
		cols = append(cols, newColumn(name, colType, values))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newBlock(s, cols, b.NumRows()), nil
}

// permute produces a new block whose row i is row perm[i] of this block
func (b *block) permute(perm []int) *block {
	cols := make([]*column, len(b.columns))
	for c, col := range b.columns {
		values := make([]interface{}, len(perm))
		for i, p := range perm {
			values[i] = col.values[p]
		}
		cols[c] = newColumn(col.name, col.colType, values)
	}
	return newBlock(b.schema, cols, len(perm))
}
