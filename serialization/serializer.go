package serialization

import (
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/schema"
)

func init() {
	gob.Register(time.Time{})
}

// A BlockSerializer writes Blocks to, and reads Blocks from, byte streams
type BlockSerializer interface {
	Name() string                                                            // Name returns the name of this BlockSerializer, as accepted by ByName
	Serialize(w io.Writer, b sortagg.Block) error                            // Serialize writes a Block to w
	Deserialize(r io.Reader, backend sortagg.Backend) (sortagg.Block, error) // Deserialize reads a Block from r, building it with backend
}

// ByName produces the BlockSerializer with the given name: "none" (or ""), "lz4" or "zstd"
func ByName(name string) (BlockSerializer, error) {
	switch name {
	case "none", "", "gob":
		return NewGobSerializer(), nil
	case "lz4":
		return NewLZ4Serializer(), nil
	case "zstd":
		return NewZstdSerializer()
	default:
		return nil, fmt.Errorf("Unknown compression %q, expected one of none, lz4 or zstd", name)
	}
}

// wireBlock is the gob representation of a Block
type wireBlock struct {
	Names   []string
	Types   []string
	NumRows int
	Columns [][]interface{}
}

func toWire(b sortagg.Block) (*wireBlock, error) {
	s := b.Schema()
	wb := &wireBlock{
		Names:   s.ColumnNames(),
		Types:   make([]string, s.NumColumns()),
		NumRows: b.NumRows(),
		Columns: make([][]interface{}, s.NumColumns()),
	}
	err := s.ForEachColumn(func(name string, idx int, colType sortagg.ColumnType) error {
		col, err := b.Column(name)
		if err != nil {
			return err
		}
		wb.Types[idx] = colType.Name()
		wb.Columns[idx] = col.Values()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wb, nil
}

func fromWire(wb *wireBlock, backend sortagg.Backend) (sortagg.Block, error) {
	if len(wb.Names) == 0 {
		return backend.EmptyBlock(), nil
	}
	s := schema.CreateSchema()
	for i, name := range wb.Names {
		colType, err := sortagg.ColumnTypeByName(wb.Types[i])
		if err != nil {
			return nil, err
		}
		if _, err = s.CreateColumn(name, colType); err != nil {
			return nil, err
		}
	}
	builder := backend.NewBuilder(s)
	row := make([]interface{}, len(wb.Names))
	for r := 0; r < wb.NumRows; r++ {
		for c := range row {
			if len(wb.Columns[c]) != wb.NumRows {
				return nil, fmt.Errorf("Column %s has %d values, expected %d", wb.Names[c], len(wb.Columns[c]), wb.NumRows)
			}
			row[c] = wb.Columns[c][r]
		}
		if err := builder.Append(row...); err != nil {
			return nil, err
		}
	}
	return builder.Build(), nil
}

// GobSerializer is an uncompressed BlockSerializer, using encoding/gob
type GobSerializer struct{}

// NewGobSerializer instantiates a new GobSerializer
func NewGobSerializer() *GobSerializer {
	return &GobSerializer{}
}

// Name returns the name of this BlockSerializer
func (gs *GobSerializer) Name() string {
	return "none"
}

// Serialize writes a Block to w
func (gs *GobSerializer) Serialize(w io.Writer, b sortagg.Block) error {
	wb, err := toWire(b)
	if err != nil {
		return err
	}
	return gob.NewEncoder(w).Encode(wb)
}

// Deserialize reads a Block from r
func (gs *GobSerializer) Deserialize(r io.Reader, backend sortagg.Backend) (sortagg.Block, error) {
	var wb wireBlock
	if err := gob.NewDecoder(r).Decode(&wb); err != nil {
		return nil, err
	}
	return fromWire(&wb, backend)
}
