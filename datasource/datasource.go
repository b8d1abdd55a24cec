// Package datasource defines how raw input is parsed into Blocks, and
// provides helpers shared by DataSource implementations.
package datasource

import (
	"io"

	"github.com/go-sif/sortagg"
)

// A BlockIterator produces a sequence of Blocks
type BlockIterator interface {
	HasNextBlock() bool                // HasNextBlock returns true iff this BlockIterator can produce another Block
	NextBlock() (sortagg.Block, error) // NextBlock returns the next Block if one is available, or an error
}

// A Parser turns a stream of raw data into Blocks with a given Schema
type Parser interface {
	BlockSize() int                                                                           // BlockSize returns the maximum number of rows in each Block produced by this Parser
	Parse(r io.Reader, schema sortagg.Schema, backend sortagg.Backend) (BlockIterator, error) // Parse prepares to read Blocks from r
}

// A DataSource loads a set of Blocks
type DataSource interface {
	Load(backend sortagg.Backend) ([]sortagg.Block, error)
}

// Drain reads every remaining Block from an iterator, skipping empty Blocks
func Drain(it BlockIterator) ([]sortagg.Block, error) {
	blocks := []sortagg.Block{}
	for it.HasNextBlock() {
		b, err := it.NextBlock()
		if err != nil {
			return nil, err
		}
		if b.NumRows() > 0 {
			blocks = append(blocks, b)
		}
	}
	return blocks, nil
}

// ParseAll reads all data from r into a single Block
func ParseAll(parser Parser, r io.Reader, schema sortagg.Schema, backend sortagg.Backend) (sortagg.Block, error) {
	it, err := parser.Parse(r, schema, backend)
	if err != nil {
		return nil, err
	}
	blocks, err := Drain(it)
	if err != nil {
		return nil, err
	}
	switch len(blocks) {
	case 0:
		return backend.NewBuilder(schema).Build(), nil
	case 1:
		return blocks[0], nil
	default:
		return backend.Concat(blocks)
	}
}
