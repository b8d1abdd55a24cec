package dsv

import (
	"encoding/csv"
	"io"
	"sync"

	"github.com/go-sif/sortagg"
)

type dsvBlockIterator struct {
	parser  *Parser
	reader  *csv.Reader
	hasNext bool
	schema  sortagg.Schema
	backend sortagg.Backend
	lock    sync.Mutex
}

// HasNextBlock returns true iff this BlockIterator can produce another Block
func (dsvi *dsvBlockIterator) HasNextBlock() bool {
	dsvi.lock.Lock()
	defer dsvi.lock.Unlock()
	return dsvi.hasNext
}

// NextBlock returns the next Block if one is available, or an error
func (dsvi *dsvBlockIterator) NextBlock() (sortagg.Block, error) {
	dsvi.lock.Lock()
	defer dsvi.lock.Unlock()
	colNames := dsvi.schema.ColumnNames()
	colTypes := dsvi.schema.ColumnTypes()
	builder := dsvi.backend.NewBuilder(dsvi.schema)
	values := make([]interface{}, len(colNames))
	for builder.NumRows() < dsvi.parser.BlockSize() {
		rowStrings, err := dsvi.reader.Read()
		if err == io.EOF {
			dsvi.hasNext = false
			break
		} else if err != nil {
			return nil, err
		}
		line, _ := dsvi.reader.FieldPos(0)
		if err = scanRow(dsvi.parser.conf, colNames, colTypes, rowStrings, values); err != nil {
			return nil, &csv.ParseError{StartLine: line, Line: line, Err: err}
		}
		if err = builder.Append(values...); err != nil {
			return nil, &csv.ParseError{StartLine: line, Line: line, Err: err}
		}
	}
	return builder.Build(), nil
}
