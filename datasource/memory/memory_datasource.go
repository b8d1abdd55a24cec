// Package memory provides a DataSource which parses Blocks from in-memory buffers
package memory

import (
	"bytes"
	"fmt"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/datasource"
)

// DataSource is a set of buffers containing data which will be parsed into Blocks
type DataSource struct {
	data   [][]byte
	parser datasource.Parser
	schema sortagg.Schema
}

// CreateDataSource is a factory for DataSources
func CreateDataSource(data [][]byte, parser datasource.Parser, schema sortagg.Schema) *DataSource {
	return &DataSource{data: data, parser: parser, schema: schema}
}

// Load parses every buffer, producing Blocks of at most parser.BlockSize() rows
func (ms *DataSource) Load(backend sortagg.Backend) ([]sortagg.Block, error) {
	blocks := []sortagg.Block{}
	for i, buf := range ms.data {
		it, err := ms.parser.Parse(bytes.NewReader(buf), ms.schema, backend)
		if err != nil {
			return nil, fmt.Errorf("Buffer %d: %w", i, err)
		}
		loaded, err := datasource.Drain(it)
		if err != nil {
			return nil, fmt.Errorf("Buffer %d: %w", i, err)
		}
		blocks = append(blocks, loaded...)
	}
	return blocks, nil
}
