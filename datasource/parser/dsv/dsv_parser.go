package dsv

import (
	"encoding/csv"
	"io"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/datasource"
)

// ParserConf configures a DSV Parser
type ParserConf struct {
	BlockSize   int    // The maximum number of rows per Block. Defaults to 1024.
	HeaderLines int    // The number of lines to ignore from the beginning of the input. Defaults to 0.
	Delimiter   rune   // The delimiter separating columns in the input. Defaults to ,
	Comment     rune   // Lines beginning with the comment character are ignored. Cannot be equal to the Delimiter. Defaults to no comment character.
	NilValue    string // A special string which represents nil values in the dataset. Empty fields are always nil.
}

// Parser produces Blocks from DSV data
type Parser struct {
	conf *ParserConf
}

// CreateParser returns a new DSV Parser. conf may be nil.
func CreateParser(conf *ParserConf) *Parser {
	if conf == nil {
		conf = &ParserConf{}
	}
	if conf.BlockSize == 0 {
		conf.BlockSize = 1024
	}
	if conf.Delimiter == 0 {
		conf.Delimiter = ','
	}
	return &Parser{conf: conf}
}

// BlockSize returns the maximum size in rows of Blocks produced by this Parser
func (p *Parser) BlockSize() int {
	return p.conf.BlockSize
}

// Parse prepares to parse DSV data from r into Blocks with the given Schema, built by backend
func (p *Parser) Parse(r io.Reader, schema sortagg.Schema, backend sortagg.Backend) (datasource.BlockIterator, error) {
	// start parsing by creating a reader
	reader := csv.NewReader(r)
	reader.Comma = p.conf.Delimiter
	reader.Comment = p.conf.Comment
	reader.FieldsPerRecord = schema.NumColumns()
	reader.ReuseRecord = true

	// ignore header lines, if configured to do so
	for i := 0; i < p.conf.HeaderLines; i++ {
		_, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
	}

	return &dsvBlockIterator{
		parser:  p,
		reader:  reader,
		hasNext: true,
		schema:  schema,
		backend: backend,
	}, nil
}
