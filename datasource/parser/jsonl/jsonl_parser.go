package jsonl

import (
	"bufio"
	"io"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/datasource"
)

// ParserConf configures a JSONL Parser, suitable for JSON lines data
type ParserConf struct {
	BlockSize     int  // The maximum number of rows per Block. Defaults to 1024.
	HeaderLines   int  // The number of lines to ignore from the beginning of the input. Defaults to 0.
	Comment       rune // Lines beginning with the comment character are ignored. Defaults to no comment character.
	MaxBufferSize int  // Maximum size in bytes of the buffer used to read lines from the input
}

// Parser produces Blocks from JSONL data
type Parser struct {
	conf *ParserConf
}

// CreateParser returns a new JSONL Parser. Columns are parsed lazily from each row of JSON using their column name, which should be a gjson path. Values within the JSON which do not correspond to a Schema column are ignored.
func CreateParser(conf *ParserConf) *Parser {
	if conf == nil {
		conf = &ParserConf{}
	}
	if conf.BlockSize == 0 {
		conf.BlockSize = 1024
	}
	if conf.MaxBufferSize == 0 {
		conf.MaxBufferSize = bufio.MaxScanTokenSize
	}
	return &Parser{conf: conf}
}

// BlockSize returns the maximum size in rows of Blocks produced by this Parser
func (p *Parser) BlockSize() int {
	return p.conf.BlockSize
}

// Parse prepares to parse JSONL data from r into Blocks with the given Schema, built by backend
func (p *Parser) Parse(r io.Reader, schema sortagg.Schema, backend sortagg.Backend) (datasource.BlockIterator, error) {
	// start parsing by creating a scanner
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), p.conf.MaxBufferSize)
	line := 0
	// ignore header lines, if configured to do so
	for i := 0; i < p.conf.HeaderLines; i++ {
		if !scanner.Scan() {
			break
		}
		line++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &BlockIterator{
		parser:  p,
		scanner: scanner,
		hasNext: true,
		line:    line,
		schema:  schema,
		backend: backend,
	}, nil
}

// Parse reads all JSONL data from r into a single Block with the given Schema
func Parse(r io.Reader, schema sortagg.Schema, backend sortagg.Backend) (sortagg.Block, error) {
	return datasource.ParseAll(CreateParser(nil), r, schema, backend)
}
