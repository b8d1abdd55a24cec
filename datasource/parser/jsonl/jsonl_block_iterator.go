package jsonl

import (
	"bufio"
	"fmt"
	"strings"
	"sync"

	"github.com/go-sif/sortagg"
	iutil "github.com/go-sif/sortagg/internal/util"
	multierror "github.com/hashicorp/go-multierror"
	"github.com/tidwall/gjson"
)

// BlockIterator produces Blocks from a stream of JSONL data
type BlockIterator struct {
	parser  *Parser
	scanner *bufio.Scanner
	hasNext bool
	line    int
	schema  sortagg.Schema
	backend sortagg.Backend
	lock    sync.Mutex
}

// HasNextBlock returns true iff this BlockIterator can produce another Block
func (it *BlockIterator) HasNextBlock() bool {
	it.lock.Lock()
	defer it.lock.Unlock()
	return it.hasNext
}

// NextBlock parses up to BlockSize rows. Every malformed row within the Block
// is reported, with its line number, in a single error.
func (it *BlockIterator) NextBlock() (sortagg.Block, error) {
	it.lock.Lock()
	defer it.lock.Unlock()
	colNames := it.schema.ColumnNames()
	colTypes := it.schema.ColumnTypes()
	builder := it.backend.NewBuilder(it.schema)
	var errs *multierror.Error
	for builder.NumRows() < it.parser.BlockSize() {
		if !it.scanner.Scan() {
			it.hasNext = false
			if err := it.scanner.Err(); err != nil {
				return nil, fmt.Errorf("Line %d: %w", it.line+1, err)
			}
			break
		}
		it.line++
		rowString := it.scanner.Text()
		if it.skip(rowString) {
			continue
		}
		if !gjson.Valid(rowString) {
			errs = multierror.Append(errs, fmt.Errorf("Line %d: invalid JSON", it.line))
			continue
		}
		values, err := ParseJSONRow(colNames, colTypes, gjson.Parse(rowString))
		if err == nil {
			err = builder.Append(values...)
		}
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("Line %d: %w", it.line, err))
		}
	}
	if errs != nil {
		errs.ErrorFormat = func(es []error) string {
			return fmt.Sprintf("Unable to parse %d lines:\n%s", len(es), iutil.FormatMultiError(es))
		}
		return nil, errs
	}
	return builder.Build(), nil
}

func (it *BlockIterator) skip(rowString string) bool {
	trimmed := strings.TrimSpace(rowString)
	if len(trimmed) == 0 {
		return true
	}
	comment := it.parser.conf.Comment
	return comment != 0 && strings.HasPrefix(trimmed, string(comment))
}
