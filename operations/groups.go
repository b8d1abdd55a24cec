package operations

import "github.com/go-sif/sortagg"

type runState int

const (
	awaitingRow runState = iota
	accumulatingRun
	exhausted
)

// run is a maximal range [start, end) of consecutive rows sharing a GroupKey
type run struct {
	key   sortagg.GroupKey
	start int
	end   int
}

// runIterator groups the consecutive rows of a sorted Block which share a
// GroupKey, holding the first row of the current run as lookahead
type runIterator struct {
	key     sortagg.Key
	cols    []sortagg.Column
	numRows int
	pos     int
	state   runState
	current run
}

func newRunIterator(b sortagg.Block, key sortagg.Key) (*runIterator, error) {
	it := &runIterator{key: key, numRows: b.NumRows()}
	if !key.IsGlobal() && it.numRows > 0 {
		cols, err := sortagg.KeyColumns(b, key.SortKey())
		if err != nil {
			return nil, err
		}
		it.cols = cols
	}
	return it, nil
}

// Next advances to the next run, returning false once every row has been grouped.
// A global Key produces exactly one run, even over an empty Block.
func (it *runIterator) Next() bool {
	for {
		switch it.state {
		case awaitingRow:
			if it.key.IsGlobal() {
				it.current = run{start: 0, end: it.numRows}
				it.pos = it.numRows
				it.state = exhausted
				return true
			}
			if it.pos >= it.numRows {
				it.state = exhausted
				continue
			}
			it.current = run{key: it.key.Extract(it.cols, it.pos), start: it.pos, end: it.pos + 1}
			it.state = accumulatingRun
		case accumulatingRun:
			for it.current.end < it.numRows && it.key.Extract(it.cols, it.current.end).Equals(it.current.key) {
				it.current.end++
			}
			it.pos = it.current.end
			it.state = awaitingRow
			return true
		case exhausted:
			return false
		}
	}
}

// Run returns the current run
func (it *runIterator) Run() run {
	return it.current
}
