package operations

import (
	"context"
	"sort"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/errors"
	"github.com/gofrs/uuid"
)

// Side selects which insertion index FindBoundaryIndex returns when a
// boundary equals a run of rows
type Side int

const (
	// SideRight returns the index after the last row equal to the boundary (an upper bound)
	SideRight Side = iota
	// SideLeft returns the index of the first row equal to the boundary (a lower bound)
	SideLeft
)

// String returns the name of this Side
func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// FindBoundaryIndex locates the row at which boundary would be inserted into
// b, which must be sorted by key, while preserving the sort order. boundary
// may be a prefix of the key, in which case only the supplied columns are
// compared. With SideLeft, every row before the returned index is strictly
// less than the boundary; with SideRight, every row before it is less than or
// equal to the boundary.
func FindBoundaryIndex(b sortagg.Block, key sortagg.SortKey, boundary []interface{}, side Side) (int, error) {
	if len(boundary) == 0 || len(boundary) > len(key) {
		return 0, errors.BoundaryArityError{Boundary: len(boundary), Key: len(key)}
	}
	prefix := key[:len(boundary)]
	cols, err := sortagg.KeyColumns(b, prefix)
	if err != nil {
		return 0, err
	}
	left, right := 0, b.NumRows()
	var cmpErr error
	for i, col := range cols {
		dir, want := prefix[i].Direction, boundary[i]
		cmp := func(j int) int {
			res, err := sortagg.CompareDirected(col.Value(left+j), want, dir)
			if err != nil && cmpErr == nil {
				cmpErr = err
			}
			return res
		}
		n := right - left
		lo := left + sort.Search(n, func(j int) bool { return cmp(j) >= 0 })
		hi := left + sort.Search(n, func(j int) bool { return cmp(j) > 0 })
		if cmpErr != nil {
			return 0, cmpErr
		}
		left, right = lo, hi
	}
	if side == SideLeft {
		return left, nil
	}
	return right, nil
}

// BoundarySearch is a Unit which runs FindBoundaryIndex, producing an int
type BoundarySearch struct {
	UnitID   string
	Block    sortagg.Block // Block holds (at least) the key columns of a sorted Block
	Key      sortagg.SortKey
	Boundary []interface{}
	Side     Side
}

// NewBoundarySearch creates a BoundarySearch with a fresh ID
func NewBoundarySearch(b sortagg.Block, key sortagg.SortKey, boundary []interface{}, side Side) *BoundarySearch {
	return &BoundarySearch{
		UnitID:   uuid.Must(uuid.NewV4()).String(),
		Block:    b,
		Key:      key,
		Boundary: boundary,
		Side:     side,
	}
}

// ID returns the ID of this BoundarySearch
func (s *BoundarySearch) ID() string {
	return s.UnitID
}

// Run locates the boundary
func (s *BoundarySearch) Run(ctx context.Context) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return FindBoundaryIndex(s.Block, s.Key, s.Boundary, s.Side)
}
