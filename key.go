package sortagg

import (
	"fmt"
	"strings"

	"github.com/go-sif/sortagg/errors"
)

// GroupKey is the tuple of grouping-column values of a row. A nil GroupKey
// denotes the single global group.
type GroupKey []interface{}

// Equals returns true iff two GroupKeys are element-wise equal
func (g GroupKey) Equals(o GroupKey) bool {
	if len(g) != len(o) {
		return false
	}
	for i := range g {
		if !ValuesEqual(g[i], o[i]) {
			return false
		}
	}
	return true
}

// String returns a textual representation of this GroupKey
func (g GroupKey) String() string {
	if g == nil {
		return "<global>"
	}
	parts := make([]string, len(g))
	for i, v := range g {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Key identifies the grouping columns of an aggregation. It is either global
// (no columns, the whole input is one group), a single column, or a compound
// list of columns. Each column carries the Direction its input is sorted in.
type Key struct {
	columns SortKey
}

// GlobalKey produces a Key which aggregates all rows into a single group
func GlobalKey() Key {
	return Key{}
}

// SingleKey produces a Key which groups by a single, ascending column
func SingleKey(name string) Key {
	return Key{columns: SortKey{Asc(name)}}
}

// CompoundKey produces a Key which groups by several ascending columns
func CompoundKey(names ...string) Key {
	cols := make(SortKey, len(names))
	for i, n := range names {
		cols[i] = Asc(n)
	}
	return Key{columns: cols}
}

// SortedKey produces a Key from a SortKey, retaining each column's Direction
func SortedKey(k SortKey) Key {
	return Key{columns: append(SortKey(nil), k...)}
}

// KeyOf resolves the accepted key forms (nil, a column name, a list of column
// names, a SortKey or a Key) into a Key. Anything else is an InvalidKeyError.
func KeyOf(v interface{}) (Key, error) {
	switch tv := v.(type) {
	case nil:
		return GlobalKey(), nil
	case Key:
		return tv, nil
	case string:
		if len(tv) == 0 {
			return Key{}, errors.InvalidKeyError{Key: v}
		}
		return SingleKey(tv), nil
	case []string:
		if len(tv) == 0 {
			return Key{}, errors.InvalidKeyError{Key: v}
		}
		for _, n := range tv {
			if len(n) == 0 {
				return Key{}, errors.InvalidKeyError{Key: v}
			}
		}
		return CompoundKey(tv...), nil
	case SortKey:
		if err := tv.Validate(); err != nil {
			return Key{}, errors.InvalidKeyError{Key: v}
		}
		return SortedKey(tv), nil
	default:
		return Key{}, errors.InvalidKeyError{Key: v}
	}
}

// IsGlobal returns true iff this Key denotes a global aggregation
func (k Key) IsGlobal() bool {
	return len(k.columns) == 0
}

// ColumnNames returns the names of the grouping columns, in order
func (k Key) ColumnNames() []string {
	return k.columns.ColumnNames()
}

// SortKey returns the grouping columns and their Directions
func (k Key) SortKey() SortKey {
	return k.columns
}

// Extract reads the GroupKey of row i from the grouping columns cols
func (k Key) Extract(cols []Column, i int) GroupKey {
	if k.IsGlobal() {
		return nil
	}
	gk := make(GroupKey, len(cols))
	for c, col := range cols {
		gk[c] = col.Value(i)
	}
	return gk
}
