package operations

import (
	"fmt"

	"github.com/go-sif/sortagg"
)

// ResolveAggregateNames assigns each AggregateFn a unique output column name.
// The first use of a name is kept unmodified and the n-th duplicate becomes
// "name_n". The result depends only on the order of aggs, so combining and
// merging the same list always agree.
func ResolveAggregateNames(aggs []sortagg.AggregateFn) []string {
	names := make([]string, len(aggs))
	taken := make(map[string]bool, len(aggs))
	count := make(map[string]int, len(aggs))
	for i, agg := range aggs {
		base := agg.Name()
		name := base
		for taken[name] {
			count[base]++
			name = fmt.Sprintf("%s_%d", base, count[base])
		}
		taken[name] = true
		names[i] = name
	}
	return names
}
