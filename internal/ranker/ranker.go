package ranker

import (
	"errors"
	"fmt"
	"sort"

	"MarketMovers/internal/model"
)

// ErrEmptyTable is returned when there is nothing to rank.
var ErrEmptyTable = errors.New("no performance records to rank")

// Rank returns the n best performers by growth (descending) and the n worst
// (ascending). Ties keep table order. The slices may overlap when 2n > len(table).
func Rank(table model.ResultTable, n int) (top, bottom model.RankedSlice, err error) {
	if len(table) == 0 {
		return nil, nil, ErrEmptyTable
	}
	if n <= 0 {
		return nil, nil, fmt.Errorf("rank depth must be positive, got %d", n)
	}
	if n > len(table) {
		n = len(table)
	}

	desc := clone(table)
	sort.SliceStable(desc, func(i, j int) bool { return desc[i].GrowthPct > desc[j].GrowthPct })

	asc := clone(table)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].GrowthPct < asc[j].GrowthPct })

	return desc[:n:n], asc[:n:n], nil
}

func clone(table model.ResultTable) model.RankedSlice {
	out := make(model.RankedSlice, len(table))
	copy(out, table)
	return out
}
