package record

import (
	"context"
	"sort"

	"go-admin/pkg/condition"
	"go-admin/pkg/pagination"
)

// MemoryProvider serves a fixed, read-only set of rows. Ties that survive
// every sort key keep their original order; nulls sort first.
type MemoryProvider struct {
	rows []Record
}

func NewMemoryProvider(rows []Record) *MemoryProvider {
	return &MemoryProvider{rows: rows}
}

func (p *MemoryProvider) match(ctx context.Context, pred condition.Predicate) ([]Record, error) {
	if pred == nil {
		pred = condition.MatchAll
	}
	var out []Record
	for _, r := range p.rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if pred(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (p *MemoryProvider) Count(ctx context.Context, pred condition.Predicate) (int64, error) {
	matched, err := p.match(ctx, pred)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (p *MemoryProvider) Find(ctx context.Context, plan pagination.Plan[condition.Predicate]) ([]Record, error) {
	matched, err := p.match(ctx, plan.Filter)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, k := range plan.Sort {
			c := compareForSort(k, matched[i], matched[j])
			if c != 0 {
				return c < 0
			}
		}
		return false
	})

	lo, hi := plan.Bounds(len(matched))
	return append([]Record{}, matched[lo:hi]...), nil
}

func compareForSort(k pagination.SortKey, a, b Record) int {
	path := k.Field.Storage()
	x, y := condition.Lookup(a, path), condition.Lookup(b, path)

	var c int
	switch {
	case x == nil && y == nil:
		c = 0
	case x == nil:
		c = -1
	case y == nil:
		c = 1
	default:
		n, ok := condition.Compare(k.Field, x, y)
		if !ok {
			return 0
		}
		c = n
	}
	if k.Desc() {
		return -c
	}
	return c
}
