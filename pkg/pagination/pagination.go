// Package pagination turns skip, limit and order_by input into an executable
// window over a compiled filter.
package pagination

import (
	"fmt"
	"strings"

	"go-admin/pkg/criteria"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

const (
	// LimitAll asks for every match, bounded by the planner's MaxLimit.
	LimitAll int64 = -1

	DefaultPageSize int64 = 100
	DefaultMaxLimit int64 = 1000
)

// SortSpec is one requested ordering, as received from the client.
type SortSpec struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// SortKey is a SortSpec resolved against a catalog.
type SortKey struct {
	Field     criteria.Field
	Direction Direction
}

func (k SortKey) Desc() bool { return k.Direction == Desc }

// Window is the validated slice of the ordered match set a request asks for.
type Window struct {
	Skip  int64
	Limit int64
	Sort  []SortKey
}

// Bounds clips the window to a result set of n items, for backends that
// page in memory.
func (w Window) Bounds(n int) (lo, hi int) {
	if w.Skip >= int64(n) {
		return n, n
	}
	lo = int(w.Skip)
	hi = lo + int(min(w.Limit, int64(n-lo)))
	return lo, hi
}

// Plan is a compiled filter plus the window to execute it with.
type Plan[F any] struct {
	Filter F
	Window
}

// ParseOrderBy reads tokens of the form "<field> [asc|desc]". Direction
// defaults to asc and is case-insensitive.
func ParseOrderBy(tokens []string) ([]SortSpec, error) {
	specs := make([]SortSpec, 0, len(tokens))
	for _, tok := range tokens {
		parts := strings.Fields(tok)
		switch len(parts) {
		case 1:
			specs = append(specs, SortSpec{Field: parts[0], Direction: Asc})
		case 2:
			dir := Direction(strings.ToLower(parts[1]))
			if dir != Asc && dir != Desc {
				return nil, &criteria.ValidationError{Field: "order_by", Reason: fmt.Sprintf("unknown direction %q", parts[1])}
			}
			specs = append(specs, SortSpec{Field: parts[0], Direction: dir})
		default:
			return nil, &criteria.ValidationError{Field: "order_by", Reason: fmt.Sprintf("malformed token %q", tok)}
		}
	}
	return specs, nil
}

type Planner struct {
	DefaultLimit int64
	MaxLimit     int64
}

func NewPlanner(defaultLimit, maxLimit int64) Planner {
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultPageSize
	}
	return Planner{DefaultLimit: min(defaultLimit, maxLimit), MaxLimit: maxLimit}
}

// Window validates paging input and resolves the sort list. A nil limit uses
// DefaultLimit; LimitAll and anything above MaxLimit are clamped to MaxLimit.
// The catalog's primary key is appended ascending unless already present, so
// equal sort values still page deterministically.
func (p Planner) Window(skip int64, limit *int64, sort []SortSpec, cat *criteria.Catalog) (Window, error) {
	if skip < 0 {
		return Window{}, &criteria.ValidationError{Field: "skip", Reason: "must be zero or greater"}
	}

	n := p.DefaultLimit
	if limit != nil {
		n = *limit
		switch {
		case n == LimitAll:
			n = p.MaxLimit
		case n <= 0:
			return Window{}, &criteria.ValidationError{Field: "limit", Reason: "must be positive or -1"}
		}
	}
	if p.MaxLimit > 0 && n > p.MaxLimit {
		n = p.MaxLimit
	}

	keys, err := resolveSort(sort, cat)
	if err != nil {
		return Window{}, err
	}
	return Window{Skip: skip, Limit: n, Sort: keys}, nil
}

func resolveSort(sort []SortSpec, cat *criteria.Catalog) ([]SortKey, error) {
	keys := make([]SortKey, 0, len(sort)+1)
	seen := make(map[string]bool, len(sort)+1)
	for _, s := range sort {
		f, err := cat.Resolve(s.Field)
		if err != nil || !f.Sortable {
			return nil, &criteria.UnsupportedSortError{Field: s.Field}
		}
		dir := s.Direction
		if dir == "" {
			dir = Asc
		}
		if dir != Asc && dir != Desc {
			return nil, &criteria.ValidationError{Field: "order_by", Reason: fmt.Sprintf("unknown direction %q", s.Direction)}
		}
		if seen[f.Name] {
			continue
		}
		seen[f.Name], seen[f.Storage()] = true, true
		keys = append(keys, SortKey{Field: f, Direction: dir})
	}

	pk := cat.PrimaryKey()
	if pk == "" || seen[pk] {
		return keys, nil
	}
	f, err := cat.Resolve(pk)
	if err != nil {
		// storage-only key such as Mongo's _id
		f = criteria.Field{Name: pk, Type: criteria.TypeText, Sortable: true}
	}
	return append(keys, SortKey{Field: f, Direction: Asc}), nil
}
