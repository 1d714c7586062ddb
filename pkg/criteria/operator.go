package criteria

import "sort"

type Operator string

const (
	OpEq            Operator = "eq"
	OpNeq           Operator = "neq"
	OpGt            Operator = "gt"
	OpGe            Operator = "ge"
	OpLt            Operator = "lt"
	OpLe            Operator = "le"
	OpContains      Operator = "contains"
	OpNotContains   Operator = "not_contains"
	OpStartsWith    Operator = "startswith"
	OpNotStartsWith Operator = "not_startswith"
	OpEndsWith      Operator = "endswith"
	OpNotEndsWith   Operator = "not_endswith"
	OpBetween       Operator = "between"
	OpNotBetween    Operator = "not_between"
	OpIsNull        Operator = "is_null"
	OpIsNotNull     Operator = "is_not_null"
	OpIsTrue        Operator = "is_true"
	OpIsFalse       Operator = "is_false"
	OpIn            Operator = "in"
	OpNotIn         Operator = "not_in"
)

// ArityList marks operators taking one or more values.
const ArityList = -1

// Spec declares how an operator may be used.
type Spec struct {
	Operator      Operator
	Arity         int
	Types         []ValueType
	CaseSensitive bool
}

func (s Spec) Supports(t ValueType) bool {
	for _, vt := range s.Types {
		if vt == t {
			return true
		}
	}
	return false
}

// Registry is the fixed operator table. It is never mutated after
// construction, so one instance is shared by every request.
type Registry struct {
	specs map[Operator]Spec
}

var (
	allTypes     = []ValueType{TypeText, TypeNumeric, TypeDatetime, TypeBoolean, TypeEnumerable}
	orderedTypes = []ValueType{TypeNumeric, TypeDatetime}
	textTypes    = []ValueType{TypeText}
	listTypes    = []ValueType{TypeText, TypeNumeric, TypeDatetime, TypeEnumerable}

	defaultRegistry = newRegistry([]Spec{
		{Operator: OpEq, Arity: 1, Types: allTypes, CaseSensitive: true},
		{Operator: OpNeq, Arity: 1, Types: allTypes, CaseSensitive: true},
		{Operator: OpGt, Arity: 1, Types: orderedTypes},
		{Operator: OpGe, Arity: 1, Types: orderedTypes},
		{Operator: OpLt, Arity: 1, Types: orderedTypes},
		{Operator: OpLe, Arity: 1, Types: orderedTypes},
		{Operator: OpContains, Arity: 1, Types: textTypes},
		{Operator: OpNotContains, Arity: 1, Types: textTypes},
		{Operator: OpStartsWith, Arity: 1, Types: textTypes},
		{Operator: OpNotStartsWith, Arity: 1, Types: textTypes},
		{Operator: OpEndsWith, Arity: 1, Types: textTypes},
		{Operator: OpNotEndsWith, Arity: 1, Types: textTypes},
		{Operator: OpBetween, Arity: 2, Types: orderedTypes},
		{Operator: OpNotBetween, Arity: 2, Types: orderedTypes},
		{Operator: OpIsNull, Arity: 0, Types: allTypes},
		{Operator: OpIsNotNull, Arity: 0, Types: allTypes},
		{Operator: OpIsTrue, Arity: 0, Types: []ValueType{TypeBoolean}},
		{Operator: OpIsFalse, Arity: 0, Types: []ValueType{TypeBoolean}},
		{Operator: OpIn, Arity: ArityList, Types: listTypes, CaseSensitive: true},
		{Operator: OpNotIn, Arity: ArityList, Types: listTypes, CaseSensitive: true},
	})
)

// DefaultRegistry returns the process-wide operator table.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func newRegistry(specs []Spec) *Registry {
	r := &Registry{specs: make(map[Operator]Spec, len(specs))}
	for _, s := range specs {
		r.specs[s.Operator] = s
	}
	return r
}

func (r *Registry) Lookup(op Operator) (Spec, bool) {
	s, ok := r.specs[op]
	return s, ok
}

// Operators lists the registered operators in name order.
func (r *Registry) Operators() []Operator {
	ops := make([]Operator, 0, len(r.specs))
	for op := range r.specs {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// CheckField fails with UnsupportedOperatorError when op cannot be applied to f.
func (r *Registry) CheckField(f Field, op Operator, backend string) error {
	s, ok := r.specs[op]
	if !ok || !s.Supports(f.Type) {
		return &UnsupportedOperatorError{Field: f.Name, Operator: op, ValueType: f.Type, Backend: backend}
	}
	return nil
}
