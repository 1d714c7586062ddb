// Package criteria holds the filter expression model shared by every storage
// backend: the operator table, the field catalog, the criteria tree and the
// wire-format parser producing it.
package criteria

import "strings"

type Logic string

const (
	LogicAnd Logic = "and"
	LogicOr  Logic = "or"
)

// Node is either a *Criterion or a *Composite.
type Node interface {
	node()
}

// Criterion is a single field/operator/operand condition. Operand holds zero,
// one, two or (for list operators) any number of values, matching the
// operator's arity.
type Criterion struct {
	Field    string
	Operator Operator
	Operand  []any
}

// Composite combines children with AND or OR.
type Composite struct {
	Logic    Logic
	Children []Node
}

func (*Criterion) node() {}
func (*Composite) node() {}

// Value returns the single operand of a unary criterion.
func (c *Criterion) Value() any {
	if len(c.Operand) == 0 {
		return nil
	}
	return c.Operand[0]
}

// Bounds returns the lower and upper operand of between/not_between.
func (c *Criterion) Bounds() (any, any) {
	if len(c.Operand) != 2 {
		return nil, nil
	}
	return c.Operand[0], c.Operand[1]
}

// NewCriterion builds a leaf, failing when the operand count does not match
// the operator's arity.
func (r *Registry) NewCriterion(field string, op Operator, operand ...any) (*Criterion, error) {
	spec, ok := r.Lookup(op)
	if !ok {
		return nil, invalid(field, op, "unknown operator")
	}
	switch {
	case spec.Arity == ArityList && len(operand) == 0:
		return nil, invalid(field, op, "expects at least one value")
	case spec.Arity != ArityList && len(operand) != spec.Arity:
		return nil, invalid(field, op, "expects %d value(s), got %d", spec.Arity, len(operand))
	}
	return &Criterion{Field: field, Operator: op, Operand: operand}, nil
}

func (r *Registry) NewComposite(logic Logic, children ...Node) (*Composite, error) {
	if logic != LogicAnd && logic != LogicOr {
		return nil, invalid("", "", "unknown logic %q", logic)
	}
	if len(children) == 0 {
		return nil, invalid("", "", "%s requires at least one criterion", logic)
	}
	for _, ch := range children {
		if ch == nil {
			return nil, invalid("", "", "%s contains an empty criterion", logic)
		}
	}
	return &Composite{Logic: logic, Children: children}, nil
}

// Walk calls fn for every leaf under n, depth first, stopping at the first error.
func Walk(n Node, fn func(*Criterion) error) error {
	switch v := n.(type) {
	case *Criterion:
		return fn(v)
	case *Composite:
		for _, ch := range v.Children {
			if err := Walk(ch, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// String renders the tree in a compact prefix form, used in logs.
func String(n Node) string {
	var b strings.Builder
	write(&b, n)
	return b.String()
}

func write(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Criterion:
		b.WriteString(v.Field)
		b.WriteByte(' ')
		b.WriteString(string(v.Operator))
	case *Composite:
		b.WriteString(string(v.Logic))
		b.WriteByte('(')
		for i, ch := range v.Children {
			if i > 0 {
				b.WriteString(", ")
			}
			write(b, ch)
		}
		b.WriteByte(')')
	}
}
