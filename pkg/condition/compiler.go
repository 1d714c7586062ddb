// Package condition lowers criteria trees into backend-native filters.
package condition

import (
	"fmt"

	"go-admin/pkg/criteria"
)

// Compiler lowers a validated criteria tree into a backend filter of type F.
// Implementations hold no per-request state and are safe for concurrent use.
type Compiler[F any] interface {
	Backend() string
	Compile(node criteria.Node, cat *criteria.Catalog) (F, error)
}

// lowering is what each backend implements; compile drives the tree walk so
// every backend resolves fields and checks operators the same way.
type lowering[F any] struct {
	backend string
	reg     *criteria.Registry
	leaf    func(f criteria.Field, c *criteria.Criterion) (F, error)
	group   func(logic criteria.Logic, children []F) F
}

func (l *lowering[F]) compile(node criteria.Node, cat *criteria.Catalog) (F, error) {
	var zero F
	switch n := node.(type) {
	case *criteria.Criterion:
		if n == nil {
			return zero, &criteria.ValidationError{Reason: "empty criterion"}
		}
		f, err := cat.Resolve(n.Field)
		if err != nil {
			return zero, err
		}
		if err := l.reg.CheckField(f, n.Operator, l.backend); err != nil {
			return zero, err
		}
		spec, _ := l.reg.Lookup(n.Operator)
		if err := checkArity(spec, n); err != nil {
			return zero, err
		}
		return l.leaf(f, n)
	case *criteria.Composite:
		if n == nil {
			return zero, &criteria.ValidationError{Reason: "empty criterion"}
		}
		if n.Logic != criteria.LogicAnd && n.Logic != criteria.LogicOr {
			return zero, &criteria.ValidationError{Reason: fmt.Sprintf("unknown logic %q", n.Logic)}
		}
		if len(n.Children) == 0 {
			return zero, &criteria.ValidationError{Reason: fmt.Sprintf("%s requires at least one criterion", n.Logic)}
		}
		children := make([]F, 0, len(n.Children))
		for _, ch := range n.Children {
			out, err := l.compile(ch, cat)
			if err != nil {
				return zero, err
			}
			children = append(children, out)
		}
		return l.group(n.Logic, children), nil
	case nil:
		return zero, &criteria.ValidationError{Reason: "empty criterion"}
	}
	return zero, fmt.Errorf("unexpected criteria node %T", node)
}

// checkArity guards against trees built by hand rather than through the
// registry constructors.
func checkArity(spec criteria.Spec, c *criteria.Criterion) error {
	n := len(c.Operand)
	if spec.Arity == criteria.ArityList {
		if n == 0 {
			return &criteria.ValidationError{Field: c.Field, Operator: c.Operator, Reason: "expects at least one value"}
		}
		return nil
	}
	if n != spec.Arity {
		return &criteria.ValidationError{Field: c.Field, Operator: c.Operator, Reason: fmt.Sprintf("expects %d value(s), got %d", spec.Arity, n)}
	}
	return nil
}

func textOperand(f criteria.Field, c *criteria.Criterion) (string, error) {
	s, ok := c.Value().(string)
	if !ok {
		return "", &criteria.ValidationError{Field: f.Name, Operator: c.Operator, Reason: "expected a string"}
	}
	return s, nil
}
