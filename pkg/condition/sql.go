package condition

import (
	"strings"

	"go-admin/pkg/criteria"

	sq "github.com/Masterminds/squirrel"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// Placeholder returns the bind-variable format the dialect expects.
func (d Dialect) Placeholder() sq.PlaceholderFormat {
	if d == DialectPostgres {
		return sq.Dollar
	}
	return sq.Question
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SQLCompiler lowers criteria into squirrel predicates. Operands are always
// bound as arguments; column names come from the catalog, which only admits
// identifier paths.
type SQLCompiler struct {
	Dialect  Dialect
	lowering *lowering[sq.Sqlizer]
}

func NewSQLCompiler(reg *criteria.Registry, dialect Dialect) *SQLCompiler {
	c := &SQLCompiler{Dialect: dialect}
	c.lowering = &lowering[sq.Sqlizer]{
		backend: string(dialect),
		reg:     reg,
		leaf:    c.compileRule,
		group: func(logic criteria.Logic, children []sq.Sqlizer) sq.Sqlizer {
			if logic == criteria.LogicOr {
				return sq.Or(children)
			}
			return sq.And(children)
		},
	}
	return c
}

func (c *SQLCompiler) Backend() string { return string(c.Dialect) }

func (c *SQLCompiler) Compile(node criteria.Node, cat *criteria.Catalog) (sq.Sqlizer, error) {
	return c.lowering.compile(node, cat)
}

func (c *SQLCompiler) compileRule(f criteria.Field, rule *criteria.Criterion) (sq.Sqlizer, error) {
	col := f.Storage()
	val := rule.Value()

	switch rule.Operator {
	case criteria.OpEq:
		return sq.Eq{col: val}, nil
	case criteria.OpNeq:
		return sq.NotEq{col: val}, nil
	case criteria.OpGt:
		return sq.Gt{col: val}, nil
	case criteria.OpGe:
		return sq.GtOrEq{col: val}, nil
	case criteria.OpLt:
		return sq.Lt{col: val}, nil
	case criteria.OpLe:
		return sq.LtOrEq{col: val}, nil
	case criteria.OpIn:
		return sq.Eq{col: rule.Operand}, nil
	case criteria.OpNotIn:
		return sq.NotEq{col: rule.Operand}, nil
	case criteria.OpContains, criteria.OpNotContains,
		criteria.OpStartsWith, criteria.OpNotStartsWith,
		criteria.OpEndsWith, criteria.OpNotEndsWith:
		return c.like(f, rule)
	case criteria.OpBetween:
		lo, hi := rule.Bounds()
		return sq.And{sq.GtOrEq{col: lo}, sq.Lt{col: hi}}, nil
	case criteria.OpNotBetween:
		lo, hi := rule.Bounds()
		return sq.Or{sq.Lt{col: lo}, sq.GtOrEq{col: hi}}, nil
	case criteria.OpIsNull:
		return sq.Eq{col: nil}, nil
	case criteria.OpIsNotNull:
		return sq.NotEq{col: nil}, nil
	case criteria.OpIsTrue:
		return sq.Eq{col: true}, nil
	case criteria.OpIsFalse:
		return sq.Eq{col: false}, nil
	}
	return nil, &criteria.UnsupportedOperatorError{Field: f.Name, Operator: rule.Operator, ValueType: f.Type, Backend: string(c.Dialect)}
}

// like builds a case-insensitive LIKE with the user value escaped, so % and _
// typed by the user match themselves.
func (c *SQLCompiler) like(f criteria.Field, rule *criteria.Criterion) (sq.Sqlizer, error) {
	s, err := textOperand(f, rule)
	if err != nil {
		return nil, err
	}
	pattern := likeEscaper.Replace(s)
	negate := false
	switch rule.Operator {
	case criteria.OpContains:
		pattern = "%" + pattern + "%"
	case criteria.OpNotContains:
		pattern, negate = "%"+pattern+"%", true
	case criteria.OpStartsWith:
		pattern = pattern + "%"
	case criteria.OpNotStartsWith:
		pattern, negate = pattern+"%", true
	case criteria.OpEndsWith:
		pattern = "%" + pattern
	case criteria.OpNotEndsWith:
		pattern, negate = "%"+pattern, true
	}

	col := f.Storage()
	if c.Dialect == DialectPostgres {
		if negate {
			return sq.NotILike{col: pattern}, nil
		}
		return sq.ILike{col: pattern}, nil
	}
	if negate {
		return sq.Expr("LOWER("+col+") NOT LIKE LOWER(?)", pattern), nil
	}
	return sq.Expr("LOWER("+col+") LIKE LOWER(?)", pattern), nil
}
