package criteria

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaxDepth bounds nesting of and/or groups in untrusted input.
const MaxDepth = 32

// Parser turns wire-format criteria into a validated tree. It only reads its
// registry and catalog, so a single Parser may serve concurrent requests.
type Parser struct {
	Registry *Registry
	Catalog  *Catalog
}

func NewParser(reg *Registry, cat *Catalog) *Parser {
	return &Parser{Registry: reg, Catalog: cat}
}

// ParseWhere classifies the raw where parameter. A syntactic JSON object is
// parsed as structured criteria; anything else is expanded as free text.
// The bool result reports whether free-text expansion was used.
func (p *Parser) ParseWhere(where string) (*Composite, bool, error) {
	trimmed := strings.TrimSpace(where)
	if trimmed == "" {
		return nil, false, nil
	}
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		root, err := p.Parse([]byte(trimmed))
		return root, false, err
	}
	root, err := p.SearchTerm(trimmed)
	return root, true, err
}

// Parse decodes a JSON criteria document. A document holding a single leaf
// is wrapped in an AND group so callers always receive a composite root; an
// empty object yields a nil root.
func (p *Parser) Parse(raw []byte) (*Composite, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, invalid("", "", "malformed criteria: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, invalid("", "", "malformed criteria: trailing data")
	}
	if len(doc) == 0 {
		return nil, nil
	}

	node, err := p.parseObject(doc, 0)
	if err != nil {
		return nil, err
	}
	if c, ok := node.(*Composite); ok {
		return c, nil
	}
	return p.Registry.NewComposite(LogicAnd, node)
}

// SearchTerm expands a free-text term into contains over every searchable
// text field, joined with OR.
func (p *Parser) SearchTerm(term string) (*Composite, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	fields := p.Catalog.SearchableFields()
	if len(fields) == 0 {
		return nil, invalid("", "", "free-text search is not available for this resource")
	}
	children := make([]Node, 0, len(fields))
	for _, f := range fields {
		c, err := p.Registry.NewCriterion(f.Name, OpContains, term)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return p.Registry.NewComposite(LogicOr, children...)
}

// ByKeys builds an `in` filter on the catalog's primary key. The key must be
// a declared field so its values can be coerced to the field type.
func (p *Parser) ByKeys(keys []string) (*Composite, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	pk := p.Catalog.PrimaryKey()
	f, err := p.Catalog.Resolve(pk)
	if pk == "" || err != nil {
		return nil, invalid("pks", "", "lookup by primary key is not available for this resource")
	}
	if err := p.Registry.CheckField(f, OpIn, ""); err != nil {
		return nil, err
	}

	raw := make([]any, len(keys))
	for i, k := range keys {
		raw[i] = k
	}
	values, err := coerceAll(f, OpIn, raw)
	if err != nil {
		return nil, err
	}
	c, err := p.Registry.NewCriterion(f.Name, OpIn, values...)
	if err != nil {
		return nil, err
	}
	return p.Registry.NewComposite(LogicAnd, c)
}

func (p *Parser) parseObject(doc map[string]any, depth int) (Node, error) {
	if depth > MaxDepth {
		return nil, invalid("", "", "criteria nested deeper than %d levels", MaxDepth)
	}
	if len(doc) == 0 {
		return nil, invalid("", "", "empty criterion")
	}

	var nodes []Node
	for _, key := range sortedKeys(doc) {
		val := doc[key]
		switch Logic(key) {
		case LogicAnd, LogicOr:
			n, err := p.parseGroup(Logic(key), val, depth)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		default:
			leaves, err := p.parseField(key, val)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, leaves...)
		}
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return p.Registry.NewComposite(LogicAnd, nodes...)
}

func (p *Parser) parseGroup(logic Logic, val any, depth int) (Node, error) {
	list, ok := val.([]any)
	if !ok {
		return nil, invalid("", "", "value for %s must be a list", logic)
	}
	children := make([]Node, 0, len(list))
	for _, item := range list {
		sub, ok := item.(map[string]any)
		if !ok {
			return nil, invalid("", "", "element of %s must be an object", logic)
		}
		n, err := p.parseObject(sub, depth+1)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return p.Registry.NewComposite(logic, children...)
}

func (p *Parser) parseField(name string, val any) ([]Node, error) {
	f, err := p.Catalog.Resolve(name)
	if err != nil {
		return nil, err
	}
	if !f.CanFilter() {
		return nil, invalid(name, "", "field is not filterable")
	}
	ops, ok := val.(map[string]any)
	if !ok || len(ops) == 0 {
		return nil, invalid(name, "", "expected an object of operator to value")
	}

	nodes := make([]Node, 0, len(ops))
	for _, key := range sortedKeys(ops) {
		op := Operator(key)
		spec, ok := p.Registry.Lookup(op)
		if !ok {
			return nil, invalid(name, op, "unknown operator")
		}
		if err := p.Registry.CheckField(f, op, ""); err != nil {
			return nil, err
		}
		operand, err := p.operand(f, spec, ops[key])
		if err != nil {
			return nil, err
		}
		c, err := p.Registry.NewCriterion(name, op, operand...)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, c)
	}
	return nodes, nil
}

func (p *Parser) operand(f Field, spec Spec, raw any) ([]any, error) {
	op := spec.Operator
	list, isList := raw.([]any)

	switch spec.Arity {
	case 0:
		if obj, isObj := raw.(map[string]any); isObj && len(obj) == 0 {
			return nil, nil
		}
		if raw == nil || (isList && len(list) == 0) {
			return nil, nil
		}
		return nil, invalid(f.Name, op, "takes no value")
	case 1:
		if isList {
			return nil, invalid(f.Name, op, "expects a single value, got a list of %d", len(list))
		}
		v, err := coerce(f, op, raw)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	case ArityList:
		if !isList {
			list = []any{raw}
		}
		if len(list) == 0 {
			return nil, invalid(f.Name, op, "expects at least one value")
		}
		return coerceAll(f, op, list)
	default:
		if !isList || len(list) != spec.Arity {
			n := 1
			if isList {
				n = len(list)
			}
			return nil, invalid(f.Name, op, "expects %d values, got %d", spec.Arity, n)
		}
		return coerceAll(f, op, list)
	}
}

func coerceAll(f Field, op Operator, list []any) ([]any, error) {
	out := make([]any, 0, len(list))
	for _, item := range list {
		v, err := coerce(f, op, item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// coerce converts a decoded JSON value to the field's declared type.
func coerce(f Field, op Operator, v any) (any, error) {
	if v == nil {
		return nil, invalid(f.Name, op, "value is required")
	}
	switch f.Type {
	case TypeText:
		s, ok := v.(string)
		if !ok {
			return nil, invalid(f.Name, op, "expected a string")
		}
		return s, nil
	case TypeNumeric:
		return coerceNumber(f, op, v)
	case TypeDatetime:
		switch t := v.(type) {
		case time.Time:
			return t, nil
		case string:
			parsed, err := time.Parse(f.layout(), strings.TrimSpace(t))
			if err != nil {
				return nil, invalid(f.Name, op, "expected a datetime in format %q", f.layout())
			}
			return parsed, nil
		}
		return nil, invalid(f.Name, op, "expected a datetime string")
	case TypeBoolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(b))
			if err == nil {
				return parsed, nil
			}
		}
		return nil, invalid(f.Name, op, "expected a boolean")
	case TypeEnumerable:
		var s string
		switch e := v.(type) {
		case string:
			s = e
		case json.Number:
			s = e.String()
		default:
			return nil, invalid(f.Name, op, "expected a choice value")
		}
		if len(f.Choices) > 0 && !contains(f.Choices, s) {
			return nil, invalid(f.Name, op, "%q is not one of %s", s, strings.Join(f.Choices, ", "))
		}
		return s, nil
	}
	return nil, invalid(f.Name, op, "unsupported field type %s", f.Type)
}

func coerceNumber(f Field, op Operator, v any) (any, error) {
	var n json.Number
	switch x := v.(type) {
	case json.Number:
		n = x
	case string:
		n = json.Number(strings.TrimSpace(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, invalid(f.Name, op, "expected a finite number")
		}
		return x, nil
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	default:
		return nil, invalid(f.Name, op, "expected a number")
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	fl, err := n.Float64()
	if err != nil || math.IsNaN(fl) || math.IsInf(fl, 0) {
		return nil, invalid(f.Name, op, "expected a number, got %q", n.String())
	}
	return fl, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
