package condition

import (
	"regexp"
	"strings"

	"go-admin/pkg/criteria"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const BackendMongo = "mongo"

// MongoCompiler lowers criteria into a MongoDB filter document. User text is
// always quoted before it becomes part of a $regex pattern.
type MongoCompiler struct {
	// FieldPrefix is prepended to every storage path, e.g. "data.".
	FieldPrefix string
	lowering    *lowering[bson.M]
}

func NewMongoCompiler(reg *criteria.Registry, fieldPrefix string) *MongoCompiler {
	c := &MongoCompiler{FieldPrefix: fieldPrefix}
	c.lowering = &lowering[bson.M]{
		backend: BackendMongo,
		reg:     reg,
		leaf:    c.compileRule,
		group: func(logic criteria.Logic, children []bson.M) bson.M {
			op := "$and"
			if logic == criteria.LogicOr {
				op = "$or"
			}
			return bson.M{op: children}
		},
	}
	return c
}

func (c *MongoCompiler) Backend() string { return BackendMongo }

func (c *MongoCompiler) Compile(node criteria.Node, cat *criteria.Catalog) (bson.M, error) {
	return c.lowering.compile(node, cat)
}

// Path maps a catalog field to the document path it is stored under.
func (c *MongoCompiler) Path(f criteria.Field) string {
	return c.FieldPrefix + f.Storage()
}

func (c *MongoCompiler) compileRule(f criteria.Field, rule *criteria.Criterion) (bson.M, error) {
	field := c.Path(f)
	val := rule.Value()

	switch rule.Operator {
	case criteria.OpEq:
		return bson.M{field: bson.M{"$eq": val}}, nil
	case criteria.OpNeq:
		return bson.M{field: bson.M{"$ne": val}}, nil
	case criteria.OpGt:
		return bson.M{field: bson.M{"$gt": val}}, nil
	case criteria.OpGe:
		return bson.M{field: bson.M{"$gte": val}}, nil
	case criteria.OpLt:
		return bson.M{field: bson.M{"$lt": val}}, nil
	case criteria.OpLe:
		return bson.M{field: bson.M{"$lte": val}}, nil
	case criteria.OpIn:
		return bson.M{field: bson.M{"$in": rule.Operand}}, nil
	case criteria.OpNotIn:
		return bson.M{field: bson.M{"$nin": rule.Operand}}, nil
	case criteria.OpContains, criteria.OpStartsWith, criteria.OpEndsWith:
		re, err := c.literalRegex(f, rule)
		if err != nil {
			return nil, err
		}
		return bson.M{field: bson.M{"$regex": re}}, nil
	case criteria.OpNotContains, criteria.OpNotStartsWith, criteria.OpNotEndsWith:
		re, err := c.literalRegex(f, rule)
		if err != nil {
			return nil, err
		}
		return bson.M{field: bson.M{"$not": re}}, nil
	case criteria.OpBetween:
		lo, hi := rule.Bounds()
		return bson.M{field: bson.M{"$gte": lo, "$lt": hi}}, nil
	case criteria.OpNotBetween:
		lo, hi := rule.Bounds()
		return bson.M{"$or": []bson.M{
			{field: bson.M{"$lt": lo}},
			{field: bson.M{"$gte": hi}},
		}}, nil
	case criteria.OpIsNull:
		return bson.M{field: bson.M{"$eq": nil}}, nil
	case criteria.OpIsNotNull:
		return bson.M{field: bson.M{"$ne": nil}}, nil
	case criteria.OpIsTrue:
		return bson.M{field: bson.M{"$eq": true}}, nil
	case criteria.OpIsFalse:
		return bson.M{field: bson.M{"$eq": false}}, nil
	}
	return nil, &criteria.UnsupportedOperatorError{Field: f.Name, Operator: rule.Operator, ValueType: f.Type, Backend: BackendMongo}
}

// literalRegex anchors the quoted user value; the result only ever matches
// the literal substring, prefix or suffix.
func (c *MongoCompiler) literalRegex(f criteria.Field, rule *criteria.Criterion) (primitive.Regex, error) {
	s, err := textOperand(f, rule)
	if err != nil {
		return primitive.Regex{}, err
	}
	// BSON regex patterns are C strings
	if strings.ContainsRune(s, 0) {
		return primitive.Regex{}, &criteria.ValidationError{Field: f.Name, Operator: rule.Operator, Reason: "text must not contain NUL bytes"}
	}
	pattern := regexp.QuoteMeta(s)
	switch rule.Operator {
	case criteria.OpStartsWith, criteria.OpNotStartsWith:
		pattern = "^" + pattern
	case criteria.OpEndsWith, criteria.OpNotEndsWith:
		pattern = pattern + "$"
	}
	options := "i"
	if spec, ok := c.lowering.reg.Lookup(rule.Operator); ok && spec.CaseSensitive {
		options = ""
	}
	return primitive.Regex{Pattern: pattern, Options: options}, nil
}
