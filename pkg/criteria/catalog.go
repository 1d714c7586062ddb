package criteria

import (
	"fmt"
	"regexp"
	"time"
)

type ValueType string

const (
	TypeText       ValueType = "text"
	TypeNumeric    ValueType = "numeric"
	TypeDatetime   ValueType = "datetime"
	TypeBoolean    ValueType = "boolean"
	TypeEnumerable ValueType = "enumerable"
)

func (t ValueType) IsValid() bool {
	switch t {
	case TypeText, TypeNumeric, TypeDatetime, TypeBoolean, TypeEnumerable:
		return true
	}
	return false
}

// Field describes one queryable field of an admin module.
type Field struct {
	Name       string    `json:"name" bson:"name"`
	Column     string    `json:"column,omitempty" bson:"column,omitempty"` // storage name, defaults to Name
	Type       ValueType `json:"type" bson:"type"`
	Sortable   bool      `json:"sortable" bson:"sortable"`
	Searchable bool      `json:"searchable" bson:"searchable"`
	Filterable bool      `json:"filterable" bson:"filterable"`
	Format     string    `json:"format,omitempty" bson:"format,omitempty"` // Go time layout for datetime operands
	Choices    []string  `json:"choices,omitempty" bson:"choices,omitempty"`
}

// Storage returns the name the backend knows this field by.
func (f Field) Storage() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// CanFilter reports whether the field may appear in a criteria tree.
func (f Field) CanFilter() bool {
	return f.Filterable || f.Searchable
}

func (f Field) layout() string {
	if f.Format != "" {
		return f.Format
	}
	return time.RFC3339
}

var fieldPathRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Catalog is the immutable set of fields a list endpoint can query. It is
// built once per module and shared read-only between requests.
type Catalog struct {
	primaryKey string
	fields     map[string]Field
	order      []string
}

func NewCatalog(primaryKey string, fields ...Field) (*Catalog, error) {
	c := &Catalog{
		primaryKey: primaryKey,
		fields:     make(map[string]Field, len(fields)),
		order:      make([]string, 0, len(fields)),
	}
	for _, f := range fields {
		if !fieldPathRe.MatchString(f.Name) {
			return nil, fmt.Errorf("invalid field name %q", f.Name)
		}
		if f.Column != "" && !fieldPathRe.MatchString(f.Column) {
			return nil, fmt.Errorf("invalid column %q for field %s", f.Column, f.Name)
		}
		if !f.Type.IsValid() {
			return nil, fmt.Errorf("field %s has unknown type %q", f.Name, f.Type)
		}
		if _, dup := c.fields[f.Name]; dup {
			return nil, fmt.Errorf("duplicate field %s", f.Name)
		}
		f.Choices = append([]string(nil), f.Choices...)
		c.fields[f.Name] = f
		c.order = append(c.order, f.Name)
	}
	if primaryKey != "" && !fieldPathRe.MatchString(primaryKey) {
		return nil, fmt.Errorf("invalid primary key %q", primaryKey)
	}
	return c, nil
}

// Resolve looks up a dotted field path.
func (c *Catalog) Resolve(path string) (Field, error) {
	f, ok := c.fields[path]
	if !ok {
		return Field{}, &UnknownFieldError{Field: path}
	}
	return f, nil
}

// PrimaryKey is the storage name used to break sort ties, or "".
func (c *Catalog) PrimaryKey() string {
	return c.primaryKey
}

// Fields returns the fields in declaration order.
func (c *Catalog) Fields() []Field {
	out := make([]Field, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.fields[name])
	}
	return out
}

// SearchableFields returns the text fields taking part in free-text search.
func (c *Catalog) SearchableFields() []Field {
	var out []Field
	for _, name := range c.order {
		if f := c.fields[name]; f.Searchable && f.Type == TypeText {
			out = append(out, f)
		}
	}
	return out
}
