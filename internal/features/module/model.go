package module

import (
	"fmt"
	"regexp"
	"time"

	"go-admin/pkg/criteria"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Backend string

const (
	BackendMongo    Backend = "mongo"
	BackendPostgres Backend = "postgres"
	BackendMySQL    Backend = "mysql"
	BackendMemory   Backend = "memory"
)

type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeEmail    FieldType = "email"
	FieldTypePhone    FieldType = "phone"
	FieldTypeURL      FieldType = "url"
	FieldTypeTextArea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCurrency FieldType = "currency"
)

type SelectOptions struct {
	Label string `json:"label" bson:"label"`
	Value string `json:"value" bson:"value"`
}

type ModuleField struct {
	Name       string          `json:"name" bson:"name"`
	Label      string          `json:"label" bson:"label"`
	Type       FieldType       `json:"type" bson:"type"`
	Column     string          `json:"column,omitempty" bson:"column,omitempty"`
	Options    []SelectOptions `json:"options,omitempty" bson:"options,omitempty"` // For Select
	Format     string          `json:"format,omitempty" bson:"format,omitempty"`   // Go layout for Date
	Sortable   bool            `json:"sortable" bson:"sortable"`
	Searchable bool            `json:"searchable" bson:"searchable"`
	Filterable bool            `json:"filterable" bson:"filterable"`
}

// Module describes one list endpoint: where its records live and which of
// their fields can be filtered, searched and sorted.
type Module struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"` // Unique Identifier (e.g., "posts")
	Label      string             `json:"label" bson:"label"`
	Backend    Backend            `json:"backend" bson:"backend"`
	Source     string             `json:"source" bson:"source"` // collection or table
	PrimaryKey string             `json:"primary_key,omitempty" bson:"primary_key,omitempty"`
	Fields     []ModuleField      `json:"fields" bson:"fields"`
	// Rows seeds memory-backed modules.
	Rows      []map[string]any `json:"-" bson:"rows,omitempty"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" bson:"updated_at"`
}

var nameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
var sourceRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func (m *Module) Validate() error {
	if !nameRe.MatchString(m.Name) {
		return fmt.Errorf("invalid module name %q", m.Name)
	}
	switch m.Backend {
	case BackendMongo, BackendPostgres, BackendMySQL:
		if !sourceRe.MatchString(m.Source) {
			return fmt.Errorf("module %s: invalid source %q", m.Name, m.Source)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("module %s: unknown backend %q", m.Name, m.Backend)
	}
	return nil
}

// Catalog converts the module's fields into the catalog list requests are
// validated against.
func (m *Module) Catalog() (*criteria.Catalog, error) {
	fields := make([]criteria.Field, 0, len(m.Fields))
	for _, f := range m.Fields {
		cf, err := f.CriteriaField()
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", m.Name, err)
		}
		fields = append(fields, cf)
	}

	pk := m.PrimaryKey
	if pk == "" {
		switch m.Backend {
		case BackendMongo:
			pk = "_id"
		case BackendPostgres, BackendMySQL:
			pk = "id"
		}
	}
	cat, err := criteria.NewCatalog(pk, fields...)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", m.Name, err)
	}
	return cat, nil
}

func (f ModuleField) CriteriaField() (criteria.Field, error) {
	cf := criteria.Field{
		Name:       f.Name,
		Column:     f.Column,
		Sortable:   f.Sortable,
		Searchable: f.Searchable,
		Filterable: f.Filterable,
		Format:     f.Format,
	}
	switch f.Type {
	case FieldTypeText, FieldTypeEmail, FieldTypePhone, FieldTypeURL, FieldTypeTextArea:
		cf.Type = criteria.TypeText
	case FieldTypeNumber, FieldTypeCurrency:
		cf.Type = criteria.TypeNumeric
	case FieldTypeDate:
		cf.Type = criteria.TypeDatetime
	case FieldTypeBoolean:
		cf.Type = criteria.TypeBoolean
	case FieldTypeSelect:
		cf.Type = criteria.TypeEnumerable
		for _, o := range f.Options {
			cf.Choices = append(cf.Choices, o.Value)
		}
	default:
		return criteria.Field{}, fmt.Errorf("field %s has unsupported type %q", f.Name, f.Type)
	}
	return cf, nil
}
