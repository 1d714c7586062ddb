package module

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go-admin/pkg/criteria"

	"go.uber.org/zap"
)

var ErrModuleNotFound = errors.New("module not found")

// Entry pairs a module definition with its compiled field catalog.
type Entry struct {
	Module  Module
	Catalog *criteria.Catalog
}

// Registry is built once at startup and only read afterwards.
type Registry struct {
	entries map[string]*Entry
	names   []string
}

// NewRegistry keeps every valid module. The returned error joins the reasons
// invalid or duplicate modules were skipped; the registry is usable either way.
func NewRegistry(modules []Module) (*Registry, error) {
	r := &Registry{entries: make(map[string]*Entry, len(modules))}
	var errs []error
	for _, m := range modules {
		if err := m.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := r.entries[m.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate module %s", m.Name))
			continue
		}
		cat, err := m.Catalog()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		r.entries[m.Name] = &Entry{Module: m, Catalog: cat}
		r.names = append(r.names, m.Name)
	}
	sort.Strings(r.names)
	return r, errors.Join(errs...)
}

// LoadRegistry reads every module definition from the repository.
func LoadRegistry(repo ModuleRepository, log *zap.Logger) (*Registry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	modules, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load modules: %w", err)
	}
	reg, err := NewRegistry(modules)
	if err != nil {
		log.Warn("Skipped invalid module definitions", zap.Error(err))
	}
	log.Info("Loaded modules", zap.Strings("modules", reg.Names()))
	return reg, nil
}

func (r *Registry) Get(name string) (*Entry, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, ErrModuleNotFound
	}
	return e, nil
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// List returns the entries in name order.
func (r *Registry) List() []*Entry {
	out := make([]*Entry, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.entries[n])
	}
	return out
}
