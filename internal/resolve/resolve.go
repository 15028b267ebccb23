// Package resolve maps entity references to physical table names.
//
// A filter.Table resolves to itself. A filter.Model resolves through a
// Registry populated by the host application before translation:
//
//	reg := resolve.NewRegistry()
//	if err := reg.Register(&User{}, &Order{}); err != nil {
//	    return err
//	}
//	table, err := reg.Resolve(filter.ModelFor[User]()) // "users"
//
// Table names follow the gorm convention: a model implementing Tabler names
// its own table, otherwise the snake_cased, pluralized type name is used.
package resolve

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/jinzhu/gorm"
	"github.com/jinzhu/inflection"

	"github.com/roach88/querytx/internal/filter"
	"github.com/roach88/querytx/internal/qerr"
)

// Resolver returns the physical table name of an entity reference.
// Implementations fail with a qerr.CodeUnknownEntity error when the
// reference cannot be resolved.
type Resolver interface {
	Resolve(ref filter.EntityRef) (string, error)
}

// Tabler is implemented by models that name their own table. It matches the
// interface gorm uses, so both agree on physical names.
type Tabler interface {
	TableName() string
}

// Registry is the set of mapped record types known to the application.
// It is safe for concurrent use; registration usually happens once at startup.
type Registry struct {
	mu     sync.RWMutex
	tables map[reflect.Type]string
}

// NewRegistry creates an empty registry. An empty registry still resolves
// literal table names.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[reflect.Type]string)}
}

// Register adds models to the registry. Each model must be a struct or a
// pointer to a struct.
func (r *Registry) Register(models ...any) error {
	for _, m := range models {
		t := filter.ModelOf(m).Type
		if t == nil || t.Kind() != reflect.Struct {
			return fmt.Errorf("register %T: model must be a struct or pointer to struct", m)
		}

		table := TableName(m)

		r.mu.Lock()
		r.tables[t] = table
		r.mu.Unlock()
	}
	return nil
}

// Resolve implements Resolver.
func (r *Registry) Resolve(ref filter.EntityRef) (string, error) {
	switch e := ref.(type) {
	case filter.Table:
		if e == "" {
			return "", qerr.UnknownEntity("", "empty table name")
		}
		return string(e), nil
	case filter.Model:
		if e.Type == nil {
			return "", qerr.UnknownEntity(e.String(), "model reference without type")
		}
		r.mu.RLock()
		table, ok := r.tables[e.Type]
		r.mu.RUnlock()
		if !ok {
			return "", qerr.UnknownEntity(e.String(), "model type is not registered")
		}
		return table, nil
	case nil:
		return "", qerr.UnknownEntity("<nil>", "nil entity reference")
	default:
		return "", qerr.UnknownEntity(fmt.Sprintf("%T", ref), "unsupported entity reference")
	}
}

// TableName returns the table a model maps to: Tabler first, otherwise the
// gorm default of the pluralized snake_case type name.
func TableName(model any) string {
	if tabler, ok := model.(Tabler); ok {
		return tabler.TableName()
	}

	t := filter.ModelOf(model).Type
	if t == nil {
		return ""
	}
	// TableName may be declared on the pointer receiver.
	if tabler, ok := reflect.New(t).Interface().(Tabler); ok {
		return tabler.TableName()
	}
	return inflection.Plural(gorm.ToDBName(t.Name()))
}

// Memo caches resolutions of an underlying Resolver. The translator creates one
// per translation call so each distinct entity is looked up once.
// A Memo is not safe for concurrent use.
type Memo struct {
	next  Resolver
	cache map[filter.EntityRef]string
}

// NewMemo wraps next.
func NewMemo(next Resolver) *Memo {
	return &Memo{next: next, cache: make(map[filter.EntityRef]string)}
}

// Resolve implements Resolver. Failures are not cached.
func (m *Memo) Resolve(ref filter.EntityRef) (string, error) {
	if ref != nil {
		if table, ok := m.cache[ref]; ok {
			return table, nil
		}
	}

	table, err := m.next.Resolve(ref)
	if err != nil {
		return "", err
	}
	m.cache[ref] = table
	return table, nil
}
