// Package relation adapts a lazy gorm relation to the backend contract.
//
// gorm chains return clones, so the adapter keeps the relation it was given
// as a base and, after every call, rebuilds the caller's *gorm.DB from that
// base. Nothing executes until the caller runs a finisher such as Find:
//
//	rel := db.Model(&User{})
//	if err := translate.Apply(&rel, f); err != nil {
//	    return err
//	}
//	err := rel.Find(&users).Error
//
// The predicate tree is rendered by backend.Clause and installed with a single
// Where, so it has the same shape as on the builder backend. gorm wraps it
// in one extra pair of parentheses, which keeps it ANDed with conditions
// already on the base. An offset without a limit is emitted with LIMIT
// backend.Unbounded, replacing any limit set on the base.
package relation

import (
	"fmt"

	"github.com/jinzhu/gorm"

	"github.com/roach88/querytx/internal/backend"
)

// Name identifies this backend in error messages.
const Name = "relation"

// Adapter drives a **gorm.DB.
type Adapter struct {
	target **gorm.DB
	base   *gorm.DB
	root   *backend.Clause
	orders []string
	limit  uint64
	offset uint64
}

// Wrap creates an adapter that replaces *target as the translation proceeds.
func Wrap(target **gorm.DB) *Adapter {
	return &Adapter{target: target, base: *target, root: &backend.Clause{}}
}

// Where implements backend.Adapter.
func (a *Adapter) Where(subject backend.Term, op backend.Operator, value backend.Term) error {
	if err := a.root.Where(subject, op, value); err != nil {
		return err
	}
	return a.rebuild()
}

// WhereGroup implements backend.Adapter.
func (a *Adapter) WhereGroup(build func(backend.Adapter) error) error {
	if err := a.root.Group(false, Name, build); err != nil {
		return err
	}
	return a.rebuild()
}

// OrWhereGroup implements backend.Adapter.
func (a *Adapter) OrWhereGroup(build func(backend.Adapter) error) error {
	if err := a.root.Group(true, Name, build); err != nil {
		return err
	}
	return a.rebuild()
}

// OrderBy implements backend.Adapter.
func (a *Adapter) OrderBy(subject backend.Term, dir backend.Direction) error {
	col, err := backend.Text(subject)
	if err != nil {
		return err
	}
	a.orders = append(a.orders, col+" "+string(dir))
	return a.rebuild()
}

// Limit implements backend.Adapter.
func (a *Adapter) Limit(n uint64) error {
	a.limit = n
	return a.rebuild()
}

// Offset implements backend.Adapter.
func (a *Adapter) Offset(n uint64) error {
	a.offset = n
	return a.rebuild()
}

func (a *Adapter) rebuild() error {
	db := a.base

	if !a.root.Empty() {
		sql, args, err := a.root.ToSql()
		if err != nil {
			return fmt.Errorf("render predicates: %w", err)
		}
		db = db.Where(sql, args...)
	}
	for _, order := range a.orders {
		db = db.Order(order)
	}
	if a.limit > 0 {
		db = db.Limit(int64(a.limit))
	} else if a.offset > 0 {
		db = db.Limit(int64(backend.Unbounded))
	}
	if a.offset > 0 {
		db = db.Offset(int64(a.offset))
	}

	*a.target = db
	return nil
}
