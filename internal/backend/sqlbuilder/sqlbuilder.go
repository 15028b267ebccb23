// Package sqlbuilder adapts a squirrel SelectBuilder to the backend contract.
//
// squirrel builders are immutable values, so the adapter holds a pointer to
// the caller's builder and overwrites it after each call. The caller keeps
// using its own variable:
//
//	q := sq.Select("*").From("users")
//	if err := translate.Apply(&q, f); err != nil {
//	    return err
//	}
//	sql, args, err := q.ToSql()
//
// Predicates already on the builder stay in force: the translated predicates
// are then installed in parentheses and ANDed with them. An offset without a
// limit is emitted as LIMIT backend.Unbounded.
package sqlbuilder

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/lann/builder"

	"github.com/roach88/querytx/internal/backend"
)

// Name identifies this backend in error messages.
const Name = "sql"

// Adapter drives a *squirrel.SelectBuilder.
type Adapter struct {
	target   *sq.SelectBuilder
	root     *backend.Clause
	attached bool
}

// Wrap creates an adapter that mutates *target in place.
func Wrap(target *sq.SelectBuilder) *Adapter {
	return &Adapter{target: target, root: &backend.Clause{}}
}

// Where implements backend.Adapter.
func (a *Adapter) Where(subject backend.Term, op backend.Operator, value backend.Term) error {
	if err := a.root.Where(subject, op, value); err != nil {
		return err
	}
	a.attach()
	return nil
}

// WhereGroup implements backend.Adapter.
func (a *Adapter) WhereGroup(build func(backend.Adapter) error) error {
	err := a.root.Group(false, Name, build)
	a.attach()
	return err
}

// OrWhereGroup implements backend.Adapter.
func (a *Adapter) OrWhereGroup(build func(backend.Adapter) error) error {
	err := a.root.Group(true, Name, build)
	a.attach()
	return err
}

// OrderBy implements backend.Adapter.
func (a *Adapter) OrderBy(subject backend.Term, dir backend.Direction) error {
	col, err := backend.Text(subject)
	if err != nil {
		return err
	}
	*a.target = a.target.OrderBy(col + " " + string(dir))
	return nil
}

// Limit implements backend.Adapter.
func (a *Adapter) Limit(n uint64) error {
	*a.target = a.target.Limit(n)
	return nil
}

// Offset implements backend.Adapter.
func (a *Adapter) Offset(n uint64) error {
	q := a.target.Offset(n)
	if _, limited := builder.Get(q, "Limit"); !limited {
		q = q.Limit(backend.Unbounded)
	}
	*a.target = q
	return nil
}

// attach installs the root clause on the builder once it holds a predicate.
// Later predicates land in the same clause through the shared pointer.
func (a *Adapter) attach() {
	if a.attached || a.root.Empty() {
		return
	}
	if parts, ok := builder.Get(*a.target, "WhereParts"); ok && parts != nil {
		*a.target = a.target.Where(enclosed{a.root})
	} else {
		*a.target = a.target.Where(a.root)
	}
	a.attached = true
}

// enclosed keeps a clause a single operand of the builder's AND chain.
type enclosed struct {
	clause *backend.Clause
}

func (e enclosed) ToSql() (string, []any, error) {
	sql, args, err := e.clause.ToSql()
	if err != nil {
		return "", nil, err
	}
	return "(" + sql + ")", args, nil
}
