// Package translate walks a filter and drives a backend adapter with the
// resulting call sequence.
//
// The walk is fixed: root conditions first, each applied directly on the
// adapter; then sort keys in declaration order; then the limit/offset window.
// A condition's comparison becomes a Where call and each child becomes a
// nested WhereGroup (AND) or OrWhereGroup (OR), so the tree keeps its shape
// on every backend:
//
//	q := sq.Select("*").From("table")
//	f := filter.New().Where(
//	    filter.Where("foo", filter.EQ, "bar").Or(
//	        filter.Where("bar", filter.LT, 15).And(
//	            filter.Where("cat", filter.NEQ, "catlab"),
//	        ),
//	    ),
//	)
//	err := translate.Apply(&q, f)
//	// SELECT * FROM table WHERE foo = ? OR (bar < ? AND (cat != ?))
//
// The first error aborts the walk. Errors carry the path of the failing node
// ("where[0].or[0]", "sort[1]") and keep their qerr code for errors.Is.
// Calls already made on the adapter are not undone.
package translate

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/querytx/internal/backend"
	"github.com/roach88/querytx/internal/filter"
	"github.com/roach88/querytx/internal/qerr"
	"github.com/roach88/querytx/internal/resolve"
)

var operators = map[filter.Operator]backend.Operator{
	filter.EQ:      backend.OpEq,
	filter.NEQ:     backend.OpNeq,
	filter.LT:      backend.OpLt,
	filter.LTE:     backend.OpLte,
	filter.GT:      backend.OpGt,
	filter.GTE:     backend.OpGte,
	filter.LIKE:    backend.OpLike,
	filter.NOTLIKE: backend.OpNotLike,
	filter.SEARCH:  backend.OpLike,
}

// Option configures a Translator.
type Option func(*Translator)

// WithResolver sets the resolver used to qualify entity columns.
func WithResolver(r resolve.Resolver) Option {
	return func(t *Translator) {
		t.resolver = r
	}
}

// Translator turns filters into adapter calls. A Translator holds no
// per-call state and may be shared between goroutines as long as its
// resolver is safe for concurrent use (a *resolve.Registry is).
type Translator struct {
	resolver resolve.Resolver
}

// New creates a translator. Without WithResolver it resolves literal table
// names only.
func New(opts ...Option) *Translator {
	t := &Translator{}
	for _, opt := range opts {
		opt(t)
	}
	if t.resolver == nil {
		t.resolver = resolve.NewRegistry()
	}
	return t
}

var defaultTranslator = New()

// Apply translates f onto target with a translator that knows no mapped
// models. See Translator.Apply.
func Apply(target any, f *filter.Filter) error {
	return defaultTranslator.Apply(target, f)
}

// Apply picks the adapter for target's concrete type and translates f onto
// it. An unsupported target fails with UNSUPPORTED_BACKEND before anything
// is touched.
func (t *Translator) Apply(target any, f *filter.Filter) error {
	a, err := For(target)
	if err != nil {
		return err
	}
	return t.Translate(a, f)
}

// Translate drives a with the calls that express f. A nil filter is empty.
func (t *Translator) Translate(a backend.Adapter, f *filter.Filter) error {
	if f == nil {
		return nil
	}
	w := &walker{resolver: resolve.NewMemo(t.resolver)}

	for i, cond := range f.Conditions {
		if err := w.condition(a, "where["+strconv.Itoa(i)+"]", cond); err != nil {
			return err
		}
	}

	for i, s := range f.Sorts {
		path := "sort[" + strconv.Itoa(i) + "]"
		subject, err := w.subject(s.Subject)
		if err != nil {
			return wrap(path, err)
		}
		dir, err := direction(s.Direction)
		if err != nil {
			return wrap(path, err)
		}
		if err := a.OrderBy(subject, dir); err != nil {
			return wrap(path, err)
		}
	}

	if f.Limit != nil {
		if f.Limit.Amount > 0 {
			if err := a.Limit(f.Limit.Amount); err != nil {
				return wrap("limit", err)
			}
		}
		if f.Limit.Offset > 0 {
			if err := a.Offset(f.Limit.Offset); err != nil {
				return wrap("offset", err)
			}
		}
	}

	return nil
}

// walker carries the state of one translation.
type walker struct {
	resolver resolve.Resolver
}

// condition emits c on a: its comparison first, then every child as a group.
func (w *walker) condition(a backend.Adapter, path string, c *filter.Condition) error {
	if c.IsEmpty() {
		return nil
	}

	if cmp := c.Comparison; cmp != nil {
		subject, op, value, err := w.comparison(cmp)
		if err != nil {
			return wrap(path, err)
		}
		if err := a.Where(subject, op, value); err != nil {
			return wrap(path, err)
		}
	}

	for i, child := range c.Children {
		childPath := filter.ChildPath(path, child.Conjunction, i)

		var group func(func(backend.Adapter) error) error
		switch child.Conjunction {
		case filter.And:
			group = a.WhereGroup
		case filter.Or:
			group = a.OrWhereGroup
		default:
			return wrap(childPath, qerr.InvalidConjunction(string(child.Conjunction)))
		}
		if child.Condition.IsEmpty() {
			continue
		}

		var inner error
		err := group(func(scope backend.Adapter) error {
			inner = w.condition(scope, childPath, child.Condition)
			return inner
		})
		if inner != nil {
			return inner
		}
		if err != nil {
			return wrap(childPath, err)
		}
	}

	return nil
}

func (w *walker) comparison(cmp *filter.Comparison) (backend.Term, backend.Operator, backend.Term, error) {
	op, ok := operators[cmp.Operator]
	if !ok {
		return nil, "", nil, qerr.InvalidOperator(string(cmp.Operator))
	}

	subject, err := w.subject(cmp.Subject)
	if err != nil {
		return nil, "", nil, err
	}

	var value backend.Term
	switch v := cmp.Value.(type) {
	case filter.RawExpr:
		value = backend.Raw(v.SQL)
	case filter.Literal:
		if cmp.Operator == filter.SEARCH {
			value = backend.Literal{V: "%" + fmt.Sprint(v.V) + "%"}
		} else {
			value = backend.Literal{V: v.V}
		}
	default:
		return nil, "", nil, errors.New("comparison without value")
	}

	return subject, op, value, nil
}

// subject resolves a comparison or sort subject. Comparisons and sorts share
// it so filtering and ordering qualify columns the same way.
func (w *walker) subject(s filter.Subject) (backend.Term, error) {
	switch subj := s.(type) {
	case filter.RawExpr:
		return backend.Raw(subj.SQL), nil
	case filter.EntityColumn:
		if subj.Entity == nil {
			return nil, qerr.UnknownEntity(subj.Name, "column has no owning entity")
		}
		table, err := w.resolver.Resolve(subj.Entity)
		if err != nil {
			return nil, err
		}
		return backend.Column(table + "." + subj.Name), nil
	case filter.Column:
		return backend.Column(subj.Name), nil
	default:
		return nil, errors.New("missing subject")
	}
}

func direction(d filter.Direction) (backend.Direction, error) {
	switch d {
	case filter.ASC, "":
		return backend.Asc, nil
	case filter.DESC:
		return backend.Desc, nil
	default:
		return "", qerr.InvalidDirection(string(d))
	}
}

func wrap(path string, err error) error {
	return fmt.Errorf("%s: %w", path, err)
}
