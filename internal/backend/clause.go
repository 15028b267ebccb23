package backend

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/querytx/internal/qerr"
)

// Clause is an ordered predicate list where every item after the first is
// joined to its predecessor by AND or OR. Nested clauses render in
// parentheses.
//
// Clause implements squirrel.Sqlizer, so it can be handed to any squirrel
// builder. Values are always bound with ? placeholders; the builder's
// placeholder format rewrites them if needed.
//
// Example:
//
//	c := &Clause{}
//	c.Where(Column("foo"), OpEq, Literal{V: "bar"})
//	c.Group(true, "sql", func(a Adapter) error {
//	    return a.Where(Column("bar"), OpLt, Literal{V: 15})
//	})
//
// renders as:
//
//	foo = ? OR (bar < ?)
type Clause struct {
	items []clauseItem
}

type clauseItem struct {
	or   bool
	node sq.Sqlizer
}

// Where appends a predicate joined by AND.
func (c *Clause) Where(subject Term, op Operator, value Term) error {
	pred, err := Predicate(subject, op, value)
	if err != nil {
		return err
	}
	c.items = append(c.items, clauseItem{node: pred})
	return nil
}

// Group appends a nested clause joined by OR when or is set, AND otherwise,
// and lets build populate it through a Scope. backend names the owner in
// UnsupportedOperation errors raised by the scope.
func (c *Clause) Group(or bool, backend string, build func(Adapter) error) error {
	nested := &Clause{}
	c.items = append(c.items, clauseItem{or: or, node: nested})
	return build(&Scope{Clause: nested, Backend: backend})
}

// Empty reports whether the clause renders no SQL.
func (c *Clause) Empty() bool {
	for _, item := range c.items {
		nested, ok := item.node.(*Clause)
		if !ok || !nested.Empty() {
			return false
		}
	}
	return true
}

// ToSql implements squirrel.Sqlizer.
func (c *Clause) ToSql() (string, []any, error) {
	var sb strings.Builder
	var args []any

	for _, item := range c.items {
		sql, itemArgs, err := item.node.ToSql()
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			continue
		}
		if _, nested := item.node.(*Clause); nested {
			sql = "(" + sql + ")"
		}

		if sb.Len() > 0 {
			if item.or {
				sb.WriteString(" OR ")
			} else {
				sb.WriteString(" AND ")
			}
		}
		sb.WriteString(sql)
		args = append(args, itemArgs...)
	}

	return sb.String(), args, nil
}

// Predicate builds a single "subject op value" expression.
// Literal values are bound; Raw and Column values are written verbatim.
func Predicate(subject Term, op Operator, value Term) (sq.Sqlizer, error) {
	subj, err := Text(subject)
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case Literal:
		return sq.Expr(fmt.Sprintf("%s %s ?", subj, op), v.V), nil
	case Raw:
		raw, err := v.sql()
		if err != nil {
			return nil, err
		}
		return sq.Expr(fmt.Sprintf("%s %s %s", subj, op, raw)), nil
	case Column:
		return sq.Expr(fmt.Sprintf("%s %s %s", subj, op, string(v))), nil
	default:
		return nil, fmt.Errorf("unsupported value term %T", value)
	}
}

// Scope is the Adapter handed to group builders. It only holds predicates:
// sorting and windowing apply to the outermost query and fail here.
type Scope struct {
	Clause  *Clause
	Backend string
}

// Where implements Adapter.
func (s *Scope) Where(subject Term, op Operator, value Term) error {
	return s.Clause.Where(subject, op, value)
}

// WhereGroup implements Adapter.
func (s *Scope) WhereGroup(build func(Adapter) error) error {
	return s.Clause.Group(false, s.Backend, build)
}

// OrWhereGroup implements Adapter.
func (s *Scope) OrWhereGroup(build func(Adapter) error) error {
	return s.Clause.Group(true, s.Backend, build)
}

// OrderBy implements Adapter.
func (s *Scope) OrderBy(Term, Direction) error {
	return qerr.UnsupportedOperation(s.Backend, "sorting inside a predicate group")
}

// Limit implements Adapter.
func (s *Scope) Limit(uint64) error {
	return qerr.UnsupportedOperation(s.Backend, "limit inside a predicate group")
}

// Offset implements Adapter.
func (s *Scope) Offset(uint64) error {
	return qerr.UnsupportedOperation(s.Backend, "offset inside a predicate group")
}
