// Package backend defines the capability contract the translator drives.
//
// An Adapter wraps one backend-native query object and mutates it in place.
// The translator hands it fully resolved terms: a Column is already
// table-qualified, a Raw is an opaque fragment, a Literal is the caller's
// value untouched. Adapters never see the filter model.
//
// Implementations live in sub-packages:
//
//	sqlbuilder  *squirrel.SelectBuilder (conjunction-accepting builder)
//	relation    **gorm.DB              (lazy ORM relation)
//	collection  *[]collection.Record   (materialized rows, sort and window only)
//	mongoq      *mongoq.Query          (bson filter and find options)
//
// Adding a backend means implementing Adapter. The translator does not change.
package backend

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/querytx/internal/qerr"
)

// Unbounded is the row count SQL adapters emit as LIMIT when only an offset
// is set. SQLite and MySQL accept OFFSET only after a LIMIT.
const Unbounded uint64 = math.MaxInt64

// Adapter is the minimal capability set required from a query backend.
// A method the backend cannot express returns a qerr.CodeUnsupportedOperation
// error.
type Adapter interface {
	// Where adds a predicate joined by AND to the current scope.
	Where(subject Term, op Operator, value Term) error

	// WhereGroup adds a nested scope joined by AND. build populates it.
	WhereGroup(build func(Adapter) error) error

	// OrWhereGroup adds a nested scope joined by OR. build populates it.
	OrWhereGroup(build func(Adapter) error) error

	// OrderBy appends a sort key. Earlier keys take priority.
	OrderBy(subject Term, dir Direction) error

	// Limit caps the number of rows. Only called with n > 0.
	Limit(n uint64) error

	// Offset skips rows. Only called with n > 0.
	Offset(n uint64) error
}

// Operator is a backend-native comparison token.
type Operator string

const (
	OpEq      Operator = "="
	OpNeq     Operator = "!="
	OpLt      Operator = "<"
	OpLte     Operator = "<="
	OpGt      Operator = ">"
	OpGte     Operator = ">="
	OpLike    Operator = "LIKE"
	OpNotLike Operator = "NOT LIKE"
)

// Direction is a sort direction token.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Term is a resolved subject or value.
//
// Sealed: only Column, Raw and Literal implement it.
type Term interface {
	term()
}

// Column is a column reference, bare or qualified as table.column.
type Column string

func (Column) term() {}

// Raw is an opaque fragment. It is written verbatim and never bound.
//
// A Raw must not contain "?": squirrel renumbers it under sq.Dollar and gorm
// takes it as a bind slot, so SQL backends reject it.
type Raw string

func (Raw) term() {}

func (r Raw) sql() (string, error) {
	if strings.Contains(string(r), "?") {
		return "", qerr.UnsupportedOperation("sql", fmt.Sprintf("placeholder %q in raw fragment %q", "?", string(r)))
	}
	return string(r), nil
}

// Literal is a bound value.
type Literal struct {
	V any
}

func (Literal) term() {}

// Text renders a subject term as SQL text. Literals are not valid subjects.
func Text(t Term) (string, error) {
	switch v := t.(type) {
	case Column:
		return string(v), nil
	case Raw:
		return v.sql()
	default:
		return "", fmt.Errorf("term %T cannot be used as a subject", t)
	}
}
