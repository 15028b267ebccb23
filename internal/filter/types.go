package filter

import (
	"fmt"
	"reflect"
	"strings"
)

// Operator is a comparison operator.
//
// SEARCH is not a native backend operator: translation rewrites it to LIKE
// with the value wrapped in % wildcards.
type Operator string

const (
	EQ      Operator = "EQ"
	NEQ     Operator = "NEQ"
	LT      Operator = "LT"
	LTE     Operator = "LTE"
	GT      Operator = "GT"
	GTE     Operator = "GTE"
	LIKE    Operator = "LIKE"
	NOTLIKE Operator = "NOT_LIKE"
	SEARCH  Operator = "SEARCH"
)

// Operators lists every known operator.
var Operators = []Operator{EQ, NEQ, LT, LTE, GT, GTE, LIKE, NOTLIKE, SEARCH}

var operatorAliases = map[string]Operator{
	"=":        EQ,
	"==":       EQ,
	"!=":       NEQ,
	"<>":       NEQ,
	"<":        LT,
	"<=":       LTE,
	">":        GT,
	">=":       GTE,
	"NOT LIKE": NOTLIKE,
}

// Valid reports whether op is a member of the enumeration.
func (op Operator) Valid() bool {
	for _, known := range Operators {
		if op == known {
			return true
		}
	}
	return false
}

// ParseOperator maps a name ("eq", "SEARCH") or symbol ("=", "<>") to an
// Operator. Unknown input is returned as is so translation can report it.
func ParseOperator(s string) Operator {
	norm := strings.ToUpper(strings.TrimSpace(s))
	if op, ok := operatorAliases[norm]; ok {
		return op
	}
	return Operator(norm)
}

// Conjunction joins a child condition to its parent.
type Conjunction string

const (
	And Conjunction = "AND"
	Or  Conjunction = "OR"
)

// Valid reports whether c is AND or OR.
func (c Conjunction) Valid() bool {
	return c == And || c == Or
}

// ParseConjunction normalizes case. Unknown input is returned upper-cased.
func ParseConjunction(s string) Conjunction {
	return Conjunction(strings.ToUpper(strings.TrimSpace(s)))
}

// Direction is a sort direction.
type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// Valid reports whether d is ASC, DESC or empty (ASC).
func (d Direction) Valid() bool {
	return d == "" || d == ASC || d == DESC
}

// ParseDirection normalizes case. Unknown input is returned upper-cased.
func ParseDirection(s string) Direction {
	return Direction(strings.ToUpper(strings.TrimSpace(s)))
}

// Subject is the left-hand side of a comparison or the key of a sort.
//
// Sealed: only Column, EntityColumn and RawExpr implement it.
type Subject interface {
	subject()
	String() string
}

// Value is the right-hand side of a comparison.
//
// Sealed: only Literal and RawExpr implement it.
type Value interface {
	value()
	String() string
}

// Column is a bare column name.
type Column struct {
	Name string
}

func (Column) subject() {}

func (c Column) String() string { return c.Name }

// EntityColumn is a column owned by an entity. Translation qualifies it as
// <table>.<column> after resolving the entity.
type EntityColumn struct {
	Entity EntityRef
	Name   string
}

func (EntityColumn) subject() {}

func (c EntityColumn) String() string {
	if c.Entity == nil {
		return c.Name
	}
	return c.Entity.String() + "." + c.Name
}

// RawExpr is an opaque fragment passed through translation verbatim.
// It carries no bound values, and SQL backends reject one containing "?".
type RawExpr struct {
	SQL string
}

func (RawExpr) subject() {}
func (RawExpr) value()   {}

func (r RawExpr) String() string { return r.SQL }

// Literal is a plain comparison value. It reaches the backend unchanged.
type Literal struct {
	V any
}

func (Literal) value() {}

func (l Literal) String() string { return fmt.Sprint(l.V) }

// EntityRef identifies the owner of a column: a literal table name or a
// mapped record type.
//
// Sealed: only Table and Model implement it.
type EntityRef interface {
	entityRef()
	String() string
}

// Table is a literal physical table name.
type Table string

func (Table) entityRef() {}

func (t Table) String() string { return string(t) }

// Model refers to a mapped record type. Resolving it to a table requires a
// registry that knows the type.
type Model struct {
	Type reflect.Type
}

func (Model) entityRef() {}

func (m Model) String() string {
	if m.Type == nil {
		return "<nil>"
	}
	return m.Type.String()
}

// ModelOf returns a Model for the dynamic type of v, dereferencing pointers.
func ModelOf(v any) Model {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return Model{Type: t}
}

// ModelFor returns a Model for T.
func ModelFor[T any]() Model {
	return ModelOf((*T)(nil))
}

// Col creates a Column subject.
func Col(name string) Column {
	return Column{Name: name}
}

// On creates a column owned by entity.
// Example: On(Table("users"), "name") resolves to users.name.
func On(entity EntityRef, name string) EntityColumn {
	return EntityColumn{Entity: entity, Name: name}
}

// Raw creates an opaque fragment usable as a subject or a value.
func Raw(sql string) RawExpr {
	return RawExpr{SQL: sql}
}

// Lit creates a Literal value.
func Lit(v any) Literal {
	return Literal{V: v}
}
