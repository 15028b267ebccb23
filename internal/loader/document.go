package loader

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/roach88/querytx/internal/filter"
)

// Document is the on-disk form of a filter.
//
//	table: users
//	where:
//	  - column: foo
//	    op: EQ
//	    value: bar
//	    children:
//	      - join: OR
//	        column: bar
//	        op: LT
//	        value: 15
//	sort:
//	  - column: name
//	    direction: DESC
//	limit: {amount: 10, offset: 20}
type Document struct {
	// Table is the base table the filter selects from. Only the CLI uses it.
	Table string `yaml:"table,omitempty" json:"table,omitempty"`

	Where []ConditionDoc `yaml:"where,omitempty" json:"where,omitempty"`
	Sort  []SortDoc      `yaml:"sort,omitempty" json:"sort,omitempty"`
	Limit *LimitDoc      `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// ConditionDoc is one node of the where tree. A node without op is a pure
// group.
type ConditionDoc struct {
	// Join is AND or OR. Ignored on root nodes; defaults to AND on children.
	Join string `yaml:"join,omitempty" json:"join,omitempty"`

	// Subject: exactly one of Column or Raw. Entity qualifies Column.
	Column string `yaml:"column,omitempty" json:"column,omitempty"`
	Entity string `yaml:"entity,omitempty" json:"entity,omitempty"`
	Raw    string `yaml:"raw,omitempty" json:"raw,omitempty"`

	Op string `yaml:"op,omitempty" json:"op,omitempty"`

	// Value: at most one of Value or RawValue. A missing value compares
	// against NULL.
	Value    any     `yaml:"value,omitempty" json:"value,omitempty"`
	RawValue *string `yaml:"raw_value,omitempty" json:"raw_value,omitempty"`

	Children []ConditionDoc `yaml:"children,omitempty" json:"children,omitempty"`
}

// SortDoc is one sort key.
type SortDoc struct {
	Column    string `yaml:"column,omitempty" json:"column,omitempty"`
	Entity    string `yaml:"entity,omitempty" json:"entity,omitempty"`
	Raw       string `yaml:"raw,omitempty" json:"raw,omitempty"`
	Direction string `yaml:"direction,omitempty" json:"direction,omitempty"`
}

// LimitDoc is the result window.
type LimitDoc struct {
	Amount uint64 `yaml:"amount,omitempty" json:"amount,omitempty"`
	Offset uint64 `yaml:"offset,omitempty" json:"offset,omitempty"`
}

// Filter builds the filter the document describes. Operator, conjunction and
// direction strings are normalized but not checked; unknown ones reach the
// filter as is so validation and translation can report them.
func (d *Document) Filter() (*filter.Filter, error) {
	f := filter.New()

	for i, cd := range d.Where {
		cond, err := cd.condition(fmt.Sprintf("where[%d]", i))
		if err != nil {
			return nil, err
		}
		f.Where(cond)
	}

	for i, sd := range d.Sort {
		subject, err := subjectOf(fmt.Sprintf("sort[%d]", i), sd.Column, sd.Entity, sd.Raw)
		if err != nil {
			return nil, err
		}
		f.OrderBy(subject, filter.ParseDirection(sd.Direction))
	}

	if d.Limit != nil {
		f.Take(d.Limit.Amount).Skip(d.Limit.Offset)
	}

	return f, nil
}

func (cd *ConditionDoc) condition(path string) (*filter.Condition, error) {
	cond := filter.Group()

	if cd.Op != "" {
		subject, err := subjectOf(path, cd.Column, cd.Entity, cd.Raw)
		if err != nil {
			return nil, err
		}

		var value filter.Value
		switch {
		case cd.RawValue != nil && cd.Value != nil:
			return nil, fmt.Errorf("%s: value and raw_value are mutually exclusive", path)
		case cd.RawValue != nil:
			value = filter.Raw(*cd.RawValue)
		default:
			value = filter.Lit(normalize(cd.Value))
		}

		cond = filter.Compare(subject, filter.ParseOperator(cd.Op), value)
	} else if cd.Column != "" || cd.Raw != "" || cd.Value != nil || cd.RawValue != nil {
		return nil, fmt.Errorf("%s: comparison without op", path)
	}

	for i, child := range cd.Children {
		conj := filter.And
		if child.Join != "" {
			conj = filter.ParseConjunction(child.Join)
		}
		childCond, err := child.condition(filter.ChildPath(path, conj, i))
		if err != nil {
			return nil, err
		}
		cond.Join(conj, childCond)
	}

	return cond, nil
}

func subjectOf(path, column, entity, raw string) (filter.Subject, error) {
	switch {
	case column != "" && raw != "":
		return nil, fmt.Errorf("%s: column and raw are mutually exclusive", path)
	case raw != "":
		if entity != "" {
			return nil, fmt.Errorf("%s: entity cannot qualify a raw subject", path)
		}
		return filter.Raw(raw), nil
	case column == "":
		return nil, fmt.Errorf("%s: column or raw is required", path)
	case entity != "":
		return filter.On(filter.Table(entity), column), nil
	default:
		return filter.Col(column), nil
	}
}

// normalize maps decoder-specific number types onto int, int64 or float64.
func normalize(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
			return normalize(i)
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return string(n)
	case int64:
		if int64(int(n)) == n {
			return int(n)
		}
		return n
	default:
		return v
	}
}
