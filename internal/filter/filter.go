package filter

// Comparison is a single subject/operator/value predicate.
type Comparison struct {
	Subject  Subject
	Operator Operator
	Value    Value
}

// Condition is a node of the where tree: an optional comparison followed by
// children, each joined with its own conjunction.
//
// A Condition with no comparison acts as a pure grouping node. One with no
// comparison and no non-empty children contributes nothing.
type Condition struct {
	Comparison *Comparison
	Children   []Child
}

// Child is a condition nested under a parent and joined by And or Or.
type Child struct {
	Conjunction Conjunction
	Condition   *Condition
}

// Compare creates a condition holding one comparison.
func Compare(subject Subject, op Operator, value Value) *Condition {
	return &Condition{Comparison: &Comparison{Subject: subject, Operator: op, Value: value}}
}

// Where creates a condition comparing a bare column. v becomes a Literal unless
// it already is a Value (for example a RawExpr).
func Where(column string, op Operator, v any) *Condition {
	return Compare(Col(column), op, asValue(v))
}

// Group creates a condition without a comparison. Attach children with And and
// Or.
func Group() *Condition {
	return &Condition{}
}

// And appends child joined by AND and returns c.
func (c *Condition) And(child *Condition) *Condition {
	return c.Join(And, child)
}

// Or appends child joined by OR and returns c.
func (c *Condition) Or(child *Condition) *Condition {
	return c.Join(Or, child)
}

// Join appends child with an explicit conjunction and returns c.
func (c *Condition) Join(conj Conjunction, child *Condition) *Condition {
	c.Children = append(c.Children, Child{Conjunction: conj, Condition: child})
	return c
}

// IsEmpty reports whether c contributes no predicate at all.
func (c *Condition) IsEmpty() bool {
	if c == nil {
		return true
	}
	if c.Comparison != nil {
		return false
	}
	for _, child := range c.Children {
		if !child.Condition.IsEmpty() {
			return false
		}
	}
	return true
}

// Sort is one sort key.
type Sort struct {
	Subject   Subject
	Direction Direction
}

// Limit bounds the result window. Zero means absent for both fields.
type Limit struct {
	Amount uint64
	Offset uint64
}

// Filter describes a select query: root conditions, sort keys in priority
// order, and an optional window.
type Filter struct {
	Conditions []*Condition
	Sorts      []Sort
	Limit      *Limit
}

// New creates an empty filter.
func New() *Filter {
	return &Filter{}
}

// Where appends root conditions.
func (f *Filter) Where(conds ...*Condition) *Filter {
	f.Conditions = append(f.Conditions, conds...)
	return f
}

// OrderBy appends a sort key. The first key added is the primary key.
func (f *Filter) OrderBy(subject Subject, dir Direction) *Filter {
	f.Sorts = append(f.Sorts, Sort{Subject: subject, Direction: dir})
	return f
}

// Take sets the maximum number of rows. Zero removes the bound.
func (f *Filter) Take(n uint64) *Filter {
	f.window().Amount = n
	return f
}

// Skip sets the number of rows to skip. Zero removes the offset.
func (f *Filter) Skip(n uint64) *Filter {
	f.window().Offset = n
	return f
}

func (f *Filter) window() *Limit {
	if f.Limit == nil {
		f.Limit = &Limit{}
	}
	return f.Limit
}

func asValue(v any) Value {
	if val, ok := v.(Value); ok {
		return val
	}
	return Literal{V: v}
}
