package filter

import "fmt"

// ValidationResult lists the well-formedness problems found in a filter.
type ValidationResult struct {
	// Valid is true when Problems is empty. A valid filter can still fail
	// translation on an unresolvable entity or an unsupported backend.
	Valid bool

	// Problems describes each issue, prefixed with the node path
	// (e.g. "where[0].or[1]: unknown operator \"BETWEEN\"").
	Problems []string
}

// Validate checks operator, conjunction and direction membership and reports
// missing subjects, values and child conditions.
//
// Unlike translation, which stops at the first failure, Validate walks the
// whole filter and collects every problem.
//
// Validate is a pure function with no side effects.
func Validate(f *Filter) ValidationResult {
	v := &validator{problems: []string{}}
	if f == nil {
		v.addProblem("filter", "nil filter")
	} else {
		for i, cond := range f.Conditions {
			v.validateCondition(fmt.Sprintf("where[%d]", i), cond)
		}
		for i, s := range f.Sorts {
			v.validateSort(fmt.Sprintf("sort[%d]", i), s)
		}
	}

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(path, format string, args ...any) {
	v.problems = append(v.problems, path+": "+fmt.Sprintf(format, args...))
}

func (v *validator) validateCondition(path string, c *Condition) {
	if c == nil {
		v.addProblem(path, "nil condition")
		return
	}

	if c.Comparison != nil {
		v.validateComparison(path, c.Comparison)
	}

	for i, child := range c.Children {
		childPath := ChildPath(path, child.Conjunction, i)
		if !child.Conjunction.Valid() {
			v.addProblem(childPath, "unknown conjunction %q", child.Conjunction)
		}
		v.validateCondition(childPath, child.Condition)
	}
}

func (v *validator) validateComparison(path string, cmp *Comparison) {
	if cmp.Subject == nil {
		v.addProblem(path, "comparison without subject")
	} else {
		v.validateSubject(path, cmp.Subject)
	}
	if !cmp.Operator.Valid() {
		v.addProblem(path, "unknown operator %q", cmp.Operator)
	}
	if cmp.Value == nil {
		v.addProblem(path, "comparison without value")
	}
}

func (v *validator) validateSort(path string, s Sort) {
	if s.Subject == nil {
		v.addProblem(path, "sort without subject")
	} else {
		v.validateSubject(path, s.Subject)
	}
	if !s.Direction.Valid() {
		v.addProblem(path, "unknown direction %q", s.Direction)
	}
}

func (v *validator) validateSubject(path string, s Subject) {
	switch subj := s.(type) {
	case Column:
		if subj.Name == "" {
			v.addProblem(path, "empty column name")
		}
	case EntityColumn:
		if subj.Name == "" {
			v.addProblem(path, "empty column name")
		}
		if subj.Entity == nil {
			v.addProblem(path, "entity column %q without entity", subj.Name)
		}
	case RawExpr:
		if subj.SQL == "" {
			v.addProblem(path, "empty raw expression")
		}
	}
}

// childLabel names a child in a node path.
func childLabel(c Conjunction) string {
	switch c {
	case And:
		return "and"
	case Or:
		return "or"
	default:
		return "child"
	}
}

// ChildPath is the node path used in translation and validation messages for
// the i-th child of the node at parent.
func ChildPath(parent string, c Conjunction, i int) string {
	return fmt.Sprintf("%s.%s[%d]", parent, childLabel(c), i)
}
