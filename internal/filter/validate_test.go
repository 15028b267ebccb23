package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_WellFormedFilter(t *testing.T) {
	f := New().
		Where(Where("foo", EQ, "bar").Or(Where("bar", LT, 15).And(Where("cat", NEQ, "catlab")))).
		OrderBy(On(Table("users"), "name"), DESC).
		OrderBy(Raw("LENGTH(name)"), "").
		Take(10)

	result := Validate(f)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Problems)
}

func TestValidate_EmptyFilter(t *testing.T) {
	result := Validate(New())
	assert.True(t, result.Valid)
}

func TestValidate_NilFilter(t *testing.T) {
	result := Validate(nil)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"filter: nil filter"}, result.Problems)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	root := Where("foo", Operator("BETWEEN"), 1).
		Join(Conjunction("XOR"), Where("bar", EQ, 2)).
		Or(&Condition{Comparison: &Comparison{Subject: Col("baz"), Operator: EQ}}).
		And(nil)

	f := New().
		Where(root).
		OrderBy(Col(""), Direction("SIDEWAYS")).
		OrderBy(nil, ASC)

	result := Validate(f)

	assert.False(t, result.Valid)
	assert.Equal(t, []string{
		`where[0]: unknown operator "BETWEEN"`,
		`where[0].child[0]: unknown conjunction "XOR"`,
		`where[0].or[1]: comparison without value`,
		`where[0].and[2]: nil condition`,
		`sort[0]: empty column name`,
		`sort[0]: unknown direction "SIDEWAYS"`,
		`sort[1]: sort without subject`,
	}, result.Problems)
}

func TestValidate_Subjects(t *testing.T) {
	testCases := []struct {
		name    string
		subject Subject
		problem string
	}{
		{"entity column without entity", EntityColumn{Name: "id"}, `where[0]: entity column "id" without entity`},
		{"entity column without name", On(Table("users"), ""), "where[0]: empty column name"},
		{"empty raw", Raw(""), "where[0]: empty raw expression"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Validate(New().Where(Compare(tc.subject, EQ, Lit(1))))
			assert.False(t, result.Valid)
			assert.Equal(t, []string{tc.problem}, result.Problems)
		})
	}
}

func TestChildPath(t *testing.T) {
	assert.Equal(t, "where[0].or[2]", ChildPath("where[0]", Or, 2))
	assert.Equal(t, "where[1].and[0]", ChildPath("where[1]", And, 0))
	assert.Equal(t, "where[1].child[0]", ChildPath("where[1]", Conjunction("?"), 0))
}
