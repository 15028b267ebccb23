package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querytx/internal/qerr"
)

func TestClause_Empty(t *testing.T) {
	c := &Clause{}
	assert.True(t, c.Empty())

	sql, args, err := c.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "", sql)
	assert.Empty(t, args)
}

func TestClause_JoinsItemsWithTheirOwnConjunction(t *testing.T) {
	c := &Clause{}
	require.NoError(t, c.Where(Column("foo"), OpEq, Literal{V: "bar"}))
	require.NoError(t, c.Group(true, "test", func(a Adapter) error {
		if err := a.Where(Column("bar"), OpLt, Literal{V: 15}); err != nil {
			return err
		}
		return a.WhereGroup(func(a Adapter) error {
			return a.Where(Column("cat"), OpNeq, Literal{V: "catlab"})
		})
	}))

	sql, args, err := c.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "foo = ? OR (bar < ? AND (cat != ?))", sql)
	assert.Equal(t, []any{"bar", 15, "catlab"}, args)
	assert.False(t, c.Empty())
}

func TestClause_LeadingGroupDropsItsConjunction(t *testing.T) {
	c := &Clause{}
	require.NoError(t, c.Group(true, "test", func(a Adapter) error {
		return a.Where(Column("a"), OpEq, Literal{V: 1})
	}))
	require.NoError(t, c.Group(true, "test", func(a Adapter) error {
		return a.Where(Column("b"), OpEq, Literal{V: 2})
	}))

	sql, args, err := c.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(a = ?) OR (b = ?)", sql)
	assert.Equal(t, []any{1, 2}, args)
}

func TestClause_SkipsEmptyGroups(t *testing.T) {
	c := &Clause{}
	require.NoError(t, c.Group(false, "test", func(Adapter) error { return nil }))
	assert.True(t, c.Empty())

	require.NoError(t, c.Where(Column("a"), OpEq, Literal{V: 1}))
	require.NoError(t, c.Group(true, "test", func(a Adapter) error {
		return a.OrWhereGroup(func(Adapter) error { return nil })
	}))

	sql, _, err := c.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "a = ?", sql)
}

func TestPredicate_Terms(t *testing.T) {
	testCases := []struct {
		name    string
		subject Term
		op      Operator
		value   Term
		sql     string
		args    []any
	}{
		{"literal", Column("users.name"), OpLike, Literal{V: "%ann%"}, "users.name LIKE ?", []any{"%ann%"}},
		{"raw subject", Raw("COUNT(bar)"), OpLt, Literal{V: 15}, "COUNT(bar) < ?", []any{15}},
		{"raw value", Column("created_at"), OpGt, Raw("NOW() - 1"), "created_at > NOW() - 1", nil},
		{"column value", Column("a.id"), OpEq, Column("b.a_id"), "a.id = b.a_id", nil},
		{"not like", Column("name"), OpNotLike, Literal{V: "x%"}, "name NOT LIKE ?", []any{"x%"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pred, err := Predicate(tc.subject, tc.op, tc.value)
			require.NoError(t, err)

			sql, args, err := pred.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tc.sql, sql)
			if tc.args == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tc.args, args)
			}
		})
	}
}

func TestPredicate_RejectsLiteralSubject(t *testing.T) {
	_, err := Predicate(Literal{V: 1}, OpEq, Literal{V: 1})
	assert.Error(t, err)
}

func TestScope_RejectsSortAndWindow(t *testing.T) {
	s := &Scope{Clause: &Clause{}, Backend: "sql"}

	for _, err := range []error{
		s.OrderBy(Column("a"), Asc),
		s.Limit(1),
		s.Offset(1),
	} {
		require.Error(t, err)
		assert.True(t, errors.Is(err, qerr.ErrUnsupportedOperation))
	}
}

func TestText(t *testing.T) {
	text, err := Text(Column("t.c"))
	require.NoError(t, err)
	assert.Equal(t, "t.c", text)

	text, err = Text(Raw("LOWER(name)"))
	require.NoError(t, err)
	assert.Equal(t, "LOWER(name)", text)

	_, err = Text(Literal{V: "x"})
	assert.Error(t, err)
}
