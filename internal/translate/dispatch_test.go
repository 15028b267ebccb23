package translate

import (
	"errors"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/roach88/querytx/internal/backend/collection"
	"github.com/roach88/querytx/internal/backend/mongoq"
	"github.com/roach88/querytx/internal/backend/sqlbuilder"
	"github.com/roach88/querytx/internal/filter"
	"github.com/roach88/querytx/internal/qerr"
)

func TestFor_KnownTargets(t *testing.T) {
	q := sq.Select("*").From("t")
	a, err := For(&q)
	require.NoError(t, err)
	assert.IsType(t, &sqlbuilder.Adapter{}, a)

	rows := []collection.Record{}
	a, err = For(&rows)
	require.NoError(t, err)
	assert.IsType(t, &collection.Adapter{}, a)

	m := mongoq.New()
	a, err = For(m)
	require.NoError(t, err)
	assert.Same(t, m, a)
}

func TestFor_Unsupported(t *testing.T) {
	var nilBuilder *sq.SelectBuilder
	var nilRelation *gorm.DB
	var nilQuery *mongoq.Query
	var nilAdapter *collection.Adapter

	testCases := []struct {
		name   string
		target any
	}{
		{"nil", nil},
		{"string", "SELECT 1"},
		{"builder by value", sq.Select("*")},
		{"nil builder", nilBuilder},
		{"nil relation", &nilRelation},
		{"plain slice", []collection.Record{}},
		{"map slice", &[]map[string]any{}},
		{"nil mongo query", nilQuery},
		{"nil adapter", nilAdapter},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := For(tc.target)

			require.Error(t, err)
			assert.Nil(t, a)
			assert.True(t, errors.Is(err, qerr.ErrUnsupportedBackend), err.Error())
		})
	}
}

func TestApply_NilAdapterFailsInsteadOfPanicking(t *testing.T) {
	f := filter.New().Where(filter.Where("a", filter.EQ, 1)).Take(1)

	var q *mongoq.Query
	err := Apply(q, f)

	require.Error(t, err)
	assert.Equal(t, qerr.CodeUnsupportedBackend, qerr.CodeOf(err))
}

func TestApply_UnsupportedBackendTouchesNothing(t *testing.T) {
	q := sq.Select("*").From("t")
	err := Apply(q, scenario())

	require.Error(t, err)
	assert.Equal(t, qerr.CodeUnsupportedBackend, qerr.CodeOf(err))

	sql, _, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t", sql)
}

func TestApply_Collection(t *testing.T) {
	rows := []collection.Record{
		{"id": 1, "name": "carol"},
		{"id": 2, "name": "alice"},
		{"id": 3, "name": "bob"},
	}
	f := filter.New().OrderBy(filter.Col("name"), filter.ASC).Take(2)

	require.NoError(t, Apply(&rows, f))
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0]["name"])
	assert.Equal(t, "bob", rows[1]["name"])
}

func TestApply_CollectionRejectsPredicates(t *testing.T) {
	rows := []collection.Record{{"id": 1}}
	err := Apply(&rows, filter.New().Where(filter.Where("id", filter.EQ, 1)))

	require.Error(t, err)
	assert.True(t, errors.Is(err, qerr.ErrUnsupportedOperation))
	assert.Contains(t, err.Error(), "where[0]: ")
}

func TestApply_CollectionRejectsGroups(t *testing.T) {
	rows := []collection.Record{{"id": 1}}
	f := filter.New().Where(filter.Group().Or(filter.Where("id", filter.EQ, 1)))
	err := Apply(&rows, f)

	require.Error(t, err)
	assert.True(t, errors.Is(err, qerr.ErrUnsupportedOperation))
	assert.Contains(t, err.Error(), "where[0].or[0]: ")
}

func TestApply_MongoNeedsNoCoreChange(t *testing.T) {
	m := mongoq.New()
	require.NoError(t, Apply(m, scenario()))

	want := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "foo", Value: bson.D{{Key: "$eq", Value: "bar"}}}},
		bson.D{{Key: "$and", Value: bson.A{
			bson.D{{Key: "bar", Value: bson.D{{Key: "$lt", Value: 15}}}},
			bson.D{{Key: "cat", Value: bson.D{{Key: "$ne", Value: "catlab"}}}},
		}}},
	}}}
	assert.Equal(t, want, m.Filter())
}
