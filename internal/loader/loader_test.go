package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querytx/internal/filter"
)

func scenarioFilter() *filter.Filter {
	return filter.New().
		Where(
			filter.Where("foo", filter.EQ, "bar").Or(
				filter.Where("bar", filter.LT, 15).And(
					filter.Where("cat", filter.NEQ, "catlab"),
				),
			),
		).
		OrderBy(filter.On(filter.Table("users"), "name"), filter.DESC).
		OrderBy(filter.Raw("LENGTH(title)"), "").
		Take(10).
		Skip(20)
}

func TestLoad_AllFormatsAgree(t *testing.T) {
	for _, name := range []string{"scenario.yaml", "scenario.json", "scenario.cue"} {
		t.Run(name, func(t *testing.T) {
			doc, err := Load(filepath.Join("testdata", name))
			require.NoError(t, err)
			assert.Equal(t, "table", doc.Table)

			f, err := doc.Filter()
			require.NoError(t, err)
			assert.Equal(t, scenarioFilter(), f)
		})
	}
}

func TestLoad_RawAndAliases(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "raw.yaml"))
	require.NoError(t, err)

	f, err := doc.Filter()
	require.NoError(t, err)

	want := filter.New().Where(
		filter.Compare(filter.Raw("LOWER(email)"), filter.SEARCH, filter.Raw("'%@example.com'")),
		filter.Compare(filter.Col("status"), filter.NEQ, filter.Lit("closed")),
		filter.Group().
			Or(filter.Compare(filter.Col("priority"), filter.GTE, filter.Lit(2.5))).
			And(filter.Compare(filter.Col("owner"), "BETWEEN", filter.Lit(nil))),
	)
	assert.Equal(t, want, f)

	// BETWEEN is kept for validation to report.
	result := filter.Validate(f)
	assert.False(t, result.Valid)
	assert.Len(t, result.Problems, 1)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "typo.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "childern")

	_, err = Decode([]byte(`{"where": [], "limt": {"amount": 1}}`), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limt")
}

func TestLoad_NonConcreteCUE(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "incomplete.cue"))
	require.Error(t, err)

	var posErr *PositionError
	require.True(t, errors.As(err, &posErr), err.Error())
	assert.True(t, posErr.Pos.IsValid())
}

func TestLoad_FileErrors(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = Load("filter.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".toml")
}

func TestFormatOf(t *testing.T) {
	testCases := []struct {
		path string
		want Format
	}{
		{"a.yaml", FormatYAML},
		{"a.YML", FormatYAML},
		{"dir/a.json", FormatJSON},
		{"a.cue", FormatCUE},
	}
	for _, tc := range testCases {
		got, err := FormatOf(tc.path)
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.want, got, tc.path)
	}
}

func TestDocument_StructuralErrors(t *testing.T) {
	raw := "x"

	testCases := []struct {
		name string
		doc  Document
		want string
	}{
		{
			name: "column and raw",
			doc:  Document{Where: []ConditionDoc{{Column: "a", Raw: "b", Op: "EQ"}}},
			want: "where[0]: column and raw are mutually exclusive",
		},
		{
			name: "no subject",
			doc:  Document{Where: []ConditionDoc{{Op: "EQ", Value: 1}}},
			want: "where[0]: column or raw is required",
		},
		{
			name: "value and raw value",
			doc:  Document{Where: []ConditionDoc{{Column: "a", Op: "EQ", Value: 1, RawValue: &raw}}},
			want: "where[0]: value and raw_value are mutually exclusive",
		},
		{
			name: "comparison without op",
			doc: Document{Where: []ConditionDoc{{
				Children: []ConditionDoc{{Join: "OR", Column: "a", Value: 1}},
			}}},
			want: "where[0].or[0]: comparison without op",
		},
		{
			name: "entity on raw sort",
			doc:  Document{Sort: []SortDoc{{Raw: "RANDOM()", Entity: "users"}}},
			want: "sort[0]: entity cannot qualify a raw subject",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.doc.Filter()
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestDocument_EmptyLimitIsNoop(t *testing.T) {
	f, err := (&Document{Limit: &LimitDoc{}}).Filter()
	require.NoError(t, err)
	assert.Equal(t, &filter.Limit{}, f.Limit)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 7, normalize(int64(7)))
	assert.Equal(t, "x", normalize("x"))
	assert.Nil(t, normalize(nil))
}
