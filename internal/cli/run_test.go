package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querytx/internal/testutil"
)

func TestRun_Backends(t *testing.T) {
	db := testutil.PeopleDB(t)

	tests := []struct {
		backend string
		file    string
		want    []float64
	}{
		{"sql", "testdata/people.yaml", []float64{3, 1}},
		{"orm", "testdata/people.yaml", []float64{3, 1}},
		{"memory", "testdata/sorted.yaml", []float64{3, 2, 4}},
		{"sql", "testdata/sorted.yaml", []float64{3, 2, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.backend+"/"+filepath.Base(tt.file), func(t *testing.T) {
			out, err := execute(t, "run", "--db", db, "--backend", tt.backend, "--format", "json", tt.file)
			require.NoError(t, err)

			var resp struct {
				Data struct {
					Count int              `json:"count"`
					Rows  []map[string]any `json:"rows"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, len(tt.want), resp.Data.Count)

			ids := make([]float64, len(resp.Data.Rows))
			for i, row := range resp.Data.Rows {
				ids[i], _ = row["id"].(float64)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestRun_TextTable(t *testing.T) {
	db := testutil.PeopleDB(t)

	out, err := execute(t, "run", "--db", db, "testdata/people.yaml")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"age", "city", "id", "name"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"41", "lima", "3", "bob"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"41", "oslo", "1", "carol"}, strings.Fields(lines[2]))
}

func TestRun_MemoryCollation(t *testing.T) {
	db := testutil.PeopleDB(t)
	doc := filepath.Join(t.TempDir(), "names.yaml")
	require.NoError(t, os.WriteFile(doc, []byte("table: people\nsort:\n  - column: name\n"), 0o644))

	out, err := execute(t, "run", "--db", db, "--backend", "memory", "--collate", "en", doc)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[1], "alice")
	assert.Contains(t, lines[5], "erin")
}

func TestRun_DBFromEnv(t *testing.T) {
	t.Setenv("QUERYTX_DB", testutil.PeopleDB(t))

	out, err := execute(t, "run", "--format", "json", "testdata/people.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, `"count":2`)
}

func TestRun_Errors(t *testing.T) {
	db := testutil.PeopleDB(t)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"missing db", []string{"testdata/people.yaml"}, ErrCodeGeneric},
		{"memory rejects predicates", []string{"--db", db, "--backend", "memory", "testdata/people.yaml"}, "UNSUPPORTED_OPERATION"},
		{"unknown table", []string{"--db", db, "--table", "nope", "testdata/people.yaml"}, ErrCodeDatabase},
		{"bad collation", []string{"--db", db, "--backend", "memory", "--collate", "not a tag!", "testdata/sorted.yaml"}, ErrCodeGeneric},
		{"unknown backend", []string{"--db", db, "--backend", "redis", "testdata/people.yaml"}, ErrCodeGeneric},
		{"load failure", []string{"--db", db, "testdata/broken.yaml"}, ErrCodeLoad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"run", "--format", "json"}, tt.args...)
			out, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}
