package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "querytx", cmd.Use)
	assert.Contains(t, cmd.Long, "condition trees")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"render", "validate", "run"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestRenderCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	renderCmd, _, err := cmd.Find([]string{"render"})
	require.NoError(t, err)

	tests := map[string]string{"backend": "sql", "dialect": "question", "table": ""}
	for name, def := range tests {
		flag := renderCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, def, flag.DefValue, name)
	}
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	dbFlag := runCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	// --db is required, so default is empty
	assert.Equal(t, "", dbFlag.DefValue)

	backendFlag := runCmd.Flags().Lookup("backend")
	require.NotNil(t, backendFlag)
	assert.Equal(t, "sql", backendFlag.DefValue)

	require.NotNil(t, runCmd.Flags().Lookup("collate"))
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "validate", "testdata/people.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestFormatFromEnv(t *testing.T) {
	t.Setenv("QUERYTX_FORMAT", "json")

	out, err := execute(t, "validate", "testdata/people.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, `"status":"ok"`)
}

func TestVerboseLogsToStderr(t *testing.T) {
	cmd := NewRootCommand()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"-v", "validate", "testdata/people.yaml"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "✓ Filter valid")
	assert.NotContains(t, stdout.String(), `"msg"`)
	assert.Contains(t, stderr.String(), `"msg":"loading filter"`)
	assert.Contains(t, stderr.String(), `"command":"validate"`)
}

func TestQuietByDefault(t *testing.T) {
	cmd := NewRootCommand()
	stderr := &bytes.Buffer{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"validate", "testdata/people.yaml"})

	require.NoError(t, cmd.Execute())
	assert.Empty(t, stderr.String())
}
