package cli_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.nhat.io/otelquery"
	"go.nhat.io/otelquery/internal/cli"
	testassert "go.nhat.io/otelquery/internal/test/assert"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := cli.NewRootCmd()

	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func TestSanitizeCommand_Text(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		scenario string
		stdin    string
		args     []string
		expected string
	}{
		{
			scenario: "from args",
			args:     []string{"sanitize", "SELECT * FROM users WHERE id = 42", "UPDATE t SET a = 1 WHERE b = 2"},
			expected: "SELECT * FROM users WHERE id = ?\tSELECT users\nUPDATE t SET a = ? WHERE b = ?\tUPDATE t\n",
		},
		{
			scenario: "from stdin, blank lines are skipped",
			stdin:    "SELECT * FROM users WHERE id = 42\n\n   \nDELETE FROM t WHERE id = $1\n",
			args:     []string{"sanitize"},
			expected: "SELECT * FROM users WHERE id = ?\tSELECT users\nDELETE FROM t WHERE id = $1\tDELETE t\n",
		},
		{
			scenario: "custom delimiter",
			stdin:    "SELECT * FROM users WHERE id = 42;\nDELETE FROM t WHERE id = 7;",
			args:     []string{"sanitize", "--delimiter", ";"},
			expected: "SELECT * FROM users WHERE id = ?\tSELECT users\nDELETE FROM t WHERE id = ?\tDELETE t\n",
		},
		{
			scenario: "sanitize only",
			args:     []string{"sanitize", "--summarize=false", "SELECT * FROM users WHERE id = 42"},
			expected: "SELECT * FROM users WHERE id = ?\n",
		},
		{
			scenario: "summarize only",
			args:     []string{"sanitize", "--sanitize=false", "SELECT * FROM users WHERE id = 42"},
			expected: "SELECT users\n",
		},
		{
			scenario: "pipe dialect",
			args:     []string{"sanitize", "--dialect", "pipe", "Users | where id == 42"},
			expected: "Users | where id == ?\tUsers WHERE\n",
		},
		{
			scenario: "no input",
			args:     []string{"sanitize"},
			expected: "",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.scenario, func(t *testing.T) {
			t.Parallel()

			stdout, _, err := execute(t, tc.stdin, tc.args...)
			require.NoError(t, err)

			assert.Equal(t, tc.expected, stdout)
		})
	}
}

func TestSanitizeCommand_JSON(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "", "sanitize", "-o", "json",
		"SELECT * FROM users WHERE name = '<admin>'",
		"DELETE FROM t WHERE id = 7",
	)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	require.Len(t, lines, 2)

	testassert.EqualJSON(`{
		"query": "SELECT * FROM users WHERE name = '<admin>'",
		"sanitized": "SELECT * FROM users WHERE name = ?",
		"summary": "SELECT users"
	}`)(t, lines[0])

	testassert.EqualJSON(`{
		"query": "DELETE FROM t WHERE id = 7",
		"sanitized": "DELETE FROM t WHERE id = ?",
		"summary": "DELETE t"
	}`)(t, lines[1])

	assert.Contains(t, lines[0], "<admin>")
}

func TestSanitizeCommand_JSONOmitsDisabledOutput(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "", "sanitize", "--output=json", "--sanitize=false", "SELECT * FROM users")
	require.NoError(t, err)

	testassert.EqualJSON(`{"query": "SELECT * FROM users", "summary": "SELECT users"}`)(t, stdout)
}

func TestSanitizeCommand_KeepsOrderWithWorkers(t *testing.T) {
	t.Parallel()

	const n = 200

	var (
		stdin    strings.Builder
		expected strings.Builder
	)

	for i := 0; i < n; i++ {
		_, _ = fmt.Fprintf(&stdin, "SELECT * FROM t%d WHERE id = %d\n", i, i)
		_, _ = fmt.Fprintf(&expected, "SELECT * FROM t%d WHERE id = ?\tSELECT t%d\n", i, i)
	}

	stdout, _, err := execute(t, stdin.String(), "sanitize", "--workers", "8")
	require.NoError(t, err)

	assert.Equal(t, expected.String(), stdout)
}

func TestSanitizeCommand_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "queries.sql")

	require.NoError(t, os.WriteFile(path, []byte("SELECT * FROM users WHERE id = 42\n"), 0o600))

	stdout, _, err := execute(t, "SELECT * FROM ignored", "sanitize", "--file", path)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM users WHERE id = ?\tSELECT users\n", stdout)
}

func TestSanitizeCommand_FileNotFound(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "", "sanitize", "--file", filepath.Join(t.TempDir(), "missing.sql"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}

func TestSanitizeCommand_ConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "otelquery.yaml")

	require.NoError(t, os.WriteFile(path, []byte("summarize: false\n"), 0o600))

	stdout, _, err := execute(t, "", "sanitize", "--config", path, "SELECT * FROM users WHERE id = 42")
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM users WHERE id = ?\n", stdout)
}

func TestSanitizeCommand_InvalidConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		scenario string
		args     []string
		expected error
	}{
		{
			scenario: "unknown dialect",
			args:     []string{"sanitize", "--dialect", "cobol", "SELECT 1"},
			expected: cli.ErrUnknownDialect,
		},
		{
			scenario: "unknown output",
			args:     []string{"sanitize", "--output", "xml", "SELECT 1"},
			expected: cli.ErrUnknownOutput,
		},
		{
			scenario: "negative workers",
			args:     []string{"sanitize", "--workers=-1", "SELECT 1"},
			expected: cli.ErrInvalidWorkers,
		},
		{
			scenario: "nothing requested",
			args:     []string{"sanitize", "--sanitize=false", "--summarize=false", "SELECT 1"},
			expected: cli.ErrNothingRequested,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.scenario, func(t *testing.T) {
			t.Parallel()

			stdout, _, err := execute(t, "", tc.args...)

			assert.ErrorIs(t, err, tc.expected)
			assert.Empty(t, stdout)
		})
	}
}

func TestSanitizeCommand_Verbose(t *testing.T) {
	t.Parallel()

	_, stderr, err := execute(t, "", "sanitize", "-v", "SELECT 1")
	require.NoError(t, err)

	assert.Contains(t, stderr, "processing queries")
	assert.Contains(t, stderr, "dialect=sql")
}

func TestSanitizeCommand_Quiet(t *testing.T) {
	t.Parallel()

	_, stderr, err := execute(t, "", "sanitize", "SELECT 1")
	require.NoError(t, err)

	assert.Empty(t, stderr)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "", "version")
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("otelquery v%s\n", otelquery.Version()), stdout)
}

func TestRootCommand_VersionFlag(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "", "--version")
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("otelquery %s\n", otelquery.Version()), stdout)
}
