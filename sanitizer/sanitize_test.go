package sanitizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"go.nhat.io/otelquery/sanitizer"
)

func TestSanitize_GenericSQL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		scenario string
		query    string
		expected string
	}{
		{
			scenario: "empty",
			query:    "",
			expected: "",
		},
		{
			scenario: "no literal",
			query:    "SELECT * FROM users",
			expected: "SELECT * FROM users",
		},
		{
			scenario: "number",
			query:    "SELECT * FROM table WHERE id = 42",
			expected: "SELECT * FROM table WHERE id = ?",
		},
		{
			scenario: "escaped quote",
			query:    "SELECT * FROM table WHERE name = 'O''Reilly'",
			expected: "SELECT * FROM table WHERE name = ?",
		},
		{
			scenario: "literal size is not observable",
			query:    "SELECT 'a', 'a very long string literal'",
			expected: "SELECT ?, ?",
		},
		{
			scenario: "block comment",
			query:    "SELECT * /* comment */ FROM table",
			expected: "SELECT *  FROM table",
		},
		{
			scenario: "line comment",
			query:    "SELECT * FROM table -- trailing comment\nWHERE id = 1",
			expected: "SELECT * FROM table \nWHERE id = ?",
		},
		{
			scenario: "unterminated string",
			query:    "SELECT * FROM t WHERE name = 'abc",
			expected: "SELECT * FROM t WHERE name = ?",
		},
		{
			scenario: "unterminated quoted identifier does not hide later literals",
			query:    "SELECT \"abc FROM t WHERE pass = 'secret'",
			expected: "SELECT \"abc FROM t WHERE pass = ?",
		},
		{
			scenario: "unterminated bracket identifier does not hide later literals",
			query:    "SELECT [abc FROM t WHERE pass = 'secret' AND id = 7",
			expected: "SELECT [abc FROM t WHERE pass = ? AND id = ?",
		},
		{
			scenario: "array literal",
			query:    "SELECT * FROM t WHERE id = ANY(ARRAY[1,2,3])",
			expected: "SELECT * FROM t WHERE id = ANY(ARRAY[?,?,?])",
		},
		{
			scenario: "subscript",
			query:    "SELECT tags[2] FROM t",
			expected: "SELECT tags[?] FROM t",
		},
		{
			scenario: "bracket list after an operator",
			query:    "SELECT * FROM t WHERE data @> ['a', 1]",
			expected: "SELECT * FROM t WHERE data @> [?, ?]",
		},
		{
			scenario: "bracket quoted identifier",
			query:    "SELECT [order id] FROM [my table] WHERE x = 1",
			expected: "SELECT [order id] FROM [my table] WHERE x = ?",
		},
		{
			scenario: "minus after NULL is an operator",
			query:    "SELECT NULL -3",
			expected: "SELECT NULL -?",
		},
		{
			scenario: "unterminated block comment",
			query:    "SELECT /* x",
			expected: "SELECT ",
		},
		{
			scenario: "minus operator",
			query:    "SELECT a-1, b - 2 FROM t",
			expected: "SELECT a-?, b - ? FROM t",
		},
		{
			scenario: "negative number",
			query:    "SELECT * FROM t WHERE a = -1",
			expected: "SELECT * FROM t WHERE a = ?",
		},
		{
			scenario: "hex and exponent",
			query:    "SELECT * FROM t WHERE x = 0xFF AND y = 1.5e3",
			expected: "SELECT * FROM t WHERE x = ? AND y = ?",
		},
		{
			scenario: "dollar quoted string",
			query:    "SELECT $$ secret $$",
			expected: "SELECT ?",
		},
		{
			scenario: "placeholders are kept",
			query:    "SELECT * FROM t WHERE a = $1 AND b = ?",
			expected: "SELECT * FROM t WHERE a = $1 AND b = ?",
		},
		{
			scenario: "quoted identifiers are kept",
			query:    `SELECT "name", [id] FROM t`,
			expected: `SELECT "name", [id] FROM t`,
		},
		{
			scenario: "in list",
			query:    "SELECT * FROM table WHERE id IN (1, 2, 3, 4, 5)",
			expected: "SELECT * FROM table WHERE id IN (?)",
		},
		{
			scenario: "lower case in list",
			query:    "select * from t where id in ('a','b')",
			expected: "select * from t where id in (?)",
		},
		{
			scenario: "not in list",
			query:    "SELECT * FROM t WHERE id NOT IN (1,2)",
			expected: "SELECT * FROM t WHERE id NOT IN (?)",
		},
		{
			scenario: "in list of placeholders",
			query:    "SELECT * FROM t WHERE id IN ($1, $2, ?)",
			expected: "SELECT * FROM t WHERE id IN (?)",
		},
		{
			scenario: "in list with a comment",
			query:    "SELECT * FROM t WHERE id IN (1, /* two */ 2)",
			expected: "SELECT * FROM t WHERE id IN (?)",
		},
		{
			scenario: "comment between in and the list",
			query:    "SELECT * FROM t WHERE id IN /* c */ (1)",
			expected: "SELECT * FROM t WHERE id IN  (?)",
		},
		{
			scenario: "empty in list",
			query:    "SELECT * FROM t WHERE id IN ()",
			expected: "SELECT * FROM t WHERE id IN ()",
		},
		{
			scenario: "in list with an identifier",
			query:    "SELECT * FROM t WHERE id IN (1, b)",
			expected: "SELECT * FROM t WHERE id IN (?, b)",
		},
		{
			scenario: "in list with nested groups",
			query:    "SELECT * FROM t WHERE (a, b) IN ((1, 2), (3, 4))",
			expected: "SELECT * FROM t WHERE (a, b) IN ((?, ?), (?, ?))",
		},
		{
			scenario: "in sub-select",
			query:    "SELECT * FROM t WHERE id IN (SELECT id FROM u WHERE x IN (1, 2))",
			expected: "SELECT * FROM t WHERE id IN (SELECT id FROM u WHERE x IN (?))",
		},
		{
			scenario: "multiple in lists",
			query:    "SELECT * FROM t WHERE a IN (1, 2) AND b IN ('x')",
			expected: "SELECT * FROM t WHERE a IN (?) AND b IN (?)",
		},
		{
			scenario: "unterminated in list",
			query:    "SELECT * FROM t WHERE id IN (1, 2",
			expected: "SELECT * FROM t WHERE id IN (?, ?",
		},
		{
			scenario: "in without a list",
			query:    "SELECT * FROM t WHERE id IN",
			expected: "SELECT * FROM t WHERE id IN",
		},
		{
			scenario: "identifier named like in",
			query:    "SELECT inside FROM t WHERE x = (1, 2)",
			expected: "SELECT inside FROM t WHERE x = (?, ?)",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.scenario, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, sanitized(sanitizer.GenericSQL, tc.query))
		})
	}
}

func TestSanitize_PipeQuery(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		scenario string
		query    string
		expected string
	}{
		{
			scenario: "literals",
			query:    "T | where name == 'secret' and n > 10",
			expected: "T | where name == ? and n > ?",
		},
		{
			scenario: "escaped quote",
			query:    `T | where name == "a\"b"`,
			expected: "T | where name == ?",
		},
		{
			scenario: "verbatim string",
			query:    `T | where path == @'c:\x'`,
			expected: "T | where path == ?",
		},
		{
			scenario: "timespan",
			query:    "T | where ts > ago(1d) // last day",
			expected: "T | where ts > ago(?) ",
		},
		{
			scenario: "in list",
			query:    "T | where x in (1, 2, 3)",
			expected: "T | where x in (?)",
		},
		{
			scenario: "not in list",
			query:    "T | where x !in ('a', 'b')",
			expected: "T | where x !in (?)",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.scenario, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, sanitized(sanitizer.PipeQuery, tc.query))
		})
	}
}

func TestSanitize_NestedParentheses(t *testing.T) {
	t.Parallel()

	query := "SELECT * FROM t WHERE id IN " + strings.Repeat("(", 10) + "1" + strings.Repeat(")", 10)

	actual := sanitized(sanitizer.GenericSQL, query)

	assert.NotEmpty(t, actual)
	assert.NotContains(t, actual, "1")
	assert.Equal(t, "SELECT * FROM t WHERE id IN "+strings.Repeat("(", 9)+"(?)"+strings.Repeat(")", 9), actual)
}

func TestSanitize_InListCollapsesToOnePlaceholder(t *testing.T) {
	t.Parallel()

	actual := sanitized(sanitizer.GenericSQL, "SELECT * FROM table WHERE id IN (1, 2, 3, 4, 5)")

	assert.Equal(t, 1, strings.Count(actual, "?"))
}
