package lexer

// GenericSQL is the profile for SQL-like query text.
var GenericSQL = NewProfile(ProfileConfig{
	Profile: Profile{
		Name:              "sql",
		LineComment:       "--",
		BlockCommentStart: "/*",
		BlockCommentEnd:   "*/",
		Quotes:            "'",
		Escape:            EscapeDoubled,
		IdentifierQuotes: []QuotePair{
			{Open: '"', Close: '"'},
			{Open: '`', Close: '`'},
			{Open: '[', Close: ']', Bracket: true},
		},
		PlaceholderPrefix: '$',
		Hex:               true,
		Exponent:          true,
	},
	Keywords: []string{
		"ADD", "ALL", "AND", "ANY", "AS", "ASC", "BETWEEN", "BY", "CASE", "CAST", "COLUMN", "CONSTRAINT",
		"CROSS", "DEFAULT", "DESC", "DISTINCT", "ELSE", "END", "EXCEPT", "EXISTS", "FALSE", "FETCH", "FOR",
		"FOREIGN", "FULL", "GROUP", "HAVING", "IF", "IN", "INNER", "INTERSECT", "IS", "KEY", "LEFT", "LIKE",
		"LIMIT", "NOT", "NULL", "OFFSET", "ON", "OR", "ORDER", "OUTER", "PRIMARY", "REFERENCES", "RETURNING",
		"RIGHT", "SET", "THEN", "TOP", "TRUE", "UNION", "UNIQUE", "USING", "VALUES", "WHEN", "WHERE", "WITH",
	},
	Operations: []string{
		"ALTER", "BEGIN", "CALL", "COMMIT", "CREATE", "DELETE", "DESCRIBE", "DROP", "EXEC", "EXECUTE",
		"EXPLAIN", "GRANT", "INSERT", "MERGE", "RELEASE", "RENAME", "REPLACE", "REVOKE", "ROLLBACK", "SAVEPOINT",
		"SELECT", "SHOW", "TRUNCATE", "UPDATE", "UPSERT", "USE",
	},
	ObjectTypes: []string{
		"DATABASE", "FUNCTION", "INDEX", "PROCEDURE", "SCHEMA", "SEQUENCE", "TABLE", "TRIGGER", "VIEW",
	},
	Targets: []string{
		"CALL", "EXEC", "EXECUTE", "FROM", "INTO", "JOIN", "TABLE", "UPDATE",
	},
	Modifiers: []string{
		"EXISTS", "IF", "LATERAL", "NOT", "ONLY",
	},
})

// PipeQuery is the profile for pipe-based query languages such as KQL.
var PipeQuery = NewProfile(ProfileConfig{
	Profile: Profile{
		Name:           "pipe",
		LineComment:    "//",
		Quotes:         `'"`,
		Escape:         EscapeBackslash,
		VerbatimPrefix: '@',
		Hex:            true,
		Exponent:       true,
		NumericSuffix:  true,
	},
	Keywords: []string{
		"and", "asc", "between", "by", "contains", "desc", "false", "has", "in", "kind", "let", "not", "null",
		"on", "or", "step", "true", "with",
	},
	Targets: []string{
		"join", "lookup", "union",
	},
	PipeOperators: []string{
		"as", "count", "distinct", "evaluate", "extend", "facet", "getschema", "invoke", "join", "limit",
		"lookup", "order", "parse", "project", "render", "sample", "search", "serialize", "sort",
		"summarize", "take", "top", "union", "where",
	},
	Modifiers: []string{
		"fullouter", "inner", "innerunique", "kind", "leftanti", "leftouter", "leftsemi", "rightanti",
		"rightouter", "rightsemi",
	},
})
