package sqlparse

import "unicode"

// Dialect configures the lexical rules for identifiers.
//
// The grammar is shared by every dialect; only the set of characters that
// may start or continue an unquoted identifier changes.
type Dialect interface {
	// Name identifies the dialect in logs and error messages.
	Name() string
	// IsIdentifierStart reports whether r may begin an unquoted identifier.
	IsIdentifierStart(r rune) bool
	// IsIdentifierPart reports whether r may continue an unquoted identifier.
	IsIdentifierPart(r rune) bool
}

// GenericDialect accepts standard SQL identifiers: a letter or underscore
// followed by letters, digits and underscores.
type GenericDialect struct{}

// Name returns "generic".
func (GenericDialect) Name() string { return "generic" }

// IsIdentifierStart reports whether r is a letter or underscore.
func (GenericDialect) IsIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

// IsIdentifierPart reports whether r is a letter, digit or underscore.
func (GenericDialect) IsIdentifierPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// PathDialect extends GenericDialect so that file paths and URLs can be
// written as bare identifiers:
//
//	SELECT * FROM ./data/people.csv
//	SELECT * FROM https://example.com/exports/people.csv
//
// Identifiers may start with '.' or '/' and contain '.', '/', ':', '-' and
// '~'. A leading '.' or '/' only starts an identifier when the next
// character continues it, so "a / b" still lexes as a division.
type PathDialect struct{}

// Name returns "path".
func (PathDialect) Name() string { return "path" }

// IsIdentifierStart reports whether r may begin a path-like identifier.
func (PathDialect) IsIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '.' || r == '/'
}

// IsIdentifierPart reports whether r may continue a path-like identifier.
func (PathDialect) IsIdentifierPart(r rune) bool {
	switch r {
	case '_', '.', '/', ':', '-', '~':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
