package sqlparse

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// Validation limits to prevent resource exhaustion on hostile input.
const (
	// MaxQueryLength is the maximum allowed query string length (1MB)
	MaxQueryLength = 1024 * 1024

	// MaxTokens is the maximum number of tokens in a query
	MaxTokens = 10000

	// MaxNestingDepth is the maximum parenthesis nesting depth
	MaxNestingDepth = 100

	// MaxIdentifierLength is the maximum length for an identifier.
	// Long enough for file paths and URLs.
	MaxIdentifierLength = 4096
)

var (
	// ErrQueryTooLong is returned when query exceeds MaxQueryLength
	ErrQueryTooLong = errors.New("query too long")

	// ErrTooManyTokens is returned when query has too many tokens
	ErrTooManyTokens = errors.New("too many tokens in query")

	// ErrNestingTooDeep is returned when parentheses nest beyond MaxNestingDepth
	ErrNestingTooDeep = errors.New("expression nesting too deep")

	// ErrIdentifierTooLong is returned when an identifier exceeds MaxIdentifierLength
	ErrIdentifierTooLong = errors.New("identifier too long")
)

// ValidateQuery checks the raw query text.
func ValidateQuery(query string) error {
	if len(query) > MaxQueryLength {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrQueryTooLong, len(query), MaxQueryLength)
	}
	return nil
}

// ValidateTokens checks token count, identifier lengths and nesting depth.
func ValidateTokens(tokens []lexer.Token) error {
	if len(tokens) > MaxTokens {
		return fmt.Errorf("%w: %d tokens (max %d)", ErrTooManyTokens, len(tokens), MaxTokens)
	}

	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case Ident, QuotedIdent:
			if len(tok.Value) > MaxIdentifierLength {
				return fmt.Errorf("%w: %d chars (max %d)", ErrIdentifierTooLong, len(tok.Value), MaxIdentifierLength)
			}
		case Operator:
			switch tok.Value {
			case "(":
				depth++
				if depth > MaxNestingDepth {
					return fmt.Errorf("%w: %d (max %d)", ErrNestingTooDeep, depth, MaxNestingDepth)
				}
			case ")":
				depth--
			}
		}
	}
	return nil
}
