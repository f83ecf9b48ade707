package sqlparse

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// lookahead bounds how far the parser backtracks between alternatives.
const lookahead = 64

// ParseError reports malformed SQL with the position of the offending token.
type ParseError struct {
	Pos     lexer.Position
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Pos.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parser parses SQL under a fixed Dialect. It is safe for concurrent use.
type Parser struct {
	dialect Dialect
	grammar *participle.Parser[Script]
}

// NewParser builds a parser for d.
func NewParser(d Dialect) (*Parser, error) {
	grammar, err := participle.Build[Script](
		participle.Lexer(lexerDefinition{dialect: d}),
		participle.UseLookahead(lookahead),
	)
	if err != nil {
		return nil, fmt.Errorf("building %s grammar: %w", d.Name(), err)
	}
	return &Parser{dialect: d, grammar: grammar}, nil
}

// Dialect returns the dialect the parser was built with.
func (p *Parser) Dialect() Dialect { return p.dialect }

// Parse parses sql into its statements. Empty statements between
// semicolons are skipped, so the result may be empty.
func (p *Parser) Parse(sql string) ([]*Statement, error) {
	if err := ValidateQuery(sql); err != nil {
		return nil, &ParseError{Message: err.Error(), Err: err}
	}

	tokens, err := Tokenize(p.dialect, sql)
	if err != nil {
		return nil, asParseError(err)
	}
	if err := ValidateTokens(tokens); err != nil {
		return nil, &ParseError{Message: err.Error(), Err: err}
	}

	script, err := p.grammar.ParseString("", sql)
	if err != nil {
		return nil, asParseError(err)
	}
	return script.Statements, nil
}

// Parse parses sql under d. Callers parsing many queries should build a
// Parser once with NewParser.
func Parse(d Dialect, sql string) ([]*Statement, error) {
	p, err := NewParser(d)
	if err != nil {
		return nil, err
	}
	return p.Parse(sql)
}

func asParseError(err error) *ParseError {
	var perr *ParseError
	if errors.As(err, &perr) {
		return perr
	}
	var gerr participle.Error
	if errors.As(err, &gerr) {
		return &ParseError{Pos: gerr.Position(), Message: gerr.Message(), Err: err}
	}
	return &ParseError{Message: err.Error(), Err: err}
}
