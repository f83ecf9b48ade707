package sqlparse

import (
	"io"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2/lexer"
)

// Token types produced by the lexer. Values are negative so they never
// collide with participle's own EOF marker.
const (
	Keyword lexer.TokenType = -(iota + 2)
	Ident
	QuotedIdent
	Number
	String
	Operator
)

// keywords are reserved words; any other word lexes as Ident.
var keywords = map[string]bool{
	"SELECT": true, "DISTINCT": true, "ALL": true, "FROM": true,
	"WHERE": true, "GROUP": true, "BY": true, "HAVING": true,
	"ORDER": true, "ASC": true, "DESC": true, "LIMIT": true,
	"OFFSET": true, "AS": true, "AND": true, "OR": true, "NOT": true,
	"IN": true, "IS": true, "NULL": true, "TRUE": true, "FALSE": true,
	"LIKE": true, "ILIKE": true, "BETWEEN": true, "CASE": true,
	"WHEN": true, "THEN": true, "ELSE": true, "END": true, "CAST": true,
	"JOIN": true, "INNER": true, "LEFT": true, "RIGHT": true,
	"FULL": true, "OUTER": true, "CROSS": true, "NATURAL": true,
	"ON": true, "USING": true, "OVER": true, "PARTITION": true,
	"UNION": true, "INTERSECT": true, "EXCEPT": true, "EXISTS": true,
	"INSERT": true, "INTO": true, "VALUES": true, "UPDATE": true,
	"SET": true, "DELETE": true, "CREATE": true, "TABLE": true,
	"DROP": true, "IF": true,
}

// IsKeyword reports whether word is reserved, ignoring case.
func IsKeyword(word string) bool {
	return keywords[strings.ToUpper(word)]
}

// lexerDefinition adapts a Dialect to participle's lexer.Definition.
type lexerDefinition struct {
	dialect Dialect
}

func (d lexerDefinition) Symbols() map[string]lexer.TokenType {
	return map[string]lexer.TokenType{
		"EOF":         lexer.EOF,
		"Keyword":     Keyword,
		"Ident":       Ident,
		"QuotedIdent": QuotedIdent,
		"Number":      Number,
		"String":      String,
		"Operator":    Operator,
	}
}

func (d lexerDefinition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	input, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return d.LexString(filename, string(input))
}

func (d lexerDefinition) LexString(filename string, input string) (lexer.Lexer, error) {
	return newScanner(d.dialect, filename, input), nil
}

// scanner tokenizes SQL text under a Dialect.
type scanner struct {
	dialect Dialect
	input   []rune
	pos     int
	ch      rune
	loc     lexer.Position
}

func newScanner(d Dialect, filename, input string) *scanner {
	s := &scanner{
		dialect: d,
		input:   []rune(input),
		loc:     lexer.Position{Filename: filename, Line: 1, Column: 0},
		pos:     -1,
	}
	s.readChar()
	return s
}

// readChar advances to the next rune, tracking line and column.
func (s *scanner) readChar() {
	if s.pos >= 0 && s.pos < len(s.input) {
		if s.input[s.pos] == '\n' {
			s.loc.Line++
			s.loc.Column = 0
		}
		s.loc.Offset += len(string(s.input[s.pos]))
	}
	s.pos++
	s.loc.Column++
	if s.pos >= len(s.input) {
		s.ch = 0
		return
	}
	s.ch = s.input[s.pos]
}

func (s *scanner) peekChar() rune {
	if s.pos+1 >= len(s.input) {
		return 0
	}
	return s.input[s.pos+1]
}

func (s *scanner) atEOF() bool {
	return s.pos >= len(s.input)
}

// skipWhitespace skips whitespace, "--" line comments and "/* */" block comments.
func (s *scanner) skipWhitespace() error {
	for !s.atEOF() {
		switch {
		case unicode.IsSpace(s.ch):
			s.readChar()
		case s.ch == '-' && s.peekChar() == '-':
			for !s.atEOF() && s.ch != '\n' {
				s.readChar()
			}
		case s.ch == '/' && s.peekChar() == '*':
			start := s.loc
			s.readChar()
			s.readChar()
			for !(s.ch == '*' && s.peekChar() == '/') {
				if s.atEOF() {
					return &ParseError{Pos: start, Message: "unterminated block comment"}
				}
				s.readChar()
			}
			s.readChar()
			s.readChar()
		default:
			return nil
		}
	}
	return nil
}

// readQuoted reads a quoted run; a doubled quote is an escaped quote.
func (s *scanner) readQuoted(quote rune) (string, bool) {
	var result strings.Builder
	s.readChar() // opening quote
	for {
		if s.atEOF() {
			return result.String(), false
		}
		if s.ch == quote {
			if s.peekChar() == quote {
				result.WriteRune(quote)
				s.readChar()
				s.readChar()
				continue
			}
			s.readChar() // closing quote
			return result.String(), true
		}
		result.WriteRune(s.ch)
		s.readChar()
	}
}

// readNumber reads digits with an optional fraction and exponent.
func (s *scanner) readNumber() string {
	var result strings.Builder
	for unicode.IsDigit(s.ch) {
		result.WriteRune(s.ch)
		s.readChar()
	}
	if s.ch == '.' && unicode.IsDigit(s.peekChar()) {
		result.WriteRune(s.ch)
		s.readChar()
		for unicode.IsDigit(s.ch) {
			result.WriteRune(s.ch)
			s.readChar()
		}
	}
	if s.ch == 'e' || s.ch == 'E' {
		next := s.peekChar()
		if unicode.IsDigit(next) || next == '+' || next == '-' {
			result.WriteRune(s.ch)
			s.readChar()
			if s.ch == '+' || s.ch == '-' {
				result.WriteRune(s.ch)
				s.readChar()
			}
			for unicode.IsDigit(s.ch) {
				result.WriteRune(s.ch)
				s.readChar()
			}
		}
	}
	return result.String()
}

// startsIdentifier reports whether the current rune begins an unquoted identifier.
func (s *scanner) startsIdentifier() bool {
	if !s.dialect.IsIdentifierStart(s.ch) {
		return false
	}
	if unicode.IsLetter(s.ch) || s.ch == '_' {
		return true
	}
	next := s.peekChar()
	return next != 0 && !unicode.IsSpace(next) && s.dialect.IsIdentifierPart(next)
}

func (s *scanner) readIdentifier() string {
	var result strings.Builder
	result.WriteRune(s.ch)
	s.readChar()
	for !s.atEOF() && s.dialect.IsIdentifierPart(s.ch) {
		result.WriteRune(s.ch)
		s.readChar()
	}
	return result.String()
}

// Next returns the next token.
func (s *scanner) Next() (lexer.Token, error) {
	if err := s.skipWhitespace(); err != nil {
		return lexer.Token{}, err
	}

	pos := s.loc
	if s.atEOF() {
		return lexer.Token{Type: lexer.EOF, Pos: pos}, nil
	}

	switch s.ch {
	case '\'':
		value, ok := s.readQuoted('\'')
		if !ok {
			return lexer.Token{}, &ParseError{Pos: pos, Message: "unterminated string literal"}
		}
		return lexer.Token{Type: String, Value: value, Pos: pos}, nil
	case '"', '`':
		value, ok := s.readQuoted(s.ch)
		if !ok {
			return lexer.Token{}, &ParseError{Pos: pos, Message: "unterminated quoted identifier"}
		}
		return lexer.Token{Type: QuotedIdent, Value: value, Pos: pos}, nil
	case '<':
		if s.peekChar() == '>' || s.peekChar() == '=' {
			return s.operator(pos, 2), nil
		}
		return s.operator(pos, 1), nil
	case '>':
		if s.peekChar() == '=' {
			return s.operator(pos, 2), nil
		}
		return s.operator(pos, 1), nil
	case '!':
		if s.peekChar() == '=' {
			return s.operator(pos, 2), nil
		}
	case '|':
		if s.peekChar() == '|' {
			return s.operator(pos, 2), nil
		}
	case '=', '+', '-', '*', '%', '(', ')', ',', ';':
		return s.operator(pos, 1), nil
	}

	if unicode.IsDigit(s.ch) {
		return lexer.Token{Type: Number, Value: s.readNumber(), Pos: pos}, nil
	}
	if s.startsIdentifier() {
		word := s.readIdentifier()
		if upper := strings.ToUpper(word); keywords[upper] {
			return lexer.Token{Type: Keyword, Value: upper, Pos: pos}, nil
		}
		return lexer.Token{Type: Ident, Value: word, Pos: pos}, nil
	}
	if s.ch == '/' {
		return s.operator(pos, 1), nil
	}

	return lexer.Token{}, &ParseError{Pos: pos, Message: "invalid character " + quoteRune(s.ch)}
}

func (s *scanner) operator(pos lexer.Position, width int) lexer.Token {
	var value strings.Builder
	for i := 0; i < width; i++ {
		value.WriteRune(s.ch)
		s.readChar()
	}
	return lexer.Token{Type: Operator, Value: value.String(), Pos: pos}
}

func quoteRune(r rune) string {
	return "'" + string(r) + "'"
}

// Tokenize returns every token of input up to and including EOF.
func Tokenize(d Dialect, input string) ([]lexer.Token, error) {
	s := newScanner(d, "", input)
	var tokens []lexer.Token
	for {
		tok, err := s.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == lexer.EOF {
			return tokens, nil
		}
	}
}
