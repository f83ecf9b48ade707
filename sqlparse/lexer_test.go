package sqlparse

import (
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tok struct {
	typ   lexer.TokenType
	value string
}

func lex(t *testing.T, d Dialect, input string) []tok {
	t.Helper()
	tokens, err := Tokenize(d, input)
	require.NoError(t, err)
	var out []tok
	for _, tk := range tokens {
		if tk.Type == lexer.EOF {
			break
		}
		out = append(out, tok{tk.Type, tk.Value})
	}
	return out
}

func TestLexer_BasicTokens(t *testing.T) {
	got := lex(t, GenericDialect{}, "select name, age FROM people where age >= 25")
	want := []tok{
		{Keyword, "SELECT"},
		{Ident, "name"},
		{Operator, ","},
		{Ident, "age"},
		{Keyword, "FROM"},
		{Ident, "people"},
		{Keyword, "WHERE"},
		{Ident, "age"},
		{Operator, ">="},
		{Number, "25"},
	}
	assert.Equal(t, want, got)
}

func TestLexer_Literals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tok
	}{
		{"integer", "42", []tok{{Number, "42"}}},
		{"decimal", "3.14", []tok{{Number, "3.14"}}},
		{"exponent", "1e3", []tok{{Number, "1e3"}}},
		{"signed exponent", "2.5E-4", []tok{{Number, "2.5E-4"}}},
		{"string", "'hello'", []tok{{String, "hello"}}},
		{"escaped quote", "'it''s'", []tok{{String, "it's"}}},
		{"empty string", "''", []tok{{String, ""}}},
		{"double quoted ident", `"first name"`, []tok{{QuotedIdent, "first name"}}},
		{"backtick ident", "`order`", []tok{{QuotedIdent, "order"}}},
		{"escaped double quote", `"a""b"`, []tok{{QuotedIdent, `a"b`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lex(t, GenericDialect{}, tt.input))
		})
	}
}

func TestLexer_Operators(t *testing.T) {
	got := lex(t, GenericDialect{}, "= <> != < <= > >= + - * / % || ( ) , ;")
	var values []string
	for _, tk := range got {
		assert.Equal(t, Operator, tk.typ)
		values = append(values, tk.value)
	}
	assert.Equal(t, []string{"=", "<>", "!=", "<", "<=", ">", ">=", "+", "-", "*", "/", "%", "||", "(", ")", ",", ";"}, values)
}

func TestLexer_Comments(t *testing.T) {
	got := lex(t, GenericDialect{}, "SELECT -- trailing\n a /* block\ncomment */ FROM t")
	assert.Equal(t, []tok{
		{Keyword, "SELECT"},
		{Ident, "a"},
		{Keyword, "FROM"},
		{Ident, "t"},
	}, got)
}

func TestLexer_PathDialect(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tok
	}{
		{
			name:  "relative path",
			input: "FROM ./data/people.csv",
			want:  []tok{{Keyword, "FROM"}, {Ident, "./data/people.csv"}},
		},
		{
			name:  "absolute path",
			input: "FROM /tmp/x-1.csv",
			want:  []tok{{Keyword, "FROM"}, {Ident, "/tmp/x-1.csv"}},
		},
		{
			name:  "home path",
			input: "FROM ~/x.csv",
			want:  nil,
		},
		{
			name:  "url",
			input: "FROM https://example.com/a/b.csv",
			want:  []tok{{Keyword, "FROM"}, {Ident, "https://example.com/a/b.csv"}},
		},
		{
			name:  "spaced division stays an operator",
			input: "a / b",
			want:  []tok{{Ident, "a"}, {Operator, "/"}, {Ident, "b"}},
		},
		{
			name:  "keyword prefix is not split",
			input: "FROM order.csv",
			want:  []tok{{Keyword, "FROM"}, {Ident, "order.csv"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(PathDialect{}, tt.input)
			if tt.want == nil {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			var got []tok
			for _, tk := range tokens[:len(tokens)-1] {
				got = append(got, tok{tk.Type, tk.Value})
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLexer_GenericDialectRejectsPaths(t *testing.T) {
	_, err := Tokenize(GenericDialect{}, "FROM ./people.csv")
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Pos.Line)
	assert.Equal(t, 6, perr.Pos.Column)
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"unterminated string", "'abc", "unterminated string literal"},
		{"unterminated ident", `"abc`, "unterminated quoted identifier"},
		{"unterminated comment", "SELECT /* x", "unterminated block comment"},
		{"lone bang", "a ! b", "invalid character '!'"},
		{"lone pipe", "a | b", "invalid character '|'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(GenericDialect{}, tt.input)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.message, perr.Message)
		})
	}
}

func TestLexer_Positions(t *testing.T) {
	tokens, err := Tokenize(GenericDialect{}, "SELECT a\n  FROM t")
	require.NoError(t, err)
	require.Len(t, tokens, 5)

	assert.Equal(t, 1, tokens[0].Pos.Line)
	assert.Equal(t, 1, tokens[0].Pos.Column)
	assert.Equal(t, 2, tokens[2].Pos.Line)
	assert.Equal(t, 3, tokens[2].Pos.Column)
	assert.Equal(t, 11, tokens[2].Pos.Offset)
}

func TestIsKeyword(t *testing.T) {
	assert.True(t, IsKeyword("select"))
	assert.True(t, IsKeyword("Limit"))
	assert.False(t, IsKeyword("people"))
}
