package sqlparse

import "github.com/alecthomas/participle/v2/lexer"

// Script is a semicolon-separated list of statements. Empty statements are
// dropped by the grammar.
type Script struct {
	Statements []*Statement `";"* ( @@ ( ";"+ @@ )* ";"* )?`
}

// Statement is a tagged variant; exactly one field is set.
type Statement struct {
	Pos lexer.Position

	Select *Select      `  @@`
	Insert *Insert      `| @@`
	Update *Update      `| @@`
	Delete *Delete      `| @@`
	Create *CreateTable `| @@`
	Drop   *DropTable   `| @@`
}

// Kind names the statement type, e.g. "SELECT" or "CREATE TABLE".
func (s *Statement) Kind() string {
	switch {
	case s.Select != nil:
		return "SELECT"
	case s.Insert != nil:
		return "INSERT"
	case s.Update != nil:
		return "UPDATE"
	case s.Delete != nil:
		return "DELETE"
	case s.Create != nil:
		return "CREATE TABLE"
	case s.Drop != nil:
		return "DROP TABLE"
	}
	return "UNKNOWN"
}

// Select is a SELECT query, optionally combined with another through a set
// operation.
type Select struct {
	Pos lexer.Position

	Distinct bool          `"SELECT" ( @"DISTINCT" | "ALL" )?`
	Items    []*SelectItem `@@ ( "," @@ )*`
	From     *From         `( "FROM" @@ )?`
	Where    *Expression   `( "WHERE" @@ )?`
	GroupBy  []*Expression `( "GROUP" "BY" @@ ( "," @@ )* )?`
	Having   *Expression   `( "HAVING" @@ )?`
	OrderBy  []*OrderItem  `( "ORDER" "BY" @@ ( "," @@ )* )?`
	Paging   []*PageClause `@@*`
	SetOp    *SetOp        `@@?`
}

// SelectItem is one projection entry: "*" or an expression with an
// optional alias.
type SelectItem struct {
	Star  bool        `(  @"*"`
	Expr  *Expression ` | @@ )`
	Alias string      `( "AS"? @( Ident | QuotedIdent ) )?`
}

type From struct {
	Tables []*TableRef `@@ ( "," @@ )*`
	Joins  []*Join     `@@*`
}

// TableRef is a named table (a path or URL under PathDialect) or a
// derived table.
type TableRef struct {
	Name     string  `(  @( Ident | QuotedIdent | String )`
	Subquery *Select ` | "(" @@ ")" )`
	Alias    string  `( "AS"? @( Ident | QuotedIdent ) )?`
}

type Join struct {
	Kind  []string    `@( "INNER" | "LEFT" | "RIGHT" | "FULL" | "OUTER" | "CROSS" | "NATURAL" )* "JOIN"`
	Table *TableRef   `@@`
	On    *Expression `( "ON" @@`
	Using []string    `| "USING" "(" @( Ident | QuotedIdent ) ( "," @( Ident | QuotedIdent ) )* ")" )?`
}

type OrderItem struct {
	Expr      *Expression `@@`
	Direction string      `@( "ASC" | "DESC" )?`
}

// PageClause is a single LIMIT or OFFSET clause. Both may appear in either
// order and the grammar does not forbid repeats.
type PageClause struct {
	Limit  *Expression `  "LIMIT" @@`
	Offset *Expression `| "OFFSET" @@`
}

type SetOp struct {
	Op     string  `@( "UNION" | "INTERSECT" | "EXCEPT" )`
	All    bool    `@"ALL"?`
	Select *Select `@@`
}

// Expression is the root of the expression grammar: a disjunction.
type Expression struct {
	Or []*AndExpr `@@ ( "OR" @@ )*`
}

type AndExpr struct {
	And []*NotExpr `@@ ( "AND" @@ )*`
}

type NotExpr struct {
	Not       *NotExpr   `  "NOT" @@`
	Predicate *Predicate `| @@`
}

// Predicate is an additive expression with an optional comparison tail.
type Predicate struct {
	Left    *Additive         `@@`
	Compare *Comparison       `( @@`
	Is      *IsPredicate      `| @@`
	In      *InPredicate      `| @@`
	Between *BetweenPredicate `| @@`
	Like    *LikePredicate    `| @@ )?`
}

type Comparison struct {
	Op    string    `@( "=" | "<>" | "!=" | "<=" | ">=" | "<" | ">" )`
	Right *Additive `@@`
}

type IsPredicate struct {
	Not bool `"IS" @"NOT"? "NULL"`
}

type InPredicate struct {
	Not      bool          `@"NOT"? "IN" "("`
	Subquery *Select       `( @@`
	Values   []*Expression `| @@ ( "," @@ )* ) ")"`
}

type BetweenPredicate struct {
	Not  bool      `@"NOT"? "BETWEEN"`
	Low  *Additive `@@ "AND"`
	High *Additive `@@`
}

type LikePredicate struct {
	Not     bool      `@"NOT"?`
	Op      string    `@( "LIKE" | "ILIKE" )`
	Pattern *Additive `@@`
}

type Additive struct {
	Left  *Multiplicative `@@`
	Right []*AddOp        `@@*`
}

type AddOp struct {
	Op    string          `@( "+" | "-" | "||" )`
	Right *Multiplicative `@@`
}

type Multiplicative struct {
	Left  *Unary   `@@`
	Right []*MulOp `@@*`
}

type MulOp struct {
	Op    string `@( "*" | "/" | "%" )`
	Right *Unary `@@`
}

type Unary struct {
	Op      string   `(  @( "-" | "+" )`
	Operand *Unary   `   @@ )`
	Primary *Primary `| @@`
}

// Primary is an atom of the expression grammar.
type Primary struct {
	Exists   *Select       `  "EXISTS" "(" @@ ")"`
	Subquery *Select       `| "(" @@ ")"`
	Paren    *Expression   `| "(" @@ ")"`
	Case     *CaseExpr     `| @@`
	Cast     *CastExpr     `| @@`
	Call     *FunctionCall `| @@`
	Literal  *Literal      `| @@`
	Column   *ColumnRef    `| @@`
}

type CaseExpr struct {
	Operand *Expression   `"CASE" @@?`
	Whens   []*WhenClause `@@+`
	Else    *Expression   `( "ELSE" @@ )? "END"`
}

type WhenClause struct {
	When *Expression `"WHEN" @@`
	Then *Expression `"THEN" @@`
}

type CastExpr struct {
	Expr *Expression `"CAST" "(" @@ "AS"`
	Type string      `@Ident ")"`
}

type FunctionCall struct {
	Name     string        `@Ident "("`
	Distinct bool          `@"DISTINCT"?`
	Star     bool          `( @"*"`
	Args     []*Expression `| ( @@ ( "," @@ )* )? ) ")"`
	Over     *WindowSpec   `( "OVER" @@ )?`
}

type WindowSpec struct {
	PartitionBy []*Expression `"(" ( "PARTITION" "BY" @@ ( "," @@ )* )?`
	OrderBy     []*OrderItem  `( "ORDER" "BY" @@ ( "," @@ )* )? ")"`
}

// Literal holds exactly one of a number, string, boolean or NULL.
type Literal struct {
	Number string     `  @Number`
	Str    *StringLit `| @@`
	Bool   string     `| @( "TRUE" | "FALSE" )`
	Null   bool       `| @"NULL"`
}

type StringLit struct {
	Value string `@String`
}

type ColumnRef struct {
	Name string `@( Ident | QuotedIdent )`
}

type Insert struct {
	Table   string       `"INSERT" "INTO" @( Ident | QuotedIdent )`
	Columns []string     `( "(" @( Ident | QuotedIdent ) ( "," @( Ident | QuotedIdent ) )* ")" )?`
	Rows    []*ValuesRow `( "VALUES" @@ ( "," @@ )*`
	Select  *Select      `| @@ )`
}

type ValuesRow struct {
	Values []*Expression `"(" @@ ( "," @@ )* ")"`
}

type Update struct {
	Table string        `"UPDATE" @( Ident | QuotedIdent )`
	Set   []*Assignment `"SET" @@ ( "," @@ )*`
	Where *Expression   `( "WHERE" @@ )?`
}

type Assignment struct {
	Column string      `@( Ident | QuotedIdent ) "="`
	Value  *Expression `@@`
}

type Delete struct {
	Table string      `"DELETE" "FROM" @( Ident | QuotedIdent )`
	Where *Expression `( "WHERE" @@ )?`
}

type CreateTable struct {
	Table   string       `"CREATE" "TABLE" @( Ident | QuotedIdent )`
	Columns []*ColumnDef `"(" @@ ( "," @@ )* ")"`
}

type ColumnDef struct {
	Name string `@( Ident | QuotedIdent )`
	Type string `@Ident`
}

type DropTable struct {
	IfExists bool   `"DROP" "TABLE" @( "IF" "EXISTS" )?`
	Table    string `@( Ident | QuotedIdent )`
}
