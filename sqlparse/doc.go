// Package sqlparse is a general SQL parser with a pluggable identifier
// dialect.
//
// The grammar covers SELECT queries (joins, grouping, set operations,
// window calls, subqueries) and the common DML/DDL statement shapes. It
// parses more than tyr can execute: deciding what is supported is left to
// the caller.
//
//	stmts, err := sqlparse.Parse(sqlparse.PathDialect{}, "SELECT name FROM ./people.csv")
//	if err != nil {
//		var perr *sqlparse.ParseError
//		errors.As(err, &perr) // position of the failure
//	}
package sqlparse
