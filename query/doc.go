// Package query runs SQL SELECT statements against CSV and Parquet
// sources.
//
// A statement is parsed with the sqlparse package, translated into a
// Descriptor and evaluated over an in-memory table through a fixed
// pipeline:
//
//	filter (WHERE) -> order (ORDER BY) -> paginate (OFFSET, LIMIT) -> project (SELECT list)
//
// The pipeline order does not depend on the order of the clauses in the
// SQL text.
//
// # Basic Usage
//
//	ds, err := query.Execute(ctx, "SELECT name FROM ./people.csv WHERE age >= 25 ORDER BY age DESC LIMIT 2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	csv, err := ds.ToCSV()
//
// The FROM clause names a local path or an http(s) URL; neither needs
// quoting. Gzip, zstd, lz4 and brotli compressed content is detected
// automatically.
//
// # Supported Statements
//
// One SELECT per call, over a single table reference, with:
//   - a projection list of expressions, "*" and aliases
//   - WHERE with comparisons, AND/OR/NOT, IS [NOT] NULL, [NOT] IN,
//     [NOT] BETWEEN, [NOT] LIKE/ILIKE, CASE, CAST and scalar functions
//   - ORDER BY column names, each ASC or DESC; nulls sort first
//   - LIMIT and OFFSET as non-negative integer literals
//
// Joins, aggregates, GROUP BY, HAVING, DISTINCT, subqueries, set
// operations, window functions and non-SELECT statements are rejected.
//
// # Errors
//
// Every error wraps one of ErrParse, ErrMultiStatement,
// ErrUnsupportedStatement, ErrUnsupportedSource, ErrUnsupportedClause,
// ErrSource, ErrLoad, ErrEvaluation or ErrSerialization, along with its
// cause:
//
//	var notFound *table.ColumnNotFoundError
//	if errors.As(err, &notFound) {
//	    fmt.Println("no such column:", notFound.Name)
//	}
package query
