package query

import "errors"

// Error kinds. Every error returned by Translate and Execute wraps exactly
// one of these and keeps its cause reachable through errors.Is and
// errors.As.
var (
	// ErrParse is returned when the SQL text cannot be parsed
	ErrParse = errors.New("parse error")

	// ErrMultiStatement is returned when the input holds zero or several statements
	ErrMultiStatement = errors.New("expected exactly one statement")

	// ErrUnsupportedStatement is returned for statements other than SELECT
	ErrUnsupportedStatement = errors.New("unsupported statement")

	// ErrUnsupportedSource is returned when FROM is not a single plain table reference
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrUnsupportedClause is returned for query shapes the pipeline cannot evaluate
	ErrUnsupportedClause = errors.New("unsupported clause")

	// ErrSource is returned when the data source cannot be retrieved
	ErrSource = errors.New("source error")

	// ErrLoad is returned when retrieved content cannot be read as a table
	ErrLoad = errors.New("load error")

	// ErrEvaluation is returned when the pipeline fails on the loaded table
	ErrEvaluation = errors.New("evaluation error")

	// ErrSerialization is returned when a result cannot be written
	ErrSerialization = errors.New("serialization error")
)
