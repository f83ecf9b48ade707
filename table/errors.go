package table

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTypeMismatch is returned when an operator receives operands it cannot combine
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrDivisionByZero is returned for x / 0 and x % 0
	ErrDivisionByZero = errors.New("division by zero")

	// ErrNotBoolean is returned when a predicate yields a non-boolean value
	ErrNotBoolean = errors.New("predicate is not boolean")

	// ErrDuplicateColumn is returned when a table would have two columns with the same name
	ErrDuplicateColumn = errors.New("duplicate column name")

	// ErrLengthMismatch is returned when columns of a table differ in length
	ErrLengthMismatch = errors.New("column length mismatch")

	// ErrUnknownFunction is returned when a call names no registered function
	ErrUnknownFunction = errors.New("unknown function")

	// ErrArity is returned when a function is called with the wrong number of arguments
	ErrArity = errors.New("wrong number of arguments")

	// ErrInvalidCast is returned when a value cannot be converted to the requested type
	ErrInvalidCast = errors.New("invalid cast")
)

// ColumnNotFoundError reports a reference to a column the table does not have.
type ColumnNotFoundError struct {
	Name      string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("column %q not found", e.Name)
	}
	return fmt.Sprintf("column %q not found (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// RowError attributes an evaluation failure to a row and expression.
type RowError struct {
	Row  int
	Expr string
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %v", e.Row, e.Expr, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
