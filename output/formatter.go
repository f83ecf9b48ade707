package output

import (
	"io"

	"github.com/vegasq/tyr/table"
)

// Formatter writes a table in a specific format.
type Formatter interface {
	// Format writes every row of t
	Format(t *table.Table) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Option configures a formatter.
type Option func(*options)

type options struct {
	escapeFormulas bool
}

// WithFormulaEscaping prefixes string values that a spreadsheet would
// evaluate as a formula with a single quote.
func WithFormulaEscaping() Option {
	return func(o *options) { o.escapeFormulas = true }
}
