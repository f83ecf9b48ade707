package table

import (
	"fmt"
	"strings"
)

// Field describes one column of a schema.
type Field struct {
	Name string
	Type DataType
}

// Table is an ordered set of equally long, uniquely named columns.
// Tables are values: every operation returns a new Table and never
// modifies its receiver.
type Table struct {
	columns []*Series
	index   map[string]int
	height  int
}

// New builds a table from columns. All columns must have the same length
// and distinct names.
func New(columns ...*Series) (*Table, error) {
	t := &Table{
		columns: make([]*Series, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if _, dup := t.index[col.Name()]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col.Name())
		}
		if i == 0 {
			t.height = col.Len()
		} else if col.Len() != t.height {
			return nil, fmt.Errorf("%w: column %q has %d rows, expected %d", ErrLengthMismatch, col.Name(), col.Len(), t.height)
		}
		t.index[col.Name()] = i
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// Empty returns a table with no columns and no rows.
func Empty() *Table {
	return &Table{index: map[string]int{}}
}

// Height returns the number of rows.
func (t *Table) Height() int { return t.height }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name()
	}
	return names
}

// Schema returns the name and type of every column in order.
func (t *Table) Schema() []Field {
	fields := make([]Field, len(t.columns))
	for i, col := range t.columns {
		fields[i] = Field{Name: col.Name(), Type: col.DataType()}
	}
	return fields
}

// HasColumn reports whether the table has a column named name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (*Series, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, &ColumnNotFoundError{Name: name, Available: t.Names()}
	}
	return t.columns[i], nil
}

// Columns returns the columns in order.
func (t *Table) Columns() []*Series {
	out := make([]*Series, len(t.columns))
	copy(out, t.columns)
	return out
}

// Value returns the value of column col at row i.
func (t *Table) Value(col string, i int) (any, error) {
	s, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= t.height {
		return nil, fmt.Errorf("row %d out of range [0, %d)", i, t.height)
	}
	return s.Value(i), nil
}

// Row returns a view of row i.
func (t *Table) Row(i int) Row {
	return Row{table: t, index: i}
}

// Take returns a table with the rows at the given indices, in that order.
func (t *Table) Take(indices []int) *Table {
	cols := make([]*Series, len(t.columns))
	for i, col := range t.columns {
		cols[i] = col.Take(indices)
	}
	return &Table{columns: cols, index: t.index, height: len(indices)}
}

// Slice returns at most length rows starting at offset; a negative length
// means "to the end". Out of range bounds are clamped.
func (t *Table) Slice(offset, length int) *Table {
	lo, hi := clampRange(t.height, offset, length)
	cols := make([]*Series, len(t.columns))
	for i, col := range t.columns {
		cols[i] = col.Slice(lo, hi-lo)
	}
	return &Table{columns: cols, index: t.index, height: hi - lo}
}

// Lazy starts a lazy query over the table.
func (t *Table) Lazy() *LazyFrame {
	return NewLazyFrame(t)
}

// String renders the schema, e.g. "[name:string age:int64] 3 rows".
func (t *Table) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range t.Schema() {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s:%s", f.Name, f.Type)
	}
	fmt.Fprintf(&b, "] %d rows", t.height)
	return b.String()
}

// Row is a read-only view of one table row.
type Row struct {
	table *Table
	index int
}

// Index returns the row position within its table.
func (r Row) Index() int { return r.index }

// Get returns the value of the named column.
func (r Row) Get(name string) (any, bool) {
	i, ok := r.table.index[name]
	if !ok {
		return nil, false
	}
	return r.table.columns[i].Value(r.index), true
}

// Names returns the column names visible from the row.
func (r Row) Names() []string { return r.table.Names() }

// Values returns the row's values in column order.
func (r Row) Values() []any {
	out := make([]any, len(r.table.columns))
	for i, col := range r.table.columns {
		out[i] = col.Value(r.index)
	}
	return out
}
