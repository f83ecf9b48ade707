// Package output serializes tables.
//
// CSVWriter writes a header row followed by one record per row, columns in
// table order. Nulls become empty fields and floats use the shortest
// representation that round-trips:
//
//	var buf bytes.Buffer
//	if err := output.NewCSVWriter(&buf).Format(t); err != nil {
//	    return err
//	}
//
// Output destined for spreadsheets can defuse formula-like strings:
//
//	w := output.NewCSVWriter(os.Stdout, output.WithFormulaEscaping())
package output
