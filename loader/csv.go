package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vegasq/tyr/source"
	"github.com/vegasq/tyr/table"
)

// DefaultInferRows is the number of data rows used for type inference when
// CSVLoader.InferRows is zero.
const DefaultInferRows = 16

// sniffCandidates are the delimiters tried, in order of preference.
var sniffCandidates = []rune{',', ';', '\t', '|'}

// CSVLoader parses delimited text with a header row.
//
// Column types are inferred from the first InferRows data rows: a column
// is Int64 if every non-empty sample parses as an integer, Float64 if every
// sample parses as a number, Bool for true/false, and String otherwise.
// Empty fields are null. A later value that does not parse as its column
// type fails the load.
type CSVLoader struct {
	// InferRows is the number of rows sampled for types. Zero means
	// DefaultInferRows; negative means every row.
	InferRows int
	// Delimiter separates fields. Zero sniffs the header line.
	Delimiter rune
}

// NewCSVLoader returns a loader with default settings.
func NewCSVLoader() *CSVLoader {
	return &CSVLoader{InferRows: DefaultInferRows}
}

// Load parses c.Data as CSV.
func (l *CSVLoader) Load(ctx context.Context, c *source.Content) (*table.Table, error) {
	data := bytes.TrimPrefix(c.Data, []byte("\xef\xbb\xbf"))

	delim := l.Delimiter
	if delim == 0 {
		delim = SniffDelimiter(data)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = 0

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	names := headerNames(header)

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		records = append(records, rec)
		if len(records)%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}

	inferRows := l.InferRows
	if inferRows == 0 {
		inferRows = DefaultInferRows
	}
	if inferRows < 0 || inferRows > len(records) {
		inferRows = len(records)
	}

	columns := make([]*table.Series, len(names))
	for j, name := range names {
		dtype := inferType(records[:inferRows], j)
		values := make([]any, len(records))
		for i, rec := range records {
			v, err := parseField(rec[j], dtype)
			if err != nil {
				return nil, fmt.Errorf("%w: column %q row %d: cannot parse %q as %s", ErrInvalidValue, name, i+1, rec[j], dtype)
			}
			values[i] = v
		}
		s, err := table.NewSeries(name, dtype, values)
		if err != nil {
			return nil, err
		}
		columns[j] = s
	}

	t, err := table.New(columns...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return t, nil
}

// headerNames fills in blank header cells as column_N (1-based).
func headerNames(header []string) []string {
	names := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		names[i] = h
	}
	return names
}

// SniffDelimiter picks the candidate delimiter that occurs most often in
// the first line outside quotes, defaulting to a comma.
func SniffDelimiter(data []byte) rune {
	counts := make(map[rune]int, len(sniffCandidates))
	inQuotes := false
	for _, r := range string(data) {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		if r == '\n' || r == '\r' {
			break
		}
		counts[r]++
	}

	best, bestCount := ',', 0
	for _, c := range sniffCandidates {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

// inferType picks the narrowest type every non-empty sample of column j
// parses as.
func inferType(sample [][]string, j int) table.DataType {
	isInt, isFloat, isBool, seen := true, true, true, false
	for _, rec := range sample {
		s := rec[j]
		if s == "" {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat && !looksNumeric(s) {
			isFloat = false
		}
		if isBool {
			if _, ok := parseBoolField(s); !ok {
				isBool = false
			}
		}
	}

	switch {
	case !seen:
		return table.String
	case isInt:
		return table.Int64
	case isFloat:
		return table.Float64
	case isBool:
		return table.Bool
	default:
		return table.String
	}
}

// looksNumeric accepts decimal floats, rejecting the "inf"/"nan" and hex
// spellings strconv would also take.
func looksNumeric(s string) bool {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return false
	}
	hasDigit := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == '.' || r == '-' || r == '+' || r == 'e' || r == 'E':
		default:
			return false
		}
	}
	return hasDigit
}

func parseBoolField(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func parseField(s string, dtype table.DataType) (any, error) {
	if s == "" {
		return nil, nil
	}
	switch dtype {
	case table.Int64:
		return strconv.ParseInt(s, 10, 64)
	case table.Float64:
		if !looksNumeric(s) {
			return nil, strconv.ErrSyntax
		}
		return strconv.ParseFloat(s, 64)
	case table.Bool:
		if b, ok := parseBoolField(s); ok {
			return b, nil
		}
		return nil, strconv.ErrSyntax
	default:
		return s, nil
	}
}
