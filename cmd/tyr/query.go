package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vegasq/tyr/output"
)

var errNoSQL = errors.New("no SQL given: pass it as an argument, with --file, or on stdin")

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	var (
		sqlFile        string
		outFile        string
		escapeFormulas bool
	)

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a SELECT and write the result as CSV",
		Long: `Run a single SELECT statement and write the result as CSV.

The statement is taken from the arguments, from --file, or from stdin.`,
		Example: `  tyr query "SELECT * FROM ./people.csv WHERE age > 30"
  tyr query -i report.sql -o report.csv
  echo "SELECT name FROM https://example.com/people.csv.gz LIMIT 5" | tyr query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQL(cmd, args, sqlFile)
			if err != nil {
				return err
			}

			exec, err := newExecutor(cmd.Context())
			if err != nil {
				return err
			}
			ds, err := exec.Execute(cmd.Context(), sql)
			if err != nil {
				return err
			}

			var opts []output.Option
			if escapeFormulas {
				opts = append(opts, output.WithFormulaEscaping())
			}

			if outFile == "" {
				return ds.WriteCSV(cmd.OutOrStdout(), opts...)
			}
			f, err := os.Create(outFile)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			if err := ds.WriteCSV(f, opts...); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVarP(&sqlFile, "file", "i", "", "Read SQL from file ('-' for stdin)")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Write CSV to file instead of stdout")
	cmd.Flags().BoolVar(&escapeFormulas, "escape-formulas", false, "Prefix spreadsheet formulas with a quote")

	return cmd
}

// readSQL takes the statement from args, sqlFile or stdin, in that order.
func readSQL(cmd *cobra.Command, args []string, sqlFile string) (string, error) {
	if len(args) > 0 && sqlFile != "" {
		return "", errors.New("SQL given both as argument and with --file")
	}

	var sql string
	switch {
	case len(args) > 0:
		sql = strings.Join(args, " ")
	case sqlFile != "" && sqlFile != "-":
		data, err := os.ReadFile(sqlFile)
		if err != nil {
			return "", fmt.Errorf("failed to read SQL file: %w", err)
		}
		sql = string(data)
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read SQL from stdin: %w", err)
		}
		sql = string(data)
	}

	if strings.TrimSpace(sql) == "" {
		return "", errNoSQL
	}
	return sql, nil
}
