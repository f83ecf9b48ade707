package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vegasq/tyr/loader"
	"github.com/vegasq/tyr/output"
	"github.com/vegasq/tyr/table"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	var storage bool

	cmd := &cobra.Command{
		Use:   "schema SOURCE",
		Short: "Print the columns and inferred types of a source",
		Long: `Load a source the way a query would and print one "column,type" CSV row
per column.

With --storage, a Parquet source is described by its leaf columns instead,
with physical type, logical type and repetition.`,
		Example: `  tyr schema ./people.csv
  tyr schema --storage https://example.com/events.parquet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := getLogger(ctx)

			retriever, ld, err := newSources(getConfig(ctx))
			if err != nil {
				return err
			}
			content, err := retriever.Retrieve(ctx, args[0])
			if err != nil {
				return err
			}
			logger.Info("source retrieved", "source", args[0], "bytes", humanize.Bytes(uint64(content.Size())))

			var out *table.Table
			if storage {
				out, err = storageTable(ld.ParquetColumns(content))
			} else {
				var t *table.Table
				t, err = ld.Load(ctx, content)
				if err == nil {
					logger.Info("source loaded", "source", args[0], "rows", humanize.Comma(int64(t.Height())))
					out, err = schemaTable(t)
				}
			}
			if err != nil {
				return fmt.Errorf("failed to describe %s: %w", args[0], err)
			}
			return output.NewCSVWriter(cmd.OutOrStdout()).Format(out)
		},
	}

	cmd.Flags().BoolVar(&storage, "storage", false, "Describe Parquet storage columns")
	return cmd
}

func schemaTable(t *table.Table) (*table.Table, error) {
	schema := t.Schema()
	rows := make([][]string, len(schema))
	for i, f := range schema {
		rows[i] = []string{f.Name, f.Type.String()}
	}
	return stringTable([]string{"column", "type"}, rows)
}

func storageTable(cols []loader.ParquetColumn, err error) (*table.Table, error) {
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(cols))
	for i, c := range cols {
		rows[i] = []string{c.Name, c.PhysicalType, c.LogicalType, c.Repetition}
	}
	return stringTable([]string{"column", "physical_type", "logical_type", "repetition"}, rows)
}

// stringTable builds a table of String columns. Empty cells are null.
func stringTable(names []string, rows [][]string) (*table.Table, error) {
	columns := make([]*table.Series, len(names))
	for j, name := range names {
		values := make([]any, len(rows))
		for i, row := range rows {
			if row[j] != "" {
				values[i] = row[j]
			}
		}
		s, err := table.NewSeries(name, table.String, values)
		if err != nil {
			return nil, err
		}
		columns[j] = s
	}
	return table.New(columns...)
}
