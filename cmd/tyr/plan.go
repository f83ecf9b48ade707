package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vegasq/tyr/query"
)

// NewPlanCommand creates the plan command.
func NewPlanCommand() *cobra.Command {
	var sqlFile string

	cmd := &cobra.Command{
		Use:   "plan [SQL]",
		Short: "Show the pipeline a SELECT would run",
		Long: `Parse and translate a SELECT statement and print its pipeline, one
step per line, without reading the source.`,
		Example: `  tyr plan "SELECT name FROM ./people.csv WHERE age > 30 ORDER BY name LIMIT 5"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQL(cmd, args, sqlFile)
			if err != nil {
				return err
			}

			exec, err := newExecutor(cmd.Context())
			if err != nil {
				return err
			}
			d, err := exec.Prepare(sql)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), query.BuildPlan(d).String())
			return err
		},
	}

	cmd.Flags().StringVarP(&sqlFile, "file", "i", "", "Read SQL from file ('-' for stdin)")
	return cmd
}
