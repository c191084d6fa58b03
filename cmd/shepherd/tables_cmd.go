package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parishsource/shepherd/migration/source"
	"github.com/parishsource/shepherd/pkg/configuration"
)

func newTablesCmd() *cobra.Command {
	var sourceDir string

	conf := configuration.Use()

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List staged source tables and their row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner, err := source.Open(sourceDir)
			if err != nil {
				return withCode(exitValidation, err)
			}
			for _, table := range scanner.Tables() {
				count, err := scanner.RowCount(cmd.Context(), table)
				if err != nil {
					return withCode(exitValidation, err)
				}
				fmt.Printf("%-24s %d\n", table, count)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceDir, "source", conf.Import.SourceDir, "Directory containing staged .jsonl table dumps")
	return cmd
}
