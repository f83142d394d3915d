package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/JonMunkholm/pathfinder/internal/ingest"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Print the workbook column layout uploads expect",
	Args:  cobra.NoArgs,
	RunE:  runColumns,
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}

func runColumns(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Sheet %q, data from row 3. Column A is not read.\n\n", ingest.SheetName)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tFIELD\tTYPE")
	for _, col := range ingest.Columns {
		name, err := excelize.ColumnNumberToName(col.Index + 1)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, col.Field, col.Kind)
	}
	return tw.Flush()
}
