package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/JonMunkholm/pathfinder/internal/core"
	"github.com/JonMunkholm/pathfinder/internal/ingest"
	"github.com/spf13/cobra"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Parse a workbook without touching the database",
	Long:  "Parse the Main sheet of an xlsx workbook and report the postings an upload would import and the rows it would reject.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print the parsed batch as JSON")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read workbook: %w", err)
	}

	batch, err := ingest.Parse(data)
	if err != nil {
		if core.IsUserFacing(err) {
			return fmt.Errorf("%s: %s", path, core.FormatUserError(err))
		}
		return fmt.Errorf("%s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	if parseJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(batch)
	}
	return printBatch(out, batch)
}

func printBatch(w io.Writer, batch ingest.Batch) error {
	fmt.Fprintf(w, "%d postings parsed, %d rows rejected\n", len(batch.Records), len(batch.Errors))

	if len(batch.Records) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "\nTITLE\tEMPLOYER\tCITY\tHASH")
		for _, rec := range batch.Records {
			city := ""
			if rec.City != nil {
				city = *rec.City
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.Title, rec.Employer, city, rec.DedupeHash[:12])
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	for _, msg := range batch.Errors {
		fmt.Fprintln(w, msg)
	}
	return nil
}
