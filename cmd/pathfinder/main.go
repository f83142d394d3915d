// Package main is the pathfinder command: the job posting API server plus
// maintenance commands for the schema and for checking spreadsheets offline.
package main

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/pathfinder/internal/config"
	"github.com/spf13/cobra"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:           "pathfinder",
	Short:         "Job posting ingestion and search API",
	Long:          "Pathfinder imports job postings from xlsx workbooks into PostgreSQL and serves them over a JSON API.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Overload so .env values win over a stale shell environment.
		return config.LoadEnvFiles(envFiles...)
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files to load before reading configuration")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
