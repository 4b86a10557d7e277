package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/achievemate/gradeflow/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "gradeflow",
	Short: "Gradeflow - transcript text extraction and grade submission pipeline",
	Long: `Gradeflow recovers structured course records from OCR'd transcript text,
reconciles them against the institution's curriculum catalog, computes the
general weighted average and pass/fail summary, guards against duplicate
submissions, and persists approved grades to the backend.

Use the parse command for an offline look at what a transcript parses into,
submit to run the full pipeline, or serve to expose the pipeline over HTTP.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Gradeflow CLI executed")

		fmt.Println("Welcome to Gradeflow!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
