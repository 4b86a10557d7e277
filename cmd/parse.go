package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/achievemate/gradeflow/internal/extract"
	"github.com/achievemate/gradeflow/internal/grades"
	"github.com/achievemate/gradeflow/internal/logger"
	"github.com/achievemate/gradeflow/internal/metrics"
	"github.com/achievemate/gradeflow/pkg/models"
)

var parseCmd = &cobra.Command{
	Use:   "parse [text-file]",
	Short: "Parse OCR'd transcript text into structured course records",
	Long: `Parse a raw OCR text file offline: extract the course rows, normalize the
grade values, and compute the summary metrics. No backend is contacted, so
curriculum matching and duplicate checks are skipped.

Useful for inspecting what a scanned transcript actually parses into before
running the full submission pipeline.`,
	Example: `  # Print the parsed review document
  gradeflow parse transcript.txt

  # Cross-check the grade column against a grade-list rendering
  gradeflow parse transcript.txt --grade-list grades.txt

  # Output as JSON
  gradeflow parse transcript.txt --json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().String("grade-list", "", "Path to a grade-list text rendering used as the cross-check sequence")
	parseCmd.Flags().Bool("json", false, "Output as JSON")
}

// parseOutput is the JSON shape printed with --json.
type parseOutput struct {
	Document    *models.GradeDocument `json:"document"`
	Summary     metrics.Summary       `json:"summary"`
	GradeSource grades.Source         `json:"grade_source"`
}

func runParse(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("parse")

	gradeListPath, _ := cmd.Flags().GetString("grade-list")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	text, err := os.ReadFile(args[0])
	if err != nil {
		log.Error().Err(err).Str("file", args[0]).Msg("Failed to read transcript text")
		return fmt.Errorf("failed to read transcript text: %w", err)
	}

	var secondary []string
	if gradeListPath != "" {
		listText, err := os.ReadFile(gradeListPath)
		if err != nil {
			log.Error().Err(err).Str("file", gradeListPath).Msg("Failed to read grade list text")
			return fmt.Errorf("failed to read grade list text: %w", err)
		}
		secondary = grades.ExtractSequence(string(listText))
	}

	doc := extract.NewExtractor().Extract(string(text))
	source := grades.NewReconciler().Resolve(doc, secondary)
	summary := metrics.Aggregate(doc)

	log.Info().
		Int("courses", len(doc.Courses)).
		Str("grade_source", string(source)).
		Msg("Transcript parsed")

	if jsonOutput {
		data, err := json.MarshalIndent(parseOutput{Document: doc, Summary: summary, GradeSource: source}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printReview(doc, summary, source)
	return nil
}

func printReview(doc *models.GradeDocument, summary metrics.Summary, source grades.Source) {
	fmt.Printf("=== Parsed Transcript ===\n")
	if doc.AcademicYear != "" {
		fmt.Printf("Academic year: %s\n", doc.AcademicYear)
	}
	if doc.Semester != "" {
		fmt.Printf("Semester:      %s\n", doc.Semester)
	}
	if doc.YearLevel != "" {
		fmt.Printf("Year level:    %s\n", doc.YearLevel)
	}
	fmt.Printf("Grade source:  %s\n\n", source)

	for _, course := range doc.Courses {
		status := metrics.Status(course.Grade)
		fmt.Printf("%-12s %-40s %5s  %-5s %-8s %s  [%s]\n",
			course.CourseCode, course.CourseTitle, course.Units,
			course.Grade, course.Section, course.Instructor, status)
	}

	fmt.Printf("\n=== Summary ===\n")
	if summary.HasGWA {
		fmt.Printf("GWA:           %.2f\n", summary.GWA)
	} else {
		fmt.Printf("GWA:           N/A\n")
	}
	fmt.Printf("Total units:   %.1f\n", summary.TotalUnits)
	fmt.Printf("Total courses: %d\n", summary.TotalCourses)
	fmt.Printf("Passed %d / Failed %d / Incomplete %d / Unknown %d\n",
		summary.Passed, summary.Failed, summary.Incomplete, summary.Unknown)
	if summary.Section != "" {
		fmt.Printf("Section:       %s\n", summary.Section)
	}
}
