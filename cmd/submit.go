package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/achievemate/gradeflow/internal/backend"
	"github.com/achievemate/gradeflow/internal/config"
	"github.com/achievemate/gradeflow/internal/curriculum"
	"github.com/achievemate/gradeflow/internal/guard"
	"github.com/achievemate/gradeflow/internal/logger"
	"github.com/achievemate/gradeflow/internal/submission"
)

var submitCmd = &cobra.Command{
	Use:   "submit [text-file]",
	Short: "Run the full grade submission pipeline against the backend",
	Long: `Run an OCR text file through the complete pipeline: extraction, grade
reconciliation, curriculum validation, the duplicate check, and finally
persistence of the validated course set.

Without --save the command stops at the review stage and prints what would
be persisted. Grades already recorded for the same academic period block
the whole upload.

Required environment variables:
  BACKEND_BASE_URL - Base URL of the persistence backend`,
	Example: `  # Review what a transcript would save, without saving
  gradeflow submit transcript.txt --student 2021-00123 --curriculum 7

  # Save after review
  gradeflow submit transcript.txt --student 2021-00123 --curriculum 7 --save

  # Cross-check grades against the rendered grade list endpoint
  gradeflow submit transcript.txt --student 2021-00123 --grade-list-path /grade_list.php --save`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().String("student", "", "Student identifier (required)")
	submitCmd.Flags().String("curriculum", "", "Curriculum identifier used to scope the subject catalog")
	submitCmd.Flags().String("year", "", "Academic year override, e.g. 2023-2024 (default: extracted from the document)")
	submitCmd.Flags().String("semester", "", "Semester override (default: extracted from the document)")
	submitCmd.Flags().String("structure-path", "", "Backend path of the grade structure text rendering")
	submitCmd.Flags().String("grade-list-path", "", "Backend path of the rendered grade list used as the cross-check sequence")
	submitCmd.Flags().Bool("save", false, "Persist the validated course set after review")
	submitCmd.Flags().Int("timeout", 120, "Pipeline timeout in seconds")

	submitCmd.MarkFlagRequired("student")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("submit")

	student, _ := cmd.Flags().GetString("student")
	curriculumID, _ := cmd.Flags().GetString("curriculum")
	year, _ := cmd.Flags().GetString("year")
	semester, _ := cmd.Flags().GetString("semester")
	structurePath, _ := cmd.Flags().GetString("structure-path")
	gradeListPath, _ := cmd.Flags().GetString("grade-list-path")
	save, _ := cmd.Flags().GetBool("save")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Configuration is incomplete")
		return err
	}

	text, err := os.ReadFile(args[0])
	if err != nil {
		log.Error().Err(err).Str("file", args[0]).Msg("Failed to read transcript text")
		return fmt.Errorf("failed to read transcript text: %w", err)
	}

	ctx, cancel := submitContext(timeoutSecs)
	defer cancel()

	orch := buildOrchestrator(cfg)
	upload, err := orch.Prepare(ctx, submission.Request{
		Text:              string(text),
		StudentID:         student,
		CurriculumID:      curriculumID,
		AcademicYear:      year,
		Semester:          semester,
		StructureTextPath: structurePath,
		GradeListPath:     gradeListPath,
	})
	if err != nil {
		return reportStageFailure(upload, err)
	}

	printReview(upload.Document, upload.Summary, upload.GradeSource)
	fmt.Printf("\nValidated for persistence: %d of %d courses\n", len(upload.Validated), len(upload.Document.Courses))
	for _, course := range upload.Validated {
		marker := ""
		if course.SuggestionApplied {
			marker = " (corrected from curriculum suggestion)"
		}
		fmt.Printf("  %-12s %s%s\n", course.CourseCode, course.Grade, marker)
	}

	if !save {
		fmt.Println("\nDry run: re-run with --save to persist these grades.")
		return nil
	}

	summary, err := orch.Save(ctx, upload, nil)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Save Results ===\n")
	for _, r := range summary.Results {
		switch {
		case r.Saved:
			fmt.Printf("  %-12s saved\n", r.CourseCode)
		case r.Duplicate:
			fmt.Printf("  %-12s already recorded: %s\n", r.CourseCode, r.Message)
		default:
			fmt.Printf("  %-12s failed: %s\n", r.CourseCode, r.Message)
		}
	}
	fmt.Printf("Saved %d / Duplicates %d / Failed %d\n", summary.Saved, summary.Duplicates, summary.Failed)

	if summary.Saved < len(summary.Results) {
		return fmt.Errorf("%d of %d courses were not saved", len(summary.Results)-summary.Saved, len(summary.Results))
	}
	return nil
}

// buildOrchestrator wires the pipeline services from configuration.
func buildOrchestrator(cfg *config.Config) *submission.Orchestrator {
	client := backend.NewClient(cfg.BackendBaseURL)
	catalog := curriculum.NewHTTPCatalogClient(cfg.BackendBaseURL, time.Duration(cfg.CurriculumCacheTTL)*time.Second)
	matcher := curriculum.NewMatcher(cfg.MatchSimilarityThreshold, cfg.MatchSuggestionLimit)
	dupGuard := guard.New(client, guard.Policy{FailOpen: cfg.DuplicateCheckFailOpen})
	return submission.NewOrchestrator(catalog, matcher, dupGuard, client, client)
}

// reportStageFailure turns a pipeline halt into a user-facing message.
func reportStageFailure(upload *submission.Upload, err error) error {
	var conflict *guard.PeriodConflictError
	if errors.As(err, &conflict) {
		fmt.Printf("Upload blocked: %s\n", conflict.Error())
		for _, d := range conflict.Duplicates {
			fmt.Printf("  %-12s existing grade %s\n", d.CourseCode, d.ExistingGrade)
		}
		return err
	}

	var stage *submission.StageError
	if errors.As(err, &stage) && stage.Retryable {
		return fmt.Errorf("upload halted at %s, please retry: %w", stage.State, stage.Err)
	}
	return err
}

// submitContext creates a context with timeout and interrupt handling.
func submitContext(timeoutSecs int) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
