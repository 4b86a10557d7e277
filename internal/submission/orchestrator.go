// Package submission drives one grade upload through the pipeline as an
// explicit state machine: extraction, grade reconciliation, curriculum
// validation, the duplicate check, the review hand-off, and persistence.
// Each upload is processed in isolation; no state crosses uploads.
package submission

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/achievemate/gradeflow/internal/backend"
	"github.com/achievemate/gradeflow/internal/curriculum"
	"github.com/achievemate/gradeflow/internal/extract"
	"github.com/achievemate/gradeflow/internal/grades"
	"github.com/achievemate/gradeflow/internal/guard"
	"github.com/achievemate/gradeflow/internal/logger"
	"github.com/achievemate/gradeflow/internal/metrics"
	"github.com/achievemate/gradeflow/pkg/models"
)

// State names one step of the upload lifecycle.
type State string

const (
	StateIdle               State = "Idle"
	StateExtracting         State = "Extracting"
	StateReconciling        State = "Reconciling"
	StateValidating         State = "Validating"
	StateCheckingDuplicates State = "CheckingDuplicates"
	StateReadyForReview     State = "ReadyForReview"
	StateSaving             State = "Saving"
	StateSaved              State = "Saved"
	StateSaveFailed         State = "SaveFailed"
)

// Request carries one upload's inputs.
type Request struct {
	// Text is the raw OCR text of the scanned transcript.
	Text string

	StudentID    string
	CurriculumID string

	// AcademicYear and Semester override the document-extracted values when
	// set; otherwise the extractor's summary scan supplies them.
	AcademicYear string
	Semester     string

	// StructureTextPath and GradeListPath are optional auxiliary plain-text
	// endpoints: an alternate structured rendering of the transcript, and
	// the webpage-rendered grade list used as the cross-check sequence.
	StructureTextPath string
	GradeListPath     string
}

// Upload is the isolated state of one submission. Document and the derived
// artifacts are owned by this upload and discarded once persisted or
// abandoned.
type Upload struct {
	ID    string
	State State

	Document    *models.GradeDocument
	GradeSource grades.Source
	Summary     metrics.Summary

	Matches   []models.MatchResult
	Validated []models.CourseRecord

	AcademicYear string
	Semester     string
	StudentID    string
}

// SaveSummary is the collected outcome of the persistence step.
type SaveSummary struct {
	UploadID   string              `json:"upload_id"`
	Results    []models.SaveResult `json:"results"`
	Saved      int                 `json:"saved"`
	Duplicates int                 `json:"duplicates"`
	Failed     int                 `json:"failed"`
}

// Orchestrator wires the pipeline stages together.
type Orchestrator struct {
	extractor  *extract.Extractor
	reconciler *grades.Reconciler
	matcher    *curriculum.Matcher
	catalog    curriculum.CatalogClient
	guard      *guard.Guard
	store      backend.GradeStore
	texts      backend.TextSource
	log        zerolog.Logger
}

// NewOrchestrator creates a submission orchestrator. texts may be nil when
// no auxiliary text endpoints are configured.
func NewOrchestrator(catalog curriculum.CatalogClient, matcher *curriculum.Matcher, dupGuard *guard.Guard, store backend.GradeStore, texts backend.TextSource) *Orchestrator {
	return &Orchestrator{
		extractor:  extract.NewExtractor(),
		reconciler: grades.NewReconciler(),
		matcher:    matcher,
		catalog:    catalog,
		guard:      dupGuard,
		store:      store,
		texts:      texts,
		log:        logger.WithComponent("submission"),
	}
}

// Prepare runs an upload from raw text to the ready-for-review state. The
// returned Upload always reports the state it reached; on error that state
// is where the pipeline halted. A curriculum fetch failure halts at
// Validating with a retryable error. A period conflict found by the
// duplicate guard halts at CheckingDuplicates and blocks the whole upload.
func (o *Orchestrator) Prepare(ctx context.Context, req Request) (*Upload, error) {
	const op = "Prepare"

	upload := &Upload{
		ID:        uuid.NewString(),
		State:     StateIdle,
		StudentID: req.StudentID,
	}
	log := o.log.With().Str("upload_id", upload.ID).Logger()

	upload.State = StateExtracting
	structureText, gradeListText := o.fetchAuxTexts(ctx, req, log)

	text := req.Text
	if text == "" {
		text = structureText
	}
	upload.Document = o.extractor.Extract(text)
	log.Info().
		Int("courses", len(upload.Document.Courses)).
		Str("academic_year", upload.Document.AcademicYear).
		Str("semester", upload.Document.Semester).
		Msg("Transcript text extracted")

	upload.State = StateReconciling
	secondary := grades.ExtractSequence(gradeListText)
	upload.GradeSource = o.reconciler.Resolve(upload.Document, secondary)
	upload.Summary = metrics.Aggregate(upload.Document)

	upload.AcademicYear = req.AcademicYear
	if upload.AcademicYear == "" {
		upload.AcademicYear = upload.Document.AcademicYear
	}
	upload.Semester = req.Semester
	if upload.Semester == "" {
		upload.Semester = upload.Document.Semester
	}

	upload.State = StateValidating
	catalog, err := o.catalog.Subjects(ctx, req.CurriculumID)
	if err != nil {
		log.Error().Err(err).Msg("Curriculum catalog fetch failed")
		return upload, &StageError{Op: op, State: StateValidating, Err: err, Retryable: true}
	}
	upload.Matches = o.matcher.MatchAll(upload.Document.Courses, catalog)
	upload.Validated = o.matcher.BuildValidatedCourseList(upload.Matches)

	upload.State = StateCheckingDuplicates
	if err := o.guard.Check(ctx, req.StudentID, upload.AcademicYear, upload.Semester, upload.Validated); err != nil {
		var conflict *guard.PeriodConflictError
		retryable := !errors.As(err, &conflict)
		return upload, &StageError{Op: op, State: StateCheckingDuplicates, Err: err, Retryable: retryable}
	}

	upload.State = StateReadyForReview
	log.Info().
		Int("validated", len(upload.Validated)).
		Str("grade_source", string(upload.GradeSource)).
		Msg("Upload ready for review")
	return upload, nil
}

// Save persists an approved course set. Courses defaults to the upload's
// validated list. Inserts run concurrently and no failure cancels the
// others; a server-detected duplicate (HTTP 409) fails only its own course.
// Already-saved courses stay saved regardless of later failures.
func (o *Orchestrator) Save(ctx context.Context, upload *Upload, courses []models.CourseRecord) (*SaveSummary, error) {
	const op = "Save"

	if upload.State != StateReadyForReview {
		return nil, &StageError{Op: op, State: upload.State, Err: ErrNotReady}
	}
	if courses == nil {
		courses = upload.Validated
	}
	if len(courses) == 0 {
		return nil, &StageError{Op: op, State: upload.State, Err: ErrNothingToSave}
	}

	upload.State = StateSaving
	yearID := backend.AcademicYearID(upload.AcademicYear)
	results := make([]models.SaveResult, len(courses))

	var wg sync.WaitGroup
	for i, course := range courses {
		wg.Add(1)
		go func(i int, course models.CourseRecord) {
			defer wg.Done()
			results[i] = o.insertCourse(ctx, upload, yearID, course)
		}(i, course)
	}
	wg.Wait()

	summary := &SaveSummary{UploadID: upload.ID, Results: results}
	for _, r := range results {
		switch {
		case r.Saved:
			summary.Saved++
		case r.Duplicate:
			summary.Duplicates++
		default:
			summary.Failed++
		}
	}

	if summary.Saved == len(courses) {
		upload.State = StateSaved
	} else {
		upload.State = StateSaveFailed
	}
	o.log.Info().
		Str("upload_id", upload.ID).
		Int("saved", summary.Saved).
		Int("duplicates", summary.Duplicates).
		Int("failed", summary.Failed).
		Str("state", string(upload.State)).
		Msg("Save completed")
	return summary, nil
}

func (o *Orchestrator) insertCourse(ctx context.Context, upload *Upload, yearID int, course models.CourseRecord) models.SaveResult {
	section := course.Section
	if section == "" {
		section = upload.Summary.Section
	}
	remarks := ""
	if course.SuggestionApplied {
		remarks = "course code corrected from curriculum suggestion"
	}

	resp, err := o.store.InsertGrade(ctx, backend.InsertRequest{
		StudentID:      upload.StudentID,
		CourseCode:     course.CourseCode,
		SubjectID:      course.SubjectID,
		AcademicYearID: yearID,
		Semester:       upload.Semester,
		Grade:          course.Grade,
		Section:        section,
		Instructor:     course.Instructor,
		Remarks:        remarks,
	})
	if err != nil {
		if errors.Is(err, backend.ErrDuplicateGrade) {
			return models.SaveResult{CourseCode: course.CourseCode, Duplicate: true, Message: err.Error()}
		}
		return models.SaveResult{CourseCode: course.CourseCode, Message: err.Error()}
	}
	return models.SaveResult{
		CourseCode: course.CourseCode,
		Saved:      true,
		Message:    resp.Message,
		YearUpdate: resp.YearUpdate,
	}
}

// fetchAuxTexts issues the two auxiliary plain-text fetches concurrently.
// Both populate disjoint fields and any failure degrades to "no source".
func (o *Orchestrator) fetchAuxTexts(ctx context.Context, req Request, log zerolog.Logger) (structureText, gradeListText string) {
	if o.texts == nil {
		return "", ""
	}

	var wg sync.WaitGroup
	if req.StructureTextPath != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := o.texts.FetchText(ctx, req.StructureTextPath)
			if err != nil {
				log.Warn().Err(err).Msg("Grade structure text unavailable")
				return
			}
			structureText = text
		}()
	}
	if req.GradeListPath != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := o.texts.FetchText(ctx, req.GradeListPath)
			if err != nil {
				log.Warn().Err(err).Msg("Grade list text unavailable")
				return
			}
			gradeListText = text
		}()
	}
	wg.Wait()
	return structureText, gradeListText
}
