package models

// GradeStatus classifies a single course grade for summary counts and
// per-row flags.
type GradeStatus string

const (
	StatusPassed     GradeStatus = "PASSED"
	StatusFailed     GradeStatus = "FAIL"
	StatusIncomplete GradeStatus = "INC"
	StatusUnknown    GradeStatus = "UNKNOWN"
)

// CourseRecord is one row of a transcript recovered from OCR text.
type CourseRecord struct {
	// RowNumber is the ordinal position as it appeared in the source text.
	// Zero means the source row carried no number; positional deduplication
	// then falls back to the normalized course code.
	RowNumber int `json:"row_number,omitempty"`

	CourseCode  string `json:"course_code"`
	CourseTitle string `json:"course_title"`
	Units       string `json:"units"`
	Grade       string `json:"grade"`
	Section     string `json:"section"`
	Instructor  string `json:"instructor"`

	// SubjectID is the curriculum subject this record was matched to.
	// Empty until curriculum validation runs.
	SubjectID string `json:"subject_id,omitempty"`

	// SuggestionApplied marks records whose code/title/units were corrected
	// automatically from the best curriculum suggestion.
	SuggestionApplied bool `json:"suggestion_applied,omitempty"`
}

// GradeDocument is the result of processing one uploaded transcript.
// Courses keep first-seen order from parsing. The summary fields hold the
// document's own declared values when present; zero values mean "absent",
// never an error.
type GradeDocument struct {
	SourceText string `json:"-"`

	Courses []CourseRecord `json:"courses"`

	AcademicYear string `json:"academic_year,omitempty"`
	Semester     string `json:"semester,omitempty"`
	YearLevel    string `json:"year_level,omitempty"`

	GWA          float64 `json:"gwa,omitempty"`
	HasGWA       bool    `json:"has_gwa"`
	TotalUnits   float64 `json:"total_units,omitempty"`
	TotalCourses int     `json:"total_courses,omitempty"`
}

// CurriculumSubject is one row of the institution's authoritative catalog.
// The catalog is owned by the backend; the pipeline only reads a cached
// snapshot per invocation.
type CurriculumSubject struct {
	SubjectID    string `json:"subject_id"`
	CurriculumID string `json:"curriculum_id"`
	Code         string `json:"code"`
	Title        string `json:"title"`
	Units        string `json:"units"`
	YearLevel    string `json:"year_level"`
	Track        string `json:"track"`
}

// MatchStrategy names the rule that matched a course code to the catalog.
type MatchStrategy string

const (
	MatchExact    MatchStrategy = "exact"
	MatchNoSpaces MatchStrategy = "no_spaces"
	MatchPartial  MatchStrategy = "partial"
)

// Suggestion is one candidate catalog subject for an unmatched course,
// scored by normalized Levenshtein similarity in [0,1].
type Suggestion struct {
	Subject    CurriculumSubject `json:"subject"`
	Similarity float64           `json:"similarity"`
}

// MatchResult is the outcome of reconciling one CourseRecord against the
// curriculum catalog.
type MatchResult struct {
	Course  CourseRecord `json:"course"`
	Matched bool         `json:"matched"`

	// Subject and Strategy are set when Matched.
	Subject  CurriculumSubject `json:"subject,omitempty"`
	Strategy MatchStrategy     `json:"strategy,omitempty"`

	// Suggestions are present when unmatched, ordered by descending
	// similarity, capped by configuration.
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// DuplicateCheckResult flags a course whose grade is already persisted for
// the same student, subject, academic year and semester.
type DuplicateCheckResult struct {
	CourseCode    string `json:"course_code"`
	ExistingGrade string `json:"existing_grade"`
}

// SaveResult is the per-course outcome of the persistence step. Duplicate
// marks a server-detected duplicate (HTTP 409), which fails the course but
// not the upload.
type SaveResult struct {
	CourseCode string `json:"course_code"`
	Saved      bool   `json:"saved"`
	Duplicate  bool   `json:"duplicate"`
	Message    string `json:"message,omitempty"`
	YearUpdate string `json:"year_update,omitempty"`
}
