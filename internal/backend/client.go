// Package backend is the HTTP client for the persistence API: the
// duplicate check, per-course grade inserts, and the auxiliary plain-text
// sources the reconciler cross-checks against.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/achievemate/gradeflow/internal/logger"
	"github.com/achievemate/gradeflow/pkg/models"
)

// CheckCourse is one candidate in a duplicate-check request.
type CheckCourse struct {
	CourseCode     string `json:"course_code"`
	SubjectID      string `json:"subject_id"`
	Grade          string `json:"grade"`
	Semester       string `json:"semester"`
	AcademicYearID int    `json:"academic_year_id"`
}

// CheckRequest asks whether grades already exist for the same student,
// subject, academic year and semester.
type CheckRequest struct {
	StudentID string        `json:"student_id"`
	Courses   []CheckCourse `json:"courses"`
}

// CheckResponse lists the duplicates the server found.
type CheckResponse struct {
	Success    bool `json:"success"`
	Duplicates []struct {
		CourseCode    string `json:"course_code"`
		ExistingGrade string `json:"existing_grade"`
	} `json:"duplicates"`
}

// InsertRequest persists one approved course grade.
type InsertRequest struct {
	StudentID      string `json:"student_id"`
	CourseCode     string `json:"course_code"`
	SubjectID      string `json:"subject_id"`
	AcademicYearID int    `json:"academic_year_id"`
	Semester       string `json:"semester"`
	Grade          string `json:"grade"`
	Section        string `json:"section"`
	Instructor     string `json:"instructor"`
	Remarks        string `json:"remarks"`
}

// InsertResponse is the server's per-insert result.
type InsertResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	YearUpdate string `json:"year_update"`
}

// GradeStore is the persistence surface the pipeline depends on.
type GradeStore interface {
	// CheckExistingGrades queries for already-persisted grades. The caller
	// (the duplicate guard) owns the fail-open policy; this method reports
	// failures honestly.
	CheckExistingGrades(ctx context.Context, req CheckRequest) ([]models.DuplicateCheckResult, error)

	// InsertGrade persists one course grade. A server-detected duplicate
	// (HTTP 409) returns ErrDuplicateGrade.
	InsertGrade(ctx context.Context, req InsertRequest) (*InsertResponse, error)
}

// TextSource fetches auxiliary plain-text documents (the grade structure
// text and the webpage-rendered grade list).
type TextSource interface {
	FetchText(ctx context.Context, path string) (string, error)
}

// Client talks to the PHP backend and the OCR service's text endpoints.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     logger.WithComponent("backend-client"),
	}
}

// CheckExistingGrades implements GradeStore.
func (c *Client) CheckExistingGrades(ctx context.Context, req CheckRequest) ([]models.DuplicateCheckResult, error) {
	const op = "CheckExistingGrades"

	body, err := c.postJSON(ctx, op, "/check_existing_grades.php", req)
	if err != nil {
		return nil, err
	}

	var parsed CheckResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &APIError{Op: op, Err: ErrMalformedResponse}
	}

	duplicates := make([]models.DuplicateCheckResult, 0, len(parsed.Duplicates))
	for _, d := range parsed.Duplicates {
		duplicates = append(duplicates, models.DuplicateCheckResult{
			CourseCode:    d.CourseCode,
			ExistingGrade: d.ExistingGrade,
		})
	}
	return duplicates, nil
}

// InsertGrade implements GradeStore.
func (c *Client) InsertGrade(ctx context.Context, req InsertRequest) (*InsertResponse, error) {
	const op = "InsertGrade"

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &APIError{Op: op, Err: err, CourseCode: req.CourseCode}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/insert_grade.php", bytes.NewReader(payload))
	if err != nil {
		return nil, &APIError{Op: op, Err: err, CourseCode: req.CourseCode}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &APIError{Op: op, Err: fmt.Errorf("%w: %v", ErrRequestFailed, err), CourseCode: req.CourseCode}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return nil, &APIError{Op: op, Err: ErrDuplicateGrade, CourseCode: req.CourseCode, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Op: op, Err: err, CourseCode: req.CourseCode, StatusCode: resp.StatusCode}
	}

	var parsed InsertResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &APIError{Op: op, Err: ErrMalformedResponse, CourseCode: req.CourseCode, StatusCode: resp.StatusCode}
	}

	if resp.StatusCode != http.StatusOK || !parsed.Success {
		msg := parsed.Message
		if msg == "" {
			msg = "insert rejected"
		}
		return nil, &APIError{Op: op, Err: fmt.Errorf("%w: %s", ErrRequestFailed, msg), CourseCode: req.CourseCode, StatusCode: resp.StatusCode}
	}

	return &parsed, nil
}

// FetchText implements TextSource. Any failure — transport error, non-OK
// status — yields an empty string and an error the caller may ignore; the
// reconciler treats absence as "no secondary source".
func (c *Client) FetchText(ctx context.Context, path string) (string, error) {
	const op = "FetchText"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", &APIError{Op: op, Err: err}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", &APIError{Op: op, Err: fmt.Errorf("%w: %v", ErrRequestFailed, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Op: op, Err: ErrRequestFailed, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &APIError{Op: op, Err: err, StatusCode: resp.StatusCode}
	}
	return string(body), nil
}

// postJSON posts a JSON payload and returns the raw response body for
// endpoints whose success contract is caller-specific.
func (c *Client) postJSON(ctx context.Context, op, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &APIError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, &APIError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &APIError{Op: op, Err: fmt.Errorf("%w: %v", ErrRequestFailed, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Op: op, Err: ErrRequestFailed, StatusCode: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}
