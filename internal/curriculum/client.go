package curriculum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/achievemate/gradeflow/internal/fieldres"
	"github.com/achievemate/gradeflow/internal/logger"
	"github.com/achievemate/gradeflow/pkg/models"
)

// ErrCatalogUnavailable is returned when the curriculum catalog cannot be
// fetched. It is retryable: the upload halts at validation and the caller
// decides whether to retry.
var ErrCatalogUnavailable = errors.New("curriculum catalog unavailable")

// CatalogClient fetches the authoritative subject catalog, optionally
// scoped to one curriculum.
type CatalogClient interface {
	Subjects(ctx context.Context, curriculumID string) ([]models.CurriculumSubject, error)
}

// HTTPCatalogClient reads the catalog from the backend and caches the
// decoded snapshot so one upload's pipeline stages share a consistent view.
type HTTPCatalogClient struct {
	baseURL string
	client  *http.Client
	cache   *gocache.Cache
	log     zerolog.Logger
}

// NewHTTPCatalogClient creates a catalog client with the given snapshot
// TTL.
func NewHTTPCatalogClient(baseURL string, cacheTTL time.Duration) *HTTPCatalogClient {
	return &HTTPCatalogClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		cache:   gocache.New(cacheTTL, 2*cacheTTL),
		log:     logger.WithComponent("curriculum-catalog"),
	}
}

// Subjects returns the catalog filtered to curriculumID when non-empty.
// Field names vary across backend versions, so each logical field resolves
// through an ordered fallback chain.
func (c *HTTPCatalogClient) Subjects(ctx context.Context, curriculumID string) ([]models.CurriculumSubject, error) {
	const op = "Subjects"

	cacheKey := "catalog:" + curriculumID
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]models.CurriculumSubject), nil
	}

	endpoint := c.baseURL + "/curriculum_subjects.php"
	if curriculumID != "" {
		endpoint += "?curriculum_id=" + url.QueryEscape(curriculumID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrCatalogUnavailable, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w: HTTP %d", op, ErrCatalogUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrCatalogUnavailable, err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		// Some backend versions wrap the list in {subjects: [...]}
		var wrapped struct {
			Subjects []map[string]any `json:"subjects"`
		}
		if err2 := json.Unmarshal(body, &wrapped); err2 != nil || wrapped.Subjects == nil {
			return nil, fmt.Errorf("%s: %w: invalid JSON body", op, ErrCatalogUnavailable)
		}
		rows = wrapped.Subjects
	}

	subjects := make([]models.CurriculumSubject, 0, len(rows))
	for _, row := range rows {
		subject := models.CurriculumSubject{
			SubjectID:    fieldres.String(row, "subject_id", "id"),
			CurriculumID: fieldres.String(row, "curriculum_id"),
			Code:         fieldres.String(row, "Code", "code", "course_code"),
			Title:        fieldres.String(row, "Course_Title", "course_title", "title"),
			Units:        fieldres.String(row, "units", "Units", "credit_units"),
			YearLevel:    fieldres.String(row, "year_level"),
			Track:        fieldres.String(row, "track"),
		}
		if curriculumID != "" && subject.CurriculumID != "" && subject.CurriculumID != curriculumID {
			continue
		}
		subjects = append(subjects, subject)
	}

	c.cache.Set(cacheKey, subjects, gocache.DefaultExpiration)

	c.log.Debug().
		Int("subjects", len(subjects)).
		Str("curriculum_id", curriculumID).
		Msg("Curriculum catalog fetched")

	return subjects, nil
}
