// Package server exposes the pipeline over HTTP for the mobile client:
// a stateless extract preview, the full review preparation, and the save
// call for an approved upload.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/achievemate/gradeflow/internal/extract"
	"github.com/achievemate/gradeflow/internal/grades"
	"github.com/achievemate/gradeflow/internal/guard"
	"github.com/achievemate/gradeflow/internal/logger"
	"github.com/achievemate/gradeflow/internal/metrics"
	"github.com/achievemate/gradeflow/internal/submission"
	"github.com/achievemate/gradeflow/pkg/models"
)

// uploadTTL bounds how long a prepared upload waits for the student's
// confirmation before it is discarded.
const uploadTTL = 15 * time.Minute

// Server holds the pipeline services behind the HTTP handlers. Prepared
// uploads are parked in an in-memory cache between review and submit.
type Server struct {
	orch       *submission.Orchestrator
	extractor  *extract.Extractor
	reconciler *grades.Reconciler
	uploads    *gocache.Cache
	log        zerolog.Logger
}

// New creates the HTTP server around a submission orchestrator.
func New(orch *submission.Orchestrator) *Server {
	return &Server{
		orch:       orch,
		extractor:  extract.NewExtractor(),
		reconciler: grades.NewReconciler(),
		uploads:    gocache.New(uploadTTL, 2*uploadTTL),
		log:        logger.WithComponent("http-server"),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", s.handleHealth)

	v1 := engine.Group("/v1")
	{
		v1.POST("/extract", s.handleExtract)
		v1.POST("/review", s.handleReview)
		v1.POST("/submit", s.handleSubmit)
	}
	return engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type extractRequest struct {
	Text          string `json:"text" binding:"required"`
	GradeListText string `json:"grade_list_text"`
}

// handleExtract runs extraction, reconciliation and aggregation without
// touching any backend. It is the preview the client shows right after OCR.
func (s *Server) handleExtract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc := s.extractor.Extract(req.Text)
	source := s.reconciler.Resolve(doc, grades.ExtractSequence(req.GradeListText))
	summary := metrics.Aggregate(doc)

	c.JSON(http.StatusOK, gin.H{
		"document":     doc,
		"summary":      summary,
		"grade_source": source,
	})
}

type reviewRequest struct {
	Text              string `json:"text" binding:"required"`
	StudentID         string `json:"student_id" binding:"required"`
	CurriculumID      string `json:"curriculum_id"`
	AcademicYear      string `json:"academic_year"`
	Semester          string `json:"semester"`
	StructureTextPath string `json:"structure_text_path"`
	GradeListPath     string `json:"grade_list_path"`
}

// handleReview runs the full pipeline up to ready-for-review and parks the
// upload for a later submit call.
func (s *Server) handleReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upload, err := s.orch.Prepare(c.Request.Context(), submission.Request{
		Text:              req.Text,
		StudentID:         req.StudentID,
		CurriculumID:      req.CurriculumID,
		AcademicYear:      req.AcademicYear,
		Semester:          req.Semester,
		StructureTextPath: req.StructureTextPath,
		GradeListPath:     req.GradeListPath,
	})
	if err != nil {
		s.respondStageError(c, upload, err)
		return
	}

	s.uploads.Set(upload.ID, upload, gocache.DefaultExpiration)
	c.JSON(http.StatusOK, gin.H{
		"upload_id":     upload.ID,
		"state":         upload.State,
		"document":      upload.Document,
		"summary":       upload.Summary,
		"grade_source":  upload.GradeSource,
		"matches":       upload.Matches,
		"validated":     upload.Validated,
		"academic_year": upload.AcademicYear,
		"semester":      upload.Semester,
	})
}

type submitRequest struct {
	UploadID string                `json:"upload_id" binding:"required"`
	Courses  []models.CourseRecord `json:"courses"`
}

// handleSubmit persists the approved course set of a prepared upload.
func (s *Server) handleSubmit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cached, found := s.uploads.Get(req.UploadID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload not found or expired"})
		return
	}
	upload := cached.(*submission.Upload)

	summary, err := s.orch.Save(c.Request.Context(), upload, req.Courses)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "state": upload.State})
		return
	}

	s.uploads.Delete(upload.ID)
	c.JSON(http.StatusOK, gin.H{
		"state":   upload.State,
		"summary": summary,
	})
}

// respondStageError maps pipeline halts to HTTP statuses: a period conflict
// is a 409 naming the conflicting period, retryable stage failures are 503.
func (s *Server) respondStageError(c *gin.Context, upload *submission.Upload, err error) {
	var conflict *guard.PeriodConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"error":         conflict.Error(),
			"academic_year": conflict.AcademicYear,
			"semester":      conflict.Semester,
			"duplicates":    conflict.Duplicates,
		})
		return
	}

	var stage *submission.StageError
	if errors.As(err, &stage) && stage.Retryable {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":     stage.Error(),
			"state":     stage.State,
			"retryable": true,
		})
		return
	}

	s.log.Error().Err(err).Msg("Review preparation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
