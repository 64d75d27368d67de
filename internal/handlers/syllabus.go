package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pitstop/pitstop-backend/internal/logger"
	"github.com/pitstop/pitstop-backend/internal/requestdata"
	"github.com/pitstop/pitstop-backend/internal/services"
)

// 20 MB is generous for a syllabus; anything larger is a wrong file.
const maxSyllabusBytes = 20 << 20

type SyllabusHandler struct {
	log             *logger.Logger
	syllabusService services.SyllabusService
}

func NewSyllabusHandler(log *logger.Logger, syllabusService services.SyllabusService) *SyllabusHandler {
	return &SyllabusHandler{
		log:             log.With("handler", "SyllabusHandler"),
		syllabusService: syllabusService,
	}
}

// POST /api/courses/extract
// Multipart upload of one syllabus file; runs the full extraction pipeline.
func (h *SyllabusHandler) Extract(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	if fileHeader.Size > maxSyllabusBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", errors.New("syllabus exceeds 20MB"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	course, err := h.syllabusService.ExtractCourse(c.Request.Context(), rd.UserID, fileHeader.Filename, mimeType, data)
	if err != nil {
		var schemaErr *services.SchemaMismatchError
		if errors.As(err, &schemaErr) {
			RespondError(c, http.StatusUnprocessableEntity, "extraction_schema_mismatch", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "extraction_failed", err)
		return
	}
	RespondOK(c, course)
}

// GET /api/courses
func (h *SyllabusHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	courses, err := h.syllabusService.ListCourses(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, courses)
}

// GET /api/courses/:id
func (h *SyllabusHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	course, err := h.syllabusService.GetCourse(c.Request.Context(), rd.UserID, courseID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return
	}
	if course == nil {
		RespondError(c, http.StatusNotFound, "course_not_found", errors.New("course not found"))
		return
	}
	RespondOK(c, course)
}

// GET /api/courses/:id/topics
// Distinct topics across the course's weeks, for the swipe screen.
func (h *SyllabusHandler) Topics(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	topics, err := h.syllabusService.Topics(c.Request.Context(), rd.UserID, courseID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "topics_failed", err)
		return
	}
	if topics == nil {
		topics = []string{}
	}
	RespondOK(c, gin.H{"topics": topics})
}
