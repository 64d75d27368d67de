package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pitstop/pitstop-backend/internal/requestdata"
	"github.com/pitstop/pitstop-backend/internal/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandler(scheduleService services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// POST /api/courses/:id/schedule
// Rebuilds the study plan from the stored rows and ratings. Replaces any
// previously stored plan for the course.
func (sh *ScheduleHandler) Build(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	plan, err := sh.scheduleService.BuildPlan(c.Request.Context(), rd.UserID, courseID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "schedule_failed", err)
		return
	}
	RespondOK(c, plan)
}

// GET /api/courses/:id/schedule
func (sh *ScheduleHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	sessions, err := sh.scheduleService.GetPlan(c.Request.Context(), rd.UserID, courseID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return
	}
	RespondOK(c, gin.H{"sessions": sessions})
}
