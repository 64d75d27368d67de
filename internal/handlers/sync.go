package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pitstop/pitstop-backend/internal/clients/redis"
	"github.com/pitstop/pitstop-backend/internal/requestdata"
	"github.com/pitstop/pitstop-backend/internal/services"
)

type SyncHandler struct {
	syncService services.CalendarSyncService
}

func NewSyncHandler(syncService services.CalendarSyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// POST /api/courses/:id/sync
// Pushes the course's assignments and study sessions to the learner's
// Google calendar. Safe to call repeatedly.
func (sh *SyncHandler) Sync(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	result, err := sh.syncService.SyncCourse(c.Request.Context(), rd.UserID, courseID)
	if err != nil {
		if errors.Is(err, redis.ErrLockHeld) {
			RespondError(c, http.StatusConflict, "sync_in_progress", err)
			return
		}
		var calErr *services.CalendarServiceError
		if errors.As(err, &calErr) {
			RespondError(c, http.StatusBadGateway, "calendar_unavailable", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "sync_failed", err)
		return
	}
	RespondOK(c, result)
}

// GET /api/courses/:id/syncs
func (sh *SyncHandler) History(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	runs, err := sh.syncService.ListRuns(c.Request.Context(), rd.UserID, courseID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "history_failed", err)
		return
	}
	RespondOK(c, gin.H{"runs": runs})
}
