package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pitstop/pitstop-backend/internal/requestdata"
	"github.com/pitstop/pitstop-backend/internal/services"
)

type RatingHandler struct {
	ratingService   services.RatingService
	syllabusService services.SyllabusService
}

func NewRatingHandler(ratingService services.RatingService, syllabusService services.SyllabusService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService, syllabusService: syllabusService}
}

// POST /api/courses/:id/ratings
// Body is the swipe deck result: one label per topic. Repeat swipes on the
// same topic overwrite the earlier label.
func (rh *RatingHandler) Save(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	course, err := rh.syllabusService.GetCourse(c.Request.Context(), rd.UserID, courseID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return
	}
	if course == nil {
		RespondError(c, http.StatusNotFound, "course_not_found", errors.New("course not found"))
		return
	}

	var req struct {
		Ratings []services.SwipeRating `json:"ratings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if len(req.Ratings) == 0 {
		RespondError(c, http.StatusBadRequest, "empty_ratings", errors.New("at least one rating is required"))
		return
	}
	if err := rh.ratingService.SaveSwipes(c.Request.Context(), courseID, req.Ratings); err != nil {
		RespondError(c, http.StatusInternalServerError, "save_failed", err)
		return
	}
	RespondOK(c, gin.H{"saved": len(req.Ratings)})
}
