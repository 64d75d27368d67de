package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pitstop/pitstop-backend/internal/logger"
	"github.com/pitstop/pitstop-backend/internal/repos"
	"github.com/pitstop/pitstop-backend/internal/schedule"
	"github.com/pitstop/pitstop-backend/internal/types"
)

// StudyPlan is one scheduling result: the persisted sessions plus the
// under-allocation report for anything that did not fit.
type StudyPlan struct {
	Sessions   []*types.StudySession `json:"sessions"`
	Shortfalls []schedule.Shortfall  `json:"shortfalls,omitempty"`
}

// ScheduleService runs the allocation stage: stored course rows + ratings in,
// persisted deterministic study plan out.
type ScheduleService interface {
	BuildPlan(ctx context.Context, userID, courseID uuid.UUID) (*StudyPlan, error)
	GetPlan(ctx context.Context, userID, courseID uuid.UUID) ([]*types.StudySession, error)
}

type scheduleService struct {
	db          *gorm.DB
	log         *logger.Logger
	courseRepo  repos.CourseRepo
	ratings     RatingService
	sessionRepo repos.StudySessionRepo
	now         func() time.Time
}

func NewScheduleService(
	db *gorm.DB,
	log *logger.Logger,
	courseRepo repos.CourseRepo,
	ratings RatingService,
	sessionRepo repos.StudySessionRepo,
) ScheduleService {
	return &scheduleService{
		db:          db,
		log:         log.With("service", "ScheduleService"),
		courseRepo:  courseRepo,
		ratings:     ratings,
		sessionRepo: sessionRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *scheduleService) BuildPlan(ctx context.Context, userID, courseID uuid.UUID) (*StudyPlan, error) {
	course, err := s.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil || course.UserID != userID {
		return nil, fmt.Errorf("course %s not found", courseID)
	}

	assignmentRows, err := s.courseRepo.ListAssignments(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	weekRows, err := s.courseRepo.ListTopicWeeks(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	index, err := s.ratings.Index(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var assignments []schedule.Assignment
	for _, row := range assignmentRows {
		if row.DueDate == nil {
			continue
		}
		assignments = append(assignments, schedule.Assignment{Name: row.Name, Due: *row.DueDate})
	}

	var weeks []schedule.TopicWeek
	for _, row := range weekRows {
		weeks = append(weeks, schedule.TopicWeek{
			Range:  schedule.DateRange{Start: row.StartDate, End: row.EndDate},
			Topics: strings.Split(row.Topics, ";"),
		})
	}

	if unrated := index.Unrated(SplitTopics(weekRows)); len(unrated) > 0 {
		s.log.Info("Unrated topics default to weakness 0", "course_id", courseID, "topics", unrated)
	}

	builder := schedule.NewBuilder(s.now())
	sessions, shortfalls := builder.Build(assignments, weeks, index)

	rows := make([]*types.StudySession, 0, len(sessions))
	for _, sess := range sessions {
		rows = append(rows, &types.StudySession{
			ID:          uuid.New(),
			CourseID:    courseID,
			Date:        sess.Date,
			StartMinute: sess.StartMinute,
			EndMinute:   sess.EndMinute,
			Topics:      strings.Join(sess.Topics, ";"),
		})
	}
	if err := s.sessionRepo.Replace(ctx, nil, courseID, rows); err != nil {
		return nil, fmt.Errorf("persist study plan: %w", err)
	}

	for _, sf := range shortfalls {
		s.log.Warn("Study budget did not fully fit before deadline",
			"course_id", courseID,
			"topic", sf.Topic,
			"week_start", sf.WeekStart.Format("2006-01-02"),
			"requested_min", sf.Requested,
			"placed_min", sf.Placed,
		)
	}

	return &StudyPlan{Sessions: rows, Shortfalls: shortfalls}, nil
}

func (s *scheduleService) GetPlan(ctx context.Context, userID, courseID uuid.UUID) ([]*types.StudySession, error) {
	course, err := s.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil || course.UserID != userID {
		return nil, fmt.Errorf("course %s not found", courseID)
	}
	return s.sessionRepo.ListByCourse(ctx, nil, courseID)
}
