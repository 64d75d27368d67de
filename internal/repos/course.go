package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pitstop/pitstop-backend/internal/logger"
	"github.com/pitstop/pitstop-backend/internal/types"
)

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, course *types.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Course, error)
	SetCalendarID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, calendarID string) error
	CreateAssignments(ctx context.Context, tx *gorm.DB, assignments []*types.CourseAssignment) error
	ListAssignments(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseAssignment, error)
	CreateTopicWeeks(ctx context.Context, tx *gorm.DB, weeks []*types.TopicWeek) error
	ListTopicWeeks(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.TopicWeek, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, course *types.Course) error {
	return r.conn(tx).WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
	var course types.Course
	err := r.conn(tx).WithContext(ctx).Where("id = ?", courseID).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Course, error) {
	var courses []*types.Course
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) SetCalendarID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, calendarID string) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.Course{}).
		Where("id = ?", courseID).
		Update("calendar_id", calendarID).Error
}

func (r *courseRepo) CreateAssignments(ctx context.Context, tx *gorm.DB, assignments []*types.CourseAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(&assignments).Error
}

func (r *courseRepo) ListAssignments(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseAssignment, error) {
	var assignments []*types.CourseAssignment
	err := r.conn(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC, name ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *courseRepo) CreateTopicWeeks(ctx context.Context, tx *gorm.DB, weeks []*types.TopicWeek) error {
	if len(weeks) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(&weeks).Error
}

func (r *courseRepo) ListTopicWeeks(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.TopicWeek, error) {
	var weeks []*types.TopicWeek
	err := r.conn(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("start_date ASC, created_at ASC").
		Find(&weeks).Error
	if err != nil {
		return nil, err
	}
	return weeks, nil
}
