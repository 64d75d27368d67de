package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pitstop/pitstop-backend/internal/logger"
	"github.com/pitstop/pitstop-backend/internal/types"
)

type StudySessionRepo interface {
	// Replace drops the previous plan for the course and stores the new one
	// in a single transaction; the builder owns session lifecycle, the store
	// only ever holds the latest plan.
	Replace(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, sessions []*types.StudySession) error
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.StudySession, error)
}

type studySessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudySessionRepo(db *gorm.DB, baseLog *logger.Logger) StudySessionRepo {
	return &studySessionRepo{db: db, log: baseLog.With("repo", "StudySessionRepo")}
}

func (r *studySessionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *studySessionRepo) Replace(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, sessions []*types.StudySession) error {
	return r.conn(tx).WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		if err := inner.Where("course_id = ?", courseID).
			Unscoped().
			Delete(&types.StudySession{}).Error; err != nil {
			return err
		}
		if len(sessions) == 0 {
			return nil
		}
		return inner.Create(&sessions).Error
	})
}

func (r *studySessionRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.StudySession, error) {
	var sessions []*types.StudySession
	err := r.conn(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("date ASC, start_minute ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
