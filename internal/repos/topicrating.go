package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pitstop/pitstop-backend/internal/logger"
	"github.com/pitstop/pitstop-backend/internal/types"
)

type TopicRatingRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, ratings []*types.TopicRating) error
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.TopicRating, error)
}

type topicRatingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRatingRepo(db *gorm.DB, baseLog *logger.Logger) TopicRatingRepo {
	return &topicRatingRepo{db: db, log: baseLog.With("repo", "TopicRatingRepo")}
}

func (r *topicRatingRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Upsert writes ratings with last-write-wins semantics per (course, topic).
func (r *topicRatingRepo) Upsert(ctx context.Context, tx *gorm.DB, ratings []*types.TopicRating) error {
	if len(ratings) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "topic"}},
			DoUpdates: clause.AssignmentColumns([]string{"weakness", "updated_at"}),
		}).
		Create(&ratings).Error
}

func (r *topicRatingRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.TopicRating, error) {
	var ratings []*types.TopicRating
	err := r.conn(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("topic ASC").
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}
