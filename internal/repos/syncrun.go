package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pitstop/pitstop-backend/internal/logger"
	"github.com/pitstop/pitstop-backend/internal/types"
)

type SyncRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *types.SyncRun) error
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.SyncRun, error)
}

type syncRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSyncRunRepo(db *gorm.DB, baseLog *logger.Logger) SyncRunRepo {
	return &syncRunRepo{db: db, log: baseLog.With("repo", "SyncRunRepo")}
}

func (r *syncRunRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *syncRunRepo) Create(ctx context.Context, tx *gorm.DB, run *types.SyncRun) error {
	return r.conn(tx).WithContext(ctx).Create(run).Error
}

func (r *syncRunRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.SyncRun, error) {
	var runs []*types.SyncRun
	err := r.conn(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}
