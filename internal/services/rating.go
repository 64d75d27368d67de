package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pitstop/pitstop-backend/internal/logger"
	"github.com/pitstop/pitstop-backend/internal/repos"
	"github.com/pitstop/pitstop-backend/internal/schedule"
	"github.com/pitstop/pitstop-backend/internal/types"
)

// SwipeRating is one swipe submission: a topic plus the learner's label.
type SwipeRating struct {
	Topic  string `json:"topic"`
	Rating string `json:"rating"` // weak | soso | familiar
}

// RatingService records per-topic self-assessments between the extraction
// and scheduling stages.
type RatingService interface {
	SaveSwipes(ctx context.Context, courseID uuid.UUID, swipes []SwipeRating) error
	Index(ctx context.Context, courseID uuid.UUID) (*schedule.RatingIndex, error)
}

type ratingService struct {
	db         *gorm.DB
	log        *logger.Logger
	ratingRepo repos.TopicRatingRepo
}

func NewRatingService(db *gorm.DB, log *logger.Logger, ratingRepo repos.TopicRatingRepo) RatingService {
	return &ratingService{
		db:         db,
		log:        log.With("service", "RatingService"),
		ratingRepo: ratingRepo,
	}
}

func (s *ratingService) SaveSwipes(ctx context.Context, courseID uuid.UUID, swipes []SwipeRating) error {
	rows := make([]*types.TopicRating, 0, len(swipes))
	for _, swipe := range swipes {
		if swipe.Topic == "" {
			continue
		}
		rows = append(rows, &types.TopicRating{
			ID:       uuid.New(),
			CourseID: courseID,
			Topic:    swipe.Topic,
			Weakness: schedule.WeaknessFromLabel(swipe.Rating),
		})
	}
	return s.ratingRepo.Upsert(ctx, nil, rows)
}

func (s *ratingService) Index(ctx context.Context, courseID uuid.UUID) (*schedule.RatingIndex, error) {
	rows, err := s.ratingRepo.ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	ratings := make([]schedule.TopicRating, 0, len(rows))
	for _, row := range rows {
		ratings = append(ratings, schedule.TopicRating{Topic: row.Topic, Weakness: row.Weakness})
	}
	return schedule.NewRatingIndex(ratings), nil
}
