package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TopicRating struct {
	gorm.Model
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index:idx_topic_rating,unique,priority:1" json:"course_id"`
	Course    *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	Topic     string    `gorm:"not null;index:idx_topic_rating,unique,priority:2;column:topic" json:"topic"`
	Weakness  float64   `gorm:"not null;column:weakness" json:"weakness"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TopicRating) TableName() string {
	return "topic_rating"
}
