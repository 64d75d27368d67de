package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudySession is one computed study block, persisted so the sync step reads
// stored state instead of recomputing the plan.
type StudySession struct {
	gorm.Model
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"index;not null" json:"course_id"`
	Course   *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	Date     time.Time `gorm:"not null;column:date" json:"date"`
	// Minutes from midnight, matching the builder's representation.
	StartMinute int       `gorm:"not null;column:start_minute" json:"start_minute"`
	EndMinute   int       `gorm:"not null;column:end_minute" json:"end_minute"`
	Topics      string    `gorm:"not null;column:topics" json:"topics"` // semicolon-delimited
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (StudySession) TableName() string {
	return "study_session"
}
