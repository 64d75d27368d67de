package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course is the persisted result of one syllabus extraction. The raw LLM
// payload is kept verbatim in Extracted so the learner can re-derive state
// between pipeline steps without re-uploading.
type Course struct {
	gorm.Model
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"index;not null" json:"user_id"`
	User       *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Name       string         `gorm:"not null;column:name" json:"name"`
	Code       string         `gorm:"not null;column:code" json:"code"`
	BucketKey  string         `gorm:"column:bucket_key" json:"bucket_key,omitempty"`
	Extracted  datatypes.JSON `gorm:"type:jsonb;column:extracted" json:"extracted"`
	CalendarID string         `gorm:"column:calendar_id" json:"calendar_id,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
}

func (Course) TableName() string {
	return "course"
}

type CourseAssignment struct {
	gorm.Model
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"index;not null" json:"course_id"`
	Course   *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	Name     string    `gorm:"not null;column:name" json:"name"`
	DueText  string    `gorm:"not null;column:due_text" json:"due_text"`
	// Nil when DueText could not be normalized; such rows are kept for audit
	// but never synced.
	DueDate   *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

func (CourseAssignment) TableName() string {
	return "course_assignment"
}

type TopicWeek struct {
	gorm.Model
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"index;not null" json:"course_id"`
	Course   *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	// Topics as extracted: one string, semicolon-delimited.
	Topics    string    `gorm:"not null;column:topics" json:"topics"`
	RangeText string    `gorm:"not null;column:range_text" json:"range_text"`
	StartDate time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate   time.Time `gorm:"column:end_date" json:"end_date"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TopicWeek) TableName() string {
	return "topic_week"
}
