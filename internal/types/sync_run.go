package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncRun is the audit record of one calendar reconciliation, so callers can
// report "N of M events synced" after the fact.
type SyncRun struct {
	gorm.Model
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID   uuid.UUID `gorm:"index;not null" json:"course_id"`
	Course     *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	CalendarID string    `gorm:"not null;column:calendar_id" json:"calendar_id"`
	Requested  int       `gorm:"not null;column:requested" json:"requested"`
	Created    int       `gorm:"not null;column:created" json:"created"`
	Skipped    int       `gorm:"not null;column:skipped" json:"skipped"`
	Failed     int       `gorm:"not null;column:failed" json:"failed"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (SyncRun) TableName() string {
	return "sync_run"
}
