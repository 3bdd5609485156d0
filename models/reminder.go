package models

import (
	"fmt"
	"time"
)

// ReminderStatus tracks delivery of a training reminder.
type ReminderStatus string

const (
	ReminderStatusPending ReminderStatus = "pending"
	ReminderStatusSent    ReminderStatus = "sent"
	ReminderStatusFailed  ReminderStatus = "failed"
)

// Reminder is a scheduled training notification. Its ID is derived from the
// calendar date so a day can never be scheduled twice for one profile.
type Reminder struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(40)"`
	ProfileID uint           `json:"profile_id" gorm:"primaryKey;autoIncrement:false"`
	DayNumber int            `json:"day_number"`
	Title     string         `json:"title"`
	Body      string         `json:"body" gorm:"type:text"`
	FireAt    time.Time      `json:"fire_at" gorm:"index;not null"`
	Status    ReminderStatus `json:"status" gorm:"type:varchar(20);default:'pending';not null"`
	SentAt    *time.Time     `json:"sent_at,omitempty"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Reminder model.
func (Reminder) TableName() string {
	return "reminders"
}

// ReminderID builds the "training-Y-M-D" key for a fire date.
func ReminderID(t time.Time) string {
	return fmt.Sprintf("training-%d-%d-%d", t.Year(), int(t.Month()), t.Day())
}
