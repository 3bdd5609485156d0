package repository

import (
	"errors"
	"fmt"
	"log"
	"time"

	"fitgenius/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReminderRepository defines the interface for persisted training reminders.
type ReminderRepository interface {
	UpsertReminders(reminders []*models.Reminder) error
	ListByProfile(profileID uint) ([]*models.Reminder, error)
	ListDue(now time.Time) ([]*models.Reminder, error)
	UpdateStatus(reminder *models.Reminder) error
	DeleteByProfile(profileID uint) error
}

type reminderRepository struct {
	db *gorm.DB
}

// NewReminderRepository creates a new instance of ReminderRepository.
func NewReminderRepository(db *gorm.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

// UpsertReminders inserts reminders, refreshing schedule fields of any that
// already exist for the same (id, profile) key. Uses GORM's OnConflict (UPSERT).
func (r *reminderRepository) UpsertReminders(reminders []*models.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}, {Name: "profile_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"day_number", "title", "body", "fire_at", "status", "updated_at"}),
	}).Create(&reminders).Error
	if err != nil {
		log.Printf("ERROR: [ReminderRepository] Failed to upsert %d reminders: %v", len(reminders), err)
		return fmt.Errorf("failed to upsert reminders: %w", err)
	}
	log.Printf("INFO: [ReminderRepository] Upserted %d reminders.", len(reminders))
	return nil
}

func (r *reminderRepository) ListByProfile(profileID uint) ([]*models.Reminder, error) {
	var reminders []*models.Reminder
	if err := r.db.Where("profile_id = ?", profileID).Order("fire_at asc").Find(&reminders).Error; err != nil {
		log.Printf("ERROR: [ReminderRepository] Failed to list reminders for profile ID %d: %v", profileID, err)
		return nil, fmt.Errorf("failed to list reminders for profile ID %d: %w", profileID, err)
	}
	return reminders, nil
}

// ListDue returns pending reminders whose fire time has passed.
func (r *reminderRepository) ListDue(now time.Time) ([]*models.Reminder, error) {
	var reminders []*models.Reminder
	err := r.db.Where("status = ? AND fire_at <= ?", models.ReminderStatusPending, now).
		Order("fire_at asc").Find(&reminders).Error
	if err != nil {
		log.Printf("ERROR: [ReminderRepository] Failed to list due reminders: %v", err)
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return reminders, nil
}

func (r *reminderRepository) UpdateStatus(reminder *models.Reminder) error {
	if reminder == nil || reminder.ID == "" {
		return errors.New("reminder ID must be provided for update")
	}
	err := r.db.Model(&models.Reminder{}).
		Where("id = ? AND profile_id = ?", reminder.ID, reminder.ProfileID).
		Updates(map[string]interface{}{"status": reminder.Status, "sent_at": reminder.SentAt}).Error
	if err != nil {
		log.Printf("ERROR: [ReminderRepository] Failed to update reminder %s: %v", reminder.ID, err)
		return fmt.Errorf("failed to update reminder %s: %w", reminder.ID, err)
	}
	return nil
}

func (r *reminderRepository) DeleteByProfile(profileID uint) error {
	if err := r.db.Where("profile_id = ?", profileID).Delete(&models.Reminder{}).Error; err != nil {
		log.Printf("ERROR: [ReminderRepository] Failed to delete reminders for profile ID %d: %v", profileID, err)
		return fmt.Errorf("failed to delete reminders for profile ID %d: %w", profileID, err)
	}
	return nil
}
