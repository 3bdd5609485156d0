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

// MealRepository defines the interface for interacting with diet data.
type MealRepository interface {
	GetMealDay(profileID uint, date time.Time) (*models.MealDay, error)
	GetMealDayByID(mealDayID uint) (*models.MealDay, error)
	CreateMealDay(day *models.MealDay) error
	ListMealDays(profileID uint) ([]*models.MealDay, error)

	CreateEntry(entry *models.MealEntry) error
	GetEntryByID(entryID uint) (*models.MealEntry, error)
	UpdateEntry(entry *models.MealEntry) error
	DeleteEntry(entryID uint) error

	SaveSubmission(day *models.MealDay, summary *models.NutritionSummary) error
}

type mealRepository struct {
	db *gorm.DB
}

// NewMealRepository creates a new instance of MealRepository.
func NewMealRepository(db *gorm.DB) MealRepository {
	return &mealRepository{db: db}
}

func preloadMealDay(db *gorm.DB) *gorm.DB {
	return db.Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).Preload("Summary")
}

// GetMealDay looks up the day keyed by date's calendar day; (nil, nil) if absent.
func (r *mealRepository) GetMealDay(profileID uint, date time.Time) (*models.MealDay, error) {
	var day models.MealDay
	err := preloadMealDay(r.db).
		Where("profile_id = ? AND date = ?", profileID, models.DateKey(date)).
		First(&day).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("ERROR: [MealRepository] Failed to retrieve meal day for profile ID %d: %v", profileID, err)
		return nil, fmt.Errorf("failed to retrieve meal day for profile ID %d: %w", profileID, err)
	}
	return &day, nil
}

func (r *mealRepository) GetMealDayByID(mealDayID uint) (*models.MealDay, error) {
	var day models.MealDay
	err := preloadMealDay(r.db).First(&day, mealDayID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("ERROR: [MealRepository] Failed to retrieve meal day ID %d: %v", mealDayID, err)
		return nil, fmt.Errorf("failed to retrieve meal day ID %d: %w", mealDayID, err)
	}
	return &day, nil
}

func (r *mealRepository) CreateMealDay(day *models.MealDay) error {
	if day == nil || day.ProfileID == 0 {
		return errors.New("meal day must be associated with a ProfileID")
	}
	day.Date = models.DateKey(day.Date)
	if err := r.db.Create(day).Error; err != nil {
		log.Printf("ERROR: [MealRepository] Failed to create meal day for profile ID %d: %v", day.ProfileID, err)
		return fmt.Errorf("failed to create meal day: %w", err)
	}
	return nil
}

func (r *mealRepository) ListMealDays(profileID uint) ([]*models.MealDay, error) {
	var days []*models.MealDay
	err := preloadMealDay(r.db).Where("profile_id = ?", profileID).Order("date asc").Find(&days).Error
	if err != nil {
		log.Printf("ERROR: [MealRepository] Failed to list meal days for profile ID %d: %v", profileID, err)
		return nil, fmt.Errorf("failed to list meal days for profile ID %d: %w", profileID, err)
	}
	return days, nil
}

func (r *mealRepository) CreateEntry(entry *models.MealEntry) error {
	if entry == nil || entry.MealDayID == 0 {
		return errors.New("meal entry must be associated with a MealDayID")
	}
	if err := r.db.Create(entry).Error; err != nil {
		log.Printf("ERROR: [MealRepository] Failed to create %s entry for meal day ID %d: %v", entry.MealType, entry.MealDayID, err)
		return fmt.Errorf("failed to create meal entry: %w", err)
	}
	return nil
}

func (r *mealRepository) GetEntryByID(entryID uint) (*models.MealEntry, error) {
	var entry models.MealEntry
	if err := r.db.First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve meal entry ID %d: %w", entryID, err)
	}
	return &entry, nil
}

func (r *mealRepository) UpdateEntry(entry *models.MealEntry) error {
	if entry == nil || entry.ID == 0 {
		return errors.New("meal entry ID must be provided for update")
	}
	if err := r.db.Save(entry).Error; err != nil {
		log.Printf("ERROR: [MealRepository] Failed to update meal entry ID %d: %v", entry.ID, err)
		return fmt.Errorf("failed to update meal entry ID %d: %w", entry.ID, err)
	}
	return nil
}

func (r *mealRepository) DeleteEntry(entryID uint) error {
	if err := r.db.Delete(&models.MealEntry{}, entryID).Error; err != nil {
		log.Printf("ERROR: [MealRepository] Failed to delete meal entry ID %d: %v", entryID, err)
		return fmt.Errorf("failed to delete meal entry ID %d: %w", entryID, err)
	}
	return nil
}

// SaveSubmission writes the updated entry macros, upserts the day's summary
// and stores the submitted flag in one transaction.
func (r *mealRepository) SaveSubmission(day *models.MealDay, summary *models.NutritionSummary) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for i := range day.Entries {
			if err := tx.Save(&day.Entries[i]).Error; err != nil {
				return fmt.Errorf("failed to save entry ID %d: %w", day.Entries[i].ID, err)
			}
		}
		summary.MealDayID = day.ID
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "meal_day_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_calories", "protein", "carbs", "fat", "notes", "updated_at"}),
		}).Create(summary).Error; err != nil {
			return fmt.Errorf("failed to upsert summary: %w", err)
		}
		return tx.Model(&models.MealDay{}).Where("id = ?", day.ID).Update("submitted", day.Submitted).Error
	})
	if err != nil {
		log.Printf("ERROR: [MealRepository] Failed to save submission for meal day ID %d: %v", day.ID, err)
		return fmt.Errorf("failed to save submission for meal day ID %d: %w", day.ID, err)
	}
	day.Summary = summary
	log.Printf("INFO: [MealRepository] Saved submission for meal day ID %d (%.0f kcal).", day.ID, summary.TotalCalories)
	return nil
}
