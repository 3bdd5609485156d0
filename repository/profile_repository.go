package repository

import (
	"errors"
	"fmt"
	"log"

	"fitgenius/models"

	"gorm.io/gorm"
)

// ProfileRepository defines the interface for interacting with profile data.
type ProfileRepository interface {
	CreateProfile(profile *models.Profile) error
	GetProfileByID(profileID uint) (*models.Profile, error)
	GetProfileByUserID(userID string) (*models.Profile, error)
	UpdateProfile(profile *models.Profile) error
	DeleteProfile(profileID uint) error // Removes the profile and everything it owns
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) CreateProfile(profile *models.Profile) error {
	if profile == nil {
		return errors.New("profile cannot be nil")
	}
	if err := r.db.Create(profile).Error; err != nil {
		log.Printf("ERROR: [ProfileRepository] Failed to create profile for userID %s: %v", profile.UserID, err)
		return fmt.Errorf("failed to create profile for userID %s: %w", profile.UserID, err)
	}
	log.Printf("INFO: [ProfileRepository] Created profile ID %d for userID %s.", profile.ID, profile.UserID)
	return nil
}

// GetProfileByID returns (nil, nil) when the profile does not exist.
func (r *profileRepository) GetProfileByID(profileID uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.First(&profile, profileID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("INFO: [ProfileRepository] Profile with ID %d not found.", profileID)
			return nil, nil
		}
		log.Printf("ERROR: [ProfileRepository] Failed to retrieve profile ID %d: %v", profileID, err)
		return nil, fmt.Errorf("failed to retrieve profile ID %d: %w", profileID, err)
	}
	return &profile, nil
}

// GetProfileByUserID returns (nil, nil) when no profile carries userID.
func (r *profileRepository) GetProfileByUserID(userID string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("ERROR: [ProfileRepository] Failed to retrieve profile for userID %s: %v", userID, err)
		return nil, fmt.Errorf("failed to retrieve profile for userID %s: %w", userID, err)
	}
	return &profile, nil
}

func (r *profileRepository) UpdateProfile(profile *models.Profile) error {
	if profile == nil || profile.ID == 0 {
		return errors.New("profile ID must be provided for update")
	}
	if err := r.db.Save(profile).Error; err != nil {
		log.Printf("ERROR: [ProfileRepository] Failed to update profile ID %d: %v", profile.ID, err)
		return fmt.Errorf("failed to update profile ID %d: %w", profile.ID, err)
	}
	return nil
}

// DeleteProfile removes the profile, its plans (days, exercises, logs), meal
// days and reminders in one transaction.
func (r *profileRepository) DeleteProfile(profileID uint) error {
	log.Printf("INFO: [ProfileRepository] Attempting to delete profile ID %d and owned data.", profileID)
	err := r.db.Transaction(func(tx *gorm.DB) error {
		planIDs := tx.Model(&models.Plan{}).Select("id").Where("profile_id = ?", profileID)
		dayIDs := tx.Model(&models.Day{}).Select("id").Where("plan_id IN (?)", planIDs)
		exerciseIDs := tx.Model(&models.Exercise{}).Select("id").Where("day_id IN (?)", dayIDs)
		mealDayIDs := tx.Model(&models.MealDay{}).Select("id").Where("profile_id = ?", profileID)

		steps := []struct {
			name string
			run  func() error
		}{
			{"exercise logs", func() error {
				return tx.Where("exercise_id IN (?)", exerciseIDs).Delete(&models.ExerciseLog{}).Error
			}},
			{"exercises", func() error { return tx.Where("day_id IN (?)", dayIDs).Delete(&models.Exercise{}).Error }},
			{"days", func() error { return tx.Where("plan_id IN (?)", planIDs).Delete(&models.Day{}).Error }},
			{"plans", func() error { return tx.Where("profile_id = ?", profileID).Delete(&models.Plan{}).Error }},
			{"meal entries", func() error {
				return tx.Where("meal_day_id IN (?)", mealDayIDs).Delete(&models.MealEntry{}).Error
			}},
			{"nutrition summaries", func() error {
				return tx.Where("meal_day_id IN (?)", mealDayIDs).Delete(&models.NutritionSummary{}).Error
			}},
			{"meal days", func() error { return tx.Where("profile_id = ?", profileID).Delete(&models.MealDay{}).Error }},
			{"reminders", func() error { return tx.Where("profile_id = ?", profileID).Delete(&models.Reminder{}).Error }},
			{"profile", func() error { return tx.Delete(&models.Profile{}, profileID).Error }},
		}
		for _, step := range steps {
			if err := step.run(); err != nil {
				return fmt.Errorf("failed to delete %s: %w", step.name, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("ERROR: [ProfileRepository] Failed to delete profile ID %d: %v", profileID, err)
		return fmt.Errorf("failed to delete profile ID %d: %w", profileID, err)
	}
	log.Printf("INFO: [ProfileRepository] Deleted profile ID %d.", profileID)
	return nil
}
