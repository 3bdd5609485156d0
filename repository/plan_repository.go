package repository

import (
	"errors"
	"fmt"
	"log"
	"time"

	"fitgenius/models"

	"gorm.io/gorm"
)

// ExerciseLogRecord is a log row joined with the name of its exercise.
type ExerciseLogRecord struct {
	ID           uint
	ExerciseID   uint
	Date         time.Time
	ActualWeight float64
	ActualSets   int
	ActualReps   string
	ExerciseName string
}

// PlanRepository defines the interface for interacting with plans, days, exercises and logs.
type PlanRepository interface {
	CreatePlan(plan *models.Plan) error
	GetPlanByID(planID uint) (*models.Plan, error)
	GetActivePlan(profileID uint) (*models.Plan, error)
	GetPlansByProfileID(profileID uint) ([]*models.Plan, error)
	ActivatePlan(profile *models.Profile, plan *models.Plan) error
	SavePlan(plan *models.Plan, removedExerciseIDs []uint) error

	GetDayByID(dayID uint) (*models.Day, error)
	CreateDay(day *models.Day) error
	DeleteDay(day *models.Day, renumbered []*models.Day) error

	GetExerciseByID(exerciseID uint) (*models.Exercise, error)
	CreateExercise(exercise *models.Exercise) error
	UpdateExercise(exercise *models.Exercise) error
	UpdateExercises(exercises []*models.Exercise) error
	DeleteExercise(exerciseID uint) error
	RecordCompletion(exercise *models.Exercise, entry *models.ExerciseLog) error
	GetExerciseLogs(profileID uint) ([]ExerciseLogRecord, error)
}

type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new instance of PlanRepository.
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func preloadPlanTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Days", func(db *gorm.DB) *gorm.DB { return db.Order("day_number asc") }).
		Preload("Days.Exercises", func(db *gorm.DB) *gorm.DB { return db.Order("order_index asc, id asc") })
}

// CreatePlan creates a new plan together with its days and exercises.
func (r *planRepository) CreatePlan(plan *models.Plan) error {
	if plan == nil {
		log.Printf("ERROR: [PlanRepository] CreatePlan: plan cannot be nil")
		return errors.New("plan cannot be nil")
	}
	err := r.db.Create(plan).Error
	if err != nil {
		log.Printf("ERROR: [PlanRepository] Failed to create plan for profile ID %d: %v", plan.ProfileID, err)
		return fmt.Errorf("failed to create plan for profile ID %d: %w", plan.ProfileID, err)
	}
	log.Printf("INFO: [PlanRepository] Successfully created plan ID %d for profile ID %d with %d days.", plan.ID, plan.ProfileID, len(plan.Days))
	return nil
}

// GetPlanByID retrieves a plan by its ID, preloading days and exercises.
func (r *planRepository) GetPlanByID(planID uint) (*models.Plan, error) {
	var plan models.Plan
	err := preloadPlanTree(r.db).First(&plan, planID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("INFO: [PlanRepository] Plan with ID %d not found.", planID)
			return nil, nil // Not found
		}
		log.Printf("ERROR: [PlanRepository] Failed to retrieve plan ID %d: %v", planID, err)
		return nil, fmt.Errorf("failed to retrieve plan ID %d: %w", planID, err)
	}
	return &plan, nil
}

// GetActivePlan returns the profile's active plan, or (nil, nil).
func (r *planRepository) GetActivePlan(profileID uint) (*models.Plan, error) {
	var plan models.Plan
	err := preloadPlanTree(r.db).
		Where("profile_id = ? AND status = ?", profileID, models.PlanStatusActive).
		Order("id desc").
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("ERROR: [PlanRepository] Failed to retrieve active plan for profile ID %d: %v", profileID, err)
		return nil, fmt.Errorf("failed to retrieve active plan for profile ID %d: %w", profileID, err)
	}
	return &plan, nil
}

// GetPlansByProfileID lists every plan of a profile, newest first, archived ones included.
func (r *planRepository) GetPlansByProfileID(profileID uint) ([]*models.Plan, error) {
	var plans []*models.Plan
	err := preloadPlanTree(r.db).Where("profile_id = ?", profileID).Order("id desc").Find(&plans).Error
	if err != nil {
		log.Printf("ERROR: [PlanRepository] Failed to retrieve plans for profile ID %d: %v", profileID, err)
		return nil, fmt.Errorf("failed to retrieve plans for profile ID %d: %w", profileID, err)
	}
	return plans, nil
}

// ActivatePlan archives the profile's current plans, persists plan as the
// active one and links it from the profile, all in one transaction.
func (r *planRepository) ActivatePlan(profile *models.Profile, plan *models.Plan) error {
	if profile == nil || plan == nil {
		return errors.New("profile and plan are required")
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Plan{}).
			Where("profile_id = ? AND status = ?", profile.ID, models.PlanStatusActive).
			Update("status", models.PlanStatusArchived).Error; err != nil {
			return fmt.Errorf("failed to archive previous plans: %w", err)
		}
		plan.ProfileID = profile.ID
		plan.Status = models.PlanStatusActive
		if err := tx.Create(plan).Error; err != nil {
			return fmt.Errorf("failed to create plan: %w", err)
		}
		if err := tx.Model(profile).Update("active_plan_id", plan.ID).Error; err != nil {
			return fmt.Errorf("failed to link plan: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Printf("ERROR: [PlanRepository] Failed to activate plan for profile ID %d: %v", profile.ID, err)
		return fmt.Errorf("failed to activate plan for profile ID %d: %w", profile.ID, err)
	}
	// Private copy so later activations never write through into plan.ID.
	activeID := plan.ID
	profile.ActivePlanID = &activeID
	log.Printf("INFO: [PlanRepository] Plan ID %d is now active for profile ID %d.", plan.ID, profile.ID)
	return nil
}

// SavePlan persists the whole plan tree and deletes the removed exercises
// (and their logs) as a single commit.
func (r *planRepository) SavePlan(plan *models.Plan, removedExerciseIDs []uint) error {
	if plan == nil || plan.ID == 0 {
		return errors.New("plan ID must be provided for save")
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if len(removedExerciseIDs) > 0 {
			if err := tx.Where("exercise_id IN ?", removedExerciseIDs).Delete(&models.ExerciseLog{}).Error; err != nil {
				return fmt.Errorf("failed to delete exercise logs: %w", err)
			}
			if err := tx.Delete(&models.Exercise{}, removedExerciseIDs).Error; err != nil {
				return fmt.Errorf("failed to delete exercises: %w", err)
			}
		}
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(plan).Error; err != nil {
			return fmt.Errorf("failed to save plan tree: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Printf("ERROR: [PlanRepository] Failed to save plan ID %d: %v", plan.ID, err)
		return fmt.Errorf("failed to save plan ID %d: %w", plan.ID, err)
	}
	log.Printf("INFO: [PlanRepository] Saved plan ID %d (%d exercises removed).", plan.ID, len(removedExerciseIDs))
	return nil
}

func (r *planRepository) GetDayByID(dayID uint) (*models.Day, error) {
	var day models.Day
	err := r.db.Preload("Exercises", func(db *gorm.DB) *gorm.DB { return db.Order("order_index asc, id asc") }).
		First(&day, dayID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("ERROR: [PlanRepository] Failed to retrieve day ID %d: %v", dayID, err)
		return nil, fmt.Errorf("failed to retrieve day ID %d: %w", dayID, err)
	}
	return &day, nil
}

func (r *planRepository) CreateDay(day *models.Day) error {
	if day == nil || day.PlanID == 0 {
		return errors.New("day must be associated with a PlanID")
	}
	if err := r.db.Create(day).Error; err != nil {
		log.Printf("ERROR: [PlanRepository] Failed to create day %d for plan ID %d: %v", day.DayNumber, day.PlanID, err)
		return fmt.Errorf("failed to create day for plan ID %d: %w", day.PlanID, err)
	}
	return nil
}

// DeleteDay removes a day with its exercises and logs, then writes the new
// numbers of the remaining days.
func (r *planRepository) DeleteDay(day *models.Day, renumbered []*models.Day) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		exerciseIDs := tx.Model(&models.Exercise{}).Select("id").Where("day_id = ?", day.ID)
		if err := tx.Where("exercise_id IN (?)", exerciseIDs).Delete(&models.ExerciseLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("day_id = ?", day.ID).Delete(&models.Exercise{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Day{}, day.ID).Error; err != nil {
			return err
		}
		for _, d := range renumbered {
			if err := tx.Model(&models.Day{}).Where("id = ?", d.ID).Update("day_number", d.DayNumber).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("ERROR: [PlanRepository] Failed to delete day ID %d: %v", day.ID, err)
		return fmt.Errorf("failed to delete day ID %d: %w", day.ID, err)
	}
	log.Printf("INFO: [PlanRepository] Deleted day ID %d, renumbered %d days.", day.ID, len(renumbered))
	return nil
}

func (r *planRepository) GetExerciseByID(exerciseID uint) (*models.Exercise, error) {
	var exercise models.Exercise
	err := r.db.First(&exercise, exerciseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("ERROR: [PlanRepository] Failed to retrieve exercise ID %d: %v", exerciseID, err)
		return nil, fmt.Errorf("failed to retrieve exercise ID %d: %w", exerciseID, err)
	}
	return &exercise, nil
}

func (r *planRepository) CreateExercise(exercise *models.Exercise) error {
	if exercise == nil || exercise.DayID == 0 {
		return errors.New("exercise must be associated with a DayID")
	}
	if err := r.db.Create(exercise).Error; err != nil {
		log.Printf("ERROR: [PlanRepository] Failed to create exercise '%s' for day ID %d: %v", exercise.Name, exercise.DayID, err)
		return fmt.Errorf("failed to create exercise '%s': %w", exercise.Name, err)
	}
	return nil
}

func (r *planRepository) UpdateExercise(exercise *models.Exercise) error {
	if exercise == nil || exercise.ID == 0 {
		return errors.New("exercise ID must be provided for update")
	}
	if err := r.db.Omit("Logs").Save(exercise).Error; err != nil {
		log.Printf("ERROR: [PlanRepository] Failed to update exercise ID %d: %v", exercise.ID, err)
		return fmt.Errorf("failed to update exercise ID %d: %w", exercise.ID, err)
	}
	return nil
}

// UpdateExercises saves several exercises in one transaction.
func (r *planRepository) UpdateExercises(exercises []*models.Exercise) error {
	if len(exercises) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, ex := range exercises {
			if err := tx.Omit("Logs").Save(ex).Error; err != nil {
				log.Printf("ERROR: [PlanRepository] Failed to update exercise ID %d: %v", ex.ID, err)
				return fmt.Errorf("failed to update exercise ID %d: %w", ex.ID, err)
			}
		}
		return nil
	})
}

func (r *planRepository) DeleteExercise(exerciseID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exercise_id = ?", exerciseID).Delete(&models.ExerciseLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Exercise{}, exerciseID).Error
	})
	if err != nil {
		log.Printf("ERROR: [PlanRepository] Failed to delete exercise ID %d: %v", exerciseID, err)
		return fmt.Errorf("failed to delete exercise ID %d: %w", exerciseID, err)
	}
	return nil
}

// RecordCompletion saves the exercise's completion state and, when given,
// appends the log snapshot.
func (r *planRepository) RecordCompletion(exercise *models.Exercise, entry *models.ExerciseLog) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Logs").Save(exercise).Error; err != nil {
			return err
		}
		if entry != nil {
			entry.ExerciseID = exercise.ID
			return tx.Create(entry).Error
		}
		return nil
	})
	if err != nil {
		log.Printf("ERROR: [PlanRepository] Failed to record completion for exercise ID %d: %v", exercise.ID, err)
		return fmt.Errorf("failed to record completion for exercise ID %d: %w", exercise.ID, err)
	}
	return nil
}

// GetExerciseLogs returns every log of the profile's plans ordered by date.
func (r *planRepository) GetExerciseLogs(profileID uint) ([]ExerciseLogRecord, error) {
	var records []ExerciseLogRecord
	err := r.db.Table("exercise_logs").
		Select("exercise_logs.id, exercise_logs.exercise_id, exercise_logs.date, exercise_logs.actual_weight, exercise_logs.actual_sets, exercise_logs.actual_reps, exercises.name AS exercise_name").
		Joins("JOIN exercises ON exercises.id = exercise_logs.exercise_id").
		Joins("JOIN plan_days ON plan_days.id = exercises.day_id").
		Joins("JOIN plans ON plans.id = plan_days.plan_id").
		Where("plans.profile_id = ?", profileID).
		Order("exercise_logs.date asc, exercise_logs.id asc").
		Scan(&records).Error
	if err != nil {
		log.Printf("ERROR: [PlanRepository] Failed to retrieve exercise logs for profile ID %d: %v", profileID, err)
		return nil, fmt.Errorf("failed to retrieve exercise logs for profile ID %d: %w", profileID, err)
	}
	return records, nil
}
