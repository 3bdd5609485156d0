package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"fitgenius/models"
	"fitgenius/repository"
	"fitgenius/utils"
)

// ExerciseInput carries create/update fields. Nil fields are left unchanged
// on update and take defaults on create.
type ExerciseInput struct {
	Name   *string  `json:"name"`
	Sets   *int     `json:"sets"`
	Reps   *string  `json:"reps"`
	Weight *float64 `json:"weight"`
	Notes  *string  `json:"notes"`
}

// PlanService defines the interface for managing plans, days and exercises.
type PlanService interface {
	GetActivePlan(profileID uint) (*models.Plan, error)
	GetPlanOverview(profileID uint, now time.Time) (*models.PlanOverview, error)
	AddDay(planID uint, focus string, isRestDay bool) (*models.Day, error)
	DeleteDay(planID, dayID uint) (*models.Plan, error)
	StartNewCycle(planID uint, now time.Time) (*models.Plan, error)
	GetDay(dayID uint, now time.Time) (*models.Day, error)
	CreateExercise(dayID uint, input ExerciseInput) (*models.Exercise, error)
	UpdateExercise(exerciseID uint, input ExerciseInput) (*models.Exercise, error)
	DeleteExercise(exerciseID uint) error
	ToggleExerciseCompletion(exerciseID uint, now time.Time) (*models.Exercise, error)
	RegeneratePlan(ctx context.Context, profileID uint, request string) (*models.Plan, error)
}

type planService struct {
	planRepo    repository.PlanRepository
	profileRepo repository.ProfileRepository
	gateway     AIGateway
}

// NewPlanService creates a new instance of PlanService.
func NewPlanService(planRepo repository.PlanRepository, profileRepo repository.ProfileRepository, gateway AIGateway) PlanService {
	return &planService{
		planRepo:    planRepo,
		profileRepo: profileRepo,
		gateway:     gateway,
	}
}

// GetActivePlan returns the profile's active plan or ErrPlanNotFound.
func (s *planService) GetActivePlan(profileID uint) (*models.Plan, error) {
	plan, err := s.planRepo.GetActivePlan(profileID)
	if err != nil {
		errMsg := fmt.Sprintf("failed to get active plan for profile ID %d", profileID)
		log.Printf("ERROR: [PlanService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: profile ID %d has no active plan", ErrPlanNotFound, profileID)
	}
	return plan, nil
}

func (s *planService) loadPlan(planID uint) (*models.Plan, error) {
	plan, err := s.planRepo.GetPlanByID(planID)
	if err != nil {
		errMsg := fmt.Sprintf("failed to get plan ID %d from repository", planID)
		log.Printf("ERROR: [PlanService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	if plan == nil {
		log.Printf("WARN: [PlanService] Plan with ID %d not found.", planID)
		return nil, fmt.Errorf("%w: ID %d", ErrPlanNotFound, planID)
	}
	return plan, nil
}

// GetPlanOverview reports where today falls in the active plan's cycle.
func (s *planService) GetPlanOverview(profileID uint, now time.Time) (*models.PlanOverview, error) {
	plan, err := s.GetActivePlan(profileID)
	if err != nil {
		return nil, err
	}
	overview := &models.PlanOverview{
		Plan:          plan,
		CycleDays:     plan.CycleDays(),
		TodayPosition: plan.TodayCyclePosition(now),
		CycleWeek:     plan.CurrentCycleWeek(now),
		Today:         plan.TodayDay(now),
		Schedule:      make([]models.DayAnchor, 0, plan.CycleDays()),
	}
	for _, day := range plan.SortedDays() {
		date := plan.DateForDay(day.DayNumber, now)
		overview.Schedule = append(overview.Schedule, models.DayAnchor{
			DayNumber: day.DayNumber,
			Date:      utils.FormatDate(date),
			IsToday:   models.IsSameDay(now, date),
		})
	}
	return overview, nil
}

// AddDay appends a day after the current last one.
func (s *planService) AddDay(planID uint, focus string, isRestDay bool) (*models.Day, error) {
	plan, err := s.loadPlan(planID)
	if err != nil {
		return nil, err
	}
	maxNumber := 0
	for _, d := range plan.Days {
		if d.DayNumber > maxNumber {
			maxNumber = d.DayNumber
		}
	}
	day := &models.Day{
		PlanID:    plan.ID,
		DayNumber: maxNumber + 1,
		Focus:     models.ParseFocus(focus),
		IsRestDay: isRestDay,
	}
	day.Normalize()
	if err := s.planRepo.CreateDay(day); err != nil {
		errMsg := fmt.Sprintf("failed to add day to plan ID %d", planID)
		log.Printf("ERROR: [PlanService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	log.Printf("INFO: [PlanService] Added day %d (%s) to plan ID %d.", day.DayNumber, day.Focus, planID)
	return day, nil
}

// DeleteDay removes a day and renumbers the rest to 1..N.
func (s *planService) DeleteDay(planID, dayID uint) (*models.Plan, error) {
	plan, err := s.loadPlan(planID)
	if err != nil {
		return nil, err
	}
	var target *models.Day
	remaining := make([]models.Day, 0, len(plan.Days))
	for i := range plan.Days {
		if plan.Days[i].ID == dayID {
			target = &plan.Days[i]
			continue
		}
		remaining = append(remaining, plan.Days[i])
	}
	if target == nil {
		return nil, fmt.Errorf("%w: day ID %d is not part of plan ID %d", ErrDayNotFound, dayID, planID)
	}

	renumbered := models.RenumberDays(remaining)
	if err := s.planRepo.DeleteDay(target, renumbered); err != nil {
		errMsg := fmt.Sprintf("failed to delete day ID %d from plan ID %d", dayID, planID)
		log.Printf("ERROR: [PlanService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	plan.Days = remaining
	return plan, nil
}

// StartNewCycle re-anchors the plan at now and clears completion state.
func (s *planService) StartNewCycle(planID uint, now time.Time) (*models.Plan, error) {
	plan, err := s.loadPlan(planID)
	if err != nil {
		return nil, err
	}
	plan.StartNewCycle(now)
	if err := s.planRepo.SavePlan(plan, nil); err != nil {
		errMsg := fmt.Sprintf("failed to start a new cycle for plan ID %d", planID)
		log.Printf("ERROR: [PlanService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	log.Printf("INFO: [PlanService] Plan ID %d restarted its cycle at %s.", planID, utils.FormatDate(now))
	return plan, nil
}

// GetDay loads a day and clears completions left over from earlier days.
func (s *planService) GetDay(dayID uint, now time.Time) (*models.Day, error) {
	day, err := s.planRepo.GetDayByID(dayID)
	if err != nil {
		return nil, fmt.Errorf("failed to get day ID %d: %w", dayID, err)
	}
	if day == nil {
		return nil, fmt.Errorf("%w: ID %d", ErrDayNotFound, dayID)
	}
	var reset []*models.Exercise
	for i := range day.Exercises {
		if day.Exercises[i].ResetIfNeeded(now) {
			reset = append(reset, &day.Exercises[i])
		}
	}
	if len(reset) > 0 {
		if err := s.planRepo.UpdateExercises(reset); err != nil {
			log.Printf("WARN: [PlanService] Failed to persist %d completion resets for day ID %d: %v", len(reset), dayID, err)
		}
	}
	return day, nil
}

func applyExerciseInput(ex *models.Exercise, input ExerciseInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return fmt.Errorf("%w: exercise name cannot be empty", ErrInvalidInput)
		}
		ex.Name = name
	}
	if input.Sets != nil {
		if *input.Sets <= 0 {
			return fmt.Errorf("%w: sets must be greater than 0", ErrInvalidInput)
		}
		ex.Sets = *input.Sets
	}
	if input.Reps != nil {
		reps := strings.TrimSpace(*input.Reps)
		if reps == "" {
			return fmt.Errorf("%w: reps cannot be empty", ErrInvalidInput)
		}
		ex.Reps = reps
	}
	if input.Weight != nil {
		if *input.Weight < 0 {
			return fmt.Errorf("%w: weight cannot be negative", ErrInvalidInput)
		}
		ex.Weight = *input.Weight
	}
	if input.Notes != nil {
		ex.Notes = *input.Notes
	}
	return nil
}

// CreateExercise appends an exercise to a training day.
func (s *planService) CreateExercise(dayID uint, input ExerciseInput) (*models.Exercise, error) {
	day, err := s.planRepo.GetDayByID(dayID)
	if err != nil {
		return nil, fmt.Errorf("failed to get day ID %d: %w", dayID, err)
	}
	if day == nil {
		return nil, fmt.Errorf("%w: ID %d", ErrDayNotFound, dayID)
	}
	if day.IsRestDay {
		return nil, fmt.Errorf("%w: day %d is a rest day", ErrInvalidInput, day.DayNumber)
	}
	if input.Name == nil {
		return nil, fmt.Errorf("%w: exercise name is required", ErrInvalidInput)
	}

	ex := &models.Exercise{
		DayID:      day.ID,
		Sets:       defaultSets,
		Reps:       defaultReps,
		OrderIndex: day.NextOrderIndex(),
	}
	if err := applyExerciseInput(ex, input); err != nil {
		return nil, err
	}
	if err := s.planRepo.CreateExercise(ex); err != nil {
		errMsg := fmt.Sprintf("failed to create exercise on day ID %d", dayID)
		log.Printf("ERROR: [PlanService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return ex, nil
}

func (s *planService) loadExercise(exerciseID uint) (*models.Exercise, error) {
	ex, err := s.planRepo.GetExerciseByID(exerciseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exercise ID %d: %w", exerciseID, err)
	}
	if ex == nil {
		return nil, fmt.Errorf("%w: ID %d", ErrExerciseNotFound, exerciseID)
	}
	return ex, nil
}

func (s *planService) UpdateExercise(exerciseID uint, input ExerciseInput) (*models.Exercise, error) {
	ex, err := s.loadExercise(exerciseID)
	if err != nil {
		return nil, err
	}
	if err := applyExerciseInput(ex, input); err != nil {
		return nil, err
	}
	if err := s.planRepo.UpdateExercise(ex); err != nil {
		errMsg := fmt.Sprintf("failed to update exercise ID %d", exerciseID)
		log.Printf("ERROR: [PlanService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return ex, nil
}

func (s *planService) DeleteExercise(exerciseID uint) error {
	if _, err := s.loadExercise(exerciseID); err != nil {
		return err
	}
	return s.planRepo.DeleteExercise(exerciseID)
}

// ToggleExerciseCompletion flips completion and logs a snapshot when the
// exercise becomes done. A completion from an earlier day is cleared first.
func (s *planService) ToggleExerciseCompletion(exerciseID uint, now time.Time) (*models.Exercise, error) {
	ex, err := s.loadExercise(exerciseID)
	if err != nil {
		return nil, err
	}
	ex.ResetIfNeeded(now)
	entry := ex.ToggleCompletion(now)
	if err := s.planRepo.RecordCompletion(ex, entry); err != nil {
		errMsg := fmt.Sprintf("failed to record completion for exercise ID %d", exerciseID)
		log.Printf("ERROR: [PlanService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	log.Printf("INFO: [PlanService] Exercise ID %d completed=%t.", exerciseID, ex.IsCompleted)
	return ex, nil
}

// RegeneratePlan replaces the active plan with an AI-built one. The old plan
// is archived only once the new one is known to have days.
func (s *planService) RegeneratePlan(ctx context.Context, profileID uint, request string) (*models.Plan, error) {
	profile, err := s.profileRepo.GetProfileByID(profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile ID %d: %w", profileID, err)
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: ID %d", ErrProfileNotFound, profileID)
	}

	plan, err := s.gateway.RegeneratePlan(ctx, profile, request)
	if err != nil {
		return nil, err
	}
	if plan == nil || len(plan.Days) == 0 {
		return nil, ErrPlanEmptyAfterRegeneration
	}
	plan.ProfileID = profile.ID
	if err := s.planRepo.ActivatePlan(profile, plan); err != nil {
		errMsg := fmt.Sprintf("failed to activate regenerated plan for profile ID %d", profileID)
		log.Printf("ERROR: [PlanService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	log.Printf("INFO: [PlanService] Regenerated plan ID %d (%d days) for profile ID %d.", plan.ID, len(plan.Days), profileID)
	return plan, nil
}
