package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"fitgenius/models"
	"fitgenius/repository"

	"gorm.io/datatypes"
)

// DefaultUserID identifies the single local user when none is given.
const DefaultUserID = "local"

// ProfileInput is the onboarding / edit form.
type ProfileInput struct {
	UserID             string   `json:"user_id"`
	Name               string   `json:"name"`
	Age                int      `json:"age"`
	Height             float64  `json:"height"`
	Weight             float64  `json:"weight"`
	Goal               string   `json:"goal"`
	Environment        string   `json:"environment"`
	AvailableEquipment []string `json:"available_equipment"`
	Injuries           string   `json:"injuries"`
}

// ProfileService defines onboarding, streak and reset operations.
type ProfileService interface {
	CreateProfile(ctx context.Context, input ProfileInput) (*models.Profile, *models.Plan, error)
	GetProfile(profileID uint) (*models.Profile, error)
	GetProfileByUserID(userID string) (*models.Profile, error)
	UpdateProfile(profileID uint, input ProfileInput) (*models.Profile, error)
	RecordVisit(profileID uint, now time.Time) (*models.Profile, error)
	ResetProfile(profileID uint) error
}

type profileService struct {
	profileRepo repository.ProfileRepository
	planRepo    repository.PlanRepository
	chatRepo    repository.ChatRepository
	gateway     AIGateway
	now         func() time.Time
}

// NewProfileService creates a new instance of ProfileService.
func NewProfileService(
	profileRepo repository.ProfileRepository,
	planRepo repository.PlanRepository,
	chatRepo repository.ChatRepository,
	gateway AIGateway,
) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		planRepo:    planRepo,
		chatRepo:    chatRepo,
		gateway:     gateway,
		now:         time.Now,
	}
}

// apply validates input and writes the editable fields onto profile.
func (input ProfileInput) apply(profile *models.Profile) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.Age <= 0 {
		return fmt.Errorf("%w: age must be greater than 0", ErrInvalidInput)
	}
	if input.Height <= 0 {
		return fmt.Errorf("%w: height must be greater than 0", ErrInvalidInput)
	}
	if input.Weight <= 0 {
		return fmt.Errorf("%w: weight must be greater than 0", ErrInvalidInput)
	}
	goal, ok := models.ParseFitnessGoal(input.Goal)
	if !ok {
		return fmt.Errorf("%w: unknown goal '%s'", ErrInvalidInput, input.Goal)
	}
	env, ok := models.ParseWorkoutEnvironment(input.Environment)
	if !ok {
		return fmt.Errorf("%w: unknown environment '%s'", ErrInvalidInput, input.Environment)
	}

	equipment := make([]string, 0, len(input.AvailableEquipment))
	seen := map[string]bool{}
	for _, item := range input.AvailableEquipment {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		equipment = append(equipment, item)
	}

	profile.Name = name
	profile.Age = input.Age
	profile.Height = input.Height
	profile.Weight = input.Weight
	profile.Goal = goal
	profile.Environment = env
	profile.AvailableEquipment = datatypes.JSONSlice[string](equipment)
	profile.Injuries = strings.TrimSpace(input.Injuries)
	return nil
}

// CreateProfile completes onboarding: it stores the profile and links an
// initial plan. Any AI failure falls back to the built-in plan.
func (s *profileService) CreateProfile(ctx context.Context, input ProfileInput) (*models.Profile, *models.Plan, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		userID = DefaultUserID
	}
	profile := &models.Profile{UserID: userID}
	if err := input.apply(profile); err != nil {
		return nil, nil, err
	}

	existing, err := s.profileRepo.GetProfileByUserID(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check for existing profile: %w", err)
	}
	if existing != nil {
		return nil, nil, fmt.Errorf("%w: userID %s", ErrProfileExists, userID)
	}

	if err := s.profileRepo.CreateProfile(profile); err != nil {
		errMsg := fmt.Sprintf("failed to create profile for userID %s", userID)
		log.Printf("ERROR: [ProfileService] %s: %v", errMsg, err)
		return nil, nil, fmt.Errorf("%s: %w", errMsg, err)
	}

	plan, err := s.gateway.GenerateInitialPlan(ctx, profile)
	if err != nil || plan == nil || len(plan.Days) == 0 {
		log.Printf("WARN: [ProfileService] Initial plan generation for profile ID %d unavailable (%v). Using fallback plan.", profile.ID, err)
		plan = FallbackPlan(s.now())
	}
	if err := s.planRepo.ActivatePlan(profile, plan); err != nil {
		errMsg := fmt.Sprintf("failed to store initial plan for profile ID %d", profile.ID)
		log.Printf("ERROR: [ProfileService] %s: %v", errMsg, err)
		// A profile without a plan would block the retry with ErrProfileExists.
		if delErr := s.profileRepo.DeleteProfile(profile.ID); delErr != nil {
			log.Printf("ERROR: [ProfileService] Failed to roll back profile ID %d: %v", profile.ID, delErr)
		}
		return nil, nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	log.Printf("INFO: [ProfileService] Onboarded profile ID %d with plan '%s' (%d days).", profile.ID, plan.Name, len(plan.Days))
	return profile, plan, nil
}

func (s *profileService) GetProfile(profileID uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetProfileByID(profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile ID %d: %w", profileID, err)
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: ID %d", ErrProfileNotFound, profileID)
	}
	return profile, nil
}

// GetProfileByUserID returns (nil, nil) when the user has not onboarded yet.
func (s *profileService) GetProfileByUserID(userID string) (*models.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		userID = DefaultUserID
	}
	return s.profileRepo.GetProfileByUserID(userID)
}

// UpdateProfile edits the onboarding fields; streak state is untouched.
func (s *profileService) UpdateProfile(profileID uint, input ProfileInput) (*models.Profile, error) {
	profile, err := s.GetProfile(profileID)
	if err != nil {
		return nil, err
	}
	if err := input.apply(profile); err != nil {
		return nil, err
	}
	if err := s.profileRepo.UpdateProfile(profile); err != nil {
		return nil, fmt.Errorf("failed to update profile ID %d: %w", profileID, err)
	}
	return profile, nil
}

// RecordVisit runs the streak update for a visit at now.
func (s *profileService) RecordVisit(profileID uint, now time.Time) (*models.Profile, error) {
	profile, err := s.GetProfile(profileID)
	if err != nil {
		return nil, err
	}
	plan, err := s.planRepo.GetActivePlan(profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active plan for profile ID %d: %w", profileID, err)
	}

	before := profile.StreakDays
	models.UpdateStreakDays(profile, plan, now)
	if err := s.profileRepo.UpdateProfile(profile); err != nil {
		log.Printf("WARN: [ProfileService] Failed to persist streak for profile ID %d: %v", profileID, err)
		return nil, fmt.Errorf("failed to persist streak for profile ID %d: %w", profileID, err)
	}
	if before != profile.StreakDays {
		log.Printf("INFO: [ProfileService] Streak for profile ID %d changed %d -> %d.", profileID, before, profile.StreakDays)
	}
	return profile, nil
}

// ResetProfile deletes the profile with everything it owns.
func (s *profileService) ResetProfile(profileID uint) error {
	if _, err := s.GetProfile(profileID); err != nil {
		return err
	}
	if err := s.profileRepo.DeleteProfile(profileID); err != nil {
		return fmt.Errorf("failed to reset profile ID %d: %w", profileID, err)
	}
	if err := s.chatRepo.ClearMessages(profileID); err != nil {
		log.Printf("WARN: [ProfileService] Failed to clear transcript for profile ID %d: %v", profileID, err)
	}
	log.Printf("INFO: [ProfileService] Profile ID %d reset.", profileID)
	return nil
}
