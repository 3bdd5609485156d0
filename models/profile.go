package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// FitnessGoal is the user's primary training goal.
type FitnessGoal string

const (
	GoalLoseWeight    FitnessGoal = "lose-weight"
	GoalBuildMuscle   FitnessGoal = "build-muscle"
	GoalEndurance     FitnessGoal = "endurance"
	GoalFlexibility   FitnessGoal = "flexibility"
	GoalGeneralHealth FitnessGoal = "general-health"
)

var goalAliases = map[string]FitnessGoal{
	"lose-weight":    GoalLoseWeight,
	"减重":             GoalLoseWeight,
	"build-muscle":   GoalBuildMuscle,
	"增肌":             GoalBuildMuscle,
	"endurance":      GoalEndurance,
	"提升耐力":           GoalEndurance,
	"flexibility":    GoalFlexibility,
	"柔韧性":            GoalFlexibility,
	"general-health": GoalGeneralHealth,
	"一般健康":           GoalGeneralHealth,
}

// ParseFitnessGoal accepts either the canonical value or the display label.
// The second return value is false when the input is not recognised.
func ParseFitnessGoal(s string) (FitnessGoal, bool) {
	g, ok := goalAliases[strings.ToLower(strings.TrimSpace(s))]
	return g, ok
}

// WorkoutEnvironment is where the user usually trains.
type WorkoutEnvironment string

const (
	EnvironmentGym     WorkoutEnvironment = "gym"
	EnvironmentHome    WorkoutEnvironment = "home"
	EnvironmentOutdoor WorkoutEnvironment = "outdoor"
)

var environmentAliases = map[string]WorkoutEnvironment{
	"gym":     EnvironmentGym,
	"健身房":     EnvironmentGym,
	"home":    EnvironmentHome,
	"家庭":      EnvironmentHome,
	"outdoor": EnvironmentOutdoor,
	"户外":      EnvironmentOutdoor,
}

// ParseWorkoutEnvironment mirrors ParseFitnessGoal for environments.
func ParseWorkoutEnvironment(s string) (WorkoutEnvironment, bool) {
	e, ok := environmentAliases[strings.ToLower(strings.TrimSpace(s))]
	return e, ok
}

// Profile is the single user of the app together with streak bookkeeping.
// ActivePlanID links the one plan currently in use; archived plans keep
// their ProfileID but are never referenced from here.
type Profile struct {
	ID                 uint                        `json:"id" gorm:"primaryKey"`
	UserID             string                      `json:"user_id" gorm:"uniqueIndex;not null"`
	Name               string                      `json:"name" gorm:"not null"`
	Age                int                         `json:"age"`
	Height             float64                     `json:"height"`
	Weight             float64                     `json:"weight"`
	Goal               FitnessGoal                 `json:"goal" gorm:"type:varchar(32);not null"`
	Environment        WorkoutEnvironment          `json:"environment" gorm:"type:varchar(32);not null"`
	AvailableEquipment datatypes.JSONSlice[string] `json:"available_equipment"`
	Injuries           string                      `json:"injuries" gorm:"type:text"`
	StreakDays         int                         `json:"streak_days" gorm:"default:0;not null"`
	LastCompletedDate  *time.Time                  `json:"last_completed_date,omitempty"`
	LastCheckDate      *time.Time                  `json:"last_check_date,omitempty"`
	ActivePlanID       *uint                       `json:"active_plan_id,omitempty"`
	CreatedAt          time.Time                   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time                   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Profile model.
func (Profile) TableName() string {
	return "profiles"
}
