package models

import (
	"sort"
	"strings"
	"time"
)

// PlanStatus defines the possible statuses for a plan.
type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusArchived PlanStatus = "archived" // Replaced by a regenerated plan, kept as a backup
)

// BodyPartFocus is the training emphasis of a Day.
type BodyPartFocus string

const (
	FocusChest     BodyPartFocus = "chest"
	FocusBack      BodyPartFocus = "back"
	FocusLegs      BodyPartFocus = "legs"
	FocusShoulders BodyPartFocus = "shoulders"
	FocusArms      BodyPartFocus = "arms"
	FocusCore      BodyPartFocus = "core"
	FocusFullBody  BodyPartFocus = "full-body"
	FocusCardio    BodyPartFocus = "cardio"
	FocusRest      BodyPartFocus = "rest"
)

var focusAliases = map[string]BodyPartFocus{
	"chest":     FocusChest,
	"胸部":        FocusChest,
	"back":      FocusBack,
	"背部":        FocusBack,
	"legs":      FocusLegs,
	"腿部":        FocusLegs,
	"shoulders": FocusShoulders,
	"肩部":        FocusShoulders,
	"arms":      FocusArms,
	"手臂":        FocusArms,
	"core":      FocusCore,
	"核心":        FocusCore,
	"full-body": FocusFullBody,
	"fullbody":  FocusFullBody,
	"全身":        FocusFullBody,
	"cardio":    FocusCardio,
	"有氧":        FocusCardio,
	"rest":      FocusRest,
	"休息":        FocusRest,
	"休息日":       FocusRest,
}

// ParseFocus maps a canonical value or display label to a focus.
// Anything unrecognised becomes full-body.
func ParseFocus(s string) BodyPartFocus {
	if f, ok := focusAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f
	}
	return FocusFullBody
}

// Plan is a cyclic training split. CreationDate is the epoch for all
// cycle-position arithmetic.
type Plan struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	ProfileID    uint       `json:"profile_id" gorm:"index;not null"`
	Name         string     `json:"name" gorm:"not null"`
	CreationDate time.Time  `json:"creation_date" gorm:"not null"`
	Status       PlanStatus `json:"status" gorm:"type:varchar(20);default:'active';not null"`
	Days         []Day      `json:"days" gorm:"foreignKey:PlanID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Plan model.
func (Plan) TableName() string {
	return "plans"
}

// CycleDays is the length of one cycle.
func (p *Plan) CycleDays() int {
	return len(p.Days)
}

// SortedDays returns the plan's days ordered by DayNumber. The returned
// pointers address the plan's own slice, so mutations are visible on p.
func (p *Plan) SortedDays() []*Day {
	days := make([]*Day, 0, len(p.Days))
	for i := range p.Days {
		days = append(days, &p.Days[i])
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].DayNumber < days[j].DayNumber })
	return days
}

// DayByNumber returns the day with the given number, or nil.
func (p *Plan) DayByNumber(dayNumber int) *Day {
	for i := range p.Days {
		if p.Days[i].DayNumber == dayNumber {
			return &p.Days[i]
		}
	}
	return nil
}

// Day is one slot of the cycle. A rest day has focus rest and no exercises.
type Day struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	PlanID    uint          `json:"plan_id" gorm:"index;not null"`
	DayNumber int           `json:"day_number" gorm:"not null"`
	Focus     BodyPartFocus `json:"focus" gorm:"type:varchar(20);not null"`
	IsRestDay bool          `json:"is_rest_day" gorm:"default:false"`
	Exercises []Exercise    `json:"exercises" gorm:"foreignKey:DayID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// TableName specifies the table name for the Day model.
func (Day) TableName() string {
	return "plan_days"
}

// Normalize enforces the rest-day shape: focus rest and no exercises.
func (d *Day) Normalize() {
	if d.Focus == FocusRest {
		d.IsRestDay = true
	}
	if d.IsRestDay {
		d.Focus = FocusRest
		d.Exercises = nil
	}
}

// SortedExercises returns pointers to the day's exercises ordered by OrderIndex.
func (d *Day) SortedExercises() []*Exercise {
	exercises := make([]*Exercise, 0, len(d.Exercises))
	for i := range d.Exercises {
		exercises = append(exercises, &d.Exercises[i])
	}
	sort.SliceStable(exercises, func(i, j int) bool { return exercises[i].OrderIndex < exercises[j].OrderIndex })
	return exercises
}

// AllCompleted reports whether the day has exercises and every one is done.
func (d *Day) AllCompleted() bool {
	if len(d.Exercises) == 0 {
		return false
	}
	for _, ex := range d.Exercises {
		if !ex.IsCompleted {
			return false
		}
	}
	return true
}

// NextOrderIndex is the position a newly appended exercise takes.
func (d *Day) NextOrderIndex() int {
	next := 0
	for _, ex := range d.Exercises {
		if ex.OrderIndex >= next {
			next = ex.OrderIndex + 1
		}
	}
	return next
}

// Exercise is a single movement within a Day. Reps is kept as text since it
// may be a count, a "min-max" range, or something like "30s".
type Exercise struct {
	ID                uint          `json:"id" gorm:"primaryKey"`
	DayID             uint          `json:"day_id" gorm:"index;not null"`
	Name              string        `json:"name" gorm:"not null"`
	Sets              int           `json:"sets" gorm:"not null"`
	Reps              string        `json:"reps" gorm:"type:varchar(32);not null"`
	Weight            float64       `json:"weight" gorm:"default:0"`
	Notes             string        `json:"notes" gorm:"type:text"`
	IsCompleted       bool          `json:"is_completed" gorm:"default:false"`
	LastCompletedDate *time.Time    `json:"last_completed_date,omitempty"`
	OrderIndex        int           `json:"order_index" gorm:"default:0"`
	Logs              []ExerciseLog `json:"logs,omitempty" gorm:"foreignKey:ExerciseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// TableName specifies the table name for the Exercise model.
func (Exercise) TableName() string {
	return "exercises"
}

// ExerciseLog is an immutable snapshot written when an exercise is marked done.
type ExerciseLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ExerciseID   uint      `json:"exercise_id" gorm:"index;not null"`
	Date         time.Time `json:"date" gorm:"not null"`
	ActualWeight float64   `json:"actual_weight"`
	ActualSets   int       `json:"actual_sets"`
	ActualReps   string    `json:"actual_reps"`
}

// TableName specifies the table name for the ExerciseLog model.
func (ExerciseLog) TableName() string {
	return "exercise_logs"
}
