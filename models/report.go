package models

import "time"

// TrainingDataPoint is one completed set snapshot with its derived volume.
type TrainingDataPoint struct {
	Date         time.Time `json:"date"`
	ExerciseName string    `json:"exercise_name"`
	Sets         int       `json:"sets"`
	Reps         float64   `json:"reps"`
	Weight       float64   `json:"weight"`
	Volume       float64   `json:"volume"` // sets*reps*weight, or sets*reps when unweighted
}

// DailyTrainingStat aggregates the logs written on one calendar day.
type DailyTrainingStat struct {
	Date               time.Time `json:"date"`
	CompletedExercises int       `json:"completed_exercises"`
	TotalSets          int       `json:"total_sets"`
}

// WeightPoint is a weighted log entry for progression charts.
type WeightPoint struct {
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
}

// TrainingStatsResponse is the training statistics report.
type TrainingStatsResponse struct {
	ProfileID          uint                `json:"profile_id"`
	SelectedExercise   string              `json:"selected_exercise,omitempty"` // Empty means all exercises
	AvailableExercises []string            `json:"available_exercises"`
	DataPoints         []TrainingDataPoint `json:"data_points"`
	DailyStats         []DailyTrainingStat `json:"daily_stats"`
	WeightProgress     []WeightPoint       `json:"weight_progress"`
	TotalVolume        float64             `json:"total_volume"`
	AverageVolume      float64             `json:"average_volume"`
	TrainingDays       int                 `json:"training_days"`
	StreakDays         int                 `json:"streak_days"`
	GeneratedAt        time.Time           `json:"generated_at"`
}

// DailyNutritionPoint is one MealDay's totals.
type DailyNutritionPoint struct {
	Date time.Time `json:"date"`
	Macros
}

// DietStatsResponse is the nutrition statistics report.
type DietStatsResponse struct {
	ProfileID   uint                  `json:"profile_id"`
	Points      []DailyNutritionPoint `json:"points"`
	Today       Macros                `json:"today"`
	TodayNotes  string                `json:"today_notes"`
	GeneratedAt time.Time             `json:"generated_at"`
}
