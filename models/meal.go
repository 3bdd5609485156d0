package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// MealType is the meal slot an entry belongs to.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

var mealTypeAliases = map[string]MealType{
	"breakfast": MealBreakfast,
	"早餐":        MealBreakfast,
	"lunch":     MealLunch,
	"午餐":        MealLunch,
	"dinner":    MealDinner,
	"晚餐":        MealDinner,
	"snack":     MealSnack,
	"snacks":    MealSnack,
	"加餐":        MealSnack,
}

// ParseMealType normalises a meal slot label.
func ParseMealType(s string) (MealType, bool) {
	m, ok := mealTypeAliases[strings.ToLower(strings.TrimSpace(s))]
	return m, ok
}

// EntrySource records who produced an entry's macro values.
type EntrySource string

const (
	EntrySourceUser EntrySource = "user"
	EntrySourceAI   EntrySource = "ai"
)

// Macros is the nutrition quadruple shared by entries and summaries.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add returns the element-wise sum.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
	}
}

// Div splits the macros into n equal shares.
func (m Macros) Div(n int) Macros {
	if n <= 0 {
		return m
	}
	f := float64(n)
	return Macros{Calories: m.Calories / f, Protein: m.Protein / f, Carbs: m.Carbs / f, Fat: m.Fat / f}
}

// MealDay is the day-keyed container of meal entries.
type MealDay struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	ProfileID uint              `json:"profile_id" gorm:"uniqueIndex:idx_meal_day_profile_date;not null"`
	Date      time.Time         `json:"date" gorm:"uniqueIndex:idx_meal_day_profile_date;not null"`
	Submitted bool              `json:"submitted" gorm:"default:false"`
	Entries   []MealEntry       `json:"entries" gorm:"foreignKey:MealDayID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Summary   *NutritionSummary `json:"summary,omitempty" gorm:"foreignKey:MealDayID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the MealDay model.
func (MealDay) TableName() string {
	return "meal_days"
}

// MealEntry is a free-text (optionally photographed) meal record.
type MealEntry struct {
	ID        uint                        `json:"id" gorm:"primaryKey"`
	MealDayID uint                        `json:"meal_day_id" gorm:"index;not null"`
	MealType  MealType                    `json:"meal_type" gorm:"type:varchar(20);not null"`
	Text      string                      `json:"text" gorm:"type:text"`
	PhotoKeys datatypes.JSONSlice[string] `json:"photo_keys,omitempty"`
	Macros    Macros                      `json:"macros" gorm:"embedded"`
	Source    EntrySource                 `json:"source" gorm:"type:varchar(10);default:'user'"`
	CreatedAt time.Time                   `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the MealEntry model.
func (MealEntry) TableName() string {
	return "meal_entries"
}

// NutritionSummary is the computed day-level total.
type NutritionSummary struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	MealDayID     uint      `json:"meal_day_id" gorm:"uniqueIndex;not null"`
	TotalCalories float64   `json:"total_calories"`
	Protein       float64   `json:"protein"`
	Carbs         float64   `json:"carbs"`
	Fat           float64   `json:"fat"`
	Notes         string    `json:"notes" gorm:"type:text"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the NutritionSummary model.
func (NutritionSummary) TableName() string {
	return "nutrition_summaries"
}

// SumEntries totals the macros of all entries.
func SumEntries(entries []MealEntry) Macros {
	var total Macros
	for _, e := range entries {
		total = total.Add(e.Macros)
	}
	return total
}
