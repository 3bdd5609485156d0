package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"fitgenius/models"
	"fitgenius/repository"
)

// LocalSummaryNote labels a summary computed without the AI service.
const LocalSummaryNote = "AI unavailable, using local summary"

// EntryInput is the meal entry form.
type EntryInput struct {
	MealType string         `json:"meal_type"`
	Text     string         `json:"text"`
	Photos   []string       `json:"photos"` // base64 data URLs
	Macros   *models.Macros `json:"macros"`
}

// DietService defines meal logging and nutrition aggregation.
type DietService interface {
	GetOrCreateDay(profileID uint, date time.Time) (*models.MealDay, error)
	AddEntry(ctx context.Context, mealDayID uint, input EntryInput) (*models.MealEntry, error)
	UpdateEntry(entryID uint, input EntryInput) (*models.MealEntry, error)
	DeleteEntry(entryID uint) error
	SubmitDay(ctx context.Context, mealDayID uint) (*models.MealDay, error)
	Stats(profileID uint, now time.Time) (*models.DietStatsResponse, error)
	DietChat(ctx context.Context, message string) (string, error)
}

type dietService struct {
	mealRepo repository.MealRepository
	gateway  AIGateway
	photos   PhotoStore
}

// NewDietService creates a new instance of DietService.
func NewDietService(mealRepo repository.MealRepository, gateway AIGateway, photos PhotoStore) DietService {
	return &dietService{
		mealRepo: mealRepo,
		gateway:  gateway,
		photos:   photos,
	}
}

// GetOrCreateDay returns the meal day for date's calendar day.
func (s *dietService) GetOrCreateDay(profileID uint, date time.Time) (*models.MealDay, error) {
	day, err := s.mealRepo.GetMealDay(profileID, date)
	if err != nil {
		return nil, err
	}
	if day != nil {
		return day, nil
	}
	day = &models.MealDay{ProfileID: profileID, Date: date, Entries: []models.MealEntry{}}
	if err := s.mealRepo.CreateMealDay(day); err != nil {
		return nil, err
	}
	log.Printf("INFO: [DietService] Created meal day ID %d for profile ID %d.", day.ID, profileID)
	return day, nil
}

func (s *dietService) loadDay(mealDayID uint) (*models.MealDay, error) {
	day, err := s.mealRepo.GetMealDayByID(mealDayID)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, fmt.Errorf("%w: ID %d", ErrMealDayNotFound, mealDayID)
	}
	return day, nil
}

// AddEntry stores a user-written entry, uploading any photos first.
func (s *dietService) AddEntry(ctx context.Context, mealDayID uint, input EntryInput) (*models.MealEntry, error) {
	mealType, ok := models.ParseMealType(input.MealType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown meal type '%s'", ErrInvalidInput, input.MealType)
	}
	text := strings.TrimSpace(input.Text)
	if text == "" && len(input.Photos) == 0 {
		return nil, fmt.Errorf("%w: an entry needs text or a photo", ErrInvalidInput)
	}
	if _, err := s.loadDay(mealDayID); err != nil {
		return nil, err
	}

	entry := &models.MealEntry{
		MealDayID: mealDayID,
		MealType:  mealType,
		Text:      text,
		Source:    models.EntrySourceUser,
	}
	if input.Macros != nil {
		entry.Macros = *input.Macros
	}
	for _, photo := range input.Photos {
		key, err := s.photos.Put(ctx, photo)
		if err != nil {
			return nil, err
		}
		entry.PhotoKeys = append(entry.PhotoKeys, key)
	}
	if err := s.mealRepo.CreateEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *dietService) UpdateEntry(entryID uint, input EntryInput) (*models.MealEntry, error) {
	entry, err := s.mealRepo.GetEntryByID(entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: ID %d", ErrMealEntryNotFound, entryID)
	}
	if input.MealType != "" {
		mealType, ok := models.ParseMealType(input.MealType)
		if !ok {
			return nil, fmt.Errorf("%w: unknown meal type '%s'", ErrInvalidInput, input.MealType)
		}
		entry.MealType = mealType
	}
	if text := strings.TrimSpace(input.Text); text != "" {
		entry.Text = text
	}
	if input.Macros != nil {
		entry.Macros = *input.Macros
		entry.Source = models.EntrySourceUser
	}
	if err := s.mealRepo.UpdateEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *dietService) DeleteEntry(entryID uint) error {
	entry, err := s.mealRepo.GetEntryByID(entryID)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("%w: ID %d", ErrMealEntryNotFound, entryID)
	}
	return s.mealRepo.DeleteEntry(entryID)
}

// ApplyMealAnalysis spreads each meal slot's AI total evenly across that
// slot's entries and returns the day total. Items naming a slot with no
// entries are ignored; entries in slots the AI skipped keep their values.
func ApplyMealAnalysis(entries []models.MealEntry, analysis *MealAnalysis) models.Macros {
	aggregates := map[models.MealType]models.Macros{}
	for _, item := range analysis.Entries {
		mealType, ok := models.ParseMealType(item.MealType)
		if !ok {
			log.Printf("WARN: [DietService] Ignoring analysed item '%s' with unknown meal type '%s'.", item.Name, item.MealType)
			continue
		}
		aggregates[mealType] = aggregates[mealType].Add(item.Macros())
	}

	slots := map[models.MealType][]int{}
	for i := range entries {
		slots[entries[i].MealType] = append(slots[entries[i].MealType], i)
	}
	for mealType, total := range aggregates {
		indexes := slots[mealType]
		if len(indexes) == 0 {
			log.Printf("WARN: [DietService] Analysis returned %s items but the day has no %s entries.", mealType, mealType)
			continue
		}
		share := total.Div(len(indexes))
		for _, i := range indexes {
			entries[i].Macros = share
			entries[i].Source = models.EntrySourceAI
		}
	}
	return models.SumEntries(entries)
}

// SubmitDay computes the day's nutrition summary. AI failures degrade to a
// plain sum of the stored entries; the day is marked submitted either way.
func (s *dietService) SubmitDay(ctx context.Context, mealDayID uint) (*models.MealDay, error) {
	day, err := s.loadDay(mealDayID)
	if err != nil {
		return nil, err
	}
	if len(day.Entries) == 0 {
		return nil, fmt.Errorf("%w: add at least one meal entry before submitting", ErrInvalidInput)
	}

	var total models.Macros
	notes := LocalSummaryNote
	analysis, err := s.gateway.AnalyzeMeals(ctx, day.Entries)
	if err != nil {
		log.Printf("WARN: [DietService] Meal analysis for day ID %d failed, using local sums: %v", mealDayID, err)
		total = models.SumEntries(day.Entries)
	} else {
		total = ApplyMealAnalysis(day.Entries, analysis)
		notes = analysis.Summary.Notes
	}

	summary := &models.NutritionSummary{
		TotalCalories: total.Calories,
		Protein:       total.Protein,
		Carbs:         total.Carbs,
		Fat:           total.Fat,
		Notes:         notes,
	}
	if day.Summary != nil {
		summary.ID = day.Summary.ID
	}
	day.Submitted = true
	if err := s.mealRepo.SaveSubmission(day, summary); err != nil {
		return nil, err
	}
	return day, nil
}

func dayTotals(day *models.MealDay) models.Macros {
	if day.Summary != nil {
		return models.Macros{
			Calories: day.Summary.TotalCalories,
			Protein:  day.Summary.Protein,
			Carbs:    day.Summary.Carbs,
			Fat:      day.Summary.Fat,
		}
	}
	return models.SumEntries(day.Entries)
}

// Stats lists per-day totals and today's figures.
func (s *dietService) Stats(profileID uint, now time.Time) (*models.DietStatsResponse, error) {
	days, err := s.mealRepo.ListMealDays(profileID)
	if err != nil {
		return nil, err
	}
	report := &models.DietStatsResponse{
		ProfileID:   profileID,
		Points:      make([]models.DailyNutritionPoint, 0, len(days)),
		GeneratedAt: now,
	}
	todayKey := models.DateKey(now)
	for _, day := range days {
		totals := dayTotals(day)
		report.Points = append(report.Points, models.DailyNutritionPoint{Date: day.Date, Macros: totals})
		if models.DateKey(day.Date.UTC()).Equal(todayKey) {
			report.Today = totals
			if day.Summary != nil {
				report.TodayNotes = day.Summary.Notes
			}
		}
	}
	return report, nil
}

func (s *dietService) DietChat(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message cannot be empty", ErrInvalidInput)
	}
	return s.gateway.DietChat(ctx, message)
}
