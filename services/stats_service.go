package services

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"fitgenius/models"
	"fitgenius/repository"
)

const (
	daysInWeek   = 7
	daysInMonth  = 30 // Approximate for simplicity
	fallbackReps = 10
)

// Stats periods accepted by GetTrainingStats.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"
)

// StatsService builds training progress reports.
type StatsService interface {
	GetTrainingStats(profileID uint, exercise, period string, now time.Time) (*models.TrainingStatsResponse, error)
}

type statsService struct {
	planRepo    repository.PlanRepository
	profileRepo repository.ProfileRepository
}

// NewStatsService creates a new instance of StatsService.
func NewStatsService(planRepo repository.PlanRepository, profileRepo repository.ProfileRepository) StatsService {
	return &statsService{
		planRepo:    planRepo,
		profileRepo: profileRepo,
	}
}

// ParseReps turns a reps string into a number: "8-12" averages to 10,
// "12" is 12, and anything else ("failure", "30s") counts as 10.
func ParseReps(reps string) float64 {
	reps = strings.TrimSpace(reps)
	if lo, hi, ok := strings.Cut(reps, "-"); ok {
		a, errA := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		b, errB := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if errA == nil && errB == nil {
			return (a + b) / 2
		}
		return fallbackReps
	}
	if v, err := strconv.ParseFloat(reps, 64); err == nil {
		return v
	}
	return fallbackReps
}

// Volume is sets x reps x weight, or sets x reps for unweighted work.
func Volume(sets int, reps, weight float64) float64 {
	if weight > 0 {
		return float64(sets) * reps * weight
	}
	return float64(sets) * reps
}

func periodStart(period string, now time.Time) (time.Time, bool, error) {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "", PeriodAll:
		return time.Time{}, false, nil
	case PeriodWeek:
		return models.StartOfDay(now).AddDate(0, 0, -(daysInWeek - 1)), true, nil
	case PeriodMonth:
		return models.StartOfDay(now).AddDate(0, 0, -(daysInMonth - 1)), true, nil
	default:
		return time.Time{}, false, fmt.Errorf("%w: unknown period '%s'", ErrInvalidInput, period)
	}
}

// GetTrainingStats reports volume and completion history, optionally
// narrowed to one exercise name and a recent period.
func (s *statsService) GetTrainingStats(profileID uint, exercise, period string, now time.Time) (*models.TrainingStatsResponse, error) {
	profile, err := s.profileRepo.GetProfileByID(profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile ID %d: %w", profileID, err)
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: ID %d", ErrProfileNotFound, profileID)
	}
	from, bounded, err := periodStart(period, now)
	if err != nil {
		return nil, err
	}

	records, err := s.planRepo.GetExerciseLogs(profileID)
	if err != nil {
		errMsg := fmt.Sprintf("failed to get exercise logs for profile ID %d", profileID)
		log.Printf("ERROR: [StatsService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}

	exercise = strings.TrimSpace(exercise)
	report := &models.TrainingStatsResponse{
		ProfileID:          profileID,
		SelectedExercise:   exercise,
		AvailableExercises: []string{},
		DataPoints:         []models.TrainingDataPoint{},
		DailyStats:         []models.DailyTrainingStat{},
		WeightProgress:     []models.WeightPoint{},
		StreakDays:         profile.StreakDays,
		GeneratedAt:        now,
	}

	names := map[string]bool{}
	daily := map[time.Time]*models.DailyTrainingStat{}
	for _, rec := range records {
		date := rec.Date.In(now.Location())
		if bounded && date.Before(from) {
			continue
		}
		names[rec.ExerciseName] = true
		if exercise != "" && rec.ExerciseName != exercise {
			continue
		}

		reps := ParseReps(rec.ActualReps)
		point := models.TrainingDataPoint{
			Date:         date,
			ExerciseName: rec.ExerciseName,
			Sets:         rec.ActualSets,
			Reps:         reps,
			Weight:       rec.ActualWeight,
			Volume:       Volume(rec.ActualSets, reps, rec.ActualWeight),
		}
		report.DataPoints = append(report.DataPoints, point)
		report.TotalVolume += point.Volume
		if rec.ActualWeight > 0 {
			report.WeightProgress = append(report.WeightProgress, models.WeightPoint{Date: date, Weight: rec.ActualWeight})
		}

		day := models.StartOfDay(date)
		stat, ok := daily[day]
		if !ok {
			stat = &models.DailyTrainingStat{Date: day}
			daily[day] = stat
		}
		stat.CompletedExercises++
		stat.TotalSets += rec.ActualSets
	}

	for name := range names {
		report.AvailableExercises = append(report.AvailableExercises, name)
	}
	sort.Strings(report.AvailableExercises)

	for _, stat := range daily {
		report.DailyStats = append(report.DailyStats, *stat)
	}
	sort.Slice(report.DailyStats, func(i, j int) bool { return report.DailyStats[i].Date.Before(report.DailyStats[j].Date) })
	sort.SliceStable(report.DataPoints, func(i, j int) bool { return report.DataPoints[i].Date.Before(report.DataPoints[j].Date) })
	sort.SliceStable(report.WeightProgress, func(i, j int) bool { return report.WeightProgress[i].Date.Before(report.WeightProgress[j].Date) })

	report.TrainingDays = len(report.DailyStats)
	if len(report.DataPoints) > 0 {
		report.AverageVolume = report.TotalVolume / float64(len(report.DataPoints))
	}
	log.Printf("INFO: [StatsService] Built training stats for profile ID %d: %d points over %d days.", profileID, len(report.DataPoints), report.TrainingDays)
	return report, nil
}
