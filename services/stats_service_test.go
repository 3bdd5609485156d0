package services

import (
	"testing"
	"time"

	"fitgenius/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReps(t *testing.T) {
	tests := []struct {
		reps string
		want float64
	}{
		{"8-12", 10},
		{"6-8", 7},
		{" 12 ", 12},
		{"15", 15},
		{"30s", 10},
		{"to failure", 10},
		{"a-b", 10},
		{"", 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseReps(tt.reps), tt.reps)
	}
}

func TestVolume(t *testing.T) {
	assert.Equal(t, 4000.0, Volume(4, 10, 100))
	assert.Equal(t, 30.0, Volume(3, 10, 0))
}

func statsLogs() []repository.ExerciseLogRecord {
	return []repository.ExerciseLogRecord{
		{ID: 1, ExerciseID: 1000, ExerciseName: "Squat", Date: time.Date(2025, 3, 9, 18, 0, 0, 0, time.UTC), ActualSets: 4, ActualReps: "6-8", ActualWeight: 100},
		{ID: 2, ExerciseID: 1003, ExerciseName: "Plank", Date: time.Date(2025, 3, 9, 18, 30, 0, 0, time.UTC), ActualSets: 3, ActualReps: "30s"},
		{ID: 3, ExerciseID: 1000, ExerciseName: "Squat", Date: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), ActualSets: 4, ActualReps: "8", ActualWeight: 100},
		{ID: 4, ExerciseID: 1010, ExerciseName: "Bench Press", Date: time.Date(2025, 2, 20, 8, 0, 0, 0, time.UTC), ActualSets: 4, ActualReps: "10", ActualWeight: 60},
	}
}

func TestStatsService_GetTrainingStats(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	newSvc := func() StatsService {
		planRepo := new(MockPlanRepository)
		profileRepo := new(MockProfileRepository)
		profile := testProfile()
		profile.StreakDays = 3
		profileRepo.On("GetProfileByID", uint(1)).Return(profile, nil)
		planRepo.On("GetExerciseLogs", uint(1)).Return(statsLogs(), nil)
		return NewStatsService(planRepo, profileRepo)
	}

	t.Run("Week period", func(t *testing.T) {
		report, err := newSvc().GetTrainingStats(1, "", PeriodWeek, now)

		require.NoError(t, err)
		assert.Equal(t, []string{"Plank", "Squat"}, report.AvailableExercises)
		require.Len(t, report.DataPoints, 3)
		assert.Equal(t, 6030.0, report.TotalVolume)
		assert.Equal(t, 2010.0, report.AverageVolume)
		assert.Equal(t, 2, report.TrainingDays)
		assert.Equal(t, 3, report.StreakDays)
		require.Len(t, report.DailyStats, 2)
		assert.Equal(t, 2, report.DailyStats[0].CompletedExercises)
		assert.Equal(t, 7, report.DailyStats[0].TotalSets)
		assert.Len(t, report.WeightProgress, 2)
	})

	t.Run("Exercise filter keeps the full name list", func(t *testing.T) {
		report, err := newSvc().GetTrainingStats(1, "Squat", PeriodWeek, now)

		require.NoError(t, err)
		assert.Equal(t, "Squat", report.SelectedExercise)
		assert.Equal(t, []string{"Plank", "Squat"}, report.AvailableExercises)
		assert.Len(t, report.DataPoints, 2)
		assert.Equal(t, 6000.0, report.TotalVolume)
	})

	t.Run("All time", func(t *testing.T) {
		report, err := newSvc().GetTrainingStats(1, "", PeriodAll, now)

		require.NoError(t, err)
		assert.Equal(t, []string{"Bench Press", "Plank", "Squat"}, report.AvailableExercises)
		assert.Equal(t, 3, report.TrainingDays)
		assert.True(t, report.DataPoints[0].Date.Before(report.DataPoints[1].Date))
	})

	t.Run("Unknown period", func(t *testing.T) {
		_, err := newSvc().GetTrainingStats(1, "", "fortnight", now)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("Unknown profile", func(t *testing.T) {
		profileRepo := new(MockProfileRepository)
		profileRepo.On("GetProfileByID", uint(2)).Return(nil, nil)
		_, err := NewStatsService(new(MockPlanRepository), profileRepo).GetTrainingStats(2, "", PeriodWeek, now)
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})
}
