package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitgenius/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strRef(s string) *string     { return &s }
func intRef(n int) *int           { return &n }
func floatRef(f float64) *float64 { return &f }

func TestPlanService_GetPlanOverview(t *testing.T) {
	mockPlanRepo := new(MockPlanRepository)
	service := NewPlanService(mockPlanRepo, new(MockProfileRepository), new(MockAIGateway))
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	plan := testPlan(now.AddDate(0, 0, -4))
	mockPlanRepo.On("GetActivePlan", uint(1)).Return(plan, nil).Once()

	overview, err := service.GetPlanOverview(1, now)

	require.NoError(t, err)
	assert.Equal(t, 3, overview.CycleDays)
	assert.Equal(t, 1, overview.TodayPosition)
	assert.Equal(t, 2, overview.CycleWeek)
	require.NotNil(t, overview.Today)
	assert.Equal(t, 2, overview.Today.DayNumber)
	require.Len(t, overview.Schedule, 3)
	assert.Equal(t, "2025-03-09", overview.Schedule[0].Date)
	assert.True(t, overview.Schedule[1].IsToday)
	assert.Equal(t, "2025-03-11", overview.Schedule[2].Date)
}

func TestPlanService_GetActivePlan_NotFound(t *testing.T) {
	mockPlanRepo := new(MockPlanRepository)
	service := NewPlanService(mockPlanRepo, new(MockProfileRepository), new(MockAIGateway))
	mockPlanRepo.On("GetActivePlan", uint(1)).Return(nil, nil).Once()

	_, err := service.GetActivePlan(1)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestPlanService_AddDay(t *testing.T) {
	mockPlanRepo := new(MockPlanRepository)
	service := NewPlanService(mockPlanRepo, new(MockProfileRepository), new(MockAIGateway))

	t.Run("Appends after the last day", func(t *testing.T) {
		mockPlanRepo.On("GetPlanByID", uint(10)).Return(testPlan(time.Now()), nil).Once()
		mockPlanRepo.On("CreateDay", mock.MatchedBy(func(d *models.Day) bool {
			return d.DayNumber == 4 && d.Focus == models.FocusBack && !d.IsRestDay && d.PlanID == 10
		})).Return(nil).Once()

		day, err := service.AddDay(10, "back", false)
		require.NoError(t, err)
		assert.Equal(t, 4, day.DayNumber)
	})

	t.Run("Rest day forces rest focus", func(t *testing.T) {
		mockPlanRepo.On("GetPlanByID", uint(10)).Return(testPlan(time.Now()), nil).Once()
		mockPlanRepo.On("CreateDay", mock.MatchedBy(func(d *models.Day) bool {
			return d.IsRestDay && d.Focus == models.FocusRest
		})).Return(nil).Once()

		day, err := service.AddDay(10, "chest", true)
		require.NoError(t, err)
		assert.Equal(t, models.FocusRest, day.Focus)
	})

	t.Run("Unknown plan", func(t *testing.T) {
		mockPlanRepo.On("GetPlanByID", uint(99)).Return(nil, nil).Once()
		_, err := service.AddDay(99, "back", false)
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})
	mockPlanRepo.AssertExpectations(t)
}

func TestPlanService_DeleteDay(t *testing.T) {
	mockPlanRepo := new(MockPlanRepository)
	service := NewPlanService(mockPlanRepo, new(MockProfileRepository), new(MockAIGateway))

	t.Run("Remaining days are renumbered", func(t *testing.T) {
		mockPlanRepo.On("GetPlanByID", uint(10)).Return(testPlan(time.Now()), nil).Once()
		mockPlanRepo.On("DeleteDay",
			mock.MatchedBy(func(d *models.Day) bool { return d.ID == 101 }),
			mock.MatchedBy(func(changed []*models.Day) bool {
				return len(changed) == 1 && changed[0].ID == 102 && changed[0].DayNumber == 2
			}),
		).Return(nil).Once()

		plan, err := service.DeleteDay(10, 101)
		require.NoError(t, err)
		require.Len(t, plan.Days, 2)
		assert.Equal(t, 1, plan.DayByNumber(1).DayNumber)
		assert.Equal(t, uint(102), plan.DayByNumber(2).ID)
	})

	t.Run("Day from another plan", func(t *testing.T) {
		mockPlanRepo.On("GetPlanByID", uint(10)).Return(testPlan(time.Now()), nil).Once()
		_, err := service.DeleteDay(10, 555)
		assert.ErrorIs(t, err, ErrDayNotFound)
	})
	mockPlanRepo.AssertExpectations(t)
}

func TestPlanService_StartNewCycle(t *testing.T) {
	mockPlanRepo := new(MockPlanRepository)
	service := NewPlanService(mockPlanRepo, new(MockProfileRepository), new(MockAIGateway))
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	plan := testPlan(now.AddDate(0, 0, -20))
	done := now.AddDate(0, 0, -1)
	plan.Days[0].Exercises[0].IsCompleted = true
	plan.Days[0].Exercises[0].LastCompletedDate = &done
	mockPlanRepo.On("GetPlanByID", uint(10)).Return(plan, nil).Once()
	mockPlanRepo.On("SavePlan", plan, []uint(nil)).Return(nil).Once()

	updated, err := service.StartNewCycle(10, now)

	require.NoError(t, err)
	assert.Equal(t, now, updated.CreationDate)
	assert.False(t, updated.Days[0].Exercises[0].IsCompleted)
	assert.Nil(t, updated.Days[0].Exercises[0].LastCompletedDate)
	assert.Equal(t, 0, updated.TodayCyclePosition(now))
}

func TestPlanService_GetDay_ResetsStaleCompletion(t *testing.T) {
	mockPlanRepo := new(MockPlanRepository)
	service := NewPlanService(mockPlanRepo, new(MockProfileRepository), new(MockAIGateway))
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	day := testPlan(now).Days[0]
	day.Exercises[0].IsCompleted = true
	day.Exercises[0].LastCompletedDate = &yesterday
	day.Exercises[1].IsCompleted = true
	day.Exercises[1].LastCompletedDate = &now

	mockPlanRepo.On("GetDayByID", uint(100)).Return(&day, nil).Once()
	mockPlanRepo.On("UpdateExercises", mock.MatchedBy(func(exs []*models.Exercise) bool {
		return len(exs) == 1 && exs[0].ID == 1000 && !exs[0].IsCompleted
	})).Return(nil).Once()

	got, err := service.GetDay(100, now)

	require.NoError(t, err)
	assert.False(t, got.Exercises[0].IsCompleted)
	assert.True(t, got.Exercises[1].IsCompleted)
	mockPlanRepo.AssertExpectations(t)
}

func TestPlanService_CreateExercise(t *testing.T) {
	mockPlanRepo := new(MockPlanRepository)
	service := NewPlanService(mockPlanRepo, new(MockProfileRepository), new(MockAIGateway))
	plan := testPlan(time.Now())

	t.Run("Defaults and order index", func(t *testing.T) {
		mockPlanRepo.On("GetDayByID", uint(100)).Return(&plan.Days[0], nil).Once()
		mockPlanRepo.On("CreateExercise", mock.AnythingOfType("*models.Exercise")).Return(nil).Once()

		ex, err := service.CreateExercise(100, ExerciseInput{Name: strRef("Hip Thrust")})
		require.NoError(t, err)
		assert.Equal(t, 3, ex.Sets)
		assert.Equal(t, "8-12", ex.Reps)
		assert.Equal(t, 3, ex.OrderIndex)
	})

	t.Run("Rest day rejects exercises", func(t *testing.T) {
		mockPlanRepo.On("GetDayByID", uint(102)).Return(&plan.Days[2], nil).Once()
		_, err := service.CreateExercise(102, ExerciseInput{Name: strRef("Plank")})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("Zero sets rejected", func(t *testing.T) {
		mockPlanRepo.On("GetDayByID", uint(100)).Return(&plan.Days[0], nil).Once()
		_, err := service.CreateExercise(100, ExerciseInput{Name: strRef("Hip Thrust"), Sets: intRef(0)})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
	mockPlanRepo.AssertNumberOfCalls(t, "CreateExercise", 1)
}

func TestPlanService_UpdateExercise(t *testing.T) {
	mockPlanRepo := new(MockPlanRepository)
	service := NewPlanService(mockPlanRepo, new(MockProfileRepository), new(MockAIGateway))

	t.Run("Partial update keeps other fields", func(t *testing.T) {
		ex := testPlan(time.Now()).Days[0].Exercises[0]
		mockPlanRepo.On("GetExerciseByID", uint(1000)).Return(&ex, nil).Once()
		mockPlanRepo.On("UpdateExercise", &ex).Return(nil).Once()

		updated, err := service.UpdateExercise(1000, ExerciseInput{Weight: floatRef(105)})
		require.NoError(t, err)
		assert.Equal(t, 105.0, updated.Weight)
		assert.Equal(t, "Squat", updated.Name)
		assert.Equal(t, 4, updated.Sets)
	})

	t.Run("Negative weight rejected", func(t *testing.T) {
		ex := testPlan(time.Now()).Days[0].Exercises[0]
		mockPlanRepo.On("GetExerciseByID", uint(1000)).Return(&ex, nil).Once()
		_, err := service.UpdateExercise(1000, ExerciseInput{Weight: floatRef(-5)})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("Unknown exercise", func(t *testing.T) {
		mockPlanRepo.On("GetExerciseByID", uint(4242)).Return(nil, nil).Once()
		_, err := service.UpdateExercise(4242, ExerciseInput{})
		assert.ErrorIs(t, err, ErrExerciseNotFound)
	})
	mockPlanRepo.AssertNumberOfCalls(t, "UpdateExercise", 1)
}

func TestPlanService_ToggleExerciseCompletion(t *testing.T) {
	mockPlanRepo := new(MockPlanRepository)
	service := NewPlanService(mockPlanRepo, new(MockProfileRepository), new(MockAIGateway))
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	ex := testPlan(now).Days[0].Exercises[0]
	mockPlanRepo.On("GetExerciseByID", uint(1000)).Return(&ex, nil)

	mockPlanRepo.On("RecordCompletion", &ex, mock.MatchedBy(func(entry *models.ExerciseLog) bool {
		return entry != nil && entry.ActualWeight == 100 && entry.ActualSets == 4 && entry.ActualReps == "6-8"
	})).Return(nil).Once()
	updated, err := service.ToggleExerciseCompletion(1000, now)
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	require.NotNil(t, updated.LastCompletedDate)

	mockPlanRepo.On("RecordCompletion", &ex, (*models.ExerciseLog)(nil)).Return(nil).Once()
	updated, err = service.ToggleExerciseCompletion(1000, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, updated.IsCompleted)
	mockPlanRepo.AssertExpectations(t)
}

func TestPlanService_RegeneratePlan(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty result never replaces the active plan", func(t *testing.T) {
		mockPlanRepo := new(MockPlanRepository)
		mockProfileRepo := new(MockProfileRepository)
		mockGateway := new(MockAIGateway)
		service := NewPlanService(mockPlanRepo, mockProfileRepo, mockGateway)
		profile := testProfile()
		mockProfileRepo.On("GetProfileByID", uint(1)).Return(profile, nil).Once()
		mockGateway.On("RegeneratePlan", ctx, profile, "4 day split").Return(&models.Plan{Name: "Nothing"}, nil).Once()

		_, err := service.RegeneratePlan(ctx, 1, "4 day split")
		assert.ErrorIs(t, err, ErrPlanEmptyAfterRegeneration)
		mockPlanRepo.AssertNotCalled(t, "ActivatePlan", mock.Anything, mock.Anything)
	})

	t.Run("Gateway errors pass through", func(t *testing.T) {
		mockPlanRepo := new(MockPlanRepository)
		mockProfileRepo := new(MockProfileRepository)
		mockGateway := new(MockAIGateway)
		service := NewPlanService(mockPlanRepo, mockProfileRepo, mockGateway)
		profile := testProfile()
		mockProfileRepo.On("GetProfileByID", uint(1)).Return(profile, nil).Once()
		mockGateway.On("RegeneratePlan", ctx, profile, "4 day split").Return(nil, ErrNetworkFailure).Once()

		_, err := service.RegeneratePlan(ctx, 1, "4 day split")
		assert.ErrorIs(t, err, ErrNetworkFailure)
	})

	t.Run("New plan is activated", func(t *testing.T) {
		mockPlanRepo := new(MockPlanRepository)
		mockProfileRepo := new(MockProfileRepository)
		mockGateway := new(MockAIGateway)
		service := NewPlanService(mockPlanRepo, mockProfileRepo, mockGateway)
		profile := testProfile()
		newPlan := &models.Plan{Name: "Upper/Lower", Days: []models.Day{{DayNumber: 1, Focus: models.FocusChest}}}
		mockProfileRepo.On("GetProfileByID", uint(1)).Return(profile, nil).Once()
		mockGateway.On("RegeneratePlan", ctx, profile, "upper lower").Return(newPlan, nil).Once()
		mockPlanRepo.On("ActivatePlan", profile, newPlan).Return(nil).Once()

		plan, err := service.RegeneratePlan(ctx, 1, "upper lower")
		require.NoError(t, err)
		assert.Equal(t, uint(1), plan.ProfileID)
		mockPlanRepo.AssertExpectations(t)
	})

	t.Run("Activation failure is wrapped", func(t *testing.T) {
		mockPlanRepo := new(MockPlanRepository)
		mockProfileRepo := new(MockProfileRepository)
		mockGateway := new(MockAIGateway)
		service := NewPlanService(mockPlanRepo, mockProfileRepo, mockGateway)
		profile := testProfile()
		newPlan := &models.Plan{Name: "Upper/Lower", Days: []models.Day{{DayNumber: 1, Focus: models.FocusChest}}}
		dbErr := errors.New("db down")
		mockProfileRepo.On("GetProfileByID", uint(1)).Return(profile, nil).Once()
		mockGateway.On("RegeneratePlan", ctx, profile, "upper lower").Return(newPlan, nil).Once()
		mockPlanRepo.On("ActivatePlan", profile, newPlan).Return(dbErr).Once()

		_, err := service.RegeneratePlan(ctx, 1, "upper lower")
		assert.ErrorIs(t, err, dbErr)
	})
}
