package services

import (
	"context"
	"time"

	"fitgenius/models"
	"fitgenius/repository"

	"github.com/stretchr/testify/mock"
)

// MockPlanRepository is a mock type for the PlanRepository interface
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) CreatePlan(plan *models.Plan) error {
	args := m.Called(plan)
	return args.Error(0)
}

func (m *MockPlanRepository) GetPlanByID(planID uint) (*models.Plan, error) {
	args := m.Called(planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *MockPlanRepository) GetActivePlan(profileID uint) (*models.Plan, error) {
	args := m.Called(profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *MockPlanRepository) GetPlansByProfileID(profileID uint) ([]*models.Plan, error) {
	args := m.Called(profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Plan), args.Error(1)
}

func (m *MockPlanRepository) ActivatePlan(profile *models.Profile, plan *models.Plan) error {
	args := m.Called(profile, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) SavePlan(plan *models.Plan, removedExerciseIDs []uint) error {
	args := m.Called(plan, removedExerciseIDs)
	return args.Error(0)
}

func (m *MockPlanRepository) GetDayByID(dayID uint) (*models.Day, error) {
	args := m.Called(dayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Day), args.Error(1)
}

func (m *MockPlanRepository) CreateDay(day *models.Day) error {
	args := m.Called(day)
	return args.Error(0)
}

func (m *MockPlanRepository) DeleteDay(day *models.Day, renumbered []*models.Day) error {
	args := m.Called(day, renumbered)
	return args.Error(0)
}

func (m *MockPlanRepository) GetExerciseByID(exerciseID uint) (*models.Exercise, error) {
	args := m.Called(exerciseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Exercise), args.Error(1)
}

func (m *MockPlanRepository) CreateExercise(exercise *models.Exercise) error {
	args := m.Called(exercise)
	return args.Error(0)
}

func (m *MockPlanRepository) UpdateExercise(exercise *models.Exercise) error {
	args := m.Called(exercise)
	return args.Error(0)
}

func (m *MockPlanRepository) UpdateExercises(exercises []*models.Exercise) error {
	args := m.Called(exercises)
	return args.Error(0)
}

func (m *MockPlanRepository) DeleteExercise(exerciseID uint) error {
	args := m.Called(exerciseID)
	return args.Error(0)
}

func (m *MockPlanRepository) RecordCompletion(exercise *models.Exercise, entry *models.ExerciseLog) error {
	args := m.Called(exercise, entry)
	return args.Error(0)
}

func (m *MockPlanRepository) GetExerciseLogs(profileID uint) ([]repository.ExerciseLogRecord, error) {
	args := m.Called(profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ExerciseLogRecord), args.Error(1)
}

// MockProfileRepository is a mock type for the ProfileRepository interface
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) CreateProfile(profile *models.Profile) error {
	args := m.Called(profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetProfileByID(profileID uint) (*models.Profile, error) {
	args := m.Called(profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetProfileByUserID(userID string) (*models.Profile, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) UpdateProfile(profile *models.Profile) error {
	args := m.Called(profile)
	return args.Error(0)
}

func (m *MockProfileRepository) DeleteProfile(profileID uint) error {
	args := m.Called(profileID)
	return args.Error(0)
}

// MockMealRepository is a mock type for the MealRepository interface
type MockMealRepository struct {
	mock.Mock
}

func (m *MockMealRepository) GetMealDay(profileID uint, date time.Time) (*models.MealDay, error) {
	args := m.Called(profileID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MealDay), args.Error(1)
}

func (m *MockMealRepository) GetMealDayByID(mealDayID uint) (*models.MealDay, error) {
	args := m.Called(mealDayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MealDay), args.Error(1)
}

func (m *MockMealRepository) CreateMealDay(day *models.MealDay) error {
	args := m.Called(day)
	return args.Error(0)
}

func (m *MockMealRepository) ListMealDays(profileID uint) ([]*models.MealDay, error) {
	args := m.Called(profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MealDay), args.Error(1)
}

func (m *MockMealRepository) CreateEntry(entry *models.MealEntry) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockMealRepository) GetEntryByID(entryID uint) (*models.MealEntry, error) {
	args := m.Called(entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MealEntry), args.Error(1)
}

func (m *MockMealRepository) UpdateEntry(entry *models.MealEntry) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockMealRepository) DeleteEntry(entryID uint) error {
	args := m.Called(entryID)
	return args.Error(0)
}

func (m *MockMealRepository) SaveSubmission(day *models.MealDay, summary *models.NutritionSummary) error {
	args := m.Called(day, summary)
	return args.Error(0)
}

// MockReminderRepository is a mock type for the ReminderRepository interface
type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) UpsertReminders(reminders []*models.Reminder) error {
	args := m.Called(reminders)
	return args.Error(0)
}

func (m *MockReminderRepository) ListByProfile(profileID uint) ([]*models.Reminder, error) {
	args := m.Called(profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reminder), args.Error(1)
}

func (m *MockReminderRepository) ListDue(now time.Time) ([]*models.Reminder, error) {
	args := m.Called(now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reminder), args.Error(1)
}

func (m *MockReminderRepository) UpdateStatus(reminder *models.Reminder) error {
	args := m.Called(reminder)
	return args.Error(0)
}

func (m *MockReminderRepository) DeleteByProfile(profileID uint) error {
	args := m.Called(profileID)
	return args.Error(0)
}

// MockAIGateway is a mock type for the AIGateway interface
type MockAIGateway struct {
	mock.Mock
}

func (m *MockAIGateway) GenerateInitialPlan(ctx context.Context, profile *models.Profile) (*models.Plan, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *MockAIGateway) RegeneratePlan(ctx context.Context, profile *models.Profile, request string) (*models.Plan, error) {
	args := m.Called(ctx, profile, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *MockAIGateway) Chat(ctx context.Context, message string, profile *models.Profile, plan *models.Plan) (ChatResult, error) {
	args := m.Called(ctx, message, profile, plan)
	return args.Get(0).(ChatResult), args.Error(1)
}

func (m *MockAIGateway) Advise(ctx context.Context, message string, profile *models.Profile, plan *models.Plan) (string, error) {
	args := m.Called(ctx, message, profile, plan)
	return args.String(0), args.Error(1)
}

func (m *MockAIGateway) AnalyzeMeals(ctx context.Context, entries []models.MealEntry) (*MealAnalysis, error) {
	args := m.Called(ctx, entries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MealAnalysis), args.Error(1)
}

func (m *MockAIGateway) DietChat(ctx context.Context, message string) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

func (m *MockAIGateway) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

// MockPhotoStore is a mock type for the PhotoStore interface
type MockPhotoStore struct {
	mock.Mock
}

func (m *MockPhotoStore) Put(ctx context.Context, dataURL string) (string, error) {
	args := m.Called(ctx, dataURL)
	return args.String(0), args.Error(1)
}

func (m *MockPhotoStore) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

// MockNotifier is a mock type for the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, reminder *models.Reminder) error {
	args := m.Called(ctx, reminder)
	return args.Error(0)
}

// memoryRecordStore is an in-memory RecordStore keyed by collection and user.
type memoryRecordStore struct {
	records map[string]SyncRecord
	putErr  error
}

func newMemoryRecordStore() *memoryRecordStore {
	return &memoryRecordStore{records: map[string]SyncRecord{}}
}

func (s *memoryRecordStore) Put(_ context.Context, collection string, record SyncRecord) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.records[collection+"/"+record.UserID] = record
	return nil
}

func (s *memoryRecordStore) Get(_ context.Context, collection, userID string) (*SyncRecord, error) {
	record, ok := s.records[collection+"/"+userID]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// testPlan builds a persisted-looking three-day plan: legs, chest, rest.
func testPlan(created time.Time) *models.Plan {
	return &models.Plan{
		ID:           10,
		ProfileID:    1,
		Name:         "Test Split",
		CreationDate: created,
		Status:       models.PlanStatusActive,
		Days: []models.Day{
			{ID: 100, PlanID: 10, DayNumber: 1, Focus: models.FocusLegs, Exercises: []models.Exercise{
				{ID: 1000, DayID: 100, Name: "Squat", Sets: 4, Reps: "6-8", Weight: 100, OrderIndex: 0},
				{ID: 1001, DayID: 100, Name: "Leg Press", Sets: 3, Reps: "10-12", Weight: 150, OrderIndex: 1},
				{ID: 1002, DayID: 100, Name: "Walking Lunge", Sets: 3, Reps: "12", OrderIndex: 2},
			}},
			{ID: 101, PlanID: 10, DayNumber: 2, Focus: models.FocusChest, Exercises: []models.Exercise{
				{ID: 1010, DayID: 101, Name: "Bench Press", Sets: 4, Reps: "8-10", Weight: 60, OrderIndex: 0},
				{ID: 1011, DayID: 101, Name: "Incline Bench Press", Sets: 3, Reps: "10", Weight: 40, OrderIndex: 1},
			}},
			{ID: 102, PlanID: 10, DayNumber: 3, Focus: models.FocusRest, IsRestDay: true},
		},
	}
}

func testProfile() *models.Profile {
	planID := uint(10)
	return &models.Profile{
		ID:           1,
		UserID:       DefaultUserID,
		Name:         "Alex",
		Age:          30,
		Height:       178,
		Weight:       75,
		Goal:         models.GoalBuildMuscle,
		Environment:  models.EnvironmentGym,
		ActivePlanID: &planID,
	}
}
