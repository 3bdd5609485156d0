package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"fitgenius/config"
	"fitgenius/models"
	"fitgenius/repository"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SyncRecord is one stored document: the serialized DTO plus its owner.
type SyncRecord struct {
	UserID    string    `firestore:"userId"`
	JSON      string    `firestore:"json"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// RecordStore persists sync records per collection, one per user.
type RecordStore interface {
	Put(ctx context.Context, collection string, record SyncRecord) error
	// Get returns (nil, nil) when the user has no record in collection.
	Get(ctx context.Context, collection, userID string) (*SyncRecord, error)
}

type firestoreRecordStore struct {
	client *firestore.Client
}

// NewFirestoreRecordStore opens a Firestore client for projectID.
func NewFirestoreRecordStore(ctx context.Context, projectID string) (RecordStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return &firestoreRecordStore{client: client}, nil
}

func (s *firestoreRecordStore) Put(ctx context.Context, collection string, record SyncRecord) error {
	_, err := s.client.Collection(collection).Doc(record.UserID).Set(ctx, record)
	return err
}

func (s *firestoreRecordStore) Get(ctx context.Context, collection, userID string) (*SyncRecord, error) {
	snap, err := s.client.Collection(collection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	var record SyncRecord
	if err := snap.DataTo(&record); err != nil {
		return nil, fmt.Errorf("failed to parse %s record for user %s: %w", collection, userID, err)
	}
	return &record, nil
}

// Transfer shapes stored as record JSON.
type profileDTO struct {
	Name               string   `json:"name"`
	Age                int      `json:"age"`
	Height             float64  `json:"height"`
	Weight             float64  `json:"weight"`
	Goal               string   `json:"goal"`
	Environment        string   `json:"environment"`
	AvailableEquipment []string `json:"availableEquipment"`
	Injuries           string   `json:"injuries"`
	StreakDays         int      `json:"streakDays"`
}

type exerciseDTO struct {
	Name   string  `json:"name"`
	Sets   int     `json:"sets"`
	Reps   string  `json:"reps"`
	Weight float64 `json:"weight"`
	Notes  string  `json:"notes"`
}

type dayDTO struct {
	DayNumber int           `json:"dayNumber"`
	Focus     string        `json:"focus"`
	IsRestDay bool          `json:"isRestDay"`
	Exercises []exerciseDTO `json:"exercises"`
}

type planDTO struct {
	Name         string    `json:"name"`
	CreationDate time.Time `json:"creationDate"`
	Days         []dayDTO  `json:"days"`
}

func newProfileDTO(p *models.Profile) profileDTO {
	return profileDTO{
		Name:               p.Name,
		Age:                p.Age,
		Height:             p.Height,
		Weight:             p.Weight,
		Goal:               string(p.Goal),
		Environment:        string(p.Environment),
		AvailableEquipment: []string(p.AvailableEquipment),
		Injuries:           p.Injuries,
		StreakDays:         p.StreakDays,
	}
}

func newPlanDTO(p *models.Plan) planDTO {
	dto := planDTO{Name: p.Name, CreationDate: p.CreationDate}
	for _, day := range p.SortedDays() {
		d := dayDTO{DayNumber: day.DayNumber, Focus: string(day.Focus), IsRestDay: day.IsRestDay}
		if day.IsRestDay {
			d.Focus = string(models.FocusRest)
		}
		for _, ex := range day.SortedExercises() {
			d.Exercises = append(d.Exercises, exerciseDTO{
				Name:   ex.Name,
				Sets:   ex.Sets,
				Reps:   ex.Reps,
				Weight: ex.Weight,
				Notes:  ex.Notes,
			})
		}
		dto.Days = append(dto.Days, d)
	}
	return dto
}

// applyTo writes the stored fields onto profile, defaulting unknown enums.
func (dto profileDTO) applyTo(profile *models.Profile) {
	goal, ok := models.ParseFitnessGoal(dto.Goal)
	if !ok {
		goal = models.GoalBuildMuscle
	}
	env, ok := models.ParseWorkoutEnvironment(dto.Environment)
	if !ok {
		env = models.EnvironmentGym
	}
	profile.Name = dto.Name
	profile.Age = dto.Age
	profile.Height = dto.Height
	profile.Weight = dto.Weight
	profile.Goal = goal
	profile.Environment = env
	profile.AvailableEquipment = dto.AvailableEquipment
	profile.Injuries = dto.Injuries
	profile.StreakDays = dto.StreakDays
}

func (dto planDTO) toPlan() *models.Plan {
	plan := &models.Plan{Name: dto.Name, CreationDate: dto.CreationDate}
	for _, d := range dto.Days {
		day := models.Day{
			DayNumber: d.DayNumber,
			Focus:     models.ParseFocus(d.Focus),
			IsRestDay: d.IsRestDay,
		}
		for i, ex := range d.Exercises {
			exercise := models.Exercise{
				Name:       ex.Name,
				Sets:       ex.Sets,
				Reps:       strings.TrimSpace(ex.Reps),
				Weight:     ex.Weight,
				Notes:      ex.Notes,
				OrderIndex: i,
			}
			if exercise.Sets <= 0 {
				exercise.Sets = defaultSets
			}
			if exercise.Reps == "" {
				exercise.Reps = defaultReps
			}
			if exercise.Weight < 0 {
				exercise.Weight = 0
			}
			day.Exercises = append(day.Exercises, exercise)
		}
		day.Normalize()
		plan.Days = append(plan.Days, day)
	}
	models.RenumberDays(plan.Days)
	return plan
}

// SyncService copies the profile and active plan to and from cloud storage.
type SyncService interface {
	Upload(ctx context.Context, profileID uint) error
	DownloadLatest(ctx context.Context, userID string) (*models.Profile, *models.Plan, error)
}

type syncService struct {
	store       RecordStore
	profileRepo repository.ProfileRepository
	planRepo    repository.PlanRepository
	cfg         config.SyncConfig
	now         func() time.Time
}

// NewSyncService creates a new instance of SyncService. A nil store yields a
// service whose operations fail with ErrSyncDisabled.
func NewSyncService(store RecordStore, profileRepo repository.ProfileRepository, planRepo repository.PlanRepository, cfg config.SyncConfig) SyncService {
	if cfg.ProfileCollection == "" {
		cfg.ProfileCollection = "profiles"
	}
	if cfg.PlanCollection == "" {
		cfg.PlanCollection = "plans"
	}
	return &syncService{
		store:       store,
		profileRepo: profileRepo,
		planRepo:    planRepo,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Upload writes the profile and its active plan as two records.
func (s *syncService) Upload(ctx context.Context, profileID uint) error {
	if s.store == nil {
		return ErrSyncDisabled
	}
	profile, err := s.profileRepo.GetProfileByID(profileID)
	if err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("%w: ID %d", ErrProfileNotFound, profileID)
	}
	plan, err := s.planRepo.GetActivePlan(profileID)
	if err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("%w: profile ID %d has no active plan", ErrPlanNotFound, profileID)
	}

	now := s.now()
	if err := s.put(ctx, s.cfg.ProfileCollection, profile.UserID, newProfileDTO(profile), now); err != nil {
		return err
	}
	if err := s.put(ctx, s.cfg.PlanCollection, profile.UserID, newPlanDTO(plan), now); err != nil {
		return err
	}
	log.Printf("INFO: [SyncService] Uploaded profile and plan '%s' for user %s.", plan.Name, profile.UserID)
	return nil
}

func (s *syncService) put(ctx context.Context, collection, userID string, dto any, now time.Time) error {
	data, err := json.Marshal(dto)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", collection, err)
	}
	record := SyncRecord{UserID: userID, JSON: string(data), UpdatedAt: now}
	if err := s.store.Put(ctx, collection, record); err != nil {
		errMsg := fmt.Sprintf("failed to upload %s record for user %s", collection, userID)
		log.Printf("ERROR: [SyncService] %s: %v", errMsg, err)
		return fmt.Errorf("%s: %w", errMsg, err)
	}
	return nil
}

// DownloadLatest restores the stored profile and plan, replacing local
// profile fields and activating the downloaded plan. It returns
// (nil, nil, nil) when nothing is stored for the user.
func (s *syncService) DownloadLatest(ctx context.Context, userID string) (*models.Profile, *models.Plan, error) {
	if s.store == nil {
		return nil, nil, ErrSyncDisabled
	}
	if strings.TrimSpace(userID) == "" {
		userID = DefaultUserID
	}

	profileRecord, err := s.store.Get(ctx, s.cfg.ProfileCollection, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch profile record for user %s: %w", userID, err)
	}
	planRecord, err := s.store.Get(ctx, s.cfg.PlanCollection, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch plan record for user %s: %w", userID, err)
	}
	if profileRecord == nil || planRecord == nil {
		log.Printf("INFO: [SyncService] No cloud records for user %s.", userID)
		return nil, nil, nil
	}

	var pDTO profileDTO
	if err := json.Unmarshal([]byte(profileRecord.JSON), &pDTO); err != nil {
		return nil, nil, fmt.Errorf("%w: profile record: %v", ErrDecodeFailure, err)
	}
	var plDTO planDTO
	if err := json.Unmarshal([]byte(planRecord.JSON), &plDTO); err != nil {
		return nil, nil, fmt.Errorf("%w: plan record: %v", ErrDecodeFailure, err)
	}
	plan := plDTO.toPlan()
	if len(plan.Days) == 0 {
		return nil, nil, fmt.Errorf("%w: downloaded plan has no days", ErrDecodeFailure)
	}

	profile, err := s.profileRepo.GetProfileByUserID(userID)
	if err != nil {
		return nil, nil, err
	}
	if profile == nil {
		profile = &models.Profile{UserID: userID}
		pDTO.applyTo(profile)
		if err := s.profileRepo.CreateProfile(profile); err != nil {
			return nil, nil, err
		}
	} else {
		pDTO.applyTo(profile)
		if err := s.profileRepo.UpdateProfile(profile); err != nil {
			return nil, nil, err
		}
	}
	if err := s.planRepo.ActivatePlan(profile, plan); err != nil {
		return nil, nil, err
	}
	log.Printf("INFO: [SyncService] Restored plan '%s' (%d days) for user %s.", plan.Name, len(plan.Days), userID)
	return profile, plan, nil
}
