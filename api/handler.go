package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"fitgenius/config"
	"fitgenius/models"
	"fitgenius/services"
	"fitgenius/utils"

	"github.com/gin-gonic/gin"
)

// APIHandler holds all dependencies for API handlers.
type APIHandler struct {
	profileService      services.ProfileService
	planService         services.PlanService
	assistantService    services.AssistantService
	dietService         services.DietService
	statsService        services.StatsService
	syncService         services.SyncService
	notificationService services.NotificationService
	gateway             services.AIGateway
	now                 func() time.Time
}

// NewAPIHandler creates a new APIHandler with necessary dependencies.
func NewAPIHandler(
	profileService services.ProfileService,
	planService services.PlanService,
	assistantService services.AssistantService,
	dietService services.DietService,
	statsService services.StatsService,
	syncService services.SyncService,
	notificationService services.NotificationService,
	gateway services.AIGateway,
) *APIHandler {
	return &APIHandler{
		profileService:      profileService,
		planService:         planService,
		assistantService:    assistantService,
		dietService:         dietService,
		statsService:        statsService,
		syncService:         syncService,
		notificationService: notificationService,
		gateway:             gateway,
		now:                 time.Now,
	}
}

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": message,
		"data":    data,
	})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrPlanEmptyAfterRegeneration):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrPlanNotFound),
		errors.Is(err, services.ErrDayNotFound),
		errors.Is(err, services.ErrExerciseNotFound),
		errors.Is(err, services.ErrMealDayNotFound),
		errors.Is(err, services.ErrMealEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrProfileExists),
		errors.Is(err, services.ErrAssistantBusy),
		errors.Is(err, services.ErrNoPendingRegeneration):
		return http.StatusConflict
	case errors.Is(err, services.ErrMissingCredential),
		errors.Is(err, services.ErrInvalidEndpoint),
		errors.Is(err, services.ErrPhotoStorageDisabled),
		errors.Is(err, services.ErrSyncDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrNetworkFailure),
		errors.Is(err, services.ErrUnexpectedResponse),
		errors.Is(err, services.ErrDecodeFailure),
		errors.Is(err, services.ErrEmptyContent):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// sendServiceError reports err with its mapped status. Client errors expose
// the error text; everything else shows publicMsg.
func sendServiceError(c *gin.Context, publicMsg string, err error) {
	status := statusFor(err)
	if status < http.StatusInternalServerError {
		utils.SendJSONError(c, status, err.Error(), err)
		return
	}
	utils.SendJSONError(c, status, publicMsg, err)
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := utils.ParseUintParam(c, name)
	if err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid "+name+" parameter.", err)
		return 0, false
	}
	return id, true
}

// InitHandler returns the startup state: whether the user has onboarded,
// the dashboard overview and which optional integrations are active.
// GET /api/init?user_id=
func (h *APIHandler) InitHandler(c *gin.Context) {
	profile, err := h.profileService.GetProfileByUserID(c.Query("user_id"))
	if err != nil {
		sendServiceError(c, "Failed to load profile.", err)
		return
	}

	response := models.InitResponse{
		HasProfile:   profile != nil,
		Profile:      profile,
		AIConfigured: h.gateway.Configured(),
		Model:        config.AppConfig.LLM.Model,
		SyncEnabled:  config.AppConfig.Sync.Enabled,
	}
	if profile != nil {
		overview, err := h.planService.GetPlanOverview(profile.ID, h.now())
		if err != nil && !errors.Is(err, services.ErrPlanNotFound) {
			sendServiceError(c, "Failed to load plan overview.", err)
			return
		}
		response.Overview = overview
	}
	respondOK(c, "OK", response)
}

// --- Profile ---

// CreateProfileHandler completes onboarding.
// POST /api/profiles
func (h *APIHandler) CreateProfileHandler(c *gin.Context) {
	var input services.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request format.", err)
		return
	}
	profile, plan, err := h.profileService.CreateProfile(c.Request.Context(), input)
	if err != nil {
		sendServiceError(c, "Failed to create profile.", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code":    201,
		"message": "Profile created",
		"data":    gin.H{"profile": profile, "plan": plan},
	})
}

// GET /api/profiles/:profileID
func (h *APIHandler) GetProfileHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	profile, err := h.profileService.GetProfile(profileID)
	if err != nil {
		sendServiceError(c, "Failed to load profile.", err)
		return
	}
	respondOK(c, "OK", profile)
}

// PUT /api/profiles/:profileID
func (h *APIHandler) UpdateProfileHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	var input services.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request format.", err)
		return
	}
	profile, err := h.profileService.UpdateProfile(profileID, input)
	if err != nil {
		sendServiceError(c, "Failed to update profile.", err)
		return
	}
	respondOK(c, "Profile updated", profile)
}

// RecordVisitHandler runs the streak check for an app launch.
// POST /api/profiles/:profileID/visit
func (h *APIHandler) RecordVisitHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	profile, err := h.profileService.RecordVisit(profileID, h.now())
	if err != nil {
		sendServiceError(c, "Failed to update streak.", err)
		return
	}
	respondOK(c, "OK", profile)
}

// DELETE /api/profiles/:profileID
func (h *APIHandler) ResetProfileHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	if err := h.notificationService.CancelAll(profileID); err != nil {
		log.Printf("WARN: [API] Failed to cancel reminders for profile ID %d: %v", profileID, err)
	}
	if err := h.profileService.ResetProfile(profileID); err != nil {
		sendServiceError(c, "Failed to reset profile.", err)
		return
	}
	respondOK(c, "Profile reset", nil)
}

// --- Plan ---

// GET /api/profiles/:profileID/plan
func (h *APIHandler) GetPlanOverviewHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	overview, err := h.planService.GetPlanOverview(profileID, h.now())
	if err != nil {
		sendServiceError(c, "Failed to load plan.", err)
		return
	}
	respondOK(c, "OK", overview)
}

// RegeneratePlanHandler replaces the active plan with a freshly generated one.
// POST /api/profiles/:profileID/plan/regenerate
// Request body: { "request": "string" }
func (h *APIHandler) RegeneratePlanHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	var req struct {
		Request string `json:"request" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request: request is required.", err)
		return
	}
	plan, err := h.planService.RegeneratePlan(c.Request.Context(), profileID, req.Request)
	if err != nil {
		sendServiceError(c, "Failed to regenerate plan.", err)
		return
	}
	respondOK(c, "Plan regenerated", plan)
}

// POST /api/plans/:planID/days
// Request body: { "focus": "string", "is_rest_day": bool }
func (h *APIHandler) AddDayHandler(c *gin.Context) {
	planID, ok := uintParam(c, "planID")
	if !ok {
		return
	}
	var req struct {
		Focus     string `json:"focus"`
		IsRestDay bool   `json:"is_rest_day"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request format.", err)
		return
	}
	day, err := h.planService.AddDay(planID, req.Focus, req.IsRestDay)
	if err != nil {
		sendServiceError(c, "Failed to add day.", err)
		return
	}
	respondOK(c, "Day added", day)
}

// DELETE /api/plans/:planID/days/:dayID
func (h *APIHandler) DeleteDayHandler(c *gin.Context) {
	planID, ok := uintParam(c, "planID")
	if !ok {
		return
	}
	dayID, ok := uintParam(c, "dayID")
	if !ok {
		return
	}
	plan, err := h.planService.DeleteDay(planID, dayID)
	if err != nil {
		sendServiceError(c, "Failed to delete day.", err)
		return
	}
	respondOK(c, "Day deleted", plan)
}

// POST /api/plans/:planID/new-cycle
func (h *APIHandler) StartNewCycleHandler(c *gin.Context) {
	planID, ok := uintParam(c, "planID")
	if !ok {
		return
	}
	plan, err := h.planService.StartNewCycle(planID, h.now())
	if err != nil {
		sendServiceError(c, "Failed to start a new cycle.", err)
		return
	}
	respondOK(c, "New cycle started", plan)
}

// GET /api/days/:dayID
func (h *APIHandler) GetDayHandler(c *gin.Context) {
	dayID, ok := uintParam(c, "dayID")
	if !ok {
		return
	}
	day, err := h.planService.GetDay(dayID, h.now())
	if err != nil {
		sendServiceError(c, "Failed to load day.", err)
		return
	}
	respondOK(c, "OK", day)
}

// POST /api/days/:dayID/exercises
func (h *APIHandler) CreateExerciseHandler(c *gin.Context) {
	dayID, ok := uintParam(c, "dayID")
	if !ok {
		return
	}
	var input services.ExerciseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request format.", err)
		return
	}
	exercise, err := h.planService.CreateExercise(dayID, input)
	if err != nil {
		sendServiceError(c, "Failed to create exercise.", err)
		return
	}
	respondOK(c, "Exercise created", exercise)
}

// PUT /api/exercises/:exerciseID
func (h *APIHandler) UpdateExerciseHandler(c *gin.Context) {
	exerciseID, ok := uintParam(c, "exerciseID")
	if !ok {
		return
	}
	var input services.ExerciseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request format.", err)
		return
	}
	exercise, err := h.planService.UpdateExercise(exerciseID, input)
	if err != nil {
		sendServiceError(c, "Failed to update exercise.", err)
		return
	}
	respondOK(c, "Exercise updated", exercise)
}

// DELETE /api/exercises/:exerciseID
func (h *APIHandler) DeleteExerciseHandler(c *gin.Context) {
	exerciseID, ok := uintParam(c, "exerciseID")
	if !ok {
		return
	}
	if err := h.planService.DeleteExercise(exerciseID); err != nil {
		sendServiceError(c, "Failed to delete exercise.", err)
		return
	}
	respondOK(c, "Exercise deleted", nil)
}

// ToggleExerciseHandler flips an exercise's completion for today.
// POST /api/exercises/:exerciseID/toggle
func (h *APIHandler) ToggleExerciseHandler(c *gin.Context) {
	exerciseID, ok := uintParam(c, "exerciseID")
	if !ok {
		return
	}
	exercise, err := h.planService.ToggleExerciseCompletion(exerciseID, h.now())
	if err != nil {
		sendServiceError(c, "Failed to update exercise.", err)
		return
	}
	respondOK(c, "OK", exercise)
}

// --- Stats ---

// GET /api/profiles/:profileID/stats/training?exercise=&period=week|month|all
func (h *APIHandler) TrainingStatsHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	report, err := h.statsService.GetTrainingStats(profileID, c.Query("exercise"), c.DefaultQuery("period", services.PeriodWeek), h.now())
	if err != nil {
		sendServiceError(c, "Failed to build training stats.", err)
		return
	}
	respondOK(c, "OK", report)
}

// --- Sync ---

// POST /api/profiles/:profileID/sync/upload
func (h *APIHandler) SyncUploadHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	if err := h.syncService.Upload(c.Request.Context(), profileID); err != nil {
		sendServiceError(c, "Failed to upload to the cloud.", err)
		return
	}
	respondOK(c, "Uploaded", nil)
}

// SyncDownloadHandler restores the newest cloud copy for a user.
// POST /api/sync/download
// Request body: { "user_id": "string" }
func (h *APIHandler) SyncDownloadHandler(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request format.", err)
		return
	}
	profile, plan, err := h.syncService.DownloadLatest(c.Request.Context(), req.UserID)
	if err != nil {
		sendServiceError(c, "Failed to download from the cloud.", err)
		return
	}
	if profile == nil {
		utils.SendJSONError(c, http.StatusNotFound, "No cloud data found for this user.", nil)
		return
	}
	respondOK(c, "Downloaded", gin.H{"profile": profile, "plan": plan})
}

// --- Reminders ---

// ScheduleRemindersHandler replaces the profile's reminders for the current cycle.
// POST /api/profiles/:profileID/reminders
func (h *APIHandler) ScheduleRemindersHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	plan, err := h.planService.GetActivePlan(profileID)
	if err != nil {
		sendServiceError(c, "Failed to load plan.", err)
		return
	}
	reminders, err := h.notificationService.ScheduleTrainingReminders(c.Request.Context(), plan, h.now())
	if err != nil {
		sendServiceError(c, "Failed to schedule reminders.", err)
		return
	}
	respondOK(c, "Reminders scheduled", reminders)
}

// GET /api/profiles/:profileID/reminders
func (h *APIHandler) ListRemindersHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	reminders, err := h.notificationService.ListReminders(profileID)
	if err != nil {
		sendServiceError(c, "Failed to load reminders.", err)
		return
	}
	respondOK(c, "OK", reminders)
}

// DELETE /api/profiles/:profileID/reminders
func (h *APIHandler) CancelRemindersHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	if err := h.notificationService.CancelAll(profileID); err != nil {
		sendServiceError(c, "Failed to cancel reminders.", err)
		return
	}
	respondOK(c, "Reminders cancelled", nil)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
