package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"fitgenius/models"
	"fitgenius/repository"

	"github.com/google/uuid"
)

// WelcomeMessage opens every transcript and is all that remains after a clear.
const WelcomeMessage = `Hi! I'm your AI fitness assistant. Tell me how you'd like to adjust your plan, for example:
• "Replace squats on day 1 with leg press"
• "Add 3 sets of planks to day 2"
• "Remove lunges from day 3"
• "Switch my plan to a 5-day split"`

const (
	confirmRegenerationPrompt = "This request changes the structure of your plan, so I need to regenerate the whole plan. Your current plan will be archived and replaced. Confirm to continue or cancel to keep it."
	regenerationSuccess       = "✅ Regenerated your training plan as requested! The new plan is applied."
	regenerationCancelled     = "Okay, your current plan stays as it is."
)

// structuralPatterns recognise requests that change the cycle length or split.
var structuralPatterns = []*regexp.Regexp{
	regexp.MustCompile(`分化`),
	regexp.MustCompile(`循环`),
	regexp.MustCompile(`天数`),
	regexp.MustCompile(`改为.*天`),
	regexp.MustCompile(`删除.*天`),
	regexp.MustCompile(`增加.*天`),
	regexp.MustCompile(`变成.*天`),
	regexp.MustCompile(`调整.*天`),
	regexp.MustCompile(`(?i)\bsplits?\b`),
	regexp.MustCompile(`(?i)\bcycles?\b`),
	regexp.MustCompile(`(?i)\b\d+\s*-?\s*days?\s+(plan|split|cycle|routine|program|a week|per week)\b`),
	regexp.MustCompile(`(?i)\b\d+-day\b`),
	regexp.MustCompile(`(?i)\b(one|two|three|four|five|six|seven)[\s-]days?\b`),
	regexp.MustCompile(`(?i)\b(training|workout|rest) days\b`),
	regexp.MustCompile(`(?i)\bdays (a|per) week\b`),
	regexp.MustCompile(`(?i)\b(add|remove|delete|drop)\s+(an?\s+)?(extra\s+)?(training\s+|workout\s+|rest\s+)?day\b`),
	regexp.MustCompile(`(?i)\b(push[\s/-]pull|upper[\s/-]lower|bro split|ppl)\b`),
}

// IsStructuralRequest reports whether a message asks to change the plan's
// shape (day count or split) rather than a single exercise.
func IsStructuralRequest(message string) bool {
	for _, re := range structuralPatterns {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}

// AssistantReply carries the messages an operation appended to the transcript.
type AssistantReply struct {
	Messages            []models.ChatMessage `json:"messages"`
	PendingConfirmation bool                 `json:"pending_confirmation"`
	PendingMessage      string               `json:"pending_message,omitempty"`
	PlanChanged         bool                 `json:"plan_changed"`
}

// AssistantService runs the plan assistant conversation.
type AssistantService interface {
	SendMessage(ctx context.Context, profileID uint, content string, mode models.AssistantMode) (*AssistantReply, error)
	ConfirmRegeneration(ctx context.Context, profileID uint) (*AssistantReply, error)
	CancelRegeneration(profileID uint) (*AssistantReply, error)
	GetTranscript(profileID uint, limit int) ([]models.ChatMessage, error)
	ClearTranscript(profileID uint) ([]models.ChatMessage, error)
}

type assistantService struct {
	profileRepo repository.ProfileRepository
	planRepo    repository.PlanRepository
	chatRepo    repository.ChatRepository
	planService PlanService
	gateway     AIGateway
	interpreter CommandInterpreter
	now         func() time.Time

	mu      sync.Mutex
	busy    map[uint]bool
	pending map[uint]string
}

// NewAssistantService creates an AssistantService.
func NewAssistantService(
	profileRepo repository.ProfileRepository,
	planRepo repository.PlanRepository,
	chatRepo repository.ChatRepository,
	planService PlanService,
	gateway AIGateway,
	interpreter CommandInterpreter,
) AssistantService {
	return &assistantService{
		profileRepo: profileRepo,
		planRepo:    planRepo,
		chatRepo:    chatRepo,
		planService: planService,
		gateway:     gateway,
		interpreter: interpreter,
		now:         time.Now,
		busy:        make(map[uint]bool),
		pending:     make(map[uint]string),
	}
}

// acquire enforces one in-flight request per profile.
func (s *assistantService) acquire(profileID uint) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[profileID] {
		return nil, ErrAssistantBusy
	}
	s.busy[profileID] = true
	return func() {
		s.mu.Lock()
		delete(s.busy, profileID)
		s.mu.Unlock()
	}, nil
}

func (s *assistantService) loadProfile(profileID uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetProfileByID(profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile ID %d: %w", profileID, err)
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: ID %d", ErrProfileNotFound, profileID)
	}
	return profile, nil
}

func (s *assistantService) newMessage(profileID uint, content string, fromUser, systemAction bool) models.ChatMessage {
	return models.ChatMessage{
		ID:             uuid.NewString(),
		ProfileID:      profileID,
		Content:        content,
		IsFromUser:     fromUser,
		IsSystemAction: systemAction,
		Timestamp:      s.now(),
	}
}

// append stores a message and records it on the reply.
func (s *assistantService) append(reply *AssistantReply, msg models.ChatMessage) error {
	if err := s.chatRepo.SaveMessage(msg); err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}
	reply.Messages = append(reply.Messages, msg)
	return nil
}

func (s *assistantService) ensureWelcome(profileID uint) error {
	existing, err := s.chatRepo.GetMessagesByProfileID(profileID)
	if err != nil {
		return fmt.Errorf("failed to load transcript: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	return s.chatRepo.SaveMessage(s.newMessage(profileID, WelcomeMessage, false, false))
}

// describeGatewayError renders a gateway failure for the transcript.
func describeGatewayError(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "AI is not configured yet. Add an API key to enable the assistant."
	case errors.Is(err, ErrInvalidEndpoint):
		return "The AI endpoint URL is invalid. Check the llm.base_url setting."
	case errors.Is(err, ErrNetworkFailure):
		return "I couldn't reach the AI service. Please check your connection and try again."
	case errors.Is(err, ErrEmptyContent):
		return "The AI service returned an empty answer. Please try again."
	default:
		return fmt.Sprintf("Sorry, something went wrong: %v", err)
	}
}

func (s *assistantService) SendMessage(ctx context.Context, profileID uint, content string, mode models.AssistantMode) (*AssistantReply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message cannot be empty", ErrInvalidInput)
	}
	if mode == "" {
		mode = models.AssistantModeEdit
	}
	if mode != models.AssistantModeEdit && mode != models.AssistantModeSuggest {
		return nil, fmt.Errorf("%w: unknown assistant mode '%s'", ErrInvalidInput, mode)
	}

	release, err := s.acquire(profileID)
	if err != nil {
		return nil, err
	}
	defer release()

	profile, err := s.loadProfile(profileID)
	if err != nil {
		return nil, err
	}
	plan, err := s.planRepo.GetActivePlan(profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active plan for profile ID %d: %w", profileID, err)
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: profile ID %d has no active plan", ErrPlanNotFound, profileID)
	}
	if err := s.ensureWelcome(profileID); err != nil {
		return nil, err
	}

	reply := &AssistantReply{}
	if err := s.append(reply, s.newMessage(profileID, content, true, false)); err != nil {
		return nil, err
	}

	if IsStructuralRequest(content) {
		log.Printf("INFO: [AssistantService] Structural request from profile ID %d (mode=%s).", profileID, mode)
		if mode == models.AssistantModeSuggest {
			advice, err := s.gateway.Advise(ctx, content, profile, plan)
			if err != nil {
				advice = describeGatewayError(err)
			}
			return reply, s.append(reply, s.newMessage(profileID, advice, false, false))
		}

		s.mu.Lock()
		s.pending[profileID] = content
		s.mu.Unlock()
		reply.PendingConfirmation = true
		reply.PendingMessage = content
		return reply, s.append(reply, s.newMessage(profileID, confirmRegenerationPrompt, false, false))
	}

	result, err := s.gateway.Chat(ctx, content, profile, plan)
	if err != nil {
		return reply, s.append(reply, s.newMessage(profileID, describeGatewayError(err), false, false))
	}
	if result.Kind == ChatResultText {
		return reply, s.append(reply, s.newMessage(profileID, result.Text, false, false))
	}
	return reply, s.executeCommand(reply, profileID, plan, result.Command)
}

// executeCommand applies a command batch and saves the plan once.
func (s *assistantService) executeCommand(reply *AssistantReply, profileID uint, plan *models.Plan, cmd *models.ActionCommand) error {
	result := s.interpreter.Apply(plan, cmd)
	var saveErr error
	if result.Changed {
		saveErr = s.planRepo.SavePlan(plan, result.RemovedExerciseIDs)
	}
	if err := s.append(reply, s.newMessage(profileID, result.Feedback(), false, true)); err != nil {
		return err
	}
	if saveErr != nil {
		log.Printf("ERROR: [AssistantService] Failed to save plan ID %d after %s: %v", plan.ID, cmd.Type, saveErr)
		return s.append(reply, s.newMessage(profileID, "⚠️ The change above could not be saved. Please try again.", false, false))
	}
	reply.PlanChanged = result.Changed
	return nil
}

func (s *assistantService) takePending(profileID uint) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.pending[profileID]
	delete(s.pending, profileID)
	return msg, ok
}

// ConfirmRegeneration regenerates the plan from the pending structural
// request. The current plan stays active if regeneration fails.
func (s *assistantService) ConfirmRegeneration(ctx context.Context, profileID uint) (*AssistantReply, error) {
	release, err := s.acquire(profileID)
	if err != nil {
		return nil, err
	}
	defer release()

	request, ok := s.takePending(profileID)
	if !ok {
		return nil, ErrNoPendingRegeneration
	}

	reply := &AssistantReply{}
	if _, err := s.planService.RegeneratePlan(ctx, profileID, request); err != nil {
		log.Printf("WARN: [AssistantService] Regeneration for profile ID %d failed: %v", profileID, err)
		// Keep the request so the user can confirm again.
		s.mu.Lock()
		s.pending[profileID] = request
		s.mu.Unlock()
		reply.PendingConfirmation = true
		reply.PendingMessage = request
		return reply, s.append(reply, s.newMessage(profileID, fmt.Sprintf("Sorry, regenerating the plan failed: %v", err), false, false))
	}
	reply.PlanChanged = true
	return reply, s.append(reply, s.newMessage(profileID, regenerationSuccess, false, true))
}

func (s *assistantService) CancelRegeneration(profileID uint) (*AssistantReply, error) {
	if _, ok := s.takePending(profileID); !ok {
		return nil, ErrNoPendingRegeneration
	}
	reply := &AssistantReply{}
	return reply, s.append(reply, s.newMessage(profileID, regenerationCancelled, false, false))
}

// GetTranscript returns the last limit messages (all when limit <= 0).
func (s *assistantService) GetTranscript(profileID uint, limit int) ([]models.ChatMessage, error) {
	if _, err := s.loadProfile(profileID); err != nil {
		return nil, err
	}
	if err := s.ensureWelcome(profileID); err != nil {
		return nil, err
	}
	messages, err := s.chatRepo.GetMessagesByProfileID(profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// ClearTranscript resets the conversation to the welcome message.
func (s *assistantService) ClearTranscript(profileID uint) ([]models.ChatMessage, error) {
	if err := s.chatRepo.ClearMessages(profileID); err != nil {
		return nil, fmt.Errorf("failed to clear transcript: %w", err)
	}
	s.takePending(profileID)
	return s.GetTranscript(profileID, 0)
}
