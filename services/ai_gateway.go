package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"fitgenius/config"
	"fitgenius/models"
	"fitgenius/utils"

	openai "github.com/sashabaranov/go-openai"
)

// ChatResultKind tags what the assistant returned for an exercise-level message.
type ChatResultKind int

const (
	ChatResultText ChatResultKind = iota
	ChatResultCommand
)

// ChatResult is either plain text or a decoded plan command.
type ChatResult struct {
	Kind    ChatResultKind
	Text    string
	Command *models.ActionCommand
}

// AnalyzedFood is one food item recognised in the day's meal entries.
type AnalyzedFood struct {
	Name     string            `json:"name"`
	Portion  models.FlexString `json:"portion"`
	Unit     string            `json:"unit"`
	Calories float64           `json:"calories"`
	Protein  float64           `json:"protein"`
	Carbs    float64           `json:"carbs"`
	Fat      float64           `json:"fat"`
	Notes    string            `json:"notes"`
	MealType string            `json:"mealType"`
}

// Macros returns the item's nutrition values.
func (f AnalyzedFood) Macros() models.Macros {
	return models.Macros{Calories: f.Calories, Protein: f.Protein, Carbs: f.Carbs, Fat: f.Fat}
}

// MealAnalysis is the nutrition breakdown returned for one day.
type MealAnalysis struct {
	Entries []AnalyzedFood `json:"entries"`
	Summary struct {
		TotalCalories float64 `json:"totalCalories"`
		Protein       float64 `json:"protein"`
		Carbs         float64 `json:"carbs"`
		Fat           float64 `json:"fat"`
		Notes         string  `json:"notes"`
	} `json:"summary"`
}

// AIGateway talks to an OpenAI-compatible chat completion endpoint.
type AIGateway interface {
	GenerateInitialPlan(ctx context.Context, profile *models.Profile) (*models.Plan, error)
	RegeneratePlan(ctx context.Context, profile *models.Profile, request string) (*models.Plan, error)
	Chat(ctx context.Context, message string, profile *models.Profile, plan *models.Plan) (ChatResult, error)
	Advise(ctx context.Context, message string, profile *models.Profile, plan *models.Plan) (string, error)
	AnalyzeMeals(ctx context.Context, entries []models.MealEntry) (*MealAnalysis, error)
	DietChat(ctx context.Context, message string) (string, error)
	Configured() bool
}

type openAIGateway struct {
	cfg    config.LLMConfig
	client *openai.Client
	now    func() time.Time
}

// NewAIGateway creates a gateway for cfg. Configuration problems are
// reported lazily by each call so the rest of the app keeps working.
func NewAIGateway(cfg config.LLMConfig) AIGateway {
	g := &openAIGateway{cfg: cfg, now: time.Now}
	if cfg.APIKey != "" && validEndpoint(cfg.BaseURL) == nil {
		clientConfig := openai.DefaultConfig(cfg.APIKey)
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		g.client = openai.NewClientWithConfig(clientConfig)
	}
	return g
}

func validEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: '%s'", ErrInvalidEndpoint, raw)
	}
	return nil
}

func (g *openAIGateway) Configured() bool {
	return g.client != nil
}

func (g *openAIGateway) ready() error {
	if g.cfg.APIKey == "" {
		return ErrMissingCredential
	}
	return validEndpoint(g.cfg.BaseURL)
}

// complete sends one chat completion and returns the trimmed content.
func (g *openAIGateway) complete(ctx context.Context, operation string, messages []openai.ChatCompletionMessage) (string, error) {
	if err := g.ready(); err != nil {
		return "", err
	}
	if g.cfg.TimeoutS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(g.cfg.TimeoutS)*time.Second)
		defer cancel()
	}

	start := g.now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    g.cfg.Model,
		Messages: messages,
	})
	if err != nil {
		log.Printf("ERROR: [AIGateway] %s: chat completion with model %s failed: %v", operation, g.cfg.Model, err)
		return "", classifyCompletionError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrEmptyContent)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: first choice is blank", ErrEmptyContent)
	}
	log.Printf("INFO: [AIGateway] %s: received %d chars in %v.", operation, len(content), g.now().Sub(start))
	return content, nil
}

func classifyCompletionError(err error) error {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &apiErr):
		return fmt.Errorf("%w: HTTP %d: %s", ErrUnexpectedResponse, apiErr.HTTPStatusCode, apiErr.Message)
	case errors.As(err, &reqErr):
		return fmt.Errorf("%w: HTTP %d", ErrUnexpectedResponse, reqErr.HTTPStatusCode)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return fmt.Errorf("%w: malformed body: %v", ErrUnexpectedResponse, err)
	default:
		return fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
}

func decodeContent(content string, v interface{}) error {
	if err := json.Unmarshal([]byte(utils.StripCodeFence(content)), v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	return nil
}

// planPayload is the JSON shape the model uses for whole plans.
type planPayload struct {
	Name string `json:"name"`
	Days []struct {
		DayNumber models.FlexInt `json:"dayNumber"`
		Focus     string         `json:"focus"`
		IsRestDay bool           `json:"isRestDay"`
		Exercises []struct {
			Name   string            `json:"name"`
			Sets   models.FlexInt    `json:"sets"`
			Reps   models.FlexString `json:"reps"`
			Weight float64           `json:"weight"`
			Notes  string            `json:"notes"`
		} `json:"exercises"`
	} `json:"days"`
}

func (p *planPayload) toPlan(now time.Time) (*models.Plan, error) {
	if len(p.Days) == 0 {
		return nil, fmt.Errorf("%w: plan has no days", ErrDecodeFailure)
	}
	plan := &models.Plan{
		Name:         strings.TrimSpace(p.Name),
		CreationDate: now,
		Status:       models.PlanStatusActive,
	}
	if plan.Name == "" {
		plan.Name = "AI Training Plan"
	}
	for i, d := range p.Days {
		day := models.Day{
			DayNumber: int(d.DayNumber),
			Focus:     models.ParseFocus(d.Focus),
			IsRestDay: d.IsRestDay,
		}
		if day.DayNumber <= 0 {
			day.DayNumber = i + 1
		}
		for _, e := range d.Exercises {
			name := strings.TrimSpace(e.Name)
			if name == "" {
				continue
			}
			ex := models.Exercise{
				Name:       name,
				Sets:       int(e.Sets),
				Reps:       strings.TrimSpace(string(e.Reps)),
				Weight:     e.Weight,
				Notes:      e.Notes,
				OrderIndex: len(day.Exercises),
			}
			if ex.Sets <= 0 {
				ex.Sets = defaultSets
			}
			if ex.Reps == "" {
				ex.Reps = defaultReps
			}
			if ex.Weight < 0 {
				ex.Weight = 0
			}
			day.Exercises = append(day.Exercises, ex)
		}
		day.Normalize()
		plan.Days = append(plan.Days, day)
	}
	models.RenumberDays(plan.Days)
	return plan, nil
}

const planSchemaPrompt = `You are a professional fitness coach. Generate a training plan as JSON.

Choose the split and cycle length from the user's situation:
1. Beginner or short on time: 3-4 day cycle (full body + rest, or push/pull/legs + rest).
2. Intermediate: 4-5 day cycle (push/pull/legs + rest, or upper/lower split + rest).
3. Advanced with plenty of time: 6-7 day cycle (one body part per day + 1 rest day).

JSON requirements:
1. Return raw JSON only, no Markdown fences.
2. Top level: "name" (plan name) and "days" (array).
3. Each day: "dayNumber" (1, 2, 3...), "focus" (one of chest, back, legs, shoulders, arms, core, full-body, cardio, rest), "isRestDay" (bool), "exercises" (empty for rest days).
4. Each exercise: "name", "sets" (number), "reps" (string such as "8-12"), "weight" (kg, 0 for bodyweight), "notes".

Example:
{"name":"Push Pull Legs","days":[{"dayNumber":1,"focus":"chest","isRestDay":false,"exercises":[{"name":"Barbell Bench Press","sets":4,"reps":"8-12","weight":60,"notes":"retract shoulder blades"}]},{"dayNumber":2,"focus":"rest","isRestDay":true,"exercises":[]}]}`

func describeProfile(profile *models.Profile) string {
	equipment := "none"
	if len(profile.AvailableEquipment) > 0 {
		equipment = strings.Join(profile.AvailableEquipment, ", ")
	}
	injuries := "none"
	if strings.TrimSpace(profile.Injuries) != "" {
		injuries = profile.Injuries
	}
	return fmt.Sprintf("User profile:\n- Name: %s\n- Age: %d\n- Height: %.0f cm\n- Weight: %.1f kg\n- Goal: %s\n- Environment: %s\n- Available equipment: %s\n- Notes/injuries: %s\n",
		profile.Name, profile.Age, profile.Height, profile.Weight, profile.Goal, profile.Environment, equipment, injuries)
}

func (g *openAIGateway) requestPlan(ctx context.Context, operation, userMessage string) (*models.Plan, error) {
	content, err := g.complete(ctx, operation, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: planSchemaPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userMessage},
	})
	if err != nil {
		return nil, err
	}
	var payload planPayload
	if err := decodeContent(content, &payload); err != nil {
		log.Printf("WARN: [AIGateway] %s: could not decode plan JSON: %v", operation, err)
		return nil, err
	}
	return payload.toPlan(g.now())
}

// GenerateInitialPlan asks for a first plan tailored to the profile.
// Callers fall back to FallbackPlan on any error.
func (g *openAIGateway) GenerateInitialPlan(ctx context.Context, profile *models.Profile) (*models.Plan, error) {
	userMessage := describeProfile(profile) + `
Generate a suitable plan. Notes:
1. Pick a 3, 4, 5, 6 or 7 day cycle based on age, goal and environment.
2. Beginners or older users should get a 3-4 day cycle.
3. Muscle-building goals with enough time can use 5-7 days.
4. Include at least one rest day.
5. Only use exercises possible with the available equipment.
6. Avoid movements that aggravate any injuries mentioned.`
	return g.requestPlan(ctx, "GenerateInitialPlan", userMessage)
}

// RegeneratePlan builds a brand-new plan honouring a free-text structural request.
func (g *openAIGateway) RegeneratePlan(ctx context.Context, profile *models.Profile, request string) (*models.Plan, error) {
	userMessage := describeProfile(profile) + fmt.Sprintf(`
The user wants their plan restructured:
"%s"

Generate a complete new plan that satisfies this request. Keep at least one rest day unless the user explicitly asks otherwise.`, request)
	return g.requestPlan(ctx, "RegeneratePlan", userMessage)
}

func chatSystemPrompt(profile *models.Profile, plan *models.Plan) string {
	return fmt.Sprintf(`You are a professional fitness coach assistant helping the user manage their training plan.

User: %s, age %d, goal %s, environment %s.

Current training plan:
%s
Your task:
1. For general chat or advice, reply with plain text.
2. If the user wants to change exercises in the plan (replace, add or remove one), reply ONLY with JSON in this form:
{"type":"update_plan","actions":[{"day":1,"old_exercise":"Squat","new_exercise":"Leg Extension","sets":4,"reps":"12-15","weight":40,"reason":"knee-friendly alternative"}]}

Fields:
- type: "update_plan" (replace an exercise), "add_exercise" or "remove_exercise"
- day: day number in the plan
- old_exercise: exercise to replace (update_plan only)
- new_exercise: new exercise name (update_plan and add_exercise)
- exercise_name: exercise to remove (remove_exercise only)
- sets, reps, weight: parameters for the new exercise
- reason: why the change is made

When returning JSON, do not wrap it in Markdown fences.`,
		profile.Name, profile.Age, profile.Goal, profile.Environment, SerializePlanContext(plan))
}

// Chat answers an exercise-level message with text or a plan command. An
// unknown command type is reported back as text.
func (g *openAIGateway) Chat(ctx context.Context, message string, profile *models.Profile, plan *models.Plan) (ChatResult, error) {
	content, err := g.complete(ctx, "Chat", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: chatSystemPrompt(profile, plan)},
		{Role: openai.ChatMessageRoleUser, Content: message},
	})
	if err != nil {
		return ChatResult{}, err
	}
	return interpretChatContent(content), nil
}

func interpretChatContent(content string) ChatResult {
	stripped := utils.StripCodeFence(content)
	if !strings.HasPrefix(stripped, "{") {
		return ChatResult{Kind: ChatResultText, Text: content}
	}
	cmd, err := models.ParseActionCommand([]byte(stripped))
	if err != nil {
		var unknown *models.UnknownCommandTypeError
		if errors.As(err, &unknown) {
			log.Printf("WARN: [AIGateway] Chat: model returned unknown action type '%s'.", unknown.Type)
			return ChatResult{Kind: ChatResultText, Text: fmt.Sprintf("Unknown action type: %s", unknown.Type)}
		}
		return ChatResult{Kind: ChatResultText, Text: content}
	}
	return ChatResult{Kind: ChatResultCommand, Command: cmd}
}

// Advise answers a structural request with suggestions only.
func (g *openAIGateway) Advise(ctx context.Context, message string, profile *models.Profile, plan *models.Plan) (string, error) {
	system := chatSystemPrompt(profile, plan) + `

IMPORTANT: the user only wants suggestions right now. Reply with plain-text advice and never return JSON.`
	return g.complete(ctx, "Advise", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: message},
	})
}

const mealAnalysisPrompt = `You are a professional nutritionist. Analyse the user's meals for the day:
1. Return raw JSON only, no Markdown fences or explanations.
2. "entries" lists the food items; each has name, portion, unit, calories, protein, carbs, fat, notes, mealType.
3. mealType must be one of the meal slots given in the input (breakfast, lunch, dinner, snack).
4. portion is in grams (g), calories in kcal, macros in grams.
5. Estimate household measures such as "a bowl" or "a spoon" in grams.
6. "summary" has totalCalories, protein, carbs, fat, notes.`

// AnalyzeMeals estimates nutrition for a day's entries.
func (g *openAIGateway) AnalyzeMeals(ctx context.Context, entries []models.MealEntry) (*MealAnalysis, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Meals for the day (%d entries):\n", len(entries))
	for i, e := range entries {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			text = "(no description)"
		}
		fmt.Fprintf(&b, "%d. mealType=%s, description=%s\n", i+1, e.MealType, text)
	}
	content, err := g.complete(ctx, "AnalyzeMeals", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: mealAnalysisPrompt},
		{Role: openai.ChatMessageRoleUser, Content: b.String()},
	})
	if err != nil {
		return nil, err
	}
	var analysis MealAnalysis
	if err := decodeContent(content, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// DietChat answers a free-text nutrition question.
func (g *openAIGateway) DietChat(ctx context.Context, message string) (string, error) {
	return g.complete(ctx, "DietChat", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "You are a professional nutrition and diet advisor. Give dietary advice and nutrition facts, and help the user tidy up their meal records. Keep answers concise and readable."},
		{Role: openai.ChatMessageRoleUser, Content: message},
	})
}

// SerializePlanContext renders the plan as the text block the model sees.
// Output depends only on the plan's current contents.
func SerializePlanContext(plan *models.Plan) string {
	if plan == nil {
		return "No active plan.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Plan name: %s\nTraining days: %d days\n\n", plan.Name, plan.CycleDays())
	for _, day := range plan.SortedDays() {
		fmt.Fprintf(&b, "Day %d - %s:\n", day.DayNumber, day.Focus)
		for _, ex := range day.SortedExercises() {
			fmt.Fprintf(&b, "  - %s: %d sets x %s", ex.Name, ex.Sets, ex.Reps)
			if ex.Weight > 0 {
				fmt.Fprintf(&b, " @ %gkg", ex.Weight)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FallbackPlan is the built-in 4-day plan used when no AI plan is available.
func FallbackPlan(now time.Time) *models.Plan {
	return &models.Plan{
		Name:         "Basic Training Plan",
		CreationDate: now,
		Status:       models.PlanStatusActive,
		Days: []models.Day{
			{DayNumber: 1, Focus: models.FocusChest, Exercises: []models.Exercise{
				{Name: "Push-ups", Sets: 4, Reps: "12-15", Weight: 0, Notes: "keep core tight", OrderIndex: 0},
				{Name: "Dumbbell Bench Press", Sets: 3, Reps: "8-12", Weight: 15, Notes: "retract shoulder blades", OrderIndex: 1},
			}},
			{DayNumber: 2, Focus: models.FocusBack, Exercises: []models.Exercise{
				{Name: "Pull-ups / Lat Pulldown", Sets: 4, Reps: "8-12", Weight: 0, OrderIndex: 0},
				{Name: "Seated Row", Sets: 3, Reps: "10-12", Weight: 35, OrderIndex: 1},
			}},
			{DayNumber: 3, Focus: models.FocusLegs, Exercises: []models.Exercise{
				{Name: "Squat / Leg Press", Sets: 4, Reps: "8-12", Weight: 40, OrderIndex: 0},
				{Name: "Lunges", Sets: 3, Reps: "12-15", Weight: 0, OrderIndex: 1},
			}},
			{DayNumber: 4, Focus: models.FocusRest, IsRestDay: true},
		},
	}
}
