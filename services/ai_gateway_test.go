package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fitgenius/config"
	"fitgenius/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completionServer answers every chat completion with content.
func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func gatewayFor(baseURL string) AIGateway {
	return NewAIGateway(config.LLMConfig{
		BaseURL:  baseURL,
		Model:    "test-model",
		APIKey:   "test-key",
		TimeoutS: 5,
	})
}

func TestAIGateway_Configuration(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing key", func(t *testing.T) {
		g := NewAIGateway(config.LLMConfig{BaseURL: "https://example.com/v1", Model: "m"})
		assert.False(t, g.Configured())
		_, err := g.GenerateInitialPlan(ctx, testProfile())
		assert.ErrorIs(t, err, ErrMissingCredential)
	})

	t.Run("Invalid endpoint", func(t *testing.T) {
		g := gatewayFor("ftp://example.com")
		assert.False(t, g.Configured())
		_, err := g.DietChat(ctx, "hello")
		assert.ErrorIs(t, err, ErrInvalidEndpoint)
	})

	t.Run("Unreachable endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		_, err := gatewayFor(url+"/v1").DietChat(ctx, "hello")
		assert.ErrorIs(t, err, ErrNetworkFailure)
	})

	t.Run("Error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
		}))
		defer srv.Close()
		_, err := gatewayFor(srv.URL+"/v1").DietChat(ctx, "hello")
		assert.ErrorIs(t, err, ErrUnexpectedResponse)
	})

	t.Run("Blank content", func(t *testing.T) {
		srv := completionServer(t, "   ")
		_, err := gatewayFor(srv.URL+"/v1").DietChat(ctx, "hello")
		assert.ErrorIs(t, err, ErrEmptyContent)
	})
}

func TestAIGateway_GenerateInitialPlan(t *testing.T) {
	content := "```json\n" + `{"name":"PPL","days":[
		{"dayNumber":1,"focus":"chest","isRestDay":false,"exercises":[{"name":"Bench Press","sets":"4","reps":10,"weight":60},{"name":"Dips","reps":""}]},
		{"dayNumber":2,"focus":"休息","isRestDay":false,"exercises":[{"name":"Walk"}]},
		{"dayNumber":5,"focus":"yoga","exercises":[{"name":"Burpee","sets":3,"reps":"15","weight":-2}]}
	]}` + "\n```"
	srv := completionServer(t, content)

	plan, err := gatewayFor(srv.URL+"/v1").GenerateInitialPlan(context.Background(), testProfile())

	require.NoError(t, err)
	assert.Equal(t, "PPL", plan.Name)
	require.Len(t, plan.Days, 3)

	chest := plan.DayByNumber(1)
	require.Len(t, chest.Exercises, 2)
	assert.Equal(t, 4, chest.Exercises[0].Sets)
	assert.Equal(t, "10", chest.Exercises[0].Reps)
	assert.Equal(t, defaultSets, chest.Exercises[1].Sets)
	assert.Equal(t, defaultReps, chest.Exercises[1].Reps)

	rest := plan.DayByNumber(2)
	assert.True(t, rest.IsRestDay)
	assert.Empty(t, rest.Exercises)

	last := plan.DayByNumber(3)
	require.NotNil(t, last)
	assert.Equal(t, models.FocusFullBody, last.Focus)
	assert.Zero(t, last.Exercises[0].Weight)
}

func TestAIGateway_GenerateInitialPlan_DecodeFailure(t *testing.T) {
	srv := completionServer(t, "Here is your plan: lots of squats!")
	_, err := gatewayFor(srv.URL+"/v1").GenerateInitialPlan(context.Background(), testProfile())
	assert.ErrorIs(t, err, ErrDecodeFailure)

	empty := completionServer(t, `{"name":"Empty","days":[]}`)
	_, err = gatewayFor(empty.URL+"/v1").GenerateInitialPlan(context.Background(), testProfile())
	assert.ErrorIs(t, err, ErrDecodeFailure)
}

func TestAIGateway_Chat(t *testing.T) {
	ctx := context.Background()
	profile := testProfile()
	plan := testPlan(time.Now())

	t.Run("Command", func(t *testing.T) {
		srv := completionServer(t, `{"type":"update_plan","actions":[{"day":"1","old_exercise":"Squat","new_exercise":"Leg Press","sets":4,"reps":12}]}`)
		result, err := gatewayFor(srv.URL+"/v1").Chat(ctx, "swap squat", profile, plan)
		require.NoError(t, err)
		require.Equal(t, ChatResultCommand, result.Kind)
		assert.Equal(t, models.CommandUpdatePlan, result.Command.Type)
		n, ok := result.Command.Actions[0].DayNumber()
		assert.True(t, ok)
		assert.Equal(t, 1, n)
		assert.Equal(t, models.FlexString("12"), *result.Command.Actions[0].Reps)
	})

	t.Run("Fenced command", func(t *testing.T) {
		srv := completionServer(t, "```json\n{\"type\":\"remove_exercise\",\"actions\":[{\"day\":2,\"exercise_name\":\"Bench Press\"}]}\n```")
		result, err := gatewayFor(srv.URL+"/v1").Chat(ctx, "drop bench", profile, plan)
		require.NoError(t, err)
		assert.Equal(t, ChatResultCommand, result.Kind)
	})

	t.Run("Plain text", func(t *testing.T) {
		srv := completionServer(t, "Keep your back straight.")
		result, err := gatewayFor(srv.URL+"/v1").Chat(ctx, "tips?", profile, plan)
		require.NoError(t, err)
		assert.Equal(t, ChatResult{Kind: ChatResultText, Text: "Keep your back straight."}, result)
	})

	t.Run("Unknown type degrades to text", func(t *testing.T) {
		srv := completionServer(t, `{"type":"swap_day","actions":[]}`)
		result, err := gatewayFor(srv.URL+"/v1").Chat(ctx, "swap days", profile, plan)
		require.NoError(t, err)
		assert.Equal(t, ChatResultText, result.Kind)
		assert.Equal(t, "Unknown action type: swap_day", result.Text)
	})

	t.Run("Malformed JSON degrades to raw text", func(t *testing.T) {
		srv := completionServer(t, `{"type": "update_plan", "actions": [`)
		result, err := gatewayFor(srv.URL+"/v1").Chat(ctx, "swap", profile, plan)
		require.NoError(t, err)
		assert.Equal(t, ChatResultText, result.Kind)
		assert.Equal(t, `{"type": "update_plan", "actions": [`, result.Text)
	})
}

func TestAIGateway_AnalyzeMeals(t *testing.T) {
	srv := completionServer(t, `{"entries":[{"name":"Oatmeal","portion":"80","unit":"g","calories":300,"protein":10,"carbs":54,"fat":5,"mealType":"breakfast"}],"summary":{"totalCalories":300,"protein":10,"carbs":54,"fat":5,"notes":"Add some fruit."}}`)

	analysis, err := gatewayFor(srv.URL+"/v1").AnalyzeMeals(context.Background(), []models.MealEntry{
		{MealType: models.MealBreakfast, Text: "a bowl of oatmeal"},
	})

	require.NoError(t, err)
	require.Len(t, analysis.Entries, 1)
	assert.Equal(t, models.Macros{Calories: 300, Protein: 10, Carbs: 54, Fat: 5}, analysis.Entries[0].Macros())
	assert.Equal(t, "Add some fruit.", analysis.Summary.Notes)
}

func TestSerializePlanContext(t *testing.T) {
	plan := testPlan(time.Now())
	first := SerializePlanContext(plan)
	assert.Equal(t, first, SerializePlanContext(plan))
	assert.Contains(t, first, "Plan name: Test Split\nTraining days: 3 days\n")
	assert.Contains(t, first, "Day 1 - legs:\n  - Squat: 4 sets x 6-8 @ 100kg\n")
	assert.Contains(t, first, "  - Walking Lunge: 3 sets x 12\n")
	assert.Contains(t, first, "Day 3 - rest:\n\n")
	assert.Equal(t, "No active plan.\n", SerializePlanContext(nil))
}

func TestFallbackPlan(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	plan := FallbackPlan(now)
	require.Len(t, plan.Days, 4)
	assert.Equal(t, now, plan.CreationDate)
	assert.True(t, plan.DayByNumber(4).IsRestDay)
	for _, day := range plan.Days[:3] {
		assert.NotEmpty(t, day.Exercises)
	}
}
