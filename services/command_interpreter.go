package services

import (
	"fmt"
	"log"
	"strings"

	"fitgenius/models"
)

const (
	defaultSets = 3
	defaultReps = "8-12"
)

// ActionOutcome is the result of one action within a command batch.
type ActionOutcome struct {
	Feedback string
	Err      error // ErrDayNotFound, ErrAmbiguousOrNotFound, ErrInvalidInput, or nil
}

// CommandResult summarises a whole command batch.
type CommandResult struct {
	Outcomes           []ActionOutcome
	Changed            bool
	RemovedExerciseIDs []uint
}

// Feedback joins the per-action messages into one reply.
func (r CommandResult) Feedback() string {
	if len(r.Outcomes) == 0 {
		return "Operation complete"
	}
	lines := make([]string, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		lines = append(lines, o.Feedback)
	}
	return strings.Join(lines, "\n")
}

// CommandInterpreter applies assistant commands to an in-memory plan.
// Persisting the result is the caller's job, done once per batch.
type CommandInterpreter interface {
	Apply(plan *models.Plan, cmd *models.ActionCommand) CommandResult
}

type commandInterpreter struct{}

// NewCommandInterpreter creates a CommandInterpreter.
func NewCommandInterpreter() CommandInterpreter {
	return &commandInterpreter{}
}

// Apply runs every action independently; a failed action does not stop the rest.
func (ci *commandInterpreter) Apply(plan *models.Plan, cmd *models.ActionCommand) CommandResult {
	var result CommandResult
	if plan == nil || cmd == nil {
		result.Outcomes = append(result.Outcomes, ActionOutcome{Feedback: "❌ No active plan to change", Err: ErrPlanNotFound})
		return result
	}

	for _, action := range cmd.Actions {
		var outcome ActionOutcome
		switch cmd.Type {
		case models.CommandUpdatePlan:
			outcome = ci.applyUpdate(plan, action, &result)
		case models.CommandAddExercise:
			outcome = ci.applyAdd(plan, action, &result)
		case models.CommandRemoveExercise:
			outcome = ci.applyRemove(plan, action, &result)
		default:
			outcome = ActionOutcome{Feedback: fmt.Sprintf("Unknown action type: %s", cmd.Type), Err: ErrInvalidInput}
		}
		if outcome.Err != nil {
			log.Printf("WARN: [CommandInterpreter] %s action on plan ID %d not applied: %v", cmd.Type, plan.ID, outcome.Err)
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	return result
}

func reasonOr(reason, fallback string) string {
	if r := strings.TrimSpace(reason); r != "" {
		return r
	}
	return fallback
}

func (ci *commandInterpreter) findDay(plan *models.Plan, action models.Action) (*models.Day, int, *ActionOutcome) {
	n, _ := action.DayNumber()
	day := plan.DayByNumber(n)
	if day == nil {
		return nil, n, &ActionOutcome{Feedback: fmt.Sprintf("❌ Day %d not found", n), Err: ErrDayNotFound}
	}
	return day, n, nil
}

// resolveExercise finds the one exercise name refers to: a unique
// case-insensitive exact match first, then a unique substring match in
// either direction. Anything else is ambiguous or missing.
func resolveExercise(day *models.Day, name string) (*models.Exercise, error) {
	target := strings.ToLower(strings.TrimSpace(name))
	exercises := day.SortedExercises()

	var exact []*models.Exercise
	for _, ex := range exercises {
		if strings.ToLower(strings.TrimSpace(ex.Name)) == target {
			exact = append(exact, ex)
		}
	}
	if len(exact) == 1 {
		return exact[0], nil
	}

	var fuzzy []*models.Exercise
	for _, ex := range exercises {
		candidate := strings.ToLower(strings.TrimSpace(ex.Name))
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, target) || strings.Contains(target, candidate) {
			fuzzy = append(fuzzy, ex)
		}
	}
	if len(fuzzy) == 1 {
		return fuzzy[0], nil
	}

	if len(fuzzy) > 1 {
		names := make([]string, 0, len(fuzzy))
		for _, ex := range fuzzy {
			names = append(names, "「"+ex.Name+"」")
		}
		return nil, fmt.Errorf("%w: ❌ \"%s\" matches several exercises on day %d: %s. Please use a more precise name",
			ErrAmbiguousOrNotFound, name, day.DayNumber, strings.Join(names, ", "))
	}
	return nil, fmt.Errorf("%w: ❌ Exercise not found on day %d: %s", ErrAmbiguousOrNotFound, day.DayNumber, name)
}

// matchFailure turns a resolveExercise error into feedback text.
func matchFailure(err error) ActionOutcome {
	msg := strings.TrimPrefix(err.Error(), ErrAmbiguousOrNotFound.Error()+": ")
	return ActionOutcome{Feedback: msg, Err: err}
}

func (ci *commandInterpreter) applyUpdate(plan *models.Plan, action models.Action, result *CommandResult) ActionOutcome {
	_, hasDay := action.DayNumber()
	oldName := strings.TrimSpace(action.OldExercise)
	newName := strings.TrimSpace(action.NewExercise)
	if !hasDay || oldName == "" || newName == "" {
		return ActionOutcome{Feedback: "⚠️ Skipped a change: day, old_exercise and new_exercise are all required", Err: ErrInvalidInput}
	}
	day, n, failure := ci.findDay(plan, action)
	if failure != nil {
		return *failure
	}
	ex, err := resolveExercise(day, oldName)
	if err != nil {
		return matchFailure(err)
	}

	previous := ex.Name
	ex.Name = newName
	if action.Sets != nil && int(*action.Sets) > 0 {
		ex.Sets = int(*action.Sets)
	}
	if action.Reps != nil && strings.TrimSpace(string(*action.Reps)) != "" {
		ex.Reps = strings.TrimSpace(string(*action.Reps))
	}
	if action.Weight != nil && *action.Weight >= 0 {
		ex.Weight = *action.Weight
	}
	result.Changed = true
	return ActionOutcome{Feedback: fmt.Sprintf("✅ Replaced「%s」with「%s」on day %d\nReason: %s",
		previous, newName, n, reasonOr(action.Reason, "adjusted per your request"))}
}

func (ci *commandInterpreter) applyAdd(plan *models.Plan, action models.Action, result *CommandResult) ActionOutcome {
	_, hasDay := action.DayNumber()
	name := strings.TrimSpace(action.NewExercise)
	if name == "" {
		name = strings.TrimSpace(action.ExerciseName)
	}
	if !hasDay || name == "" {
		return ActionOutcome{Feedback: "⚠️ Skipped an addition: day and new_exercise are required", Err: ErrInvalidInput}
	}
	day, n, failure := ci.findDay(plan, action)
	if failure != nil {
		return *failure
	}
	if day.IsRestDay {
		return ActionOutcome{Feedback: fmt.Sprintf("❌ Day %d is a rest day; exercises cannot be added to it", n), Err: ErrInvalidInput}
	}

	ex := models.Exercise{
		DayID:      day.ID,
		Name:       name,
		Sets:       defaultSets,
		Reps:       defaultReps,
		OrderIndex: day.NextOrderIndex(),
	}
	if action.Sets != nil && int(*action.Sets) > 0 {
		ex.Sets = int(*action.Sets)
	}
	if action.Reps != nil && strings.TrimSpace(string(*action.Reps)) != "" {
		ex.Reps = strings.TrimSpace(string(*action.Reps))
	}
	if action.Weight != nil && *action.Weight >= 0 {
		ex.Weight = *action.Weight
	}
	day.Exercises = append(day.Exercises, ex)
	result.Changed = true
	return ActionOutcome{Feedback: fmt.Sprintf("✅ Added「%s」to day %d (%d sets x %s)\nReason: %s",
		name, n, ex.Sets, ex.Reps, reasonOr(action.Reason, "added per request"))}
}

func (ci *commandInterpreter) applyRemove(plan *models.Plan, action models.Action, result *CommandResult) ActionOutcome {
	_, hasDay := action.DayNumber()
	name := strings.TrimSpace(action.ExerciseName)
	if name == "" {
		name = strings.TrimSpace(action.OldExercise)
	}
	if !hasDay || name == "" {
		return ActionOutcome{Feedback: "⚠️ Skipped a removal: day and exercise_name are required", Err: ErrInvalidInput}
	}
	day, n, failure := ci.findDay(plan, action)
	if failure != nil {
		return *failure
	}
	ex, err := resolveExercise(day, name)
	if err != nil {
		return matchFailure(err)
	}

	removed := ex.Name
	removedID := ex.ID
	for i := range day.Exercises {
		if &day.Exercises[i] == ex {
			day.Exercises = append(day.Exercises[:i], day.Exercises[i+1:]...)
			break
		}
	}
	if removedID != 0 {
		result.RemovedExerciseIDs = append(result.RemovedExerciseIDs, removedID)
	}
	result.Changed = true
	return ActionOutcome{Feedback: fmt.Sprintf("✅ Removed「%s」from day %d\nReason: %s",
		removed, n, reasonOr(action.Reason, "removed per request"))}
}
