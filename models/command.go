package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CommandType identifies the kind of plan edit requested by the assistant.
type CommandType string

const (
	CommandUpdatePlan     CommandType = "update_plan"
	CommandAddExercise    CommandType = "add_exercise"
	CommandRemoveExercise CommandType = "remove_exercise"
)

// Valid reports whether t is one of the known command types.
func (t CommandType) Valid() bool {
	switch t {
	case CommandUpdatePlan, CommandAddExercise, CommandRemoveExercise:
		return true
	}
	return false
}

// UnknownCommandTypeError is returned when a well-formed command carries a
// type outside the known set.
type UnknownCommandTypeError struct {
	Type string
}

func (e *UnknownCommandTypeError) Error() string {
	return fmt.Sprintf("unknown command type %q", e.Type)
}

// ErrNotACommand means the payload is JSON but carries no command type.
var ErrNotACommand = errors.New("payload is not an action command")

// ActionCommand is a batch of plan edits of a single type.
type ActionCommand struct {
	Type    CommandType `json:"type"`
	Actions []Action    `json:"actions"`
}

// Action is one edit. Pointer fields distinguish "absent" from zero values.
type Action struct {
	Day          *FlexInt    `json:"day,omitempty"`
	OldExercise  string      `json:"old_exercise,omitempty"`
	NewExercise  string      `json:"new_exercise,omitempty"`
	ExerciseName string      `json:"exercise_name,omitempty"`
	Sets         *FlexInt    `json:"sets,omitempty"`
	Reps         *FlexString `json:"reps,omitempty"`
	Weight       *float64    `json:"weight,omitempty"`
	Reason       string      `json:"reason,omitempty"`
}

// DayNumber returns the requested day and whether it was provided.
func (a Action) DayNumber() (int, bool) {
	if a.Day == nil {
		return 0, false
	}
	return int(*a.Day), true
}

// ParseActionCommand decodes a command and rejects unknown types.
func ParseActionCommand(data []byte) (*ActionCommand, error) {
	var cmd ActionCommand
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cmd); err != nil {
		return nil, err
	}
	if cmd.Type == "" {
		return nil, ErrNotACommand
	}
	if !cmd.Type.Valid() {
		return nil, &UnknownCommandTypeError{Type: string(cmd.Type)}
	}
	return &cmd, nil
}

// FlexInt accepts a JSON number (integral or not) or a numeric string.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", string(data), err)
	}
	*f = FlexInt(math.Round(v))
	return nil
}

// FlexString accepts a JSON string or number, keeping the text form.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid reps %s: %w", string(data), err)
	}
	*f = FlexString(n.String())
	return nil
}
