package models

import (
	"time"
)

// ChatMessage is one entry of the assistant transcript. IsSystemAction marks
// feedback produced by executing a plan command rather than plain chat.
type ChatMessage struct {
	ID             string    `json:"id"`
	ProfileID      uint      `json:"profile_id"`
	Content        string    `json:"content"`
	IsFromUser     bool      `json:"is_from_user"`
	IsSystemAction bool      `json:"is_system_action"`
	Timestamp      time.Time `json:"timestamp"`
}

// AssistantMode selects how structural requests are handled.
type AssistantMode string

const (
	AssistantModeEdit    AssistantMode = "edit"
	AssistantModeSuggest AssistantMode = "suggest"
)
