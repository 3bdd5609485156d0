package repository

import (
	"errors"
	"log"
	"sync"

	"fitgenius/models"
)

// ChatRepository stores assistant transcripts. Transcripts are append-only;
// the only other mutation is clearing a whole transcript.
type ChatRepository interface {
	SaveMessage(message models.ChatMessage) error
	GetMessagesByProfileID(profileID uint) ([]models.ChatMessage, error)
	ClearMessages(profileID uint) error
}

// chatRepository keeps transcripts in memory, keyed by profile.
type chatRepository struct {
	messages map[uint][]models.ChatMessage
	mu       sync.RWMutex
}

// NewChatRepository creates an in-memory chat repository.
func NewChatRepository() ChatRepository {
	return &chatRepository{
		messages: make(map[uint][]models.ChatMessage),
	}
}

func (r *chatRepository) SaveMessage(message models.ChatMessage) error {
	if message.ProfileID == 0 {
		return errors.New("cannot save message: ProfileID is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[message.ProfileID] = append(r.messages[message.ProfileID], message)
	log.Printf("INFO: [ChatRepository] Saved message %s for profile ID %d (user=%t, action=%t).",
		message.ID, message.ProfileID, message.IsFromUser, message.IsSystemAction)
	return nil
}

// GetMessagesByProfileID returns a copy of the transcript; an unknown profile
// yields an empty slice.
func (r *chatRepository) GetMessagesByProfileID(profileID uint) ([]models.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.messages[profileID]
	result := make([]models.ChatMessage, len(stored))
	copy(result, stored)
	return result, nil
}

func (r *chatRepository) ClearMessages(profileID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, profileID)
	log.Printf("INFO: [ChatRepository] Cleared transcript for profile ID %d.", profileID)
	return nil
}
