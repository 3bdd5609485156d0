package services

import "errors"

// AI gateway failures.
var (
	ErrMissingCredential  = errors.New("ai gateway: API key is not configured")
	ErrInvalidEndpoint    = errors.New("ai gateway: invalid endpoint URL")
	ErrNetworkFailure     = errors.New("ai gateway: network failure")
	ErrUnexpectedResponse = errors.New("ai gateway: unexpected response")
	ErrDecodeFailure      = errors.New("ai gateway: could not decode response")
	ErrEmptyContent       = errors.New("ai gateway: response contained no content")
)

// Plan editing failures.
var (
	ErrDayNotFound                = errors.New("day not found")
	ErrAmbiguousOrNotFound        = errors.New("exercise name is ambiguous or not found")
	ErrPlanEmptyAfterRegeneration = errors.New("regenerated plan has no days")
)

// Lookup and state failures surfaced to the HTTP layer.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrProfileNotFound       = errors.New("profile not found")
	ErrProfileExists         = errors.New("profile already exists")
	ErrPlanNotFound          = errors.New("plan not found")
	ErrExerciseNotFound      = errors.New("exercise not found")
	ErrMealDayNotFound       = errors.New("meal day not found")
	ErrMealEntryNotFound     = errors.New("meal entry not found")
	ErrAssistantBusy         = errors.New("assistant is still working on the previous request")
	ErrNoPendingRegeneration = errors.New("no plan regeneration is awaiting confirmation")
	ErrPhotoStorageDisabled  = errors.New("photo storage is not enabled")
	ErrSyncDisabled          = errors.New("cloud sync is not enabled")
)
