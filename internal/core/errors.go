package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeInvalidName     = "invalid_name"
	ErrCodeNameTaken       = "name_taken"
	ErrCodeRoomUnavailable = "room_unavailable"
	ErrCodeRoomFull        = "room_full"
	ErrCodeNotAllReady     = "not_all_ready"
	ErrCodeAlreadyInRoom   = "already_in_room"
)

var (
	ErrInvalidName     = coreError(ErrCodeInvalidName, "Room name must be between 3 and 12 characters.")
	ErrNameTaken       = coreError(ErrCodeNameTaken, "Room name is already taken.")
	ErrRoomUnavailable = coreError(ErrCodeRoomUnavailable, "Room not found or is sealed.")
	ErrRoomFull        = coreError(ErrCodeRoomFull, "Room is full.")
	ErrNotAllReady     = coreError(ErrCodeNotAllReady, "Not all players are ready.")
	ErrAlreadyInRoom   = coreError(ErrCodeAlreadyInRoom, "Already in a room.")
)

// ErrHubStopped is returned by queries issued after the hub loop exited.
var ErrHubStopped = errors.New("hub stopped")

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// asCoreError extracts the domain error carried by err, if any.
func asCoreError(err error) (*CoreError, bool) {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
