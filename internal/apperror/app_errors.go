package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBoardSize = errors.New("board size must be a positive integer")
	ErrRequestFailed    = errors.New("request to game server failed")
	ErrSessionNotFound  = errors.New("session not found")

	ErrInputDisabled    = errors.New("input is disabled")
	ErrMoveTimeout      = errors.New("no reply to the move in time")
	ErrMoveRejected     = errors.New("move rejected by game server")
	ErrConnectionClosed = errors.New("connection closed before the reply")
	ErrNotJoined        = errors.New("session is not joined")
)

// ClientError - error description reported by the game server in a response body.
type ClientError struct {
	Description string
}

func NewClientError(description string) *ClientError {
	return &ClientError{Description: description}
}

func (that *ClientError) Error() string {
	return fmt.Sprintf("game server request raised an error: %s", that.Description)
}
