package engine

import (
	"errors"
	"fmt"
)

// Rejection causes. A rejected action leaves the session untouched.
var (
	ErrNotPlaying         = errors.New("session is not playing")
	ErrFragmentNotFound   = errors.New("fragment not found")
	ErrFragmentSolved     = errors.New("fragment is solved")
	ErrCellOccupied       = errors.New("cell is occupied")
	ErrOutOfBounds        = errors.New("position is outside the board")
	ErrInsufficientEnergy = errors.New("insufficient chrono-energy")
	ErrInvalidRotation    = errors.New("rotation must be a multiple of 90 degrees")
	ErrDuplicateFragment  = errors.New("fragment id already in use")
)

// ErrNegativeElapsed reports a tick with negative elapsed time. It is a
// caller bug, not a rejection; strict sessions panic instead.
var ErrNegativeElapsed = errors.New("negative elapsed time")

// ActionError describes why a player action was rejected.
type ActionError struct {
	Op         string
	FragmentID int // -1 when the action has no target fragment
	Err        error
}

func (e *ActionError) Error() string {
	if e.FragmentID < 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s fragment %d: %v", e.Op, e.FragmentID, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
