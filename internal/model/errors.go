package model

import "errors"

// Common errors used across the application
var (
	// Host errors
	ErrUnknownGame = errors.New("unknown game kind")

	// Internal invariant violations; reaching one of these is a bug
	ErrNoAuthor       = errors.New("message author unexpectedly absent")
	ErrNoTimerUnit    = errors.New("timer unit has no mapped display name")
	ErrNoAnswerEmoji  = errors.New("no emoji mapped for the given answer")
	ErrEmptyAnswerKey = errors.New("canonical answer resolved to empty string")
)
