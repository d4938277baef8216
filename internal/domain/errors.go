package domain

import "errors"

var (
	// ErrNoQuestions is returned when every question source came up empty.
	ErrNoQuestions = errors.New("no questions available for the selected options")
	// ErrEmptyCourses blocks a start with no course selected.
	ErrEmptyCourses = errors.New("at least one course must be selected")
	// ErrInvalidDifficulty is returned for an unknown difficulty tag.
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrSessionBusy rejects an operation while a prior start is still in flight.
	ErrSessionBusy = errors.New("session operation already in progress")
	// ErrSessionNotActive is returned when an operation requires an active session.
	ErrSessionNotActive = errors.New("session is not active")
	// ErrSessionActive is returned when start is called outside the configuring phase.
	ErrSessionActive = errors.New("session already started")
	// ErrChallengeUnavailable indicates today's challenge could not be loaded or created.
	ErrChallengeUnavailable = errors.New("daily challenge unavailable")
	// ErrChallengeNotFound indicates no challenge row exists for the requested date.
	ErrChallengeNotFound = errors.New("daily challenge not found")
	// ErrUserNotFound indicates an unknown user ID.
	ErrUserNotFound = errors.New("user not found")
	// ErrGenerationFailed indicates the question generator could not produce a batch.
	ErrGenerationFailed = errors.New("question generation failed")
)
