package domain

import "errors"

var (
	// ErrQuizNotFound indicates no quiz carries the presented link token.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizNotPublished is returned when the quiz exists but is not open for taking.
	ErrQuizNotPublished = errors.New("quiz not published")
	// ErrQuizExpired is returned when the quiz's expiry timestamp has passed.
	ErrQuizExpired = errors.New("quiz expired")
	// ErrDuplicateAttempt is returned when the participant already has a recorded attempt.
	ErrDuplicateAttempt = errors.New("attempt already recorded for participant")
	// ErrInvalidSubmission indicates malformed participant info or answers.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrSessionClosed is returned when a session in a terminal state is mutated.
	ErrSessionClosed = errors.New("session already finished")
	// ErrInvalidQuiz indicates quiz content that violates authoring invariants.
	ErrInvalidQuiz = errors.New("invalid quiz definition")
)
