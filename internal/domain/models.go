package domain

import (
	"strings"
	"time"
)

// QuestionType discriminates how an answer is interpreted and scored.
type QuestionType string

const (
	QuestionSingleChoice QuestionType = "single_choice"
	QuestionMultiSelect  QuestionType = "multi_select"
	QuestionFreeText     QuestionType = "free_text"
)

// MultiSelectDelimiter separates tokens in a multi-select correct answer.
const MultiSelectDelimiter = ";"

// Question is one entry of a quiz. Order is 1-based and contiguous within a
// quiz. CorrectAnswer holds the expected option text for choice types (a
// delimited set for multi-select) or the expected free-text value.
type Question struct {
	ID            string       `json:"id"`
	Order         int          `json:"order"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer"`
}

// Quiz is authored by an administrator and reached by participants through
// LinkToken, an opaque capability string. TimeLimitSec of zero means the
// session countdown is unbounded.
type Quiz struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	LinkToken        string     `json:"linkToken"`
	IsPublished      bool       `json:"isPublished"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	Questions        []Question `json:"questions"`
	PassingScore     int        `json:"passingScore"`
	QuestionsPerPage int        `json:"questionsPerPage"`
	TimeLimitSec     int        `json:"timeLimitSec"`
}

// Participant identifies who is taking a quiz. NIJ is the participant-supplied
// identifier used for one-attempt-per-person enforcement; it is only unique
// within a single quiz, never globally.
type Participant struct {
	Name string `json:"name"`
	NIJ  string `json:"nij"`
}

// AttemptAnswer is one participant answer. Selections carries the structured
// multi-select payload when the client sends one; Text is the raw answer
// otherwise (multi-select falls back to delimited text).
type AttemptAnswer struct {
	QuestionID string   `json:"questionId"`
	Text       string   `json:"text"`
	Selections []string `json:"selections,omitempty"`
}

// Attempt is a finalized, scored submission. Attempts are append-only: once
// recorded they are never updated or deleted, and Passed keeps the value
// derived from the passing score in effect at write time even if the quiz's
// threshold changes later.
type Attempt struct {
	ID          string          `json:"id"`
	QuizID      string          `json:"quizId"`
	Name        string          `json:"name"`
	NIJ         string          `json:"nij"`
	Answers     []AttemptAnswer `json:"answers"`
	Score       int             `json:"score"`
	Passed      bool            `json:"passed"`
	SubmittedAt time.Time       `json:"submittedAt"`
}

// SubmitResult is the participant-facing outcome. It deliberately carries no
// score and no per-question feedback; administrators read scores separately.
type SubmitResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NormalizeNIJ canonicalizes a participant identifier for duplicate detection:
// " Alice " and "alice" count as the same participant.
func NormalizeNIJ(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeAnswer canonicalizes answer text before comparison. The same
// normalization is applied to the given and the correct side of every match.
func NormalizeAnswer(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
