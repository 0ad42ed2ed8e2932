package app

import (
	"context"
	"strings"
	"time"

	"quizlink-service/internal/domain"
	"quizlink-service/internal/scoring"
)

// QuizRepository resolves quiz content by link token (from cache/backing store).
type QuizRepository interface {
	GetQuizByToken(ctx context.Context, token string) (domain.Quiz, error)
}

// AttemptLedger is the append-only attempt store. Record must perform the
// duplicate check and the append atomically: two concurrent calls for the same
// (quiz, normalized nij) resolve as exactly one success and one
// domain.ErrDuplicateAttempt. Record stamps Passed from the passing score in
// effect at write time.
type AttemptLedger interface {
	HasAttempt(ctx context.Context, quizID, nij string) (bool, error)
	Record(ctx context.Context, attempt domain.Attempt, passingScore int) (domain.Attempt, error)
	ListByQuiz(ctx context.Context, quizID string) ([]domain.Attempt, error)
}

// ProgressStore persists the in-flight answer buffer of a session so a page
// refresh does not lose progress. It is best-effort from the session's point
// of view; only the final submission path treats failures as fatal.
type ProgressStore interface {
	Save(ctx context.Context, sessionID string, answers []domain.AttemptAnswer) error
	Load(ctx context.Context, sessionID string) ([]domain.AttemptAnswer, error)
	Clear(ctx context.Context, sessionID string) error
}

// SubmitService is the single entry point that turns a participant's answers
// into at most one recorded attempt.
type SubmitService struct {
	quizzes QuizRepository
	ledger  AttemptLedger
	clock   func() time.Time
}

func NewSubmitService(quizzes QuizRepository, ledger AttemptLedger) *SubmitService {
	return NewSubmitServiceWithClock(quizzes, ledger, time.Now)
}

// NewSubmitServiceWithClock allows deterministic timestamps in tests.
func NewSubmitServiceWithClock(quizzes QuizRepository, ledger AttemptLedger, now func() time.Time) *SubmitService {
	return &SubmitService{quizzes: quizzes, ledger: ledger, clock: now}
}

// Submit validates eligibility, scores the answers, and records the attempt.
// Validation order is fixed and fails fast: unknown token, unpublished,
// expired, invalid participant, duplicate. On success exactly one attempt is
// durably recorded; on any failure nothing is written. The returned result
// never reveals the score or per-question correctness.
func (s *SubmitService) Submit(ctx context.Context, token string, participant domain.Participant, answers []domain.AttemptAnswer) (domain.SubmitResult, error) {
	quiz, err := s.quizzes.GetQuizByToken(ctx, token)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	if !quiz.IsPublished {
		return domain.SubmitResult{}, domain.ErrQuizNotPublished
	}
	now := s.clock()
	if quiz.ExpiresAt != nil && !now.Before(*quiz.ExpiresAt) {
		return domain.SubmitResult{}, domain.ErrQuizExpired
	}

	name := strings.TrimSpace(participant.Name)
	nij := domain.NormalizeNIJ(participant.NIJ)
	if name == "" || nij == "" {
		return domain.SubmitResult{}, domain.ErrInvalidSubmission
	}

	exists, err := s.ledger.HasAttempt(ctx, quiz.ID, nij)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	if exists {
		return domain.SubmitResult{}, domain.ErrDuplicateAttempt
	}

	attempt := domain.Attempt{
		QuizID:      quiz.ID,
		Name:        name,
		NIJ:         nij,
		Answers:     answers,
		Score:       scoring.Score(quiz.Questions, answers),
		SubmittedAt: now,
	}
	if _, err := s.ledger.Record(ctx, attempt, quiz.PassingScore); err != nil {
		return domain.SubmitResult{}, err
	}
	return domain.SubmitResult{Success: true, Message: "submission received"}, nil
}

// ListAttempts is the administrator-facing read model: full attempt records in
// insertion order, scores included.
func (s *SubmitService) ListAttempts(ctx context.Context, quizID string) ([]domain.Attempt, error) {
	return s.ledger.ListByQuiz(ctx, quizID)
}
