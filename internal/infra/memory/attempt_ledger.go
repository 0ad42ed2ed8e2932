package memory

import (
	"context"
	"fmt"
	"sync"

	"quizlink-service/internal/domain"
)

// AttemptLedger is an in-memory implementation of app.AttemptLedger. The
// duplicate check and the append happen under one lock, so two concurrent
// submissions for the same (quiz, nij) resolve as one success and one
// domain.ErrDuplicateAttempt.
type AttemptLedger struct {
	mu     sync.RWMutex
	byQuiz map[string][]domain.Attempt
	index  map[string]map[string]struct{}
	nextID int
}

func NewAttemptLedger() *AttemptLedger {
	return &AttemptLedger{
		byQuiz: make(map[string][]domain.Attempt),
		index:  make(map[string]map[string]struct{}),
	}
}

func (l *AttemptLedger) HasAttempt(_ context.Context, quizID, nij string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.index[quizID][domain.NormalizeNIJ(nij)]
	return ok, nil
}

// Record appends the attempt, stamping its ID and the pass/fail derivation
// from the passing score in effect right now. Existing attempts are never
// overwritten.
func (l *AttemptLedger) Record(_ context.Context, attempt domain.Attempt, passingScore int) (domain.Attempt, error) {
	nij := domain.NormalizeNIJ(attempt.NIJ)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.index[attempt.QuizID][nij]; ok {
		return domain.Attempt{}, domain.ErrDuplicateAttempt
	}

	l.nextID++
	attempt.ID = fmt.Sprintf("attempt-%d", l.nextID)
	attempt.NIJ = nij
	attempt.Passed = attempt.Score >= passingScore

	if l.index[attempt.QuizID] == nil {
		l.index[attempt.QuizID] = make(map[string]struct{})
	}
	l.index[attempt.QuizID][nij] = struct{}{}
	l.byQuiz[attempt.QuizID] = append(l.byQuiz[attempt.QuizID], attempt)
	return attempt, nil
}

// ListByQuiz returns attempts in insertion order. Callers wanting recency sort
// by SubmittedAt themselves.
func (l *AttemptLedger) ListByQuiz(_ context.Context, quizID string) ([]domain.Attempt, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	attempts := make([]domain.Attempt, len(l.byQuiz[quizID]))
	copy(attempts, l.byQuiz[quizID])
	return attempts, nil
}
