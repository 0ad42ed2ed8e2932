package memory

import (
	"context"
	"sync"

	"quizlink-service/internal/domain"
)

// ProgressStore keeps auto-saved answer buffers in process memory. It is the
// single-instance fallback for the Redis-backed store.
type ProgressStore struct {
	mu      sync.RWMutex
	buffers map[string][]domain.AttemptAnswer
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		buffers: make(map[string][]domain.AttemptAnswer),
	}
}

func (s *ProgressStore) Save(_ context.Context, sessionID string, answers []domain.AttemptAnswer) error {
	buffer := make([]domain.AttemptAnswer, len(answers))
	copy(buffer, answers)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffers[sessionID] = buffer
	return nil
}

func (s *ProgressStore) Load(_ context.Context, sessionID string) ([]domain.AttemptAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answers := make([]domain.AttemptAnswer, len(s.buffers[sessionID]))
	copy(answers, s.buffers[sessionID])
	return answers, nil
}

func (s *ProgressStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buffers, sessionID)
	return nil
}
