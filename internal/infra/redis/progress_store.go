package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quizlink-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ProgressStore persists auto-saved answer buffers in Redis so a browser
// refresh resumes the same session buffer:
//
//	SET session:{id}:answers {json} EX {ttl}
//
// The TTL bounds how long an abandoned buffer lingers; a finalized session
// clears its key explicitly.
type ProgressStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProgressStore(client *redis.Client, ttl time.Duration) *ProgressStore {
	return &ProgressStore{client: client, ttl: ttl}
}

func (s *ProgressStore) Save(ctx context.Context, sessionID string, answers []domain.AttemptAnswer) error {
	data, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (s *ProgressStore) Load(ctx context.Context, sessionID string) ([]domain.AttemptAnswer, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	var answers []domain.AttemptAnswer
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, fmt.Errorf("unmarshal progress: %w", err)
	}
	return answers, nil
}

func (s *ProgressStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	return nil
}

func (s *ProgressStore) key(sessionID string) string {
	return "session:" + sessionID + ":answers"
}
