package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"quizlink-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches quiz content by link token from a backing store.
type QuizLoader interface {
	LoadQuizByToken(ctx context.Context, token string) (domain.Quiz, error)
}

// QuizRepository caches the full quiz document in Redis keyed by link token
// and falls back to a loader on cache miss:
//
//	SET quiz:link:{token} {json} EX {ttl}
//
// The whole document is cached (not just answers) because the session layer
// needs time limits and question lists for the countdown page.
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuizByToken(ctx context.Context, token string) (domain.Quiz, error) {
	key := r.key(token)

	if quiz, ok := r.cached(ctx, key); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(token, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := r.cached(ctx, key); ok {
			return quiz, nil
		}

		quiz, err := r.loader.LoadQuizByToken(ctx, token)
		if err != nil {
			return domain.Quiz{}, err
		}

		data, err := json.Marshal(quiz)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("marshal quiz: %w", err)
		}
		// Best-effort cache fill; a failed SET just means the next call loads again.
		_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()

		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) cached(ctx context.Context, key string) (domain.Quiz, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (r *QuizRepository) key(token string) string {
	return "quiz:link:" + token
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
