package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quizlink-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches quiz content by link token from a backing store.
type QuizLoader interface {
	LoadQuizByToken(ctx context.Context, token string) (domain.Quiz, error)
}

// QuizRepository caches quizzes by link token so the countdown page does not
// hit the backing store on every load. Concurrent misses for the same token
// collapse into one loader call, and entry lifetimes are jittered to spread
// refreshes.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	group  singleflight.Group
	rnd    *rand.Rand

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	quiz    domain.Quiz
	staleAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader:  loader,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		entries: make(map[string]cacheEntry),
	}
}

func (r *QuizRepository) GetQuizByToken(ctx context.Context, token string) (domain.Quiz, error) {
	if quiz, ok := r.fresh(token); ok {
		return quiz, nil
	}

	result, err, _ := r.group.Do(token, func() (interface{}, error) {
		// Re-check under the flight: a concurrent caller may have filled the
		// entry while this one waited.
		if quiz, ok := r.fresh(token); ok {
			return quiz, nil
		}
		quiz, err := r.loader.LoadQuizByToken(ctx, token)
		if err != nil {
			return domain.Quiz{}, err
		}
		r.store(token, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) fresh(token string) (domain.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[token]
	if !ok || !entry.staleAt.After(r.clock()) {
		return domain.Quiz{}, false
	}
	return entry.quiz, true
}

func (r *QuizRepository) store(token string, quiz domain.Quiz) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[token] = cacheEntry{quiz: quiz, staleAt: r.clock().Add(r.jitteredTTL())}
}

func (r *QuizRepository) jitteredTTL() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// Up to 10% extra so a burst of loads does not expire in lockstep.
	return r.ttl + time.Duration(r.rnd.Int63n(int64(r.ttl)/10+1))
}

// StaticQuizLoader serves quizzes from a fixed map keyed by link token, for
// tests and for running the server without Postgres. Quizzes are checked
// against the authoring invariants on the way out, so a malformed seed fails
// loudly instead of silently scoring wrong.
type StaticQuizLoader struct {
	quizzes map[string]domain.Quiz
}

func NewStaticQuizLoader(quizzes map[string]domain.Quiz) *StaticQuizLoader {
	return &StaticQuizLoader{quizzes: quizzes}
}

func (l *StaticQuizLoader) LoadQuizByToken(_ context.Context, token string) (domain.Quiz, error) {
	quiz, ok := l.quizzes[token]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err := quiz.Validate(); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}
