package redis

import (
	"context"
	"testing"
	"time"

	"quizlink-service/internal/domain"
	"quizlink-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuizRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		QuizLoader: memory.NewStaticQuizLoader(map[string]domain.Quiz{
			"tok-1": sampleQuiz(),
		}),
	}
	repo := NewQuizRepository(client, loader, time.Minute)

	quiz, err := repo.GetQuizByToken(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.TimeLimitSec != 120 || len(quiz.Questions) != 1 {
		t.Fatalf("cached quiz lost fields: %+v", quiz)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:link:tok-1") {
		t.Fatalf("expected cache key to be set")
	}

	// Second call should hit cache, loader not incremented.
	if _, err := repo.GetQuizByToken(context.Background(), "tok-1"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.QuizLoader
	calls int
}

func (l *countingLoader) LoadQuizByToken(ctx context.Context, token string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuizByToken(ctx, token)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:          "quiz-1",
		Title:       "Capitals",
		LinkToken:   "tok-1",
		IsPublished: true,
		Questions: []domain.Question{
			{
				ID:            "q1",
				Order:         1,
				Text:          "What is the capital of France?",
				Type:          domain.QuestionSingleChoice,
				Options:       []string{"Paris", "London"},
				CorrectAnswer: "Paris",
			},
		},
		PassingScore: 1,
		TimeLimitSec: 120,
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
