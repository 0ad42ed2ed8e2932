package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizlink-service/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[string]domain.Quiz{
			"tok-1": sampleQuiz(),
		}),
	}
	repo := NewQuizRepository(loader, time.Minute)

	if _, err := repo.GetQuizByToken(context.Background(), "tok-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetQuizByToken(context.Background(), "tok-1"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuizRepositoryUnknownToken(t *testing.T) {
	repo := NewQuizRepository(NewStaticQuizLoader(nil), time.Minute)
	_, err := repo.GetQuizByToken(context.Background(), "tok-ghost")
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("err=%v, want not found", err)
	}
}

func TestStaticLoaderRejectsMalformedQuiz(t *testing.T) {
	broken := sampleQuiz()
	broken.Questions[0].CorrectAnswer = "Madrid"

	repo := NewQuizRepository(NewStaticQuizLoader(map[string]domain.Quiz{
		"tok-1": broken,
	}), time.Minute)

	_, err := repo.GetQuizByToken(context.Background(), "tok-1")
	if !errors.Is(err, domain.ErrInvalidQuiz) {
		t.Fatalf("err=%v, want invalid quiz", err)
	}
}

type countingLoader struct {
	QuizLoader
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
	}
}
