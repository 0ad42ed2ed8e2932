package redis

import (
	"context"
	"testing"
	"time"

	"quizlink-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestProgressStoreSavesAndClears(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewProgressStore(newClient(mr), time.Minute)
	ctx := context.Background()

	answers := []domain.AttemptAnswer{
		{QuestionID: "q1", Text: "Paris"},
		{QuestionID: "q2", Selections: []string{"A", "C"}},
	}
	if err := store.Save(ctx, "quiz-1:x1", answers); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("session:quiz-1:x1:answers") {
		t.Fatalf("expected progress key to be set")
	}

	loaded, err := store.Load(ctx, "quiz-1:x1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 || loaded[1].Selections[1] != "C" {
		t.Fatalf("loaded=%+v", loaded)
	}

	if err := store.Clear(ctx, "quiz-1:x1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists("session:quiz-1:x1:answers") {
		t.Fatalf("expected progress key removed")
	}
}

func TestProgressStoreMissingKeyIsEmpty(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewProgressStore(newClient(mr), time.Minute)
	loaded, err := store.Load(context.Background(), "quiz-1:ghost")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil buffer, got %+v", loaded)
	}
}
