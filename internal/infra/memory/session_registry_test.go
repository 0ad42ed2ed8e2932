package memory

import (
	"testing"

	"quizlink-service/internal/app"
	"quizlink-service/internal/domain"
)

func TestSessionRegistryLifecycle(t *testing.T) {
	registry := NewSessionRegistry()

	factory := func() *app.Session {
		return app.NewSession(app.SessionConfig{
			ID:          "quiz-1:x1",
			QuizToken:   "tok-1",
			Participant: domain.Participant{Name: "Bob", NIJ: "X1"},
		}, NewProgressStore(), nil)
	}

	session, created := registry.GetOrCreate("quiz-1:x1", factory)
	if session == nil || !created {
		t.Fatalf("expected fresh session, created=%v", created)
	}

	again, created := registry.GetOrCreate("quiz-1:x1", factory)
	if created || again != session {
		t.Fatalf("expected reattach to same session, created=%v", created)
	}

	registry.Delete("quiz-1:x1")
	if _, ok := registry.Get("quiz-1:x1"); ok {
		t.Fatalf("expected session removed")
	}
}
