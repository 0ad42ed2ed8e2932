package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quizlink-service/internal/domain"
)

func TestLedgerRejectsNormalizedDuplicates(t *testing.T) {
	ctx := context.Background()
	ledger := NewAttemptLedger()

	first, err := ledger.Record(ctx, attemptFor(" Alice ", 7), 7)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if first.ID == "" || !first.Passed {
		t.Fatalf("recorded attempt=%+v", first)
	}

	if _, err := ledger.Record(ctx, attemptFor("alice", 3), 7); !errors.Is(err, domain.ErrDuplicateAttempt) {
		t.Fatalf("duplicate record: %v", err)
	}

	exists, err := ledger.HasAttempt(ctx, "quiz-1", "ALICE")
	if err != nil || !exists {
		t.Fatalf("has attempt: exists=%v err=%v", exists, err)
	}
}

func TestLedgerPassDerivationAtWriteTime(t *testing.T) {
	ctx := context.Background()
	ledger := NewAttemptLedger()

	passing, _ := ledger.Record(ctx, attemptFor("a", 7), 7)
	if !passing.Passed {
		t.Fatalf("score 7 vs threshold 7: passed=%v, want true", passing.Passed)
	}
	failing, _ := ledger.Record(ctx, attemptFor("b", 6), 7)
	if failing.Passed {
		t.Fatalf("score 6 vs threshold 7: passed=%v, want false", failing.Passed)
	}
}

func TestLedgerConcurrentWritesSingleWinner(t *testing.T) {
	ctx := context.Background()
	ledger := NewAttemptLedger()

	const racers = 16
	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Record(ctx, attemptFor("x1", 1), 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins, duplicates := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrDuplicateAttempt):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || duplicates != racers-1 {
		t.Fatalf("wins=%d duplicates=%d, want exactly one winner", wins, duplicates)
	}

	attempts, _ := ledger.ListByQuiz(ctx, "quiz-1")
	if len(attempts) != 1 {
		t.Fatalf("recorded attempts=%d, want 1", len(attempts))
	}
}

func TestLedgerListPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	ledger := NewAttemptLedger()

	for _, nij := range []string{"c", "a", "b"} {
		if _, err := ledger.Record(ctx, attemptFor(nij, 0), 1); err != nil {
			t.Fatalf("record %s: %v", nij, err)
		}
	}
	attempts, err := ledger.ListByQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := []string{attempts[0].NIJ, attempts[1].NIJ, attempts[2].NIJ}
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order=%v, want %v", got, want)
		}
	}
}

func attemptFor(nij string, score int) domain.Attempt {
	return domain.Attempt{
		QuizID:      "quiz-1",
		Name:        "Tester",
		NIJ:         nij,
		Score:       score,
		SubmittedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}
