package scoring_test

import (
	"testing"

	"quizlink-service/internal/domain"
	"quizlink-service/internal/scoring"
)

func TestSingleChoiceNormalizedMatch(t *testing.T) {
	questions := []domain.Question{{
		ID:            "q1",
		Type:          domain.QuestionSingleChoice,
		Options:       []string{"Paris", "London"},
		CorrectAnswer: "Paris",
	}}

	cases := []struct {
		name   string
		answer string
		want   int
	}{
		{"exact", "Paris", 1},
		{"case folded", "paris", 1},
		{"padded", "  Paris  ", 1},
		{"wrong", "London", 0},
		{"empty", "", 0},
	}
	for _, tc := range cases {
		got := scoring.Score(questions, []domain.AttemptAnswer{{QuestionID: "q1", Text: tc.answer}})
		if got != tc.want {
			t.Errorf("%s: score=%d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestMultiSelectExactness(t *testing.T) {
	questions := []domain.Question{{
		ID:            "q1",
		Type:          domain.QuestionMultiSelect,
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: "A;B;C",
	}}

	cases := []struct {
		name       string
		selections []string
		want       int
	}{
		{"exact set", []string{"A", "B", "C"}, 1},
		{"reordered", []string{"C", "A", "B"}, 1},
		{"missing one", []string{"A", "B"}, 0},
		{"extra one", []string{"A", "B", "C", "D"}, 0},
		{"empty", []string{}, 0},
	}
	for _, tc := range cases {
		got := scoring.Score(questions, []domain.AttemptAnswer{{QuestionID: "q1", Selections: tc.selections}})
		if got != tc.want {
			t.Errorf("%s: score=%d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestMultiSelectDelimitedTextFallback(t *testing.T) {
	questions := []domain.Question{{
		ID:            "q1",
		Type:          domain.QuestionMultiSelect,
		Options:       []string{"A", "B"},
		CorrectAnswer: "A;B",
	}}
	got := scoring.Score(questions, []domain.AttemptAnswer{{QuestionID: "q1", Text: " b ;A"}})
	if got != 1 {
		t.Fatalf("delimited text answer: score=%d, want 1", got)
	}
}

func TestMissingAnswersScoreZeroWithoutError(t *testing.T) {
	questions := []domain.Question{
		{ID: "q1", Type: domain.QuestionFreeText, CorrectAnswer: "four"},
		{ID: "q2", Type: domain.QuestionSingleChoice, Options: []string{"x"}, CorrectAnswer: "x"},
	}
	if got := scoring.Score(questions, nil); got != 0 {
		t.Fatalf("no answers: score=%d, want 0", got)
	}
	// Answers for unknown questions are ignored.
	got := scoring.Score(questions, []domain.AttemptAnswer{
		{QuestionID: "ghost", Text: "four"},
		{QuestionID: "q1", Text: "FOUR"},
	})
	if got != 1 {
		t.Fatalf("partial answers: score=%d, want 1", got)
	}
}

func TestScoreBounded(t *testing.T) {
	questions := make([]domain.Question, 10)
	answers := make([]domain.AttemptAnswer, 0, 10)
	for i := range questions {
		id := string(rune('a' + i))
		questions[i] = domain.Question{ID: id, Type: domain.QuestionFreeText, CorrectAnswer: "yes"}
		answers = append(answers, domain.AttemptAnswer{QuestionID: id, Text: "yes"})
	}
	if got := scoring.Score(questions, answers); got != len(questions) {
		t.Fatalf("all correct: score=%d, want %d", got, len(questions))
	}
	// Duplicate answers for one question never push the score past k.
	answers = append(answers, answers...)
	if got := scoring.Score(questions, answers); got != len(questions) {
		t.Fatalf("duplicated answers: score=%d, want %d", got, len(questions))
	}
}
