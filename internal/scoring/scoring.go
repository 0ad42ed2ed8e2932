// Package scoring maps a question set and an answer set to an integer score.
// It is pure and total: no side effects, no errors, and unmatched questions
// simply score zero, so a stored attempt can be re-scored byte-identically
// for audits.
package scoring

import (
	"strings"

	"quizlink-service/internal/domain"
)

// Score awards one point per question whose answer matches. Single-choice and
// free-text compare normalized text; multi-select requires exact set equality
// over the delimited tokens, with no partial credit. The result is independent
// of question and answer order and always within [0, len(questions)].
func Score(questions []domain.Question, answers []domain.AttemptAnswer) int {
	given := make(map[string]domain.AttemptAnswer, len(answers))
	for _, answer := range answers {
		given[answer.QuestionID] = answer
	}

	score := 0
	for _, question := range questions {
		answer, ok := given[question.ID]
		if !ok {
			continue
		}
		switch question.Type {
		case domain.QuestionMultiSelect:
			correct := tokenSet(strings.Split(question.CorrectAnswer, domain.MultiSelectDelimiter))
			if len(correct) == 0 {
				continue
			}
			if setsEqual(correct, tokenSet(selections(answer))) {
				score++
			}
		default:
			want := domain.NormalizeAnswer(question.CorrectAnswer)
			if want == "" {
				continue
			}
			if domain.NormalizeAnswer(answer.Text) == want {
				score++
			}
		}
	}
	return score
}

// selections resolves the answer payload shape once: a structured multi-select
// payload wins, otherwise the raw text is split on the fixed delimiter.
func selections(answer domain.AttemptAnswer) []string {
	if answer.Selections != nil {
		return answer.Selections
	}
	return strings.Split(answer.Text, domain.MultiSelectDelimiter)
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		normalized := domain.NormalizeAnswer(token)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for token := range a {
		if _, ok := b[token]; !ok {
			return false
		}
	}
	return true
}
