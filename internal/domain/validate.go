package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Validate checks the authoring invariants of a quiz before it is offered to
// participants:
//   - question orders are contiguous starting at 1
//   - choice-type questions carry at least one option
//   - the correct answer of a choice question matches an option by value
//     (every delimited token, for multi-select)
func (q Quiz) Validate() error {
	for i, question := range q.Questions {
		if question.Order != i+1 {
			return fmt.Errorf("%w: question %q has order %d, want %d", ErrInvalidQuiz, question.ID, question.Order, i+1)
		}
		switch question.Type {
		case QuestionSingleChoice:
			if err := question.requireOptionMatch(question.CorrectAnswer); err != nil {
				return err
			}
		case QuestionMultiSelect:
			tokens := strings.Split(question.CorrectAnswer, MultiSelectDelimiter)
			if len(tokens) == 0 || question.CorrectAnswer == "" {
				return fmt.Errorf("%w: question %q has empty multi-select answer", ErrInvalidQuiz, question.ID)
			}
			for _, token := range tokens {
				if err := question.requireOptionMatch(token); err != nil {
					return err
				}
			}
		case QuestionFreeText:
			if strings.TrimSpace(question.CorrectAnswer) == "" {
				return fmt.Errorf("%w: question %q has empty correct answer", ErrInvalidQuiz, question.ID)
			}
		default:
			return fmt.Errorf("%w: question %q has unknown type %q", ErrInvalidQuiz, question.ID, question.Type)
		}
	}
	return nil
}

func (q Question) requireOptionMatch(answer string) error {
	if len(q.Options) == 0 {
		return fmt.Errorf("%w: choice question %q has no options", ErrInvalidQuiz, q.ID)
	}
	want := NormalizeAnswer(answer)
	for _, option := range q.Options {
		if NormalizeAnswer(option) == want {
			return nil
		}
	}
	return fmt.Errorf("%w: question %q correct answer %q matches no option", ErrInvalidQuiz, q.ID, answer)
}

// RenumberQuestions restores contiguous 1-based ordering after a deletion.
// Existing relative order wins; ties fall back to slice position.
func RenumberQuestions(questions []Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Order < questions[j].Order
	})
	for i := range questions {
		questions[i].Order = i + 1
	}
}
