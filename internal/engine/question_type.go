package engine

import (
	"strings"

	"github.com/clinsa/psicotest-backend/internal/model"
)

// answeredPredicate decides whether a group of answer rows for one question
// satisfies that question. Groups may hold zero, one, or many rows; a single
// qualifying row is enough.
type answeredPredicate func(answers []model.Answer) bool

// answeredByType is the closed dispatch table over the supported question
// types. Dispatching on the variant instead of raw strings means an
// unrecognized type surfaces as ErrUnknownQuestionType rather than silently
// counting as answered.
var answeredByType = map[model.QuestionType]answeredPredicate{
	model.QuestionTypeSingleChoice: anyOptionSelected,
	model.QuestionTypeMultiChoice:  anyOptionSelected,
	model.QuestionTypeFreeText:     anyNonBlankText,
	model.QuestionTypeNumericRange: anyNumericValue,
}

// Answered reports whether the question is satisfied by the given answer rows.
func Answered(q *model.Question, answers []model.Answer) (bool, error) {
	pred, ok := answeredByType[q.Type]
	if !ok {
		return false, ErrUnknownQuestionType
	}
	return pred(answers), nil
}

func anyOptionSelected(answers []model.Answer) bool {
	for i := range answers {
		if answers[i].OptionID != nil {
			return true
		}
	}
	return false
}

func anyNonBlankText(answers []model.Answer) bool {
	for i := range answers {
		if answers[i].TextValue != nil && strings.TrimSpace(*answers[i].TextValue) != "" {
			return true
		}
	}
	return false
}

func anyNumericValue(answers []model.Answer) bool {
	for i := range answers {
		if answers[i].NumericValue != nil {
			return true
		}
	}
	return false
}
