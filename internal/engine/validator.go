package engine

import (
	"github.com/clinsa/psicotest-backend/internal/model"
)

// ValidateAnswer checks the structural validity of one candidate answer
// against its question definition. Pure; no side effects.
//
//   - single/multi choice: the referenced option must belong to the question.
//   - free text: an empty string is structurally valid but counts as
//     unanswered; a missing text value is a shape error.
//   - numeric range: a nil value is rejected only on mandatory questions.
//     Min/max bounds are advisory for the presenter and not enforced here.
func ValidateAnswer(q *model.Question, a *model.Answer) error {
	if a.QuestionID != q.ID {
		return ErrQuestionMismatch
	}

	switch q.Type {
	case model.QuestionTypeSingleChoice, model.QuestionTypeMultiChoice:
		if a.OptionID == nil {
			return ErrInvalidAnswerShape
		}
		if q.OptionByID(*a.OptionID) == nil {
			return ErrInvalidOption
		}
		return nil

	case model.QuestionTypeFreeText:
		if a.TextValue == nil {
			return ErrInvalidAnswerShape
		}
		return nil

	case model.QuestionTypeNumericRange:
		if a.NumericValue == nil && q.Mandatory {
			return ErrInvalidAnswerShape
		}
		return nil

	default:
		return ErrUnknownQuestionType
	}
}
