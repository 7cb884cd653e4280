package engine

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/clinsa/psicotest-backend/internal/model"
)

func TestValidateAnswerChoice(t *testing.T) {
	q := newChoiceQuestion(true)

	valid := optionAnswer(q, 0)
	if err := ValidateAnswer(&q, &valid); err != nil {
		t.Errorf("valid option rejected: %v", err)
	}

	stranger := optionAnswer(q, 0)
	stranger.OptionID = uuidPtr(uuid.New())
	if err := ValidateAnswer(&q, &stranger); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("foreign option: err = %v, want ErrInvalidOption", err)
	}

	missing := model.Answer{ID: uuid.New(), QuestionID: q.ID, PatientID: respondentID}
	if err := ValidateAnswer(&q, &missing); !errors.Is(err, ErrInvalidAnswerShape) {
		t.Errorf("nil option: err = %v, want ErrInvalidAnswerShape", err)
	}
}

func TestValidateAnswerFreeText(t *testing.T) {
	q := model.Question{ID: uuid.New(), Type: model.QuestionTypeFreeText, Mandatory: true}

	// Empty text is structurally acceptable; it just counts as unanswered.
	empty := model.Answer{QuestionID: q.ID, TextValue: strPtr("")}
	if err := ValidateAnswer(&q, &empty); err != nil {
		t.Errorf("empty text rejected: %v", err)
	}

	nilText := model.Answer{QuestionID: q.ID}
	if err := ValidateAnswer(&q, &nilText); !errors.Is(err, ErrInvalidAnswerShape) {
		t.Errorf("nil text: err = %v, want ErrInvalidAnswerShape", err)
	}
}

func TestValidateAnswerNumericRange(t *testing.T) {
	mandatory := model.Question{ID: uuid.New(), Type: model.QuestionTypeNumericRange, Mandatory: true, MinValue: floatPtr(1), MaxValue: floatPtr(5)}
	optional := model.Question{ID: uuid.New(), Type: model.QuestionTypeNumericRange, Mandatory: false}

	withValue := model.Answer{QuestionID: mandatory.ID, NumericValue: floatPtr(3)}
	if err := ValidateAnswer(&mandatory, &withValue); err != nil {
		t.Errorf("numeric value rejected: %v", err)
	}

	// Bounds are advisory: values outside min/max still validate.
	outOfBounds := model.Answer{QuestionID: mandatory.ID, NumericValue: floatPtr(99)}
	if err := ValidateAnswer(&mandatory, &outOfBounds); err != nil {
		t.Errorf("out-of-bounds value rejected: %v", err)
	}

	nilMandatory := model.Answer{QuestionID: mandatory.ID}
	if err := ValidateAnswer(&mandatory, &nilMandatory); !errors.Is(err, ErrInvalidAnswerShape) {
		t.Errorf("nil value on mandatory: err = %v, want ErrInvalidAnswerShape", err)
	}

	nilOptional := model.Answer{QuestionID: optional.ID}
	if err := ValidateAnswer(&optional, &nilOptional); err != nil {
		t.Errorf("nil value on optional rejected: %v", err)
	}
}

func TestValidateAnswerMismatchedQuestion(t *testing.T) {
	q := newChoiceQuestion(true)
	other := newChoiceQuestion(true)

	a := optionAnswer(other, 0)
	if err := ValidateAnswer(&q, &a); !errors.Is(err, ErrQuestionMismatch) {
		t.Errorf("err = %v, want ErrQuestionMismatch", err)
	}
}

func TestValidateAnswerUnknownType(t *testing.T) {
	q := model.Question{ID: uuid.New(), Type: model.QuestionType("matrix")}
	a := model.Answer{QuestionID: q.ID}
	if err := ValidateAnswer(&q, &a); !errors.Is(err, ErrUnknownQuestionType) {
		t.Errorf("err = %v, want ErrUnknownQuestionType", err)
	}
}
